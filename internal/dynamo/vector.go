package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// AddScaled performs dst[i] += f*src[i] for every index.
func AddScaled(dst, src []r3.Vec, f float64) {
	for i := range dst {
		dst[i] = r3.Add(dst[i], r3.Scale(f, src[i]))
	}
}

// MaxNorm returns the largest Euclidean magnitude in vs. NaN components
// propagate so callers can detect a broken state.
func MaxNorm(vs []r3.Vec) float64 {
	best := 0.0
	for _, v := range vs {
		n := r3.Norm(v)
		if math.IsNaN(n) {
			return n
		}
		if n > best {
			best = n
		}
	}
	return best
}

// MaxComponent returns the largest absolute Cartesian component in vs.
// NaN components propagate like in MaxNorm.
func MaxComponent(vs []r3.Vec) float64 {
	best := 0.0
	for _, v := range vs {
		for _, c := range [3]float64{v.X, v.Y, v.Z} {
			c = math.Abs(c)
			if math.IsNaN(c) {
				return c
			}
			if c > best {
				best = c
			}
		}
	}
	return best
}

// Finite reports whether every component of v is a finite number.
func Finite(v r3.Vec) bool {
	return !(math.IsNaN(v.X) || math.IsInf(v.X, 0) ||
		math.IsNaN(v.Y) || math.IsInf(v.Y, 0) ||
		math.IsNaN(v.Z) || math.IsInf(v.Z, 0))
}

// Flatten appends x, y, z of every vector to dst.
func Flatten(dst []float64, vs []r3.Vec) []float64 {
	for _, v := range vs {
		dst = append(dst, v.X, v.Y, v.Z)
	}
	return dst
}

// Unflatten reads consecutive triples of data into vectors.
func Unflatten(data []float64) []r3.Vec {
	vs := make([]r3.Vec, len(data)/3)
	for i := range vs {
		vs[i] = r3.Vec{X: data[i*3], Y: data[i*3+1], Z: data[i*3+2]}
	}
	return vs
}
