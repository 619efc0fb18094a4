package physics

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// FigureEightPeriod is the period of the Chenciner-Montgomery orbit for G = 1, m = 1.
const FigureEightPeriod = 6.32591398

// Binary places two bodies on a circular orbit of separation sep about their
// barycentre, which sits at the origin. The orbit lies in the x-y plane and
// runs counter-clockwise.
func Binary(m1, m2, sep, g float64) (*dynamo.Bodies, error) {
	if !(m1 > 0) || !(m2 > 0) {
		return nil, dynamo.ErrNonPositiveMass
	}
	if !(sep > 0) || !(g > 0) {
		return nil, fmt.Errorf("binary separation %g, G %g: %w", sep, g, dynamo.ErrParameterBounds)
	}

	total := m1 + m2
	omega := math.Sqrt(g * total / (sep * sep * sep))
	r1 := sep * m2 / total
	r2 := sep * m1 / total

	b := dynamo.NewBodies(2)
	b.Mass[0], b.Mass[1] = m1, m2
	b.Pos[0] = r3.Vec{X: -r1}
	b.Pos[1] = r3.Vec{X: r2}
	b.Vel[0] = r3.Vec{Y: -omega * r1}
	b.Vel[1] = r3.Vec{Y: omega * r2}
	return b, nil
}

// BinaryPeriod is the orbital period of Binary(m1, m2, sep, g).
func BinaryPeriod(m1, m2, sep, g float64) float64 {
	return 2 * math.Pi * math.Sqrt(sep*sep*sep/(g*(m1+m2)))
}

// FigureEight returns the three-body choreography for G = 1.
func FigureEight() *dynamo.Bodies {
	b := dynamo.NewBodies(3)
	for i := range b.Mass {
		b.Mass[i] = 1
	}
	b.Pos[0] = r3.Vec{X: 0.97000436, Y: -0.24308753}
	b.Pos[1] = r3.Vec{X: -0.97000436, Y: 0.24308753}
	b.Vel[2] = r3.Vec{X: -0.93240737, Y: -0.86473146}
	b.Vel[0] = r3.Scale(-0.5, b.Vel[2])
	b.Vel[1] = b.Vel[0]
	return b
}

// Ring places n bodies of mass m evenly on a circle of radius r around an
// optional central mass. Speeds make the ring rotate rigidly, including the
// pull of the other ring members.
func Ring(n int, m, r, central, g float64) (*dynamo.Bodies, error) {
	if n < 1 {
		return nil, fmt.Errorf("ring needs at least one body, got %d: %w", n, dynamo.ErrParameterBounds)
	}
	if !(m > 0) || central < 0 {
		return nil, dynamo.ErrNonPositiveMass
	}
	if !(r > 0) {
		return nil, fmt.Errorf("ring radius %g: %w", r, dynamo.ErrParameterBounds)
	}

	speed := math.Sqrt(r * RingAcceleration(n, m, r, central, g))

	offset := 0
	total := n
	if central > 0 {
		offset = 1
		total++
	}

	b := dynamo.NewBodies(total)
	if central > 0 {
		b.Mass[0] = central
	}
	for i := 0; i < n; i++ {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / float64(n))
		k := offset + i
		b.Mass[k] = m
		b.Pos[k] = r3.Vec{X: r * cos, Y: r * sin}
		b.Vel[k] = r3.Vec{X: -speed * sin, Y: speed * cos}
	}
	return b, nil
}

// RingAcceleration is the inward acceleration of one member of Ring.
func RingAcceleration(n int, m, r, central, g float64) float64 {
	sum := 0.0
	for k := 1; k < n; k++ {
		sum += 1 / math.Sin(math.Pi*float64(k)/float64(n))
	}
	return g*central/(r*r) + g*m*sum/(4*r*r)
}

// RandomSphere draws n equal-mass bodies (total mass 1) uniformly inside a
// sphere, moves them to the barycentric frame and scales the random
// velocities to virial equilibrium.
func RandomSphere(n int, radius, g float64, seed int64) (*dynamo.Bodies, error) {
	if n < 2 {
		return nil, fmt.Errorf("random sphere needs at least two bodies, got %d: %w", n, dynamo.ErrParameterBounds)
	}
	if !(radius > 0) {
		return nil, fmt.Errorf("sphere radius %g: %w", radius, dynamo.ErrParameterBounds)
	}

	rng := rand.New(rand.NewSource(seed))
	b := dynamo.NewBodies(n)
	for i := 0; i < n; i++ {
		b.Mass[i] = 1 / float64(n)
		for {
			p := r3.Vec{X: 2*rng.Float64() - 1, Y: 2*rng.Float64() - 1, Z: 2*rng.Float64() - 1}
			if r3.Norm2(p) <= 1 {
				b.Pos[i] = r3.Scale(radius, p)
				break
			}
		}
		b.Vel[i] = r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
	}

	ToCenterOfMassFrame(b)

	ke := KineticEnergy(b)
	pe := PotentialEnergy(b, g, 0)
	if ke > 0 {
		scale := math.Sqrt(math.Abs(pe) / (2 * ke))
		for i := range b.Vel {
			b.Vel[i] = r3.Scale(scale, b.Vel[i])
		}
	}
	return b, nil
}
