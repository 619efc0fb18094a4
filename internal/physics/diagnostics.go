package physics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

func KineticEnergy(b *dynamo.Bodies) float64 {
	ke := 0.0
	for i, v := range b.Vel {
		ke += 0.5 * b.Mass[i] * r3.Norm2(v)
	}
	return ke
}

// PotentialEnergy sums -G m_i m_j / r_ij over unordered pairs, using the
// same softened distance as the force kernel.
func PotentialEnergy(b *dynamo.Bodies, g, softening float64) float64 {
	eps2 := softening * softening
	pe := 0.0
	for i := range b.Pos {
		for j := i + 1; j < len(b.Pos); j++ {
			r := math.Sqrt(r3.Norm2(r3.Sub(b.Pos[j], b.Pos[i])) + eps2)
			pe -= g * b.Mass[i] * b.Mass[j] / r
		}
	}
	return pe
}

func TotalEnergy(b *dynamo.Bodies, g, softening float64) float64 {
	return KineticEnergy(b) + PotentialEnergy(b, g, softening)
}

func Momentum(b *dynamo.Bodies) r3.Vec {
	var p r3.Vec
	for i, v := range b.Vel {
		p = r3.Add(p, r3.Scale(b.Mass[i], v))
	}
	return p
}

// AngularMomentum is Σ m_i x_i × v_i about the origin.
func AngularMomentum(b *dynamo.Bodies) r3.Vec {
	var l r3.Vec
	for i := range b.Pos {
		l = r3.Add(l, r3.Scale(b.Mass[i], r3.Cross(b.Pos[i], b.Vel[i])))
	}
	return l
}

func TotalMass(b *dynamo.Bodies) float64 {
	return floats.Sum(b.Mass)
}

// CenterOfMass returns the barycentre position and velocity.
func CenterOfMass(b *dynamo.Bodies) (pos, vel r3.Vec) {
	m := TotalMass(b)
	for i := range b.Pos {
		pos = r3.Add(pos, r3.Scale(b.Mass[i], b.Pos[i]))
		vel = r3.Add(vel, r3.Scale(b.Mass[i], b.Vel[i]))
	}
	return r3.Scale(1/m, pos), r3.Scale(1/m, vel)
}

// ToCenterOfMassFrame shifts b in place so the barycentre sits at the
// origin at rest.
func ToCenterOfMassFrame(b *dynamo.Bodies) {
	pos, vel := CenterOfMass(b)
	for i := range b.Pos {
		b.Pos[i] = r3.Sub(b.Pos[i], pos)
		b.Vel[i] = r3.Sub(b.Vel[i], vel)
	}
}

// VirialRatio is 2K/|U|; 1 for a system in virial equilibrium.
func VirialRatio(b *dynamo.Bodies, g, softening float64) float64 {
	pe := PotentialEnergy(b, g, softening)
	if pe == 0 {
		return math.Inf(1)
	}
	return 2 * KineticEnergy(b) / math.Abs(pe)
}
