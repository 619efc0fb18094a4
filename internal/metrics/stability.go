package metrics

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// Bound reports the fraction of samples in which every body stays within
// radius of the centre of mass. Escapers pull it below one.
type Bound struct {
	name       string
	mass       []float64
	radius     float64
	violations int
	samples    int
}

func NewBound(mass []float64, radius float64) *Bound {
	return &Bound{
		name:   "bound",
		mass:   mass,
		radius: radius,
	}
}

func (s *Bound) Name() string {
	return s.name
}

func (s *Bound) Observe(snap dynamo.Snapshot) {
	s.samples++
	com, _ := physics.CenterOfMass(snap.Bodies(s.mass))
	for i := 0; i < snap.NumBodies(); i++ {
		if r3.Norm(r3.Sub(snap.Position(i), com)) > s.radius {
			s.violations++
			break
		}
	}
}

func (s *Bound) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Bound) Reset() {
	s.violations = 0
	s.samples = 0
}

// Defaults returns the diagnostics recorded for every run.
func Defaults(mass []float64, g, softening float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergyDrift(mass, g, softening),
		NewMomentumDrift(mass),
		NewAngularMomentumDrift(mass),
	}
}
