package physics

import (
	"math"

	"github.com/san-kum/gravsim/internal/compute"
	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Gravity is Newtonian point-mass gravity with an optional softening length.
// A zero softening reproduces the bare 1/r² law and reports coincident
// bodies as dynamo.ErrDegenerate.
type Gravity struct {
	G         float64
	Softening float64
	backend   compute.Backend
}

// NewGravity creates a gravity field evaluated on backend, or on the
// default CPU backend when backend is nil.
func NewGravity(g, softening float64, backend compute.Backend) *Gravity {
	if backend == nil {
		backend = compute.Default()
	}
	return &Gravity{
		G:         g,
		Softening: softening,
		backend:   backend,
	}
}

func (gr *Gravity) Backend() compute.Backend { return gr.backend }

func (gr *Gravity) Accelerations(mass []float64, pos []r3.Vec, acc []r3.Vec) error {
	return gr.backend.Accelerations(mass, pos, acc, gr.G, gr.Softening)
}

// Energy implements dynamo.Hamiltonian.
func (gr *Gravity) Energy(b *dynamo.Bodies) float64 {
	return KineticEnergy(b) + gr.PotentialEnergy(b)
}

func (gr *Gravity) PotentialEnergy(b *dynamo.Bodies) float64 {
	return PotentialEnergy(b, gr.G, gr.Softening)
}

// CircularSpeed is the speed of a circular orbit of radius r around mass m.
func (gr *Gravity) CircularSpeed(m, r float64) float64 {
	return math.Sqrt(gr.G * m / r)
}
