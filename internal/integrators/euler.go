package integrators

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// SymplecticEuler is the first-order kick-then-drift scheme.
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (e *SymplecticEuler) Name() string { return "euler" }

func (e *SymplecticEuler) Step(f dynamo.ForceField, b *dynamo.Bodies, acc []r3.Vec, dt float64) error {
	Kick(b.Vel, acc, dt)
	Drift(b.Pos, b.Vel, dt)
	return f.Accelerations(b.Mass, b.Pos, acc)
}
