package integrators

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Kick applies vel += acc*h in place.
func Kick(vel, acc []r3.Vec, h float64) {
	dynamo.AddScaled(vel, acc, h)
}

// Drift applies pos += vel*h in place.
func Drift(pos, vel []r3.Vec, h float64) {
	dynamo.AddScaled(pos, vel, h)
}

// Leapfrog is the symplectic kick-drift-kick scheme. The first half kick
// uses the accelerations left by the previous step; the second uses the
// accelerations recomputed at the drifted positions.
type Leapfrog struct{}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Name() string { return "leapfrog" }

func (l *Leapfrog) Step(f dynamo.ForceField, b *dynamo.Bodies, acc []r3.Vec, dt float64) error {
	halfDt := 0.5 * dt

	Kick(b.Vel, acc, halfDt)
	Drift(b.Pos, b.Vel, dt)
	if err := f.Accelerations(b.Mass, b.Pos, acc); err != nil {
		return err
	}
	Kick(b.Vel, acc, halfDt)

	return nil
}
