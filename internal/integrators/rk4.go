package integrators

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// RK4 is the classical fourth-order Runge-Kutta scheme on (x, v). It is not
// symplectic and serves as a comparison for energy drift.
type RK4 struct {
	x0, v0        []r3.Vec
	k2a, k3a, k4a []r3.Vec
	k2v, k3v, k4v []r3.Vec
	scratchPos    []r3.Vec
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) ensureScratch(n int) {
	if len(r.x0) != n {
		r.x0 = make([]r3.Vec, n)
		r.v0 = make([]r3.Vec, n)
		r.k2a = make([]r3.Vec, n)
		r.k3a = make([]r3.Vec, n)
		r.k4a = make([]r3.Vec, n)
		r.k2v = make([]r3.Vec, n)
		r.k3v = make([]r3.Vec, n)
		r.k4v = make([]r3.Vec, n)
		r.scratchPos = make([]r3.Vec, n)
	}
}

func (r *RK4) Step(f dynamo.ForceField, b *dynamo.Bodies, acc []r3.Vec, dt float64) error {
	n := b.Len()
	r.ensureScratch(n)
	copy(r.x0, b.Pos)
	copy(r.v0, b.Vel)

	// k1 = (v0, acc)
	for i := 0; i < n; i++ {
		r.scratchPos[i] = r3.Add(r.x0[i], r3.Scale(0.5*dt, r.v0[i]))
		r.k2v[i] = r3.Add(r.v0[i], r3.Scale(0.5*dt, acc[i]))
	}
	if err := f.Accelerations(b.Mass, r.scratchPos, r.k2a); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		r.scratchPos[i] = r3.Add(r.x0[i], r3.Scale(0.5*dt, r.k2v[i]))
		r.k3v[i] = r3.Add(r.v0[i], r3.Scale(0.5*dt, r.k2a[i]))
	}
	if err := f.Accelerations(b.Mass, r.scratchPos, r.k3a); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		r.scratchPos[i] = r3.Add(r.x0[i], r3.Scale(dt, r.k3v[i]))
		r.k4v[i] = r3.Add(r.v0[i], r3.Scale(dt, r.k3a[i]))
	}
	if err := f.Accelerations(b.Mass, r.scratchPos, r.k4a); err != nil {
		return err
	}

	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		dx := r3.Add(r3.Add(r.v0[i], r3.Scale(2, r.k2v[i])), r3.Add(r3.Scale(2, r.k3v[i]), r.k4v[i]))
		dv := r3.Add(r3.Add(acc[i], r3.Scale(2, r.k2a[i])), r3.Add(r3.Scale(2, r.k3a[i]), r.k4a[i]))
		b.Pos[i] = r3.Add(r.x0[i], r3.Scale(dt6, dx))
		b.Vel[i] = r3.Add(r.v0[i], r3.Scale(dt6, dv))
	}

	return f.Accelerations(b.Mass, b.Pos, acc)
}
