package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// LyapunovExponent estimates the largest Lyapunov exponent of b by
// integrating it alongside a copy whose first body is displaced by
// perturbation along x. Both copies take the same fixed steps dt; the
// separation in phase space is rescaled to perturbation every renorm steps
// and the logarithmic growth accumulated:
//
//	λ ≈ (1/t) Σ ln(d_k / d0)
//
// A clearly positive value indicates chaos. newIntegrator must return a
// fresh integrator per call since integrators may keep scratch state.
func LyapunovExponent(
	f dynamo.ForceField,
	newIntegrator func() dynamo.Integrator,
	b *dynamo.Bodies,
	dt, duration, perturbation float64,
	renorm int,
) (float64, error) {
	if !(dt > 0) || !(duration > 0) || !(perturbation > 0) {
		return 0, fmt.Errorf("dt %g, duration %g, perturbation %g: %w", dt, duration, perturbation, dynamo.ErrParameterBounds)
	}
	if renorm < 1 {
		renorm = 1
	}

	x := b.Clone()
	xp := b.Clone()
	xp.Pos[0].X += perturbation

	ix, ip := newIntegrator(), newIntegrator()
	acc := make([]r3.Vec, x.Len())
	accp := make([]r3.Vec, xp.Len())
	if err := f.Accelerations(x.Mass, x.Pos, acc); err != nil {
		return 0, err
	}
	if err := f.Accelerations(xp.Mass, xp.Pos, accp); err != nil {
		return 0, err
	}

	t := 0.0
	sumLog := 0.0
	for step := 1; t < duration; step++ {
		if err := ix.Step(f, x, acc, dt); err != nil {
			return 0, err
		}
		if err := ip.Step(f, xp, accp, dt); err != nil {
			return 0, err
		}
		t += dt

		if step%renorm != 0 {
			continue
		}

		sep := PhaseSeparation(x, xp)
		if sep == 0 || math.IsNaN(sep) {
			continue
		}
		sumLog += math.Log(sep / perturbation)

		scale := perturbation / sep
		for i := range xp.Pos {
			xp.Pos[i] = r3.Add(x.Pos[i], r3.Scale(scale, r3.Sub(xp.Pos[i], x.Pos[i])))
			xp.Vel[i] = r3.Add(x.Vel[i], r3.Scale(scale, r3.Sub(xp.Vel[i], x.Vel[i])))
		}
		if err := f.Accelerations(xp.Mass, xp.Pos, accp); err != nil {
			return 0, err
		}
	}

	return sumLog / t, nil
}

// PhaseSeparation is the Euclidean distance between two states of the same
// system in (position, velocity) space.
func PhaseSeparation(a, b *dynamo.Bodies) float64 {
	sum := 0.0
	for i := range a.Pos {
		sum += r3.Norm2(r3.Sub(a.Pos[i], b.Pos[i]))
		sum += r3.Norm2(r3.Sub(a.Vel[i], b.Vel[i]))
	}
	return math.Sqrt(sum)
}
