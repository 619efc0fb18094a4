package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// harmonic is a unit-frequency spring toward the origin, a = -x.
type harmonic struct {
	calls int
}

func (h *harmonic) Accelerations(mass []float64, pos []r3.Vec, acc []r3.Vec) error {
	h.calls++
	for i := range pos {
		acc[i] = r3.Scale(-1, pos[i])
	}
	return nil
}

type failingField struct{}

func (failingField) Accelerations(mass []float64, pos []r3.Vec, acc []r3.Vec) error {
	return dynamo.ErrDegenerate
}

func oscillator() (*dynamo.Bodies, []r3.Vec) {
	b := &dynamo.Bodies{
		Mass: []float64{1},
		Pos:  []r3.Vec{{X: 1}},
		Vel:  []r3.Vec{{}},
	}
	return b, []r3.Vec{{X: -1}}
}

func oscillatorEnergy(b *dynamo.Bodies) float64 {
	return 0.5*r3.Norm2(b.Vel[0]) + 0.5*r3.Norm2(b.Pos[0])
}

func integrate(t *testing.T, integ dynamo.Integrator, f dynamo.ForceField, b *dynamo.Bodies, acc []r3.Vec, dt float64, steps int) {
	t.Helper()
	for i := 0; i < steps; i++ {
		if err := integ.Step(f, b, acc, dt); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestIntegratorAccuracy(t *testing.T) {
	tests := []struct {
		integ dynamo.Integrator
		tol   float64
	}{
		{NewSymplecticEuler(), 2e-2},
		{NewLeapfrog(), 1e-4},
		{NewRK4(), 1e-8},
	}

	for _, tt := range tests {
		t.Run(tt.integ.Name(), func(t *testing.T) {
			b, acc := oscillator()
			dt := 0.01
			steps := 100
			integrate(t, tt.integ, &harmonic{}, b, acc, dt, steps)

			tEnd := float64(steps) * dt
			if got, want := b.Pos[0].X, math.Cos(tEnd); math.Abs(got-want) > tt.tol {
				t.Errorf("position error too large: got %.8f, expected %.8f", got, want)
			}
			if got, want := b.Vel[0].X, -math.Sin(tEnd); math.Abs(got-want) > tt.tol {
				t.Errorf("velocity error too large: got %.8f, expected %.8f", got, want)
			}
		})
	}
}

func TestAccelerationsMatchNewPositions(t *testing.T) {
	for _, integ := range []dynamo.Integrator{NewSymplecticEuler(), NewLeapfrog(), NewRK4()} {
		t.Run(integ.Name(), func(t *testing.T) {
			b, acc := oscillator()
			integrate(t, integ, &harmonic{}, b, acc, 0.05, 10)
			if want := r3.Scale(-1, b.Pos[0]); acc[0] != want {
				t.Errorf("acc = %v after step, want %v", acc[0], want)
			}
		})
	}
}

func TestLeapfrogOneForceEvaluationPerStep(t *testing.T) {
	b, acc := oscillator()
	h := &harmonic{}
	integrate(t, NewLeapfrog(), h, b, acc, 0.01, 25)
	if h.calls != 25 {
		t.Errorf("expected 25 force evaluations, got %d", h.calls)
	}
}

func TestLeapfrogKickDriftKick(t *testing.T) {
	b, acc := oscillator()
	dt := 0.1
	if err := NewLeapfrog().Step(&harmonic{}, b, acc, dt); err != nil {
		t.Fatal(err)
	}

	vHalf := -0.5 * dt
	x1 := 1 + dt*vHalf
	v1 := vHalf - 0.5*dt*x1
	if math.Abs(b.Pos[0].X-x1) > 1e-15 {
		t.Errorf("x = %.17g, want %.17g", b.Pos[0].X, x1)
	}
	if math.Abs(b.Vel[0].X-v1) > 1e-15 {
		t.Errorf("v = %.17g, want %.17g", b.Vel[0].X, v1)
	}
}

func TestLeapfrogTimeReversible(t *testing.T) {
	b, acc := oscillator()
	b.Vel[0] = r3.Vec{Y: 0.3}
	start := b.Clone()

	integ := NewLeapfrog()
	integrate(t, integ, &harmonic{}, b, acc, 0.02, 200)
	integrate(t, integ, &harmonic{}, b, acc, -0.02, 200)

	if d := r3.Norm(r3.Sub(b.Pos[0], start.Pos[0])); d > 1e-12 {
		t.Errorf("position did not return: off by %g", d)
	}
	if d := r3.Norm(r3.Sub(b.Vel[0], start.Vel[0])); d > 1e-12 {
		t.Errorf("velocity did not return: off by %g", d)
	}
}

func TestSymplecticEnergyBounded(t *testing.T) {
	for _, integ := range []dynamo.Integrator{NewSymplecticEuler(), NewLeapfrog()} {
		t.Run(integ.Name(), func(t *testing.T) {
			b, acc := oscillator()
			e0 := oscillatorEnergy(b)
			worst := 0.0
			for i := 0; i < 20000; i++ {
				if err := integ.Step(&harmonic{}, b, acc, 0.02); err != nil {
					t.Fatal(err)
				}
				worst = math.Max(worst, math.Abs(oscillatorEnergy(b)-e0)/e0)
			}
			if worst > 0.05 {
				t.Errorf("energy drift %.4f over 20000 steps", worst)
			}
		})
	}
}

func TestForceErrorPropagates(t *testing.T) {
	for _, integ := range []dynamo.Integrator{NewSymplecticEuler(), NewLeapfrog(), NewRK4()} {
		b, acc := oscillator()
		err := integ.Step(failingField{}, b, acc, 0.1)
		if !errors.Is(err, dynamo.ErrDegenerate) {
			t.Errorf("%s: expected ErrDegenerate, got %v", integ.Name(), err)
		}
	}
}

func TestStepController(t *testing.T) {
	tests := []struct {
		name    string
		ctrl    StepController
		acc     []r3.Vec
		want    float64
		wantErr error
	}{
		{"inverse of max", NewStepController(0.01, 0), []r3.Vec{{X: 2}, {Y: -4}}, 0.0025, nil},
		{"euclidean norm", NewStepController(0.5, 0), []r3.Vec{{X: 3, Y: 4}}, 0.1, nil},
		{"capped", NewStepController(0.01, 0.001), []r3.Vec{{X: 1}}, 0.001, nil},
		{"cap not reached", NewStepController(0.01, 1), []r3.Vec{{X: 1}}, 0.01, nil},
		{"component norm", StepController{MinDt: 0.5, Norm: dynamo.NormComponent}, []r3.Vec{{X: 3, Y: -4}}, 0.125, nil},
		{"explicit euclidean", StepController{MinDt: 0.5, Norm: dynamo.NormEuclidean}, []r3.Vec{{X: 3, Y: -4}}, 0.1, nil},
		{"stalled", NewStepController(0.01, 0), []r3.Vec{{}, {}}, 0, dynamo.ErrStalled},
		{"zero with cap", NewStepController(0.01, 0.2), []r3.Vec{{}}, 0.2, nil},
		{"nan", NewStepController(0.01, 0), []r3.Vec{{X: math.NaN()}}, 0, dynamo.ErrInvalidState},
		{"inf", NewStepController(0.01, 0), []r3.Vec{{Z: math.Inf(1)}}, 0, dynamo.ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.ctrl.Next(tt.acc)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-15 {
				t.Errorf("dt = %g, want %g", got, tt.want)
			}
		})
	}
}
