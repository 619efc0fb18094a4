package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

func sine(period, dt, duration float64, jitter bool) ([]float64, []float64) {
	var times, values []float64
	for t := 0.0; t <= duration; t += dt {
		ts := t
		if jitter {
			// Samples land a little after each boundary, like driver output.
			ts += 0.3 * dt * math.Abs(math.Sin(7*t))
		}
		times = append(times, ts)
		values = append(values, math.Sin(2*math.Pi*ts/period))
	}
	return times, values
}

func TestPowerSpectrumPeak(t *testing.T) {
	n := 256
	data := make([]float64, n)
	for i := range data {
		data[i] = 3 + math.Sin(2*math.Pi*16*float64(i)/float64(n))
	}

	ps := PowerSpectrum(data)
	if len(ps) != n/2 {
		t.Fatalf("expected %d bins, got %d", n/2, len(ps))
	}
	peak := 0
	for k := range ps {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if peak != 16 {
		t.Errorf("peak at bin %d, want 16", peak)
	}
	if ps[0] > 1e-3*ps[16] {
		t.Errorf("mean not removed: bin 0 = %g", ps[0])
	}
}

func TestDominantPeriod(t *testing.T) {
	tests := []struct {
		name   string
		jitter bool
	}{
		{"uniform", false},
		{"jittered", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			times, values := sine(2, 0.05, 40, tt.jitter)
			period, err := DominantPeriod(times, values)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(period-2)/2 > 0.02 {
				t.Errorf("period = %g, want 2", period)
			}
		})
	}
}

func TestDominantPeriodErrors(t *testing.T) {
	if _, err := DominantPeriod([]float64{0, 1}, []float64{0, 1}); !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("expected ErrTooFewSamples, got %v", err)
	}

	times := make([]float64, 16)
	flat := make([]float64, 16)
	for i := range times {
		times[i] = float64(i)
		flat[i] = 4
	}
	if _, err := DominantPeriod(times, flat); err == nil {
		t.Error("expected error for a flat series")
	}
}

func TestResample(t *testing.T) {
	times := []float64{0, 0.5, 2, 3}
	values := []float64{1, 2, 5, 7}

	out, step, err := Resample(times, values, 7)
	if err != nil {
		t.Fatal(err)
	}
	if step != 0.5 {
		t.Errorf("step = %g, want 0.5", step)
	}
	want := []float64{1, 2, 3, 4, 5, 6, 7}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Errorf("out[%d] = %g, want %g", i, out[i], want[i])
		}
	}

	if _, _, err := Resample(times, values[:2], 4); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestCrossingPeriod(t *testing.T) {
	times, values := sine(3, 0.01, 30, false)

	crossings := CrossingTimes(times, values, 0)
	if len(crossings) < 9 {
		t.Fatalf("expected about 10 crossings, got %d", len(crossings))
	}
	if math.Abs(crossings[0]-3) > 1e-3 {
		t.Errorf("first crossing at %g, want 3", crossings[0])
	}

	period, err := CrossingPeriod(times, values)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(period-3) > 1e-2 {
		t.Errorf("period = %g, want 3", period)
	}

	if _, err := CrossingPeriod(times[:10], values[:10]); !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("expected ErrTooFewSamples, got %v", err)
	}
}

func circleResult(n int) *dynamo.Result {
	r := &dynamo.Result{}
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		b := &dynamo.Bodies{
			Mass: []float64{1, 1},
			Pos:  []r3.Vec{{X: 5, Y: 5}, {X: 5 + math.Cos(theta), Y: 5 + math.Sin(theta)}},
			Vel:  []r3.Vec{{}, {X: -math.Sin(theta), Y: math.Cos(theta)}},
		}
		r.Snapshots = append(r.Snapshots, dynamo.NewSnapshot(float64(i), b))
	}
	return r
}

func TestOrbitPortrait(t *testing.T) {
	result := circleResult(40)

	if OrbitPortrait(result, 2) != nil {
		t.Error("expected nil for an out-of-range body")
	}
	if OrbitPortrait(&dynamo.Result{}, 0) != nil {
		t.Error("expected nil for an empty result")
	}

	rel := RelativePortrait(result, 1, 0)
	if len(rel.Points) != 40 {
		t.Fatalf("expected 40 points, got %d", len(rel.Points))
	}
	for _, p := range rel.Points {
		if r := math.Hypot(p.X, p.Y); math.Abs(r-1) > 1e-12 {
			t.Fatalf("relative radius %g, want 1", r)
		}
	}

	art := PortraitToASCII(rel, 40, 20)
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if len(lines) != 20 {
		t.Errorf("expected 20 lines, got %d", len(lines))
	}
	for _, mark := range []string{"o", "@", "•", "│", "─"} {
		if !strings.Contains(art, mark) {
			t.Errorf("portrait missing %q:\n%s", mark, art)
		}
	}

	if PortraitToASCII(nil, 10, 10) != "" {
		t.Error("expected empty drawing for nil portrait")
	}
}

func TestLyapunovRegularOrbit(t *testing.T) {
	b, err := physics.Binary(1, 1, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	grav := physics.NewGravity(1, 0, nil)
	newLeapfrog := func() dynamo.Integrator { return integrators.NewLeapfrog() }

	lambda, err := LyapunovExponent(grav, newLeapfrog, b, 0.01, 20, 1e-8, 10)
	if err != nil {
		t.Fatal(err)
	}
	if lambda > 0.5 {
		t.Errorf("circular binary looks chaotic: λ = %g", lambda)
	}

	again, err := LyapunovExponent(grav, newLeapfrog, b, 0.01, 20, 1e-8, 10)
	if err != nil || again != lambda {
		t.Errorf("estimate not deterministic: %g vs %g (%v)", lambda, again, err)
	}

	if _, err := LyapunovExponent(grav, newLeapfrog, b, 0.01, 20, 0, 10); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestPhaseSeparation(t *testing.T) {
	a := &dynamo.Bodies{Mass: []float64{1}, Pos: []r3.Vec{{}}, Vel: []r3.Vec{{}}}
	b := a.Clone()
	b.Pos[0] = r3.Vec{X: 3}
	b.Vel[0] = r3.Vec{Y: 4}
	if d := PhaseSeparation(a, b); d != 5 {
		t.Errorf("separation = %g, want 5", d)
	}
}
