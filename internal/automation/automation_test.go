package automation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/san-kum/gravsim/internal/storage"
)

const scenarioYAML = `
name: smoke
description: two presets and a typo
steps:
  - preset: binary
    params: {t_max: 2}
    save_as: short_binary
  - preset: figure8
    integrator: rk4
    params: {t_max: 1, min_dt: 0.002}
  - preset: nonexistent
`

func quietRunner() *Runner {
	return NewRunner(2, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "smoke" || len(sc.Steps) != 3 {
		t.Fatalf("parsed %+v", sc)
	}
	if sc.Steps[1].Params["min_dt"] != 0.002 {
		t.Errorf("params = %v", sc.Steps[1].Params)
	}

	if _, err := ParseScenario([]byte("name: empty\n")); err == nil {
		t.Error("a scenario without steps should be rejected")
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}

	r := quietRunner()
	r.Store = storage.New(t.TempDir())
	if err := r.Store.Init(); err != nil {
		t.Fatal(err)
	}

	results, err := r.RunScenario(context.Background(), sc)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("%d results, want 3", len(results))
	}

	for i := 0; i < 2; i++ {
		if results[i].Err != nil {
			t.Fatalf("step %d: %v", i, results[i].Err)
		}
	}
	if results[0].Result.FinalTime < 2 {
		t.Errorf("first run stopped at %g", results[0].Result.FinalTime)
	}
	if results[0].Name != "short_binary" || results[0].RunID == "" {
		t.Errorf("first run was not saved: %+v", results[0])
	}
	if results[1].RunID != "" {
		t.Error("runs without save_as should not be stored")
	}
	if results[2].Err == nil {
		t.Error("unknown preset should fail its step")
	}

	runs, err := r.Store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Name != "short_binary" {
		t.Errorf("stored runs = %+v", runs)
	}
}

func TestRunScenarioCanceled(t *testing.T) {
	sc, _ := ParseScenario([]byte(scenarioYAML))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := quietRunner().RunScenario(ctx, sc); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunSweep(t *testing.T) {
	sweep := &ParameterSweep{
		Preset:    "binary",
		ParamName: "min_dt",
		ParamMin:  0.01,
		ParamMax:  0.04,
		NumSteps:  3,
		Overrides: map[string]float64{"t_max": 2},
	}
	results, err := quietRunner().RunSweep(context.Background(), sweep)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("%d results, want 3", len(results))
	}
	if results[0].ParamValue != 0.01 || results[2].ParamValue != 0.04 {
		t.Errorf("grid = %g..%g", results[0].ParamValue, results[2].ParamValue)
	}
	for i, res := range results {
		if res.Err != nil {
			t.Fatalf("point %d: %v", i, res.Err)
		}
		if i > 0 && res.Steps >= results[i-1].Steps {
			t.Errorf("larger min_dt should take fewer steps: %d then %d", results[i-1].Steps, res.Steps)
		}
	}

	if _, err := quietRunner().RunSweep(context.Background(), &ParameterSweep{Preset: "binary", ParamName: "bogus", NumSteps: 2}); err == nil {
		t.Error("unknown sweep parameter should fail")
	}
}

func TestRunMonteCarlo(t *testing.T) {
	mc := &MonteCarloConfig{
		Preset:       "binary",
		Perturbation: 0.01,
		NumTrials:    4,
		Seed:         7,
		Overrides:    map[string]float64{"t_max": 1},
	}
	results, err := quietRunner().RunMonteCarlo(context.Background(), mc)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("%d results, want 4", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatal(r.Err)
		}
		if r.MaxRadius <= 0 {
			t.Error("max radius not measured")
		}
	}
	stable, unstable := MonteCarloStats(results)
	if stable != 4 || unstable != 0 {
		t.Errorf("stable=%d unstable=%d, a slightly kicked binary stays bound", stable, unstable)
	}

	if results[0].Energy == results[1].Energy {
		t.Error("trials should be perturbed independently")
	}
}

func TestMonteCarloStats(t *testing.T) {
	s, u := MonteCarloStats([]MonteCarloResult{{Stable: true}, {}, {Stable: true}, {Err: errors.New("x")}})
	if s != 2 || u != 2 {
		t.Errorf("stats = %d/%d", s, u)
	}
}
