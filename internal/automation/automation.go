package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
)

// Scenario is a batch of runs described in YAML.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run: a preset or config file plus overrides.
type ScenarioStep struct {
	Preset     string             `yaml:"preset"`
	Config     string             `yaml:"config"`
	Integrator string             `yaml:"integrator"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Runner executes batches of experiments on an ensemble.
type Runner struct {
	Registry *experiment.Registry
	Limit    int
	Logger   *slog.Logger
	// Store receives every successful scenario step with a save_as name.
	Store *storage.Store
}

func NewRunner(limit int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Registry: experiment.NewRegistry(), Limit: limit, Logger: logger}
}

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Name   string
	Result *dynamo.Result
	RunID  string
	Err    error
}

func (r *Runner) stepConfig(step ScenarioStep) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case step.Config != "":
		c, err := config.Load(step.Config)
		if err != nil {
			return nil, err
		}
		cfg = c
	case step.Preset != "":
		cfg = config.GetPreset(step.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", step.Preset)
		}
	default:
		return nil, fmt.Errorf("step needs a preset or a config file")
	}

	if step.Integrator != "" {
		cfg.Integrator = step.Integrator
	}
	for k, v := range step.Params {
		if err := cfg.Set(k, v); err != nil {
			return nil, err
		}
	}
	if step.SaveAs != "" {
		cfg.Name = step.SaveAs
	}
	return cfg, nil
}

// RunScenario builds every step and runs them concurrently. A step that
// fails to build or run is reported in its StepResult; only cancellation
// aborts the batch.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, len(scenario.Steps))
	exps := make([]*experiment.Experiment, len(scenario.Steps))
	members := make([]sim.Member, 0, len(scenario.Steps))
	index := make([]int, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := r.stepConfig(step)
		if err == nil {
			exps[i], err = experiment.NewWithRegistry(r.Registry, cfg)
		}
		if err != nil {
			results[i] = StepResult{Name: fmt.Sprintf("step%d", i+1), Err: err}
			continue
		}
		results[i].Name = cfg.Name
		members = append(members, exps[i].Member())
		index = append(index, i)
	}

	r.Logger.Info("scenario", "name", scenario.Name, "runs", len(members), "limit", r.Limit)
	outcomes, err := sim.NewEnsemble(r.Limit).Run(ctx, members)
	if err != nil {
		return results, err
	}

	for j, out := range outcomes {
		i := index[j]
		results[i].Result, results[i].Err = out.Result, out.Err
		if out.Err != nil {
			r.Logger.Warn("run failed", "name", out.Name, "err", out.Err)
			continue
		}
		r.Logger.Info("run finished", "name", out.Name,
			"steps", out.Result.StepsTaken, "energy_drift", out.Result.EnergyDrift)

		if r.Store != nil && scenario.Steps[i].SaveAs != "" {
			id, err := r.Store.Save(exps[i].Metadata(), out.Result)
			if err != nil {
				results[i].Err = err
				continue
			}
			results[i].RunID = id
		}
	}
	return results, nil
}

// ParameterSweep varies one parameter of a preset over an even grid.
type ParameterSweep struct {
	Preset     string
	Integrator string
	ParamName  string
	ParamMin   float64
	ParamMax   float64
	NumSteps   int
	Overrides  map[string]float64
}

type SweepResult struct {
	ParamValue  float64
	EnergyDrift float64
	Steps       int
	MinDt       float64
	MaxDt       float64
	Err         error
}

func (s *ParameterSweep) values() []float64 {
	if s.NumSteps <= 1 {
		return []float64{s.ParamMin}
	}
	step := (s.ParamMax - s.ParamMin) / float64(s.NumSteps-1)
	vs := make([]float64, s.NumSteps)
	for i := range vs {
		vs[i] = s.ParamMin + float64(i)*step
	}
	return vs
}

// RunSweep runs one simulation per grid value. The classic use is a
// convergence study of energy drift against min_dt.
func (r *Runner) RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	base := config.GetPreset(sweep.Preset)
	if base == nil {
		return nil, fmt.Errorf("unknown preset %q", sweep.Preset)
	}
	if sweep.Integrator != "" {
		base.Integrator = sweep.Integrator
	}
	for k, v := range sweep.Overrides {
		if err := base.Set(k, v); err != nil {
			return nil, err
		}
	}

	values := sweep.values()
	results := make([]SweepResult, len(values))
	members := make([]sim.Member, 0, len(values))
	index := make([]int, 0, len(values))

	for i, v := range values {
		results[i].ParamValue = v
		cfg := base.Clone()
		if err := cfg.Set(sweep.ParamName, v); err != nil {
			return nil, err
		}
		cfg.Name = fmt.Sprintf("%s_%s=%g", sweep.Preset, sweep.ParamName, v)
		exp, err := experiment.NewWithRegistry(r.Registry, cfg)
		if err != nil {
			results[i].Err = err
			continue
		}
		members = append(members, exp.Member())
		index = append(index, i)
	}

	outcomes, err := sim.NewEnsemble(r.Limit).Run(ctx, members)
	if err != nil {
		return results, err
	}
	for j, out := range outcomes {
		res := &results[index[j]]
		if out.Err != nil {
			res.Err = out.Err
			continue
		}
		res.EnergyDrift = out.Result.EnergyDrift
		res.Steps = out.Result.StepsTaken
		res.MinDt = out.Result.MinDt
		res.MaxDt = out.Result.MaxDt
		r.Logger.Debug("sweep point", sweep.ParamName, res.ParamValue, "energy_drift", res.EnergyDrift)
	}
	return results, nil
}

// MonteCarloConfig perturbs the velocities of a preset's bodies and
// checks whether the system stays bound.
type MonteCarloConfig struct {
	Preset       string
	Integrator   string
	Perturbation float64 // relative velocity kick
	NumTrials    int
	Seed         int64
	Overrides    map[string]float64
}

type MonteCarloResult struct {
	TrialID     int
	Energy      float64
	EnergyDrift float64
	MaxRadius   float64
	Stable      bool
	Err         error
}

func (r *Runner) RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig) ([]MonteCarloResult, error) {
	cfg := config.GetPreset(mc.Preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset %q", mc.Preset)
	}
	if mc.Integrator != "" {
		cfg.Integrator = mc.Integrator
	}
	for k, v := range mc.Overrides {
		if err := cfg.Set(k, v); err != nil {
			return nil, err
		}
	}

	rng := rand.New(rand.NewSource(mc.Seed))
	exps := make([]*experiment.Experiment, mc.NumTrials)
	members := make([]sim.Member, mc.NumTrials)
	for trial := range members {
		exp, err := experiment.NewWithRegistry(r.Registry, cfg.Clone())
		if err != nil {
			return nil, err
		}
		b := exp.InitialBodies()
		for i, v := range b.Vel {
			kick := r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
			b.Vel[i] = r3.Add(v, r3.Scale(mc.Perturbation*r3.Norm(v), kick))
		}
		exps[trial] = exp
		members[trial] = exp.Member()
		members[trial].Name = fmt.Sprintf("%s#%d", mc.Preset, trial)
		members[trial].Bodies = b
	}

	outcomes, err := sim.NewEnsemble(r.Limit).Run(ctx, members)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(outcomes))
	for trial, out := range outcomes {
		res := MonteCarloResult{TrialID: trial, Err: out.Err}
		if out.Err == nil {
			final := out.Result.Final
			res.Energy = physics.TotalEnergy(final, exps[trial].G(), cfg.Softening)
			res.EnergyDrift = out.Result.EnergyDrift
			com, _ := physics.CenterOfMass(final)
			for _, p := range final.Pos {
				res.MaxRadius = math.Max(res.MaxRadius, r3.Norm(r3.Sub(p, com)))
			}
			res.Stable = res.Energy < 0
		}
		results[trial] = res
	}

	stable, unstable := MonteCarloStats(results)
	r.Logger.Info("monte carlo", "preset", mc.Preset, "trials", mc.NumTrials, "stable", stable, "unstable", unstable)
	return results, nil
}

// MonteCarloStats counts bound and unbound trials. Failed trials count as
// unstable.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
