package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/gravsim/internal/compute"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
)

// Experiment is one configured run: initial bodies, force field and a
// simulator carrying the default diagnostics.
type Experiment struct {
	cfg       *config.Config
	g         float64
	bodies    *dynamo.Bodies
	names     []string
	gravity   *physics.Gravity
	simulator *sim.Simulator
}

func New(cfg *config.Config) (*Experiment, error) {
	return NewWithRegistry(NewRegistry(), cfg)
}

func NewWithRegistry(r *Registry, cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g, err := cfg.GravConstant()
	if err != nil {
		return nil, err
	}

	ic, err := r.GetInitialCondition(cfg.Preset)
	if err != nil {
		return nil, err
	}
	bodies, names, err := ic(cfg, g)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", cfg.Preset, err)
	}
	if err := bodies.Validate(); err != nil {
		return nil, fmt.Errorf("preset %s: %w", cfg.Preset, err)
	}

	integrator, err := r.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	gravity := physics.NewGravity(g, cfg.Softening, compute.NewCPUBackend(cfg.Workers))
	simulator := sim.New(gravity, integrator)
	for _, m := range metrics.Defaults(bodies.Mass, g, cfg.Softening) {
		simulator.AddMetric(m)
	}

	return &Experiment{
		cfg:       cfg,
		g:         g,
		bodies:    bodies,
		names:     names,
		gravity:   gravity,
		simulator: simulator,
	}, nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	return e.simulator.Run(ctx, e.bodies, e.cfg.RunConfig())
}

// Start puts the simulator in the stepping phase for step-by-step driving.
func (e *Experiment) Start() error {
	return e.simulator.Start(e.bodies, e.cfg.RunConfig())
}

func (e *Experiment) Config() *config.Config        { return e.cfg }
func (e *Experiment) G() float64                    { return e.g }
func (e *Experiment) Names() []string               { return e.names }
func (e *Experiment) Gravity() *physics.Gravity     { return e.gravity }
func (e *Experiment) Simulator() *sim.Simulator     { return e.simulator }
func (e *Experiment) InitialBodies() *dynamo.Bodies { return e.bodies.Clone() }

func (e *Experiment) Member() sim.Member {
	return sim.Member{
		Name:   e.cfg.Name,
		Sim:    e.simulator,
		Bodies: e.bodies,
		Config: e.cfg.RunConfig(),
	}
}

// Metadata describes the run for storage and export.
func (e *Experiment) Metadata() storage.RunMetadata {
	return storage.RunMetadata{
		Name:       e.cfg.Name,
		Integrator: e.cfg.Integrator,
		Units:      e.cfg.Units,
		Seed:       e.cfg.Seed,
		G:          e.g,
		Softening:  e.cfg.Softening,
		TMax:       e.cfg.TMax,
		MinDt:      e.cfg.MinDt,
		DtOutput:   e.cfg.DtOutput,
		BodyNames:  e.names,
		Masses:     append([]float64(nil), e.bodies.Mass...),
	}
}
