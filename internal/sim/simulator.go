package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNotStepping is returned by Advance outside the STEPPING phase.
var ErrNotStepping = errors.New("sim: simulator is not stepping")

type Phase int

const (
	Initializing Phase = iota
	Stepping
	Terminated
)

func (p Phase) String() string {
	switch p {
	case Initializing:
		return "initializing"
	case Stepping:
		return "stepping"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Simulator drives one adaptive run: sample, size the step from the
// current accelerations, integrate, advance the clock. It is not safe for
// concurrent use; run independent simulators for concurrency.
type Simulator struct {
	force      dynamo.ForceField
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
	observers  []dynamo.Observer

	phase   Phase
	cfg     dynamo.Config
	ctrl    integrators.StepController
	bodies  *dynamo.Bodies
	acc     []r3.Vec
	t       float64
	nextOut float64
	step    int
	energy0 float64
	result  *dynamo.Result
	err     error
	accPool *AccelerationPool
}

func New(force dynamo.ForceField, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		force:      force,
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// UsePool makes the simulator borrow its acceleration buffer from p for the
// duration of each run.
func (s *Simulator) UsePool(p *AccelerationPool) { s.accPool = p }

func (s *Simulator) Integrator() dynamo.Integrator { return s.integrator }
func (s *Simulator) Phase() Phase                  { return s.phase }
func (s *Simulator) Time() float64                 { return s.t }
func (s *Simulator) Steps() int                    { return s.step }
func (s *Simulator) Err() error                    { return s.err }

// Bodies returns the live state. Callers must not modify it while stepping.
func (s *Simulator) Bodies() *dynamo.Bodies { return s.bodies }

// Result returns the output accumulated so far. Final and the diagnostics
// are filled in once the run terminates.
func (s *Simulator) Result() *dynamo.Result { return s.result }

// Start validates the inputs, evaluates the initial accelerations and enters
// the STEPPING phase. b is cloned.
func (s *Simulator) Start(b *dynamo.Bodies, cfg dynamo.Config) error {
	s.release()
	s.phase = Initializing
	s.err = nil

	if err := cfg.Validate(); err != nil {
		return s.fail(err)
	}
	if err := b.Validate(); err != nil {
		return s.fail(err)
	}

	s.cfg = cfg
	s.ctrl = integrators.NewStepController(cfg.MinDt, cfg.MaxDt)
	s.ctrl.Norm = cfg.AccelNorm
	s.bodies = b.Clone()
	s.t = 0
	s.nextOut = 0
	s.step = 0
	if s.accPool != nil {
		s.acc = s.accPool.Get(b.Len())
	} else {
		s.acc = make([]r3.Vec, b.Len())
	}
	s.result = &dynamo.Result{
		Snapshots: make([]dynamo.Snapshot, 0, cfg.ExpectedSamples()),
		Metrics:   make(map[string]float64),
		MinDt:     math.Inf(1),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	if err := s.force.Accelerations(s.bodies.Mass, s.bodies.Pos, s.acc); err != nil {
		return s.fail(err)
	}
	if h, ok := s.force.(dynamo.Hamiltonian); ok {
		s.energy0 = h.Energy(s.bodies)
	}

	s.phase = Stepping
	return nil
}

// Advance performs one iteration of the time loop. The simulator moves to
// TERMINATED when the clock reaches TMax or the iteration fails.
func (s *Simulator) Advance() error {
	if s.phase != Stepping {
		return ErrNotStepping
	}

	// At most one sample per iteration, even when dt spans several
	// output intervals.
	if s.t >= s.nextOut {
		snap := dynamo.NewSnapshot(s.t, s.bodies)
		s.result.Snapshots = append(s.result.Snapshots, snap)
		s.nextOut += s.cfg.DtOutput
		for _, m := range s.metrics {
			m.Observe(snap)
		}
	}

	if s.cfg.MaxSteps > 0 && s.step >= s.cfg.MaxSteps {
		return s.fail(fmt.Errorf("%d steps at t=%g of %g: %w", s.step, s.t, s.cfg.TMax, dynamo.ErrStepLimit))
	}

	dt, err := s.ctrl.Next(s.acc)
	if err != nil {
		return s.fail(err)
	}
	if err := s.integrator.Step(s.force, s.bodies, s.acc, dt); err != nil {
		return s.fail(err)
	}
	s.t += dt
	s.step++

	if dt < s.result.MinDt {
		s.result.MinDt = dt
	}
	if dt > s.result.MaxDt {
		s.result.MaxDt = dt
	}

	if s.cfg.ValidateState && !s.bodies.IsFinite() {
		return s.fail(dynamo.ErrInvalidState)
	}

	for _, obs := range s.observers {
		obs.OnStep(s.step, s.t, dt, s.bodies)
	}

	if s.t >= s.cfg.TMax {
		s.finish()
	}
	return nil
}

// Run executes a complete run. A failed run returns a nil result and an
// error carrying the step and time at which it failed.
func (s *Simulator) Run(ctx context.Context, b *dynamo.Bodies, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := s.Start(b, cfg); err != nil {
		return nil, err
	}

	for s.phase == Stepping {
		select {
		case <-ctx.Done():
			return nil, s.fail(fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err()))
		default:
		}

		if err := s.Advance(); err != nil {
			return nil, err
		}
	}

	return s.result, nil
}

func (s *Simulator) finish() {
	r := s.result
	r.StepsTaken = s.step
	r.FinalTime = s.t
	r.Final = s.bodies.Clone()
	if s.step == 0 {
		r.MinDt = 0
	}

	if h, ok := s.force.(dynamo.Hamiltonian); ok && s.energy0 != 0 {
		r.EnergyDrift = math.Abs(h.Energy(s.bodies)-s.energy0) / math.Abs(s.energy0)
	}
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}

	s.phase = Terminated
	s.release()
}

func (s *Simulator) fail(err error) error {
	s.phase = Terminated
	s.release()
	if s.step > 0 || s.t > 0 {
		err = &dynamo.SimulationError{Step: s.step, Time: s.t, Wrapped: err}
	}
	s.err = err
	return err
}

func (s *Simulator) release() {
	if s.accPool != nil && s.acc != nil {
		s.accPool.Put(s.acc)
	}
	s.acc = nil
}
