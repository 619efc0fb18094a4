package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Bodies is a body set stored as three parallel arrays.
// Index i refers to the same physical body in Mass, Pos and Vel.
type Bodies struct {
	Mass []float64
	Pos  []r3.Vec
	Vel  []r3.Vec
}

func NewBodies(n int) *Bodies {
	return &Bodies{
		Mass: make([]float64, n),
		Pos:  make([]r3.Vec, n),
		Vel:  make([]r3.Vec, n),
	}
}

func (b *Bodies) Len() int { return len(b.Mass) }

// Validate checks the index correspondence and value invariants of the set.
func (b *Bodies) Validate() error {
	n := len(b.Mass)
	if n == 0 {
		return fmt.Errorf("empty body set: %w", ErrParameterBounds)
	}
	if len(b.Pos) != n || len(b.Vel) != n {
		return fmt.Errorf("%d masses, %d positions, %d velocities: %w",
			n, len(b.Pos), len(b.Vel), ErrDimensionMismatch)
	}
	for i, m := range b.Mass {
		if !(m > 0) || math.IsInf(m, 0) {
			return fmt.Errorf("body %d has mass %g: %w", i, m, ErrNonPositiveMass)
		}
	}
	if !b.IsFinite() {
		return ErrInvalidState
	}
	return nil
}

func (b *Bodies) IsFinite() bool {
	for i := range b.Pos {
		if !Finite(b.Pos[i]) || !Finite(b.Vel[i]) {
			return false
		}
	}
	return true
}

func (b *Bodies) Clone() *Bodies {
	c := &Bodies{
		Mass: make([]float64, len(b.Mass)),
		Pos:  make([]r3.Vec, len(b.Pos)),
		Vel:  make([]r3.Vec, len(b.Vel)),
	}
	copy(c.Mass, b.Mass)
	copy(c.Pos, b.Pos)
	copy(c.Vel, b.Vel)
	return c
}

// Snapshot is one recorded sample of the full system state.
type Snapshot struct {
	Time float64
	Pos  []float64 // x0, y0, z0, x1, ...
	Vel  []float64
}

func NewSnapshot(t float64, b *Bodies) Snapshot {
	return Snapshot{
		Time: t,
		Pos:  Flatten(make([]float64, 0, 3*len(b.Pos)), b.Pos),
		Vel:  Flatten(make([]float64, 0, 3*len(b.Vel)), b.Vel),
	}
}

// Row returns the output table row: time, all positions, all velocities.
func (s Snapshot) Row() []float64 {
	row := make([]float64, 0, 1+len(s.Pos)+len(s.Vel))
	row = append(row, s.Time)
	row = append(row, s.Pos...)
	return append(row, s.Vel...)
}

func (s Snapshot) NumBodies() int { return len(s.Pos) / 3 }

func (s Snapshot) Position(i int) r3.Vec {
	return r3.Vec{X: s.Pos[i*3], Y: s.Pos[i*3+1], Z: s.Pos[i*3+2]}
}

func (s Snapshot) Velocity(i int) r3.Vec {
	return r3.Vec{X: s.Vel[i*3], Y: s.Vel[i*3+1], Z: s.Vel[i*3+2]}
}

// Bodies rebuilds a body set from the snapshot and the run's masses.
func (s Snapshot) Bodies(mass []float64) *Bodies {
	b := &Bodies{
		Mass: make([]float64, len(mass)),
		Pos:  Unflatten(s.Pos),
		Vel:  Unflatten(s.Vel),
	}
	copy(b.Mass, mass)
	return b
}

// SnapshotFromRow is the inverse of Snapshot.Row.
func SnapshotFromRow(row []float64) (Snapshot, error) {
	if len(row) < 7 || (len(row)-1)%6 != 0 {
		return Snapshot{}, fmt.Errorf("row has %d columns, want 1+6N: %w", len(row), ErrDimensionMismatch)
	}
	n := (len(row) - 1) / 6
	s := Snapshot{
		Time: row[0],
		Pos:  make([]float64, 3*n),
		Vel:  make([]float64, 3*n),
	}
	copy(s.Pos, row[1:1+3*n])
	copy(s.Vel, row[1+3*n:])
	return s, nil
}

// ForceField computes accelerations for a body set. Every acc[i] is overwritten.
type ForceField interface {
	Accelerations(mass []float64, pos []r3.Vec, acc []r3.Vec) error
}

// Hamiltonian is implemented by force fields that can report total energy.
type Hamiltonian interface {
	Energy(b *Bodies) float64
}

// Integrator advances b by dt in place. acc holds the accelerations at
// b.Pos on entry and must hold the accelerations at the new b.Pos on return.
type Integrator interface {
	Name() string
	Step(f ForceField, b *Bodies, acc []r3.Vec, dt float64) error
}

type Metric interface {
	Name() string
	Observe(s Snapshot)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(step int, t, dt float64, b *Bodies)
}

// AccelNorm selects how the step controller measures max|a|.
type AccelNorm string

const (
	// NormEuclidean uses the vector magnitude of each acceleration.
	NormEuclidean AccelNorm = "euclidean"
	// NormComponent uses the largest absolute component over all bodies.
	NormComponent AccelNorm = "component"
)

// Max applies the norm to a set of accelerations. The zero value is Euclidean.
func (n AccelNorm) Max(acc []r3.Vec) float64 {
	if n == NormComponent {
		return MaxComponent(acc)
	}
	return MaxNorm(acc)
}

type Config struct {
	TMax     float64
	MinDt    float64 // dt = MinDt / max|a|
	DtOutput float64
	// MaxDt caps the adaptive step; zero leaves the step unbounded.
	MaxDt         float64
	MaxSteps      int
	AccelNorm     AccelNorm
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		TMax:          10.0,
		MinDt:         0.01,
		DtOutput:      0.1,
		ValidateState: true,
	}
}

func (c Config) Validate() error {
	if !(c.TMax > 0) || math.IsInf(c.TMax, 0) {
		return fmt.Errorf("t_max must be positive, got %g: %w", c.TMax, ErrParameterBounds)
	}
	if !(c.MinDt > 0) || math.IsInf(c.MinDt, 0) {
		return fmt.Errorf("min_dt must be positive, got %g: %w", c.MinDt, ErrParameterBounds)
	}
	if !(c.DtOutput > 0) || math.IsInf(c.DtOutput, 0) {
		return fmt.Errorf("dt_output must be positive, got %g: %w", c.DtOutput, ErrParameterBounds)
	}
	if c.MaxDt < 0 {
		return fmt.Errorf("max_dt must not be negative, got %g: %w", c.MaxDt, ErrParameterBounds)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative, got %d: %w", c.MaxSteps, ErrParameterBounds)
	}
	switch c.AccelNorm {
	case "", NormEuclidean, NormComponent:
	default:
		return fmt.Errorf("unknown acceleration norm %q: %w", c.AccelNorm, ErrParameterBounds)
	}
	return nil
}

// ExpectedSamples is the capacity hint ⌈TMax/DtOutput⌉ for the output buffer.
func (c Config) ExpectedSamples() int {
	return int(math.Ceil(c.TMax / c.DtOutput))
}

type Result struct {
	Snapshots   []Snapshot
	Metrics     map[string]float64
	StepsTaken  int
	MinDt       float64
	MaxDt       float64
	FinalTime   float64
	EnergyDrift float64
	Final       *Bodies
}

func (r *Result) Times() []float64 {
	ts := make([]float64, len(r.Snapshots))
	for i, s := range r.Snapshots {
		ts[i] = s.Time
	}
	return ts
}

// Table returns the snapshots as a samples × (1+6N) matrix, or nil when
// nothing was sampled.
func (r *Result) Table() *mat.Dense {
	if len(r.Snapshots) == 0 {
		return nil
	}
	cols := 1 + len(r.Snapshots[0].Pos) + len(r.Snapshots[0].Vel)
	data := make([]float64, 0, len(r.Snapshots)*cols)
	for _, s := range r.Snapshots {
		data = append(data, s.Row()...)
	}
	return mat.NewDense(len(r.Snapshots), cols, data)
}

// Column returns one column of the output table across all samples.
func (r *Result) Column(j int) []float64 {
	tab := r.Table()
	if tab == nil {
		return []float64{}
	}
	return mat.Col(nil, j, tab)
}
