package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrDegenerate indicates two bodies at the same position with no softening.
	ErrDegenerate = errors.New("dynamo: degenerate configuration (coincident bodies)")

	// ErrStalled indicates every acceleration is zero, so no step size can be derived.
	ErrStalled = errors.New("dynamo: simulation stalled (zero acceleration)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrNonPositiveMass indicates a body with zero, negative or non-finite mass.
	ErrNonPositiveMass = errors.New("dynamo: body mass must be positive")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrStepLimit indicates the run exceeded its configured step budget.
	ErrStepLimit = errors.New("dynamo: step limit exceeded before horizon")

	// ErrDimensionMismatch indicates body arrays of different lengths.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between body arrays")
)

// SimulationError wraps an error raised inside the time loop with its position.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
