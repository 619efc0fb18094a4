package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// StepController derives the next step size from the largest acceleration:
// dt = MinDt / max_i |a_i|. Strong accelerations shrink the step, quiet
// systems grow it.
type StepController struct {
	MinDt float64
	// MaxDt caps dt when positive. With a cap, a force-free system advances
	// at MaxDt instead of stalling.
	MaxDt float64
	Norm  dynamo.AccelNorm
}

func NewStepController(minDt, maxDt float64) StepController {
	return StepController{MinDt: minDt, MaxDt: maxDt}
}

func (c StepController) Next(acc []r3.Vec) (float64, error) {
	aMax := c.Norm.Max(acc)
	if math.IsNaN(aMax) || math.IsInf(aMax, 0) {
		return 0, fmt.Errorf("max acceleration %g: %w", aMax, dynamo.ErrInvalidState)
	}
	if aMax == 0 {
		if c.MaxDt > 0 {
			return c.MaxDt, nil
		}
		return 0, dynamo.ErrStalled
	}

	dt := c.MinDt / aMax
	if c.MaxDt > 0 && dt > c.MaxDt {
		dt = c.MaxDt
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return 0, fmt.Errorf("step size %g from max acceleration %g: %w", dt, aMax, dynamo.ErrInvalidState)
	}
	return dt, nil
}
