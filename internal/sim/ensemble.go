package sim

import (
	"context"

	"github.com/san-kum/gravsim/internal/dynamo"
	"golang.org/x/sync/errgroup"
)

// Member is one independent run of an ensemble.
type Member struct {
	Name   string
	Sim    *Simulator
	Bodies *dynamo.Bodies
	Config dynamo.Config
}

// Outcome is the result of one member. Exactly one of Result and Err is set.
type Outcome struct {
	Name   string
	Result *dynamo.Result
	Err    error
}

// Ensemble runs members concurrently, at most Limit at a time. Each member
// keeps its own strictly sequential time loop.
type Ensemble struct {
	Limit int
}

func NewEnsemble(limit int) *Ensemble {
	return &Ensemble{Limit: limit}
}

// Run waits for every member. A member failure is reported in its Outcome
// and does not stop the others; only cancellation of ctx is returned as an
// error.
func (e *Ensemble) Run(ctx context.Context, members []Member) ([]Outcome, error) {
	outcomes := make([]Outcome, len(members))

	var g errgroup.Group
	if e.Limit > 0 {
		g.SetLimit(e.Limit)
	}
	for i, m := range members {
		g.Go(func() error {
			res, err := m.Sim.Run(ctx, m.Bodies, m.Config)
			outcomes[i] = Outcome{Name: m.Name, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}
