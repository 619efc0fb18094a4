package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/experiment"
)

// ErrNoFeasible is returned when no grid point produced a usable run.
var ErrNoFeasible = errors.New("optim: no feasible parameters")

// Objective scores a finished run; lower is better.
type Objective func(r *dynamo.Result) float64

// MetricObjective scores a run by one of its named metrics.
func MetricObjective(name string) Objective {
	return func(r *dynamo.Result) float64 {
		v, ok := r.Metrics[name]
		if !ok {
			return math.Inf(1)
		}
		return v
	}
}

// GridSearch evaluates every combination of parameter values against a
// base config. Parameters are config keys understood by config.Set.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	registry   *experiment.Registry
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, registry: experiment.NewRegistry()}
}

// Search returns the best parameters and their score. Runs that fail to
// build or run are skipped.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, objective Objective) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("%d parameters, %d ranges: %w", len(g.paramNames), len(g.ranges), dynamo.ErrDimensionMismatch)
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		cfg := base.Clone()
		for k, v := range params {
			if err := cfg.Set(k, v); err != nil {
				return err
			}
		}
		exp, err := experiment.NewWithRegistry(g.registry, cfg)
		if err != nil {
			return nil
		}
		result, err := exp.Run(ctx)
		if err != nil {
			if errors.Is(err, dynamo.ErrContextCanceled) {
				return err
			}
			return nil
		}

		if val := objective(result); val < best {
			best = val
			bestParams = make(map[string]float64, len(params))
			for k, v := range params {
				bestParams[k] = v
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, ErrNoFeasible
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	visit func(map[string]float64) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		return visit(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, current, visit); err != nil {
			return err
		}
	}
	delete(current, paramName)
	return nil
}

// TuneMinDt returns the largest candidate step constant whose run keeps
// the relative energy drift within tolerance, and that run's result. The
// drift is the worse of the final and the largest sampled deviation.
func TuneMinDt(ctx context.Context, base *config.Config, candidates []float64, tolerance float64) (float64, *dynamo.Result, error) {
	sorted := append([]float64(nil), candidates...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	reg := experiment.NewRegistry()
	for _, minDt := range sorted {
		cfg := base.Clone()
		cfg.MinDt = minDt
		exp, err := experiment.NewWithRegistry(reg, cfg)
		if err != nil {
			return 0, nil, err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			if errors.Is(err, dynamo.ErrContextCanceled) {
				return 0, nil, err
			}
			continue
		}
		if math.Max(result.EnergyDrift, result.Metrics["energy_drift"]) <= tolerance {
			return minDt, result, nil
		}
	}
	return 0, nil, fmt.Errorf("energy drift above %g for every min_dt: %w", tolerance, ErrNoFeasible)
}
