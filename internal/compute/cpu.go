package compute

import (
	"fmt"
	"math"
	"runtime"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// parallelThreshold is the body count below which goroutine overhead dominates.
const parallelThreshold = 16

type CPUBackend struct {
	workers int
}

// NewCPUBackend returns a backend using up to workers goroutines per
// evaluation. workers <= 0 selects runtime.NumCPU().
func NewCPUBackend(workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPUBackend{workers: workers}
}

func (c *CPUBackend) Name() string { return fmt.Sprintf("cpu (%d workers)", c.workers) }

func (c *CPUBackend) Workers() int { return c.workers }

func (c *CPUBackend) Accelerations(mass []float64, pos []r3.Vec, acc []r3.Vec, g, softening float64) error {
	n := len(mass)
	if len(pos) != n || len(acc) != n {
		return fmt.Errorf("%d masses, %d positions, %d accelerations: %w",
			n, len(pos), len(acc), dynamo.ErrDimensionMismatch)
	}

	eps2 := softening * softening
	body := func(start, end int) error {
		return accelerateRange(mass, pos, acc, g, eps2, start, end)
	}

	if n < parallelThreshold || c.workers <= 1 {
		return body(0, n)
	}
	return dynamo.ParallelFor(n, c.workers, parallelThreshold/2, body)
}

// accelerateRange writes acc[i] for i in [start, end). The sum over j runs
// in index order into a private accumulator, so the result for a body does
// not depend on how the outer range was split.
func accelerateRange(mass []float64, pos []r3.Vec, acc []r3.Vec, g, eps2 float64, start, end int) error {
	for i := start; i < end; i++ {
		var a r3.Vec
		pi := pos[i]

		for j := range mass {
			if i == j {
				continue
			}

			d := r3.Sub(pi, pos[j])
			r2 := r3.Norm2(d) + eps2
			if r2 == 0 {
				return fmt.Errorf("bodies %d and %d at %v: %w", i, j, pi, dynamo.ErrDegenerate)
			}

			r := math.Sqrt(r2)
			a = r3.Add(a, r3.Scale(-g*mass[j]/(r2*r), d))
		}

		acc[i] = a
	}
	return nil
}
