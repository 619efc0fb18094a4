package compute

import "gonum.org/v1/gonum/spatial/r3"

type Backend interface {
	Name() string
	Accelerations(mass []float64, pos []r3.Vec, acc []r3.Vec, g, softening float64) error
}

// Default returns the backend used when none is configured.
func Default() Backend {
	return NewCPUBackend(0)
}
