package sim

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// AccelerationPool recycles acceleration buffers between runs of systems
// with the same body count, such as the members of an ensemble.
type AccelerationPool struct {
	pool sync.Pool
	size int
}

func NewAccelerationPool(numBodies int) *AccelerationPool {
	return &AccelerationPool{
		size: numBodies,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]r3.Vec, numBodies)
			},
		},
	}
}

// Get returns a zeroed buffer of n vectors. Sizes other than the pool's
// are allocated fresh.
func (p *AccelerationPool) Get(n int) []r3.Vec {
	if n != p.size {
		return make([]r3.Vec, n)
	}
	return p.pool.Get().([]r3.Vec)
}

func (p *AccelerationPool) Put(acc []r3.Vec) {
	if len(acc) == p.size {
		for i := range acc {
			acc[i] = r3.Vec{}
		}
		p.pool.Put(acc)
	}
}
