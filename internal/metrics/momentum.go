package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// MomentumDrift reports the largest change of total linear momentum,
// relative to Σ m|v| of the first sample. An exact pairwise force keeps it
// at rounding level.
type MomentumDrift struct {
	name     string
	mass     []float64
	initial  r3.Vec
	scale    float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift(mass []float64) *MomentumDrift {
	return &MomentumDrift{
		name: "momentum_drift",
		mass: mass,
	}
}

func (m *MomentumDrift) Name() string {
	return m.name
}

func (m *MomentumDrift) Observe(s dynamo.Snapshot) {
	b := s.Bodies(m.mass)
	p := physics.Momentum(b)
	if m.samples == 0 {
		m.initial = p
		m.scale = 0
		for i, v := range b.Vel {
			m.scale += b.Mass[i] * r3.Norm(v)
		}
		if m.scale == 0 {
			m.scale = 1
		}
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, r3.Norm(r3.Sub(p, m.initial))/m.scale)
}

func (m *MomentumDrift) Value() float64 {
	return m.maxDrift
}

func (m *MomentumDrift) Reset() {
	m.initial = r3.Vec{}
	m.scale = 0
	m.maxDrift = 0
	m.samples = 0
}

// AngularMomentumDrift reports the largest |L - L0| / |L0|. With L0 = 0 the
// absolute change is reported.
type AngularMomentumDrift struct {
	name     string
	mass     []float64
	initial  r3.Vec
	maxDrift float64
	samples  int
}

func NewAngularMomentumDrift(mass []float64) *AngularMomentumDrift {
	return &AngularMomentumDrift{
		name: "angular_momentum_drift",
		mass: mass,
	}
}

func (a *AngularMomentumDrift) Name() string {
	return a.name
}

func (a *AngularMomentumDrift) Observe(s dynamo.Snapshot) {
	l := physics.AngularMomentum(s.Bodies(a.mass))
	if a.samples == 0 {
		a.initial = l
	}
	a.samples++

	drift := r3.Norm(r3.Sub(l, a.initial))
	if n := r3.Norm(a.initial); n != 0 {
		drift /= n
	}
	a.maxDrift = math.Max(a.maxDrift, drift)
}

func (a *AngularMomentumDrift) Value() float64 {
	return a.maxDrift
}

func (a *AngularMomentumDrift) Reset() {
	a.initial = r3.Vec{}
	a.maxDrift = 0
	a.samples = 0
}
