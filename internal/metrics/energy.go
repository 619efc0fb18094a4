package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// Energy reports the mean total energy over the observed samples.
type Energy struct {
	name        string
	mass        []float64
	g           float64
	softening   float64
	samples     int
	totalEnergy float64
}

func NewEnergy(mass []float64, g, softening float64) *Energy {
	return &Energy{
		name:      "energy",
		mass:      mass,
		g:         g,
		softening: softening,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s dynamo.Snapshot) {
	e.totalEnergy += physics.TotalEnergy(s.Bodies(e.mass), e.g, e.softening)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift reports the largest |E - E0| / |E0| seen, with E0 taken from
// the first sample.
type EnergyDrift struct {
	name          string
	mass          []float64
	g             float64
	softening     float64
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(mass []float64, g, softening float64) *EnergyDrift {
	return &EnergyDrift{
		name:      "energy_drift",
		mass:      mass,
		g:         g,
		softening: softening,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s dynamo.Snapshot) {
	energy := physics.TotalEnergy(s.Bodies(e.mass), e.g, e.softening)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
