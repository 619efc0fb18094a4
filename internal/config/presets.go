package config

import (
	"sort"

	"github.com/san-kum/gravsim/internal/physics"
)

var Presets = map[string]*Config{
	"binary": {
		Name: "binary", Preset: "binary", Integrator: "leapfrog", Units: "nbody",
		TMax: 10 * physics.BinaryPeriod(1, 1, 1, 1), MinDt: 0.01, DtOutput: 0.1 * physics.BinaryPeriod(1, 1, 1, 1),
		Mass: 1, Mass2: 1, Separation: 1,
	},
	"eccentric": {
		Name: "eccentric", Preset: "custom", Integrator: "leapfrog", Units: "nbody",
		TMax: 20, MinDt: 1e-3, DtOutput: 0.05,
		Bodies: []BodyConfig{
			{Name: "primary", Mass: 1, Pos: [3]float64{-0.5, 0, 0}, Vel: [3]float64{0, -0.3, 0}},
			{Name: "secondary", Mass: 1, Pos: [3]float64{0.5, 0, 0}, Vel: [3]float64{0, 0.3, 0}},
		},
	},
	"figure8": {
		Name: "figure8", Preset: "figure8", Integrator: "leapfrog", Units: "nbody",
		TMax: 3 * physics.FigureEightPeriod, MinDt: 1e-3, DtOutput: 0.02,
	},
	"solar_system": {
		Name: "solar_system", Preset: "solar_system", Integrator: "leapfrog", Units: "solar",
		TMax: 100, MinDt: 0.1, DtOutput: 0.1,
	},
	"ring": {
		Name: "ring", Preset: "ring", Integrator: "leapfrog", Units: "nbody",
		TMax: 20, MinDt: 0.01, DtOutput: 0.1,
		NumBodies: 8, Mass: 1e-3, Radius: 1, CentralMass: 1,
	},
	"random": {
		Name: "random", Preset: "random", Integrator: "leapfrog", Units: "nbody",
		TMax: 5, MinDt: 1e-3, DtOutput: 0.05, Softening: 0.05, Seed: 1,
		NumBodies: 64, Radius: 1,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	if p, ok := Presets[name]; ok {
		return p.Clone()
	}
	return nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
