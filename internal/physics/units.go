package physics

import (
	"fmt"
	"sort"
)

// CGS reference values.
const (
	GravCGS    = 6.674e-8       // cm³ g⁻¹ s⁻²
	MSun       = 1.989e33       // g
	MEarth     = 5.97219e27     // g
	MMoon      = 7.342e25       // g
	AU         = 1.495978707e13 // cm
	REarth     = 6371e5         // cm
	DMoon      = 384400e5       // cm
	Year       = 3.1556926e7    // s
	Parsec     = 3.085678e18    // cm
	KiloParsec = 3.085678e21    // cm
	MegaParsec = 3.085678e24    // cm
	Kilometer  = 1e5            // cm
)

// Units is a mass/length/time system expressed in CGS. It is a value type
// and never changes during a run.
type Units struct {
	Name   string
	Mass   float64
	Length float64
	Time   float64
	// GOverride replaces the derived constant when non-zero, e.g. G = 1
	// for dimensionless N-body units.
	GOverride float64
}

func (u Units) Velocity() float64 { return u.Length / u.Time }

// G is the gravitational constant in these units: G·M·T²/L³.
func (u Units) G() float64 {
	if u.GOverride != 0 {
		return u.GOverride
	}
	return GravCGS * u.Mass * u.Time * u.Time / (u.Length * u.Length * u.Length)
}

var unitSystems = map[string]Units{
	"nbody": {Name: "nbody", Mass: 1, Length: 1, Time: 1, GOverride: 1},
	"solar": {Name: "solar", Mass: MSun, Length: AU, Time: Year},
	"cgs":   {Name: "cgs", Mass: 1, Length: 1, Time: 1},
	"earth": {Name: "earth", Mass: MEarth, Length: DMoon, Time: 86400},
}

// LookupUnits returns a named unit system.
func LookupUnits(name string) (Units, error) {
	u, ok := unitSystems[name]
	if !ok {
		return Units{}, fmt.Errorf("unknown unit system: %s (available: %v)", name, UnitSystems())
	}
	return u, nil
}

func UnitSystems() []string {
	names := make([]string, 0, len(unitSystems))
	for name := range unitSystems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
