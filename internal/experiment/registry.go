package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/physics"
)

// InitialCondition builds the starting bodies and their display names.
type InitialCondition func(cfg *config.Config, g float64) (*dynamo.Bodies, []string, error)

type Registry struct {
	initial     map[string]InitialCondition
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		initial:     make(map[string]InitialCondition),
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.initial["binary"] = func(cfg *config.Config, g float64) (*dynamo.Bodies, []string, error) {
		b, err := physics.Binary(cfg.Mass, cfg.Mass2, cfg.Separation, g)
		return b, []string{"primary", "secondary"}, err
	}
	r.initial["figure8"] = func(cfg *config.Config, g float64) (*dynamo.Bodies, []string, error) {
		return physics.FigureEight(), indexedNames(3), nil
	}
	r.initial["solar_system"] = func(cfg *config.Config, g float64) (*dynamo.Bodies, []string, error) {
		u, err := physics.LookupUnits(cfg.Units)
		if err != nil {
			return nil, nil, err
		}
		return physics.SolarSystem(u), append([]string(nil), physics.SolarSystemNames...), nil
	}
	r.initial["ring"] = func(cfg *config.Config, g float64) (*dynamo.Bodies, []string, error) {
		b, err := physics.Ring(cfg.NumBodies, cfg.Mass, cfg.Radius, cfg.CentralMass, g)
		if err != nil {
			return nil, nil, err
		}
		names := indexedNames(b.Len())
		if cfg.CentralMass > 0 {
			names[0] = "central"
		}
		return b, names, nil
	}
	r.initial["random"] = func(cfg *config.Config, g float64) (*dynamo.Bodies, []string, error) {
		b, err := physics.RandomSphere(cfg.NumBodies, cfg.Radius, g, cfg.Seed)
		if err != nil {
			return nil, nil, err
		}
		return b, indexedNames(b.Len()), nil
	}
	r.initial["custom"] = func(cfg *config.Config, g float64) (*dynamo.Bodies, []string, error) {
		if len(cfg.Bodies) == 0 {
			return nil, nil, fmt.Errorf("custom preset without bodies: %w", dynamo.ErrParameterBounds)
		}
		b, names := cfg.ExplicitBodies()
		return b, names, nil
	}

	r.integrators["leapfrog"] = func() dynamo.Integrator { return integrators.NewLeapfrog() }
	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewSymplecticEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }

	return r
}

func (r *Registry) Register(name string, ic InitialCondition) {
	r.initial[name] = ic
}

func (r *Registry) GetInitialCondition(name string) (InitialCondition, error) {
	fn, ok := r.initial[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, r.ListInitialConditions())
	}
	return fn, nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, r.ListIntegrators())
	}
	return fn(), nil
}

func (r *Registry) ListInitialConditions() []string {
	return sortedKeys(r.initial)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func indexedNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("body%d", i)
	}
	return names
}
