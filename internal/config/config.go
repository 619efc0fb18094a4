package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"gopkg.in/yaml.v3"
)

var ErrUnknownParam = errors.New("config: unknown parameter")

const (
	DefaultTMax     = 10.0
	DefaultMinDt    = 0.01
	DefaultDtOutput = 0.1
	DefaultBodies   = 3
	DefaultRadius   = 1.0
	DefaultSep      = 1.0
)

type Config struct {
	Name       string  `yaml:"name"`
	Preset     string  `yaml:"preset"`
	Integrator string  `yaml:"integrator"`
	Units      string  `yaml:"units"`
	G          float64 `yaml:"g,omitempty"`
	Softening  float64 `yaml:"softening,omitempty"`
	TMax       float64 `yaml:"t_max"`
	MinDt      float64 `yaml:"min_dt"`
	DtOutput   float64 `yaml:"dt_output"`
	MaxDt      float64 `yaml:"max_dt,omitempty"`
	MaxSteps   int     `yaml:"max_steps,omitempty"`
	AccelNorm  string  `yaml:"accel_norm,omitempty"`
	Workers    int     `yaml:"workers,omitempty"`
	Seed       int64   `yaml:"seed,omitempty"`

	NumBodies   int     `yaml:"num_bodies,omitempty"`
	Mass        float64 `yaml:"mass,omitempty"`
	Mass2       float64 `yaml:"mass2,omitempty"`
	Separation  float64 `yaml:"separation,omitempty"`
	Radius      float64 `yaml:"radius,omitempty"`
	CentralMass float64 `yaml:"central_mass,omitempty"`

	Bodies []BodyConfig `yaml:"bodies,omitempty"`
}

// BodyConfig is one explicitly listed body, in the config's units.
type BodyConfig struct {
	Name string     `yaml:"name,omitempty"`
	Mass float64    `yaml:"mass"`
	Pos  [3]float64 `yaml:"pos,flow"`
	Vel  [3]float64 `yaml:"vel,flow"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "binary",
		Preset:     "binary",
		Integrator: "leapfrog",
		Units:      "nbody",
		TMax:       DefaultTMax,
		MinDt:      DefaultMinDt,
		DtOutput:   DefaultDtOutput,
		NumBodies:  DefaultBodies,
		Mass:       1,
		Mass2:      1,
		Separation: DefaultSep,
		Radius:     DefaultRadius,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document on top of DefaultConfig. A document with a
// bodies list and no preset selects the custom initial condition.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	var raw struct {
		Preset *string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if raw.Preset == nil && len(cfg.Bodies) > 0 {
		cfg.Preset = "custom"
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.RunConfig().Validate(); err != nil {
		return err
	}
	if _, err := physics.LookupUnits(c.Units); err != nil {
		return err
	}
	if c.G < 0 {
		return fmt.Errorf("g must not be negative, got %g: %w", c.G, dynamo.ErrParameterBounds)
	}
	if c.Softening < 0 {
		return fmt.Errorf("softening must not be negative, got %g: %w", c.Softening, dynamo.ErrParameterBounds)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d: %w", c.Workers, dynamo.ErrParameterBounds)
	}
	for i, b := range c.Bodies {
		if !(b.Mass > 0) {
			return fmt.Errorf("body %d (%s) has mass %g: %w", i, b.Name, b.Mass, dynamo.ErrNonPositiveMass)
		}
	}
	return nil
}

// RunConfig returns the driver knobs of the run.
func (c *Config) RunConfig() dynamo.Config {
	return dynamo.Config{
		TMax:          c.TMax,
		MinDt:         c.MinDt,
		DtOutput:      c.DtOutput,
		MaxDt:         c.MaxDt,
		MaxSteps:      c.MaxSteps,
		AccelNorm:     dynamo.AccelNorm(c.AccelNorm),
		ValidateState: true,
	}
}

// GravConstant returns the g override when set and otherwise the value
// implied by the unit system.
func (c *Config) GravConstant() (float64, error) {
	if c.G > 0 {
		return c.G, nil
	}
	u, err := physics.LookupUnits(c.Units)
	if err != nil {
		return 0, err
	}
	return u.G(), nil
}

// ExplicitBodies builds the body set from the bodies list.
func (c *Config) ExplicitBodies() (*dynamo.Bodies, []string) {
	b := dynamo.NewBodies(len(c.Bodies))
	names := make([]string, len(c.Bodies))
	for i, bc := range c.Bodies {
		b.Mass[i] = bc.Mass
		b.Pos[i].X, b.Pos[i].Y, b.Pos[i].Z = bc.Pos[0], bc.Pos[1], bc.Pos[2]
		b.Vel[i].X, b.Vel[i].Y, b.Vel[i].Z = bc.Vel[0], bc.Vel[1], bc.Vel[2]
		names[i] = bc.Name
		if names[i] == "" {
			names[i] = fmt.Sprintf("body%d", i)
		}
	}
	return b, names
}

func (c *Config) Clone() *Config {
	cp := *c
	cp.Bodies = append([]BodyConfig(nil), c.Bodies...)
	return &cp
}

// Set overrides one numeric field by its YAML key.
func (c *Config) Set(name string, v float64) error {
	switch name {
	case "g":
		c.G = v
	case "softening":
		c.Softening = v
	case "t_max":
		c.TMax = v
	case "min_dt":
		c.MinDt = v
	case "dt_output":
		c.DtOutput = v
	case "max_dt":
		c.MaxDt = v
	case "max_steps":
		c.MaxSteps = int(v)
	case "seed":
		c.Seed = int64(v)
	case "num_bodies":
		c.NumBodies = int(v)
	case "mass":
		c.Mass = v
	case "mass2":
		c.Mass2 = v
	case "separation":
		c.Separation = v
	case "radius":
		c.Radius = v
	case "central_mass":
		c.CentralMass = v
	default:
		return fmt.Errorf("%s: %w", name, ErrUnknownParam)
	}
	return nil
}
