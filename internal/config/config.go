package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/clothlab/internal/compute"
	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/physics"
)

const (
	DefaultRows       = 35
	DefaultCols       = 35
	DefaultSpacing    = 0.05
	DefaultDt         = 1.0 / 60
	DefaultFrames     = 600
	DefaultPickRadius = 0.18
	DefaultTolerance  = 1e-2
	DefaultReport     = 60
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Grid    GridConfig    `yaml:"grid"`
	Params  ParamsConfig  `yaml:"params"`
	Backend string        `yaml:"backend"`
	Run     RunConfig     `yaml:"run"`
	Compare CompareConfig `yaml:"compare"`
}

type GridConfig struct {
	Rows    int     `yaml:"rows"`
	Cols    int     `yaml:"cols"`
	Spacing float32 `yaml:"spacing"`
}

type ParamsConfig struct {
	Stiffness     float32 `yaml:"stiffness"`
	Damping       float32 `yaml:"damping"`
	SpringDamping float32 `yaml:"spring_damping"`
	GravityScale  float32 `yaml:"gravity_scale"`
	WindStrength  float32 `yaml:"wind_strength"`
}

type RunConfig struct {
	Frames     int     `yaml:"frames"`
	Dt         float32 `yaml:"dt"`
	PickRadius float32 `yaml:"pick_radius"`
}

type CompareConfig struct {
	Tolerance   float64 `yaml:"tolerance"`
	ReportEvery int     `yaml:"report_every"`
}

func DefaultParams() ParamsConfig {
	return ParamsConfig{
		Stiffness:     physics.DefaultStiffness,
		Damping:       physics.DefaultDamping,
		SpringDamping: physics.DefaultSpringDamping,
		GravityScale:  physics.DefaultGravityScale,
		WindStrength:  physics.DefaultWindStrength,
	}
}

// Set writes one parameter by name. Unknown names are ignored.
func (p *ParamsConfig) Set(name string, v float32) {
	switch name {
	case dynamo.ParamStiffness:
		p.Stiffness = v
	case dynamo.ParamDamping:
		p.Damping = v
	case dynamo.ParamSpringDamping:
		p.SpringDamping = v
	case dynamo.ParamGravityScale:
		p.GravityScale = v
	case dynamo.ParamWindStrength:
		p.WindStrength = v
	}
}

func DefaultConfig() *Config {
	return &Config{
		Grid:    GridConfig{Rows: DefaultRows, Cols: DefaultCols, Spacing: DefaultSpacing},
		Params:  DefaultParams(),
		Backend: "auto",
		Run:     RunConfig{Frames: DefaultFrames, Dt: DefaultDt, PickRadius: DefaultPickRadius},
		Compare: CompareConfig{Tolerance: DefaultTolerance, ReportEvery: DefaultReport},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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

// Validate rejects settings no solver could be built or run with. Parameter
// values are not range checked here; the solvers clamp them.
func (c *Config) Validate() error {
	if c.Grid.Rows < 2 || c.Grid.Cols < 2 {
		return fmt.Errorf("%w: grid %dx%d: %w", ErrInvalidConfig, c.Grid.Rows, c.Grid.Cols, dynamo.ErrInvalidGrid)
	}
	if !(c.Grid.Spacing > 0) {
		return fmt.Errorf("%w: spacing %v must be positive", ErrInvalidConfig, c.Grid.Spacing)
	}
	if c.Run.Frames < 0 {
		return fmt.Errorf("%w: frames %d", ErrInvalidConfig, c.Run.Frames)
	}
	if !(c.Run.Dt > 0) {
		return fmt.Errorf("%w: dt %v must be positive", ErrInvalidConfig, c.Run.Dt)
	}
	if _, err := compute.Lookup(c.Backend); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ApplyParams writes the configured parameters to every solver.
func (c *Config) ApplyParams(solvers ...dynamo.Solver) {
	for _, s := range solvers {
		s.SetStiffness(c.Params.Stiffness)
		s.SetDamping(c.Params.Damping)
		s.SetSpringDamping(c.Params.SpringDamping)
		s.SetGravityScale(c.Params.GravityScale)
		s.SetWindStrength(c.Params.WindStrength)
	}
}
