package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/integrators"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Grid.Rows != 35 || cfg.Grid.Cols != 35 {
		t.Errorf("expected 35x35 grid, got %dx%d", cfg.Grid.Rows, cfg.Grid.Cols)
	}
	if cfg.Run.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Run.PickRadius != 0.18 {
		t.Errorf("expected pick radius 0.18, got %v", cfg.Run.PickRadius)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"single row", func(c *Config) { c.Grid.Rows = 1 }},
		{"zero spacing", func(c *Config) { c.Grid.Spacing = 0 }},
		{"zero dt", func(c *Config) { c.Run.Dt = 0 }},
		{"negative frames", func(c *Config) { c.Run.Frames = -1 }},
		{"unknown backend", func(c *Config) { c.Backend = "cuda" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Grid.Cols = 0
	if err := cfg.Validate(); !errors.Is(err, dynamo.ErrInvalidGrid) {
		t.Errorf("bad grid should also match ErrInvalidGrid, got %v", err)
	}
}

func TestSaveLoadPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cloth.yaml")

	cfg := DefaultConfig()
	cfg.Grid.Rows = 20
	cfg.Params.WindStrength = 3
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Grid.Rows != 20 || loaded.Params.WindStrength != 3 {
		t.Errorf("loaded %+v", loaded)
	}

	// Missing keys keep their defaults.
	partial := filepath.Join(dir, "partial.yaml")
	if err := os.WriteFile(partial, []byte("params:\n  stiffness: 700\n"), 0644); err != nil {
		t.Fatal(err)
	}
	loaded, err = Load(partial)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Params.Stiffness != 700 || loaded.Grid.Cols != DefaultCols || loaded.Params.Damping != 0.3 {
		t.Errorf("partial load = %+v", loaded)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("gale")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Params.WindStrength != 8 {
		t.Errorf("expected wind 8, got %v", cfg.Params.WindStrength)
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) || names[0] != "breeze" {
		t.Errorf("ListPresets() = %v", names)
	}
}

func TestApplyParams(t *testing.T) {
	s, err := integrators.NewSequential(4, 4, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	cfg := GetPreset("heavy")
	cfg.Params.Stiffness = 5000
	cfg.ApplyParams(s)

	if s.GravityScale() < 2.49 || s.GravityScale() > 2.51 {
		t.Errorf("gravity scale = %v", s.GravityScale())
	}
	if s.Stiffness() != 1200 {
		t.Errorf("stiffness should clamp to 1200, got %v", s.Stiffness())
	}
}
