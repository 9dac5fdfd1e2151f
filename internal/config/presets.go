package config

import "sort"

// Presets are named parameter sets for the default cloth.
var Presets = map[string]ParamsConfig{
	"calm": DefaultParams(),
	"breeze": {
		Stiffness: 250, Damping: 0.3, SpringDamping: 0.8, GravityScale: 1, WindStrength: 2.5,
	},
	"gale": {
		Stiffness: 400, Damping: 0.1, SpringDamping: 0.8, GravityScale: 1, WindStrength: 8,
	},
	"heavy": {
		Stiffness: 250, Damping: 0.3, SpringDamping: 0.8, GravityScale: 2.5, WindStrength: 0,
	},
	"stiff": {
		Stiffness: 1200, Damping: 0.3, SpringDamping: 1.5, GravityScale: 1, WindStrength: 0,
	},
	"floaty": {
		Stiffness: 120, Damping: 0.05, SpringDamping: 0.4, GravityScale: 0.2, WindStrength: 1,
	},
}

// GetPreset returns the default config with the named parameters, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Params = p
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
