package config

import "sort"

var Presets = map[string]*Config{
	"default": {
		DecayRatio: DefaultDecayRatio, MinSpeed: DefaultMinSpeed, InitialVelocity: DefaultInitialVelocity,
	},
	"gentle": {
		DecayRatio: 0.98, MinSpeed: 0.05, InitialVelocity: 5,
	},
	"snappy": {
		DecayRatio: 0.5, MinSpeed: 0.25, InitialVelocity: 2,
	},
	"heavy": {
		DecayRatio: 0.2, MinSpeed: 0.5, InitialVelocity: 1.5,
	},
	// Tuned so a 2000 pt/s fling coasts for 0.5 s with a 0.5 pt/s floor.
	"scroll": {
		DecayRatio: 0.999307, MinSpeed: 0.5, InitialVelocity: 2000,
	},
}

// GetPreset returns a full config with the preset's values applied over
// the defaults, or nil for an unknown name.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.DecayRatio = p.DecayRatio
	cfg.MinSpeed = p.MinSpeed
	cfg.InitialVelocity = p.InitialVelocity
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
