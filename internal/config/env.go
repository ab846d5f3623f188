package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ApplyEnv overlays COASTSIM_* variables that are set onto cfg. Unset
// variables leave the existing values alone.
func ApplyEnv(cfg *Config) error {
	return ParseEnv(cfg)
}
