package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/coastsim/internal/config"
	"github.com/spf13/cobra"
)

// loadConfig layers the preset, the config file, COASTSIM_* variables and
// explicitly set flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		if err := config.Merge(configFile, cfg); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("ratio") {
		cfg.DecayRatio = ratio
	}
	if flags.Changed("min-speed") {
		cfg.MinSpeed = minSpeed
	}
	if flags.Changed("v0") {
		cfg.InitialVelocity = velocity
	}
	if flags.Changed("fps") {
		cfg.FrameRate = fps
	}
	if flags.Changed("interval") {
		cfg.FrameInterval = interval
	}
	if flags.Changed("budget") {
		cfg.FrameBudget = budget
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	lvl, _ := cfg.Level()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
