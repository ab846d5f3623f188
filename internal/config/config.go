package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/san-kum/coastsim/internal/decay"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDecayRatio      = 0.95
	DefaultMinSpeed        = 0.1
	DefaultInitialVelocity = 10.0
	DefaultFrameRate       = 60
	DefaultFrameInterval   = 2
	DefaultFrameBudget     = time.Second / 60
	DefaultBoundsMax       = 100.0
	DefaultLogLevel        = "info"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	DecayRatio      float64       `yaml:"decay_ratio" env:"COASTSIM_DECAY_RATIO"`
	MinSpeed        float64       `yaml:"min_speed" env:"COASTSIM_MIN_SPEED"`
	InitialVelocity float64       `yaml:"initial_velocity" env:"COASTSIM_INITIAL_VELOCITY"`
	FrameRate       int           `yaml:"frame_rate" env:"COASTSIM_FRAME_RATE"`
	FrameInterval   int           `yaml:"frame_interval" env:"COASTSIM_FRAME_INTERVAL"`
	FrameBudget     time.Duration `yaml:"frame_budget" env:"COASTSIM_FRAME_BUDGET"`
	Bounds          BoundsConfig  `yaml:"bounds" envPrefix:"COASTSIM_BOUNDS_"`
	Position        float64       `yaml:"position" env:"COASTSIM_POSITION"`
	LogLevel        string        `yaml:"log_level" env:"COASTSIM_LOG_LEVEL"`
}

type BoundsConfig struct {
	Min float64 `yaml:"min" env:"MIN"`
	Max float64 `yaml:"max" env:"MAX"`
}

func DefaultConfig() *Config {
	return &Config{
		DecayRatio:      DefaultDecayRatio,
		MinSpeed:        DefaultMinSpeed,
		InitialVelocity: DefaultInitialVelocity,
		FrameRate:       DefaultFrameRate,
		FrameInterval:   DefaultFrameInterval,
		FrameBudget:     DefaultFrameBudget,
		Bounds:          BoundsConfig{Min: 0, Max: DefaultBoundsMax},
		LogLevel:        DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := Merge(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overlays the fields present in the file at path onto cfg.
func Merge(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := c.Environment(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("%w: frame_rate must be positive, got %d", ErrInvalid, c.FrameRate)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("%w: frame_interval must be positive, got %d", ErrInvalid, c.FrameInterval)
	}
	if c.FrameBudget <= 0 {
		return fmt.Errorf("%w: frame_budget must be positive, got %v", ErrInvalid, c.FrameBudget)
	}
	if c.Bounds.Max < c.Bounds.Min {
		return fmt.Errorf("%w: bounds max %v below min %v", ErrInvalid, c.Bounds.Max, c.Bounds.Min)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Environment builds the decay environment described by the config.
func (c *Config) Environment() (decay.Environment, error) {
	return decay.New(c.DecayRatio, c.MinSpeed)
}

// Level parses LogLevel; an empty level means info.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}
