package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/choicesim/errs"
	"github.com/talgya/choicesim/sim"
)

// Config holds the run parameters of a model. Treat it as immutable once
// the model is created.
type Config struct {
	ModelID     sim.ModelID `yaml:"-"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`

	// TimeStep is the simulated-time increment per tick.
	TimeStep sim.Time `yaml:"time_step"`
	// MaxTime is the simulated-time horizon. A step that would pass it
	// completes the run instead.
	MaxTime sim.Time `yaml:"max_time"`

	// RandomSeed seeds the model RNG for reproducible runs. Nil means a
	// fresh seed per run.
	RandomSeed *int64 `yaml:"random_seed"`

	// Validation controls attribute validation on AddAgent.
	Validation bool `yaml:"validation"`
	// EventLogging controls event emission during stepping.
	EventLogging bool `yaml:"event_logging"`
}

// DefaultConfig returns a config with a fresh model ID, unit time step, a
// 1000-unit horizon, and validation plus event logging enabled.
func DefaultConfig(name string) Config {
	return Config{
		ModelID:      sim.NewModelID(),
		Name:         name,
		TimeStep:     1.0,
		MaxTime:      1000.0,
		Validation:   true,
		EventLogging: true,
	}
}

// Validate checks the config invariants.
func (c Config) Validate() error {
	if c.Name == "" {
		return errs.Validationf("config name is empty")
	}
	if c.TimeStep <= 0 {
		return errs.Validationf("time step %v must be positive", c.TimeStep)
	}
	if c.MaxTime <= 0 {
		return errs.Validationf("max time %v must be positive", c.MaxTime)
	}
	if c.TimeStep > c.MaxTime {
		return errs.Validationf("time step %v exceeds max time %v", c.TimeStep, c.MaxTime)
	}
	return nil
}

// LoadConfig reads a YAML config file. Fields absent from the file keep
// their defaults. A fresh model ID is minted on every load.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig("")
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
