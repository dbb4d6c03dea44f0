// Package config loads auctionsim settings from YAML files and environment
// variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/cloudx-io/auctionsim/core"
	"github.com/cloudx-io/auctionsim/logging"
	"github.com/cloudx-io/auctionsim/montecarlo"
)

// Config contains all auctionsim settings.
type Config struct {
	// Model holds the auction model parameters.
	Model core.ModelParameters `json:"model" yaml:"model"`

	// Simulation controls the Monte Carlo estimator.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Logging configures operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SimulationConfig controls repetition, parallelism and seeding.
type SimulationConfig struct {
	// Runs is the number of Monte Carlo repetitions per estimate.
	Runs int `json:"runs" yaml:"runs"`

	// Workers bounds concurrency at each level; 0 means GOMAXPROCS.
	Workers int `json:"workers" yaml:"workers"`

	// Seed is the base seed shared by every estimate.
	Seed uint64 `json:"seed" yaml:"seed"`

	// MaxTicks is the per-run safety bound.
	MaxTicks int `json:"max_ticks" yaml:"max_ticks"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	Level string `json:"level" yaml:"level"`
}

// Default returns a Config with the reference model parameters.
func Default() *Config {
	return &Config{
		Model: core.DefaultParameters(),
		Simulation: SimulationConfig{
			Runs:     montecarlo.DefaultRuns,
			Workers:  0,
			Seed:     1,
			MaxTicks: core.DefaultMaxTicks,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path when
// path is non-empty, then environment overrides.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFromFile loads configuration from a YAML file. Unset fields keep
// their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.Model.Validate(); err != nil {
		return err
	}

	if c.Simulation.Runs < 1 {
		return fmt.Errorf("%w: got %d", montecarlo.ErrInvalidRuns, c.Simulation.Runs)
	}

	if c.Simulation.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Simulation.Workers)
	}

	if c.Simulation.MaxTicks < 1 {
		return fmt.Errorf("max_ticks must be at least 1, got %d", c.Simulation.MaxTicks)
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// EstimatorConfig converts the simulation settings for the estimator.
func (c *Config) EstimatorConfig(logger *slog.Logger) montecarlo.Config {
	return montecarlo.Config{
		Runs:     c.Simulation.Runs,
		Workers:  c.Simulation.Workers,
		Seed:     c.Simulation.Seed,
		MaxTicks: c.Simulation.MaxTicks,
		Logger:   logger,
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) error {
	if v := os.Getenv("AUCTIONSIM_RUNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AUCTIONSIM_RUNS: %w", err)
		}
		config.Simulation.Runs = n
	}

	if v := os.Getenv("AUCTIONSIM_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AUCTIONSIM_WORKERS: %w", err)
		}
		config.Simulation.Workers = n
	}

	if v := os.Getenv("AUCTIONSIM_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("AUCTIONSIM_SEED: %w", err)
		}
		config.Simulation.Seed = n
	}

	if v := os.Getenv("AUCTIONSIM_MAX_TICKS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AUCTIONSIM_MAX_TICKS: %w", err)
		}
		config.Simulation.MaxTicks = n
	}

	if v := os.Getenv("AUCTIONSIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	return nil
}
