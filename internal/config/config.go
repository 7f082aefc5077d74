// Package config provides unified configuration loading for dda.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dda-sim/dda/internal/constants"
)

// Recorder backends.
const (
	RecorderMemory = "memory"
	RecorderSQLite = "sqlite"
)

// DDAConfig contains all dda configuration settings.
type DDAConfig struct {
	// Simulation contains the model parameters.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Recorder selects where per-tick observations go.
	Recorder RecorderConfig `json:"recorder" yaml:"recorder"`

	// Logging contains settings for operational logging and event traces.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SimulationConfig holds the parameters of a single run.
type SimulationConfig struct {
	// Agents is the population size.
	Agents int `json:"agents" yaml:"agents"`

	// Iterations is the number of ticks to run.
	Iterations int `json:"iterations" yaml:"iterations"`

	// BleedoutRate is the midpoint exit probability in [0, 1].
	// Unset draws one from N(0.5, 0.1) per run.
	BleedoutRate *float64 `json:"bleedout_rate,omitempty" yaml:"bleedout_rate,omitempty"`

	// Seed fixes every random draw. Unset picks a fresh seed per run.
	Seed *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	// OriginPolicy is "alternate" (default) or "random".
	OriginPolicy constants.OriginPolicy `json:"origin_policy" yaml:"origin_policy"`
}

// RecorderConfig configures the observation recorder.
type RecorderConfig struct {
	// Backend is "memory" (default) or "sqlite". The CLI keeps no per-tick
	// history for "memory"; "sqlite" stores every observation.
	Backend string `json:"backend" yaml:"backend"`

	// DSN is the SQLite database path. Empty keeps the database in memory.
	// Supports ${VAR} syntax for env vars.
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

// LoggingConfig configures dda's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "warn", "info" (default), "debug", or "trace".
	Level string `json:"level" yaml:"level"`

	// Format is "text" (default) or "json".
	Format string `json:"format" yaml:"format"`

	// EventsPath, when set, appends a JSONL trace of simulation events.
	// Supports ${VAR} syntax for env vars.
	EventsPath string `json:"events_path,omitempty" yaml:"events_path,omitempty"`
}

// Default returns a DDAConfig with sensible defaults.
func Default() *DDAConfig {
	return &DDAConfig{
		Simulation: SimulationConfig{
			Agents:       constants.DefaultAgents,
			Iterations:   constants.DefaultIterations,
			OriginPolicy: constants.OriginAlternate,
		},
		Recorder: RecorderConfig{
			Backend: RecorderMemory,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns ~/.dda/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(homeDir, ".dda", "config.yaml"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.dda/config.yaml -> environment variables
func Load() (*DDAConfig, error) {
	config := Default()

	if configPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadPath loads configuration from an explicit file, then applies
// environment variable overrides. An empty path behaves like Load.
func LoadPath(path string) (*DDAConfig, error) {
	if path == "" {
		return Load()
	}
	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*DDAConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Recorder.DSN = expandEnvVars(config.Recorder.DSN)
	config.Logging.EventsPath = expandEnvVars(config.Logging.EventsPath)

	return config, nil
}

// WriteFile saves the configuration as YAML, creating parent directories.
func (c *DDAConfig) WriteFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *DDAConfig) Validate() error {
	if c.Simulation.Agents <= 0 {
		return fmt.Errorf("agents must be positive, got %d", c.Simulation.Agents)
	}

	if c.Simulation.Iterations < 0 {
		return fmt.Errorf("iterations must be non-negative, got %d", c.Simulation.Iterations)
	}

	if r := c.Simulation.BleedoutRate; r != nil && !(*r >= 0 && *r <= 1) {
		return fmt.Errorf("bleedout_rate must be between 0 and 1, got %v", *r)
	}

	if c.Simulation.OriginPolicy != "" && !c.Simulation.OriginPolicy.Valid() {
		return fmt.Errorf("invalid origin_policy: %s (valid: alternate, random)", c.Simulation.OriginPolicy)
	}

	switch c.Recorder.Backend {
	case "", RecorderMemory, RecorderSQLite:
	default:
		return fmt.Errorf("invalid recorder backend: %s (valid: memory, sqlite)", c.Recorder.Backend)
	}

	validLevels := map[string]bool{"warn": true, "info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: warn, info, debug, trace, or empty for default)", c.Logging.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if c.Logging.Format != "" && !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", c.Logging.Format)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *DDAConfig) error {
	if v := os.Getenv("DDA_AGENTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing DDA_AGENTS: %w", err)
		}
		config.Simulation.Agents = n
	}

	if v := os.Getenv("DDA_ITERATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing DDA_ITERATIONS: %w", err)
		}
		config.Simulation.Iterations = n
	}

	if v := os.Getenv("DDA_BLEEDOUT_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parsing DDA_BLEEDOUT_RATE: %w", err)
		}
		config.Simulation.BleedoutRate = &f
	}

	if v := os.Getenv("DDA_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing DDA_SEED: %w", err)
		}
		config.Simulation.Seed = &n
	}

	if v := os.Getenv("DDA_ORIGIN_POLICY"); v != "" {
		config.Simulation.OriginPolicy = constants.OriginPolicy(strings.ToLower(v))
	}

	if v := os.Getenv("DDA_RECORDER"); v != "" {
		config.Recorder.Backend = strings.ToLower(v)
	}

	if v := os.Getenv("DDA_RECORDER_DSN"); v != "" {
		config.Recorder.DSN = v
	}

	if v := os.Getenv("DDA_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("DDA_LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}

	return nil
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
