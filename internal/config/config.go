// Package config loads planner.yaml, the planner-wide configuration shared
// by the satplan and hplan CLIs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// SolverConfig describes how to invoke the external SAT solver collaborator.
type SolverConfig struct {
	// Command is the solver binary, e.g. "minisat" or "kissat".
	Command string `yaml:"command"`
	// Args are the solver's command-line arguments; the CNF is written to
	// its stdin and the verdict read from its stdout.
	Args []string `yaml:"args"`
	// Timeout bounds a single solver invocation.
	Timeout string `yaml:"timeout"`
}

// SATConfig holds defaults for the SAT-based planner.
type SATConfig struct {
	MinHorizon int          `yaml:"min_horizon"`
	MaxHorizon int          `yaml:"max_horizon"`
	Solver     SolverConfig `yaml:"solver"`
}

// HeuristicConfig holds defaults for the weighted-A* planner.
type HeuristicConfig struct {
	Weight           float64 `yaml:"weight"`
	PartialGrounding bool    `yaml:"partial_grounding"`
}

// LoggingConfig holds the logging settings read from planner.yaml. The CLIs
// do not apply them: the categorized file logger is enabled by --verbose and
// writes under the --workspace directory.
type LoggingConfig struct {
	Debug bool   `yaml:"debug"`
	Dir   string `yaml:"dir"`
}

// Config is the top-level planner configuration.
type Config struct {
	SAT       SATConfig       `yaml:"sat"`
	Heuristic HeuristicConfig `yaml:"heuristic"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DefaultConfig returns the built-in defaults used when no config file is
// present, matching the constants named in spec.md (weight default 5).
func DefaultConfig() *Config {
	return &Config{
		SAT: SATConfig{
			MinHorizon: 1,
			MaxHorizon: 50,
			Solver: SolverConfig{
				Command: "minisat",
				Timeout: "30s",
			},
		},
		Heuristic: HeuristicConfig{
			Weight:           5.0,
			PartialGrounding: false,
		},
		Logging: LoggingConfig{
			Debug: false,
		},
	}
}

// Load reads path as YAML, falling back to defaults for a missing file and
// layering parsed values over the defaults for a present one.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// SolverTimeout parses SAT.Solver.Timeout, defaulting to 30s on a bad value.
func (c *Config) SolverTimeout() time.Duration {
	d, err := time.ParseDuration(c.SAT.Solver.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
