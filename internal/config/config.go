// Package config provides unified configuration loading for planetzero.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pzlab/planetzero/internal/ranking"
	"gopkg.in/yaml.v3"
)

// Config contains all planetzero application settings. Scenario and sweep
// plan files are loaded separately (see LoadScenario and LoadPlan); this
// covers the ambient concerns around the engine.
type Config struct {
	// Logging contains settings for operational and trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Store contains settings for the SQLite result store.
	Store StoreConfig `json:"store" yaml:"store"`

	// Selection contains the default selector criteria.
	Selection SelectionConfig `json:"selection" yaml:"selection"`

	// Workers bounds the sweep worker pool. Zero means one per CPU.
	Workers int `json:"workers" yaml:"workers"`
}

// LoggingConfig configures planetzero's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables step-record tracing to .planetzero/trace.jsonl.
	// "trace" additionally logs every step record to stderr.
	Level string `json:"level" yaml:"level"`
}

// StoreConfig configures the SQLite result store.
type StoreConfig struct {
	// Path is the SQLite database path. Empty means
	// .planetzero/results.db under the working directory.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// SelectionConfig configures the default selector criteria.
type SelectionConfig struct {
	// MinPositiveUtilityShare is the viability gate threshold in [0,1].
	MinPositiveUtilityShare float64 `json:"min_positive_utility_share" yaml:"min_positive_utility_share"`
}

// Criteria converts the selection settings to ranking criteria.
func (c SelectionConfig) Criteria() ranking.Criteria {
	return ranking.Criteria{MinPositiveUtilityShare: c.MinPositiveUtilityShare}
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Store:   StoreConfig{Path: ""},
		Selection: SelectionConfig{
			MinPositiveUtilityShare: ranking.DefaultMinPositiveUtilityShare,
		},
		Workers: 0,
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.planetzero/config.yaml -> environment variables
func Load() (*Config, error) {
	config := Default()

	// Try to load from default config file
	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".planetzero", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
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

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Selection.MinPositiveUtilityShare < 0 || c.Selection.MinPositiveUtilityShare > 1 {
		return fmt.Errorf("min_positive_utility_share must be between 0 and 1, got %f", c.Selection.MinPositiveUtilityShare)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("PLANETZERO_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("PLANETZERO_STORE_PATH"); v != "" {
		config.Store.Path = v
	}

	if v := os.Getenv("PLANETZERO_MIN_POSITIVE_UTILITY_SHARE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Selection.MinPositiveUtilityShare = f
		}
	}

	if v := os.Getenv("PLANETZERO_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Workers = n
		}
	}
}
