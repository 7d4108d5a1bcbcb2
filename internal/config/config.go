package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// HistoryConfig configures the optional run history store.
type HistoryConfig struct {
	// Enabled records every completed scan in the history database.
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the SQLite history database.
	DBPath string `yaml:"db_path"`
}

// Config holds scanner configuration options. Command-line flags override
// values loaded from the configuration file.
type Config struct {
	// Extensions replaces the default rule suffixes when non-empty.
	Extensions []string `yaml:"extensions"`

	// ExcludeDirs lists directory names to skip during traversal.
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// MaxDepth limits recursion depth (0 = unlimited, 1 = root only).
	MaxDepth int `yaml:"max_depth"`

	// FollowSymlinks descends into symlinked directories.
	FollowSymlinks bool `yaml:"follow_symlinks"`

	// Sorted yields entries within each directory in lexical order.
	Sorted bool `yaml:"sorted"`

	// Format selects the output format: "text" or "json".
	Format string `yaml:"format"`

	// LogLevel sets diagnostic verbosity (debug, info, warn, error).
	// The default "error" keeps stderr quiet; -v forces "debug".
	LogLevel string `yaml:"log_level"`

	// History configures the optional run history store.
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with the documented default values.
func DefaultConfig() *Config {
	return &Config{
		Extensions:     nil, // nil means the built-in rule set
		ExcludeDirs:    nil,
		MaxDepth:       0,
		FollowSymlinks: false,
		Sorted:         false,
		Format:         "text",
		LogLevel:       "error",
		History: HistoryConfig{
			Enabled: false,
			DBPath:  ".vscan/history.db",
		},
	}
}

// LoadConfig loads configuration from the given file path. A missing file is
// not an error: defaults are returned. A malformed file is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values that have a closed set of valid inputs.
func (c *Config) Validate() error {
	switch c.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid format %q: must be \"text\" or \"json\"", c.Format)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("invalid max_depth %d: must be >= 0", c.MaxDepth)
	}
	return nil
}
