// Package config provides server configuration loading for userstack.
package config

import (
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/FrancescoXX/userstack/internal/errors"
)

// Config holds the userd server configuration.
type Config struct {
	// Addr is the listen address, host:port.
	Addr string `yaml:"addr"`

	// DataDir is the directory holding the SQLite database file.
	DataDir string `yaml:"data_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// AllowedOrigins lists CORS origins. Empty means allow all,
	// matching the original permissive policy.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:     ":8090",
		DataDir:  "./data",
		LogLevel: "info",
	}
}

// Load reads a configuration from a YAML file and applies defaults.
// An empty path returns Default().
func Load(path string) (Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config, apperrors.Wrap(apperrors.ErrConfig, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, apperrors.Wrap(apperrors.ErrConfig, "failed to parse config file", err)
	}

	// Re-apply defaults for fields the file left empty
	if config.Addr == "" {
		config.Addr = ":8090"
	}
	if config.DataDir == "" {
		config.DataDir = "./data"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	return config, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return apperrors.Wrap(apperrors.ErrConfig, fmt.Sprintf("invalid listen address %q", c.Addr), err)
	}
	if c.DataDir == "" {
		return apperrors.New(apperrors.ErrConfig, "data_dir is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return apperrors.New(apperrors.ErrConfig, fmt.Sprintf("unknown log level %q", c.LogLevel))
	}
	return nil
}
