// Package config tests for YAML configuration loading.
package config

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/FrancescoXX/userstack/internal/errors"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	config, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.Addr != ":8090" {
		t.Errorf("Expected default addr :8090, got %s", config.Addr)
	}
	if config.DataDir != "./data" {
		t.Errorf("Expected default data dir ./data, got %s", config.DataDir)
	}
	if config.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %s", config.LogLevel)
	}
	if len(config.AllowedOrigins) != 0 {
		t.Errorf("Expected no allowed origins by default, got %v", config.AllowedOrigins)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "userd.yaml")
	content := `
addr: "127.0.0.1:9999"
data_dir: /tmp/userstack
allowed_origins:
  - http://localhost:8080
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.Addr != "127.0.0.1:9999" {
		t.Errorf("Unexpected addr: %s", config.Addr)
	}
	if config.DataDir != "/tmp/userstack" {
		t.Errorf("Unexpected data dir: %s", config.DataDir)
	}
	// Unset field falls back to the default
	if config.LogLevel != "info" {
		t.Errorf("Expected default log level, got %s", config.LogLevel)
	}
	if len(config.AllowedOrigins) != 1 || config.AllowedOrigins[0] != "http://localhost:8080" {
		t.Errorf("Unexpected origins: %v", config.AllowedOrigins)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !apperrors.Is(err, apperrors.ErrConfig) {
		t.Errorf("Expected CONFIG_INVALID, got %v", err)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("addr: [not, a, string"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"bad addr", func(c *Config) { c.Addr = "no-port" }, true},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(&config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
