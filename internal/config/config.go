// Package config holds all stackpad configuration, loaded from a YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all stackpad configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// HTTP server
	Server ServerConfig `yaml:"server"`

	// Todo persistence
	Store StoreConfig `yaml:"store"`

	// Star Wars API client
	SWAPI SWAPIConfig `yaml:"swapi"`

	// Browser self-test harness
	Browser BrowserConfig `yaml:"browser"`

	// Bootstrap sequencer
	Bootstrap BootstrapConfig `yaml:"bootstrap"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr"`

	// DevMode enables the client bundle reloader and /api/log forwarding.
	DevMode bool `yaml:"dev_mode"`

	// BundlePath is the on-disk client bundle watched in dev mode.
	// Empty means the embedded bundle is always served.
	BundlePath string `yaml:"bundle_path"`

	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// StoreConfig configures todo persistence.
type StoreConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `yaml:"backend"`

	// DatabasePath is the SQLite file path (sqlite backend only).
	DatabasePath string `yaml:"database_path"`
}

// SWAPIConfig configures the remote film API client.
type SWAPIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// BrowserConfig configures the go-rod harness.
type BrowserConfig struct {
	Headless          bool   `yaml:"headless"`
	ViewportWidth     int    `yaml:"viewport_width"`
	ViewportHeight    int    `yaml:"viewport_height"`
	NavigationTimeout string `yaml:"navigation_timeout"`

	// SkipRemote skips the star-wars step when no stub film server is
	// available and the real API should not be hit.
	SkipRemote bool `yaml:"skip_remote"`
}

// BootstrapConfig configures the install/typecheck/serve sequencer.
type BootstrapConfig struct {
	WorkingDirectory string `yaml:"working_directory"`
	StepTimeout      string `yaml:"step_timeout"`
	MaxOutputBytes   int64  `yaml:"max_output_bytes"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "stackpad",
		Version: "1.0.0",

		Server: ServerConfig{
			Addr:            ":8080",
			DevMode:         false,
			ShutdownTimeout: "5s",
		},

		Store: StoreConfig{
			Backend:      "sqlite",
			DatabasePath: "data/stackpad.db",
		},

		SWAPI: SWAPIConfig{
			BaseURL: "https://swapi.dev/api",
			Timeout: "30s",
		},

		Browser: BrowserConfig{
			Headless:          true,
			ViewportWidth:     1280,
			ViewportHeight:    800,
			NavigationTimeout: "15s",
		},

		Bootstrap: BootstrapConfig{
			WorkingDirectory: ".",
			StepTimeout:      "120s",
			MaxOutputBytes:   1 << 20,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("STACKPAD_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if backend := os.Getenv("STACKPAD_STORE"); backend != "" {
		c.Store.Backend = backend
	}
	if path := os.Getenv("STACKPAD_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if url := os.Getenv("SWAPI_BASE_URL"); url != "" {
		c.SWAPI.BaseURL = url
	}
	if level := os.Getenv("STACKPAD_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// GetShutdownTimeout returns the server shutdown timeout as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// GetSWAPITimeout returns the film API client timeout as a duration.
func (c *Config) GetSWAPITimeout() time.Duration {
	d, err := time.ParseDuration(c.SWAPI.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetNavigationTimeout returns the browser navigation timeout as a duration.
func (c *Config) GetNavigationTimeout() time.Duration {
	return c.Browser.GetNavigationTimeout()
}

// GetNavigationTimeout returns the navigation timeout as a duration.
func (b BrowserConfig) GetNavigationTimeout() time.Duration {
	d, err := time.ParseDuration(b.NavigationTimeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// GetStepTimeout returns the bootstrap step timeout as a duration.
func (c *Config) GetStepTimeout() time.Duration {
	d, err := time.ParseDuration(c.Bootstrap.StepTimeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}
