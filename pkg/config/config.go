// Package config holds harness runtime settings loaded from a
// YAML file and overridden from the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"digital.vasic.harness/pkg/env"
)

// Environment variable names read by ApplyEnv.
const (
	EnvTolerance   = env.Prefix + "TOLERANCE"
	EnvNoColor     = env.Prefix + "NO_COLOR"
	EnvVerbose     = env.Prefix + "VERBOSE"
	EnvMonitorAddr = env.Prefix + "MONITOR_ADDR"
)

// DefaultTolerance matches the assertion engine's default.
const DefaultTolerance = 0.00001

// Config holds runtime configuration for a harness.
type Config struct {
	// Tolerance is the default absolute tolerance for float
	// equality. Must be positive.
	Tolerance float64 `yaml:"tolerance"`

	// NoColor disables ANSI colors in progress and summary
	// output.
	NoColor bool `yaml:"no_color"`

	// Verbose enables debug diagnostics on stderr.
	Verbose bool `yaml:"verbose"`

	// MonitorAddr, when set, serves a live mirror of the
	// console output over WebSocket on this address.
	MonitorAddr string `yaml:"monitor_addr"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Tolerance: DefaultTolerance,
	}
}

// Load reads and validates a YAML config file. Fields missing
// from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to read config file %s: %w", path, err,
		)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates YAML config data. Unknown fields
// are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if !(c.Tolerance > 0) {
		return fmt.Errorf(
			"tolerance must be positive, got %v", c.Tolerance,
		)
	}
	return nil
}

// ApplyEnv overrides fields from HARNESS_* variables and
// re-validates the result. Unset or empty variables keep the
// current values.
func (c *Config) ApplyEnv(l env.Loader) error {
	if v, ok, err := l.Float(EnvTolerance); err != nil {
		return err
	} else if ok {
		c.Tolerance = v
	}

	if v, ok, err := l.Bool(EnvNoColor); err != nil {
		return err
	} else if ok {
		c.NoColor = v
	}

	if v, ok, err := l.Bool(EnvVerbose); err != nil {
		return err
	} else if ok {
		c.Verbose = v
	}

	c.MonitorAddr = l.GetWithDefault(EnvMonitorAddr, c.MonitorAddr)

	return c.Validate()
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
