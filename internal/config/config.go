// Package config loads the YAML configuration for the circuit server and CLI.
//
// Config file locations (priority order):
//  1. $CIRCUIT_CONFIG
//  2. ./circuit.yaml
//  3. ~/.config/toy-circuit/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/edp1096/toy-circuit/internal/consts"
)

const EnvConfigPath = "CIRCUIT_CONFIG"

type Config struct {
	Circuit CircuitConfig `yaml:"circuit"`
	Limits  LimitsConfig  `yaml:"limits"`
	Server  ServerConfig  `yaml:"server"`
	Watch   WatchConfig   `yaml:"watch"`
}

// CircuitConfig sets what a reset circuit looks like.
type CircuitConfig struct {
	Name       string  `yaml:"name"`
	Voltage    float64 `yaml:"voltage"`
	Resistance float64 `yaml:"resistance"`
}

// LimitsConfig bounds user input accepted by the session layer.
type LimitsConfig struct {
	MaxResistance float64 `yaml:"max_resistance"`
	MaxVoltage    float64 `yaml:"max_voltage"`
}

type ServerConfig struct {
	Addr          string `yaml:"addr"`
	AllowedOrigin string `yaml:"allowed_origin"`
}

type WatchConfig struct {
	Debounce Duration `yaml:"debounce"`
}

// Duration wraps time.Duration for YAML marshaling as "500ms".
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the built-in settings
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Circuit.Name == "" {
		c.Circuit.Name = "DC circuit"
	}
	if c.Circuit.Voltage == 0 {
		c.Circuit.Voltage = consts.DefaultVoltage
	}
	if c.Circuit.Resistance == 0 {
		c.Circuit.Resistance = consts.DefaultResistance
	}
	if c.Limits.MaxResistance == 0 {
		c.Limits.MaxResistance = consts.MaxResistance
	}
	if c.Limits.MaxVoltage == 0 {
		c.Limits.MaxVoltage = consts.MaxVoltage
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.AllowedOrigin == "" {
		c.Server.AllowedOrigin = "*"
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = Duration(500 * time.Millisecond)
	}
}

// Validate rejects settings the engine cannot run with
func (c *Config) Validate() error {
	if c.Circuit.Resistance <= 0 {
		return fmt.Errorf("circuit.resistance must be positive, got %g", c.Circuit.Resistance)
	}
	if c.Circuit.Voltage < 0 {
		return fmt.Errorf("circuit.voltage must not be negative, got %g", c.Circuit.Voltage)
	}
	if c.Limits.MaxResistance < c.Circuit.Resistance {
		return fmt.Errorf("limits.max_resistance %g is below circuit.resistance %g", c.Limits.MaxResistance, c.Circuit.Resistance)
	}
	if c.Limits.MaxVoltage < c.Circuit.Voltage {
		return fmt.Errorf("limits.max_voltage %g is below circuit.voltage %g", c.Limits.MaxVoltage, c.Circuit.Voltage)
	}
	return nil
}

// FindConfigPath returns the first existing config file, or ""
func FindConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		if fileExists(p) {
			return p
		}
	}

	candidates := []string{"./circuit.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "toy-circuit", "config.yaml"))
	}

	for _, p := range candidates {
		if fileExists(p) {
			return p
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
