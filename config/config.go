// Package config provides YAML configuration parsing for the kaco monitor.
//
// This package enables running the monitor as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	port: 8080
//	history_db: /var/lib/kaco/history.db
//
//	inverters:
//	  - name: Roof
//	    address: 192.168.1.40
//	    interval: 20s
//	    energy_interval: 2m
//	  - name: Garage
//	    address: ${GARAGE_ADDR:-192.168.1.41}
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// minInterval is the minimum allowed poll interval for production configs.
// This prevents accidental DoS of the inverter's tiny embedded web server.
const minInterval = 1 * time.Second

// Config is the root configuration structure for the kaco monitor.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// HistoryDB is the path to the SQLite file used by the historical
	// import command. Optional; only the import command needs it.
	HistoryDB string `yaml:"history_db"`

	// Inverters defines the monitored devices.
	Inverters []InverterConfig `yaml:"inverters"`
}

// InverterConfig defines a single monitored inverter.
type InverterConfig struct {
	// Name is the stable identifier used as the snapshot key.
	Name string `yaml:"name"`

	// Address is the host or IP of the inverter's embedded web server.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}.
	// May be empty for a device whose location is not yet known; such an
	// inverter publishes a defaulted snapshot and never touches the network.
	Address string `yaml:"address"`

	// Interval is the base poll interval while the device answers.
	// Accepts duration strings like "20s", "1m". Must be between 1s and 1h.
	// Defaults to 20s.
	Interval Duration `yaml:"interval"`

	// EnergyInterval is the minimum time between daily-energy fetches.
	// Defaults to 2m.
	EnergyInterval Duration `yaml:"energy_interval"`

	// RealtimeTimeout bounds one realtime fetch. Defaults to 5s.
	RealtimeTimeout Duration `yaml:"realtime_timeout"`

	// DailyTimeout bounds one daily-energy fetch. Defaults to 10s.
	DailyTimeout Duration `yaml:"daily_timeout"`

	// Retries is the number of extra realtime attempts per poll cycle.
	// Defaults to 2. Use a pointer so an explicit 0 survives parsing.
	Retries *int `yaml:"retries"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		// submatches[2] is ":-..." (non-empty if default syntax was used)
		// submatches[3] is the actual default value (may be empty for ${VAR:-})
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in inverter addresses and the history
// database path. The port defaults to 8080.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = 8080
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.HistoryDB != "" {
		expanded, err := expandEnvVars(c.HistoryDB)
		if err != nil {
			return fmt.Errorf("history_db: %w", err)
		}
		c.HistoryDB = expanded
	}

	seen := make(map[string]struct{}, len(c.Inverters))
	for i := range c.Inverters {
		inv := &c.Inverters[i]

		if strings.TrimSpace(inv.Name) == "" {
			return fmt.Errorf("inverters[%d]: name is required", i)
		}
		if _, exists := seen[inv.Name]; exists {
			return fmt.Errorf("inverters[%d]: duplicate name %q", i, inv.Name)
		}
		seen[inv.Name] = struct{}{}

		// an empty address is allowed; the device is carried as a
		// defaulted placeholder until it gets one
		if inv.Address != "" {
			expanded, err := expandEnvVars(inv.Address)
			if err != nil {
				return fmt.Errorf("inverters[%d] (%s): address: %w", i, inv.Name, err)
			}
			inv.Address = strings.TrimSpace(expanded)
		}

		if inv.Interval != 0 {
			if inv.Interval.Duration() < minInterval {
				return fmt.Errorf("inverters[%d] (%s): interval must be at least %s, got %s",
					i, inv.Name, minInterval, inv.Interval.Duration())
			}
			if inv.Interval.Duration() > time.Hour {
				return fmt.Errorf("inverters[%d] (%s): interval must not exceed 1h, got %s",
					i, inv.Name, inv.Interval.Duration())
			}
		}

		if inv.EnergyInterval != 0 && inv.EnergyInterval.Duration() < time.Second {
			return fmt.Errorf("inverters[%d] (%s): energy_interval must be at least 1s, got %s",
				i, inv.Name, inv.EnergyInterval.Duration())
		}

		if inv.RealtimeTimeout != 0 && inv.RealtimeTimeout.Duration() <= 0 {
			return fmt.Errorf("inverters[%d] (%s): realtime_timeout must be positive", i, inv.Name)
		}
		if inv.DailyTimeout != 0 && inv.DailyTimeout.Duration() <= 0 {
			return fmt.Errorf("inverters[%d] (%s): daily_timeout must be positive", i, inv.Name)
		}

		if inv.Retries != nil {
			if *inv.Retries < 0 {
				return fmt.Errorf("inverters[%d] (%s): retries cannot be negative", i, inv.Name)
			}
			if *inv.Retries > 10 {
				return fmt.Errorf("inverters[%d] (%s): retries must not exceed 10", i, inv.Name)
			}
		}
	}

	if len(c.Inverters) == 0 {
		return errors.New("at least one inverter must be defined")
	}

	return nil
}
