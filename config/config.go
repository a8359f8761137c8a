// Package config loads the ridecheck configuration from a YAML or JSON file
// with RIDECHECK_ environment overrides. Nested keys use a double underscore,
// e.g. RIDECHECK_SOLVER__MAX_ITERATIONS=5000.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/ridecheck/core/history"
	"github.com/kilianp07/ridecheck/core/metrics"
	"github.com/kilianp07/ridecheck/core/scheduler"
	"github.com/kilianp07/ridecheck/core/solver"
	"github.com/kilianp07/ridecheck/infra/monitoring"
	"github.com/kilianp07/ridecheck/infra/mqtt"
)

// EnvPrefix marks environment variables read as overrides.
const EnvPrefix = "RIDECHECK_"

type Config struct {
	Solver    solver.Config           `json:"solver"`
	Scheduler scheduler.Config        `json:"scheduler"`
	Logging   LoggingConfig           `json:"logging"`
	Metrics   metrics.Config          `json:"metrics"`
	History   HistoryConfig           `json:"history"`
	Export    ExportConfig            `json:"export"`
	MQTT      MQTTConfig              `json:"mqtt"`
	Sentry    monitoring.SentryConfig `json:"sentry"`
	API       APIConfig               `json:"api"`
}

// HistoryConfig enables the history store.
type HistoryConfig struct {
	Enabled        bool `json:"enabled"`
	history.Config `json:",squash"`
}

// MQTTConfig enables schedule publishing.
type MQTTConfig struct {
	Enabled     bool `json:"enabled"`
	mqtt.Config `json:",squash"`
}

// Load reads path, applies environment overrides, defaults and validation.
// An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Solver.SetDefaults()
	c.Scheduler.SetDefaults()
	c.Logging.SetDefaults()
	c.History.SetDefaults()
	c.Export.SetDefaults()
	c.API.SetDefaults()
	if c.MQTT.Enabled {
		c.MQTT.SetDefaults()
	}
}

// Validate checks every section and joins the failures.
func (c Config) Validate() error {
	var errs []error
	if err := c.Solver.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("solver: %w", err))
	}
	if err := c.Scheduler.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scheduler: %w", err))
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}
	if c.History.Enabled {
		if err := c.History.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("history: %w", err))
		}
	}
	if err := c.Export.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("export: %w", err))
	}
	if c.MQTT.Enabled {
		if err := c.MQTT.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("mqtt: %w", err))
		}
	}
	if err := c.API.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("api: %w", err))
	}
	if err := c.Sentry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sentry: %w", err))
	}
	return errors.Join(errs...)
}
