package solver

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultMaxIterations is generous for instances with tens of rides.
const DefaultMaxIterations = 10000

// Config defines search parameters loaded from configuration.
type Config struct {
	MaxIterations int    `json:"max_iterations" yaml:"max_iterations"`
	Metric        string `json:"metric" yaml:"metric"`
	// Seed makes the search reproducible when non-zero. Leave it unset in
	// production so every run explores different pairings.
	Seed uint64 `json:"seed" yaml:"seed"`
	// NoBalance skips load balancing after a zero-conflict assignment is found.
	NoBalance bool `json:"no_balance" yaml:"no_balance"`
}

// SetDefaults applies fallback values for optional fields.
func (c *Config) SetDefaults() {
	if c.MaxIterations == 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.Metric == "" {
		c.Metric = MetricMinutes
	}
}

// Validate checks the configuration ranges.
func (c Config) Validate() error {
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive")
	}
	if _, err := MetricByName(c.Metric); err != nil {
		return err
	}
	return nil
}

// LoadConfig loads a Config from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var cfg Config
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	default:
		return Config{}, fmt.Errorf("unsupported config format: %s", ext)
	}
	return cfg, err
}

// DecodeConfig reads from r to decode a Config.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	return cfg, nil
}
