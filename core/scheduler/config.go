package scheduler

// Config controls how the week is generated.
type Config struct {
	// Parallel solves the seven days concurrently.
	Parallel bool `json:"parallel" yaml:"parallel"`
}

// SetDefaults is a no-op today; sequential generation is the default.
func (c *Config) SetDefaults() {}

// Validate checks the configuration.
func (c *Config) Validate() error { return nil }
