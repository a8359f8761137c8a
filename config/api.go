package config

import "fmt"

// APIConfig configures the history HTTP API started by the serve command.
type APIConfig struct {
	Addr string `json:"addr"`
	// Token, when set, is required as a bearer token on every request.
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// Validate checks the listen address.
func (c APIConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	return nil
}
