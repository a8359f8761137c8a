package config

import (
	"fmt"

	"github.com/kilianp07/ridecheck/pkg/export"
)

// ExportConfig selects how generated schedules are written.
type ExportConfig struct {
	Format string `json:"format"`
	// Path is the output file; empty means stdout.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *ExportConfig) SetDefaults() {
	if c.Format == "" {
		c.Format = export.FormatCSV
	}
}

// Validate checks the format.
func (c ExportConfig) Validate() error {
	if c.Format != export.FormatCSV && c.Format != export.FormatJSON {
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}
