package history

import "fmt"

const (
	BackendJSONL  = "jsonl"
	BackendSQLite = "sqlite"
)

// Config selects the history backend.
type Config struct {
	// Backend is "jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB is the rotation size for the jsonl backend.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays is the retention of rotated files.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendJSONL
	}
	if c.Path == "" {
		if c.Backend == BackendSQLite {
			c.Path = "ridecheck-history.db"
		} else {
			c.Path = "ridecheck-history.jsonl"
		}
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 5
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 365
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendJSONL, BackendSQLite:
	default:
		return fmt.Errorf("unknown history backend %q", c.Backend)
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("history rotation settings must not be negative")
	}
	return nil
}

// Open creates the configured store.
func Open(cfg Config) (Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend == BackendSQLite {
		return NewSQLiteStore(cfg.Path)
	}
	return NewJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
}
