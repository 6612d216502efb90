package catalog

import (
	"fmt"
	"time"
)

// Config holds catalog settings.
type Config struct {
	// Collection is the store collection holding vehicle documents.
	Collection string `yaml:"collection"`

	// FetchTimeout bounds a single LoadAll or SearchByNamePrefix call.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// RecordRule is a CEL expression over `doc` that a well-formed vehicle document satisfies.
	// Records failing it are logged and still returned.
	RecordRule string `yaml:"record_rule"`

	// SessionTTL is how long an untouched session survives.
	SessionTTL time.Duration `yaml:"session_ttl"`

	// SweepInterval is how often expired sessions are collected.
	SweepInterval time.Duration `yaml:"sweep_interval"`

	// MaxSessions caps concurrently open sessions. 0 means unlimited.
	MaxSessions int `yaml:"max_sessions"`
}

// DefaultRecordRule accepts documents with a string name and at least one image.
const DefaultRecordRule = `has(doc.name) && type(doc.name) == string && has(doc.images) && size(doc.images) > 0`

// DefaultConfig returns the default catalog configuration.
func DefaultConfig() Config {
	return Config{
		Collection:    "cars",
		FetchTimeout:  5 * time.Second,
		RecordRule:    DefaultRecordRule,
		SessionTTL:    30 * time.Minute,
		SweepInterval: time.Minute,
		MaxSessions:   10000,
	}
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.Collection == "" {
		c.Collection = defaults.Collection
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = defaults.FetchTimeout
	}
	if c.RecordRule == "" {
		c.RecordRule = defaults.RecordRule
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = defaults.SessionTTL
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = defaults.SweepInterval
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	if c.Collection == "" {
		return fmt.Errorf("catalog.collection is required")
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("catalog.fetch_timeout must not be negative")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("catalog.session_ttl must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("catalog.sweep_interval must be positive")
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("catalog.max_sessions must not be negative")
	}
	return nil
}
