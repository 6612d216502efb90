package notify

import (
	"fmt"
	"os"
)

// Sink names.
const (
	SinkLog  = "log"
	SinkNATS = "nats"
)

// Config selects where transient notifications go.
type Config struct {
	// Sinks lists the enabled sinks. The log sink is always usable.
	Sinks []string   `yaml:"sinks"`
	NATS  NATSConfig `yaml:"nats"`
}

// NATSConfig configures the JetStream sink.
type NATSConfig struct {
	URL           string `yaml:"url"`
	StreamName    string `yaml:"stream_name"`
	SubjectPrefix string `yaml:"subject_prefix"`
	RetryAttempts int    `yaml:"retry_attempts"`
	// FileStorage keeps the stream on disk instead of memory.
	FileStorage bool `yaml:"file_storage"`
}

// DefaultConfig returns the default notify configuration.
func DefaultConfig() Config {
	return Config{
		Sinks: []string{SinkLog},
		NATS: NATSConfig{
			URL:           "nats://localhost:4222",
			StreamName:    "SHOWROOM",
			SubjectPrefix: "showroom.notices",
		},
	}
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if len(c.Sinks) == 0 {
		c.Sinks = defaults.Sinks
	}
	if c.NATS.URL == "" {
		c.NATS.URL = defaults.NATS.URL
	}
	if c.NATS.StreamName == "" {
		c.NATS.StreamName = defaults.NATS.StreamName
	}
	if c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = defaults.NATS.SubjectPrefix
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if val := os.Getenv("SHOWROOM_NATS_URL"); val != "" {
		c.NATS.URL = val
	}
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	for _, s := range c.Sinks {
		switch s {
		case SinkLog, SinkNATS:
		default:
			return fmt.Errorf("notify.sinks: unknown sink '%s'", s)
		}
	}
	if c.NATS.RetryAttempts < 0 {
		return fmt.Errorf("notify.nats.retry_attempts must not be negative")
	}
	return nil
}

// Enabled reports whether the named sink is configured.
func (c *Config) Enabled(sink string) bool {
	for _, s := range c.Sinks {
		if s == sink {
			return true
		}
	}
	return false
}
