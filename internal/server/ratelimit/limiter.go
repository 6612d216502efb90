// Package ratelimit throttles requests per client key.
package ratelimit

import (
	"time"
)

// Limiter decides whether a request keyed by client should proceed.
type Limiter interface {
	// Allow reports whether a request from key may proceed and consumes a token if so.
	Allow(key string) bool

	// Reset forgets the state kept for key.
	Reset(key string)
}

// Config holds the configuration for rate limiting.
type Config struct {
	Enabled bool `yaml:"enabled"`

	// Requests is the bucket capacity: the burst allowed per Window.
	Requests int `yaml:"requests"`

	// Window is the time in which a drained bucket refills completely.
	Window time.Duration `yaml:"window"`
}

// DefaultConfig returns the default rate limiting configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		Requests: 100,
		Window:   time.Minute,
	}
}

// SessionConfig returns the stricter limit applied to opening catalog sessions.
func SessionConfig() Config {
	return Config{
		Enabled:  true,
		Requests: 20,
		Window:   time.Minute,
	}
}
