package server

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/syntrixbase/showroom/internal/server/ratelimit"
)

// Config holds the configuration for the HTTP server.
type Config struct {
	Host string `yaml:"host"`

	HTTPPort         int           `yaml:"http_port"`
	HTTPReadTimeout  time.Duration `yaml:"http_read_timeout"`
	HTTPWriteTimeout time.Duration `yaml:"http_write_timeout"`
	HTTPIdleTimeout  time.Duration `yaml:"http_idle_timeout"`

	// CORS
	EnableCORS       bool     `yaml:"enable_cors"`
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	CORSMaxAge       int      `yaml:"cors_max_age"`

	// RateLimit applies to every request, keyed by client IP.
	RateLimit ratelimit.Config `yaml:"rate_limit"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig returns safe defaults for development.
func DefaultConfig() Config {
	return Config{
		Host:             "localhost",
		HTTPPort:         8080,
		HTTPReadTimeout:  10 * time.Second,
		HTTPWriteTimeout: 10 * time.Second,
		HTTPIdleTimeout:  60 * time.Second,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		CORSMaxAge:       600,
		RateLimit: ratelimit.Config{
			Requests: 300,
			Window:   time.Minute,
		},
		ShutdownTimeout: 10 * time.Second,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.Host == "" {
		c.Host = defaults.Host
	}
	if c.HTTPPort == 0 {
		c.HTTPPort = defaults.HTTPPort
	}
	if c.HTTPReadTimeout == 0 {
		c.HTTPReadTimeout = defaults.HTTPReadTimeout
	}
	if c.HTTPWriteTimeout == 0 {
		c.HTTPWriteTimeout = defaults.HTTPWriteTimeout
	}
	if c.HTTPIdleTimeout == 0 {
		c.HTTPIdleTimeout = defaults.HTTPIdleTimeout
	}
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = defaults.AllowedMethods
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = defaults.AllowedHeaders
	}
	if c.CORSMaxAge == 0 {
		c.CORSMaxAge = defaults.CORSMaxAge
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = defaults.RateLimit.Requests
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = defaults.RateLimit.Window
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = defaults.ShutdownTimeout
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if val := os.Getenv("SHOWROOM_HTTP_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.HTTPPort = port
		}
	}
	if val := os.Getenv("SHOWROOM_HTTP_HOST"); val != "" {
		c.Host = val
	}
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d out of range", c.HTTPPort)
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Requests <= 0 {
			return fmt.Errorf("server.rate_limit.requests must be positive")
		}
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("server.rate_limit.window must be positive")
		}
	}
	return nil
}
