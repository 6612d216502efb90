package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string         `yaml:"level"`  // debug, info, warn, error
	Format   string         `yaml:"format"` // text, json
	Dir      string         `yaml:"dir"`    // log directory path
	Rotation RotationConfig `yaml:"rotation"`
	Console  OutputConfig   `yaml:"console"`
	File     OutputConfig   `yaml:"file"`
	Dedup    DedupConfig    `yaml:"dedup"`
}

// DedupConfig collapses identical warnings logged within Window into one
// line plus a repeat count.
type DedupConfig struct {
	Enabled bool          `yaml:"enabled"`
	Window  time.Duration `yaml:"window"`
}

// RotationConfig holds log rotation settings
type RotationConfig struct {
	MaxSize    int  `yaml:"max_size"`    // MB
	MaxBackups int  `yaml:"max_backups"` // number of files
	MaxAge     int  `yaml:"max_age"`     // days
	Compress   bool `yaml:"compress"`    // gzip old files
}

// OutputConfig configures one log destination. Empty Level and Format
// inherit the top-level values.
type OutputConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

var (
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats = map[string]bool{"text": true, "json": true}
)

// DefaultLoggingConfig returns default logging configuration
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  "info",
		Format: "text",
		Dir:    "logs",
		Rotation: RotationConfig{
			MaxSize:    100,
			MaxBackups: 10,
			MaxAge:     30,
			Compress:   true,
		},
		Console: OutputConfig{Enabled: true},
		File:    OutputConfig{Enabled: true},
		Dedup:   DedupConfig{Enabled: true, Window: 10 * time.Second},
	}
}

// ApplyDefaults fills in missing values with defaults.
// Compress stays as configured: an explicit false cannot be told from a zero value.
func (c *LoggingConfig) ApplyDefaults() {
	defaults := DefaultLoggingConfig()
	if c.Level == "" {
		c.Level = defaults.Level
	}
	if c.Format == "" {
		c.Format = defaults.Format
	}
	if c.Dir == "" {
		c.Dir = defaults.Dir
	}
	if c.Rotation.MaxSize == 0 {
		c.Rotation.MaxSize = defaults.Rotation.MaxSize
	}
	if c.Rotation.MaxBackups == 0 {
		c.Rotation.MaxBackups = defaults.Rotation.MaxBackups
	}
	if c.Rotation.MaxAge == 0 {
		c.Rotation.MaxAge = defaults.Rotation.MaxAge
	}
	if c.Dedup.Window == 0 {
		c.Dedup.Window = defaults.Dedup.Window
	}
	c.Console.inherit(c.Level, c.Format)
	c.File.inherit(c.Level, c.Format)
}

func (o *OutputConfig) inherit(level, format string) {
	if o.Level == "" {
		o.Level = level
	}
	if o.Format == "" {
		o.Format = format
	}
}

// ApplyEnvOverrides applies environment variable overrides.
// SHOWROOM_LOG_LEVEL sets every output's level.
func (c *LoggingConfig) ApplyEnvOverrides() {
	if v := strings.ToLower(os.Getenv("SHOWROOM_LOG_LEVEL")); v != "" {
		c.Level = v
		c.Console.Level = v
		c.File.Level = v
	}
	if v := os.Getenv("SHOWROOM_LOG_DIR"); v != "" {
		c.Dir = v
	}
}

// ResolvePaths resolves a relative Dir next to the config directory, so
// "logs" ends up beside config/ rather than inside it. Paths starting with
// ".." are taken relative to configDir itself.
func (c *LoggingConfig) ResolvePaths(configDir string) {
	if c.Dir == "" || filepath.IsAbs(c.Dir) {
		return
	}
	if strings.HasPrefix(c.Dir, "..") {
		c.Dir = filepath.Clean(filepath.Join(configDir, c.Dir))
		return
	}
	c.Dir = filepath.Clean(filepath.Join(filepath.Dir(configDir), c.Dir))
}

// Validate validates the configuration
func (c *LoggingConfig) Validate() error {
	if !validLevels[c.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Format)
	}
	if c.Dedup.Enabled && c.Dedup.Window < 0 {
		return fmt.Errorf("logging.dedup.window must be positive")
	}
	if c.File.Enabled && c.Dir == "" {
		return fmt.Errorf("log directory cannot be empty")
	}
	for name, out := range map[string]OutputConfig{"console": c.Console, "file": c.File} {
		if !out.Enabled {
			continue
		}
		if out.Level != "" && !validLevels[out.Level] {
			return fmt.Errorf("invalid %s log level: %s", name, out.Level)
		}
		if out.Format != "" && !validFormats[out.Format] {
			return fmt.Errorf("invalid %s log format: %s", name, out.Format)
		}
	}
	return nil
}
