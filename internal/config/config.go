package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/syntrixbase/showroom/internal/catalog"
	gateway "github.com/syntrixbase/showroom/internal/gateway/config"
	"github.com/syntrixbase/showroom/internal/notify"
	"github.com/syntrixbase/showroom/internal/server"
	storage "github.com/syntrixbase/showroom/internal/storage/config"
)

// Config holds the application configuration
type Config struct {
	Server  server.Config         `yaml:"server"`
	Gateway gateway.GatewayConfig `yaml:"gateway"`
	Catalog catalog.Config        `yaml:"catalog"`
	Notify  notify.Config         `yaml:"notify"`

	// Components
	Storage storage.Config `yaml:"storage"`
	Logging LoggingConfig  `yaml:"logging"`
}

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	return &Config{
		Server:  server.DefaultConfig(),
		Gateway: gateway.DefaultGatewayConfig(),
		Catalog: catalog.DefaultConfig(),
		Notify:  notify.DefaultConfig(),
		Storage: storage.DefaultConfig(),
		Logging: DefaultLoggingConfig(),
	}
}

// LoadConfig loads configuration from configDir and environment variables.
// Order: defaults -> config.yml -> config.local.yml -> ApplyDefaults -> ApplyEnvOverrides -> Validate -> ResolvePaths
func LoadConfig(configDir string) (*Config, error) {
	// Defaults first so YAML can override them, including bool fields
	cfg := Default()

	if err := loadFile(filepath.Join(configDir, "config.yml"), cfg); err != nil {
		return nil, err
	}
	if err := loadFile(filepath.Join(configDir, "config.local.yml"), cfg); err != nil {
		return nil, err
	}

	if err := ApplyServiceConfigs(
		&cfg.Server,
		&cfg.Gateway,
		&cfg.Catalog,
		&cfg.Notify,
		&cfg.Storage,
		&cfg.Logging,
	); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	// Relative paths are taken from the directory holding config/.
	cfg.Storage.ResolvePaths(filepath.Dir(configDir))
	cfg.Logging.ResolvePaths(configDir)
	return cfg, nil
}

// loadFile merges a YAML file into cfg. A missing file is not an error.
func loadFile(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", filename, err)
	}
	return nil
}
