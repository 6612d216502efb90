package config

// ServiceConfig defines the standard configuration lifecycle methods.
// Each component config implements it so LoadConfig can treat them alike.
type ServiceConfig interface {
	// ApplyDefaults fills zero values with sensible defaults
	ApplyDefaults()

	// ApplyEnvOverrides applies environment variable overrides
	ApplyEnvOverrides()

	// Validate returns an error if the configuration is invalid.
	Validate() error
}

// ApplyServiceConfigs runs ApplyDefaults, ApplyEnvOverrides and Validate on each
// config in order and stops at the first validation error.
func ApplyServiceConfigs(configs ...ServiceConfig) error {
	for _, cfg := range configs {
		cfg.ApplyDefaults()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	return nil
}
