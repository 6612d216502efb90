package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Backend names accepted by storage.backend.
const (
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	Backend string       `yaml:"backend"` // "mongo", "sqlite", "memory"
	Mongo   MongoConfig  `yaml:"mongo"`
	SQLite  SQLiteConfig `yaml:"sqlite"`
}

type MongoConfig struct {
	URI            string        `yaml:"uri"`
	DatabaseName   string        `yaml:"database_name"`
	DataCollection string        `yaml:"data_collection"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

type SQLiteConfig struct {
	Path      string `yaml:"path"`
	EnableWAL bool   `yaml:"enable_wal"`
}

func DefaultConfig() Config {
	return Config{
		Backend: BackendMongo,
		Mongo: MongoConfig{
			URI:            "mongodb://localhost:27017",
			DatabaseName:   "showroom",
			DataCollection: "documents",
			ConnectTimeout: 10 * time.Second,
		},
		SQLite: SQLiteConfig{
			Path:      "data/showroom.db",
			EnableWAL: true,
		},
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.Backend == "" {
		c.Backend = defaults.Backend
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = defaults.Mongo.URI
	}
	if c.Mongo.DatabaseName == "" {
		c.Mongo.DatabaseName = defaults.Mongo.DatabaseName
	}
	if c.Mongo.DataCollection == "" {
		c.Mongo.DataCollection = defaults.Mongo.DataCollection
	}
	if c.Mongo.ConnectTimeout == 0 {
		c.Mongo.ConnectTimeout = defaults.Mongo.ConnectTimeout
	}
	if c.SQLite.Path == "" {
		c.SQLite.Path = defaults.SQLite.Path
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SHOWROOM_STORAGE_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("SHOWROOM_MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("SHOWROOM_MONGO_DATABASE"); v != "" {
		c.Mongo.DatabaseName = v
	}
	if v := os.Getenv("SHOWROOM_SQLITE_PATH"); v != "" {
		c.SQLite.Path = v
	}
}

// ResolvePaths resolves relative paths using the given base directory.
func (c *Config) ResolvePaths(baseDir string) {
	if c.SQLite.Path != "" && c.SQLite.Path != ":memory:" && !filepath.IsAbs(c.SQLite.Path) {
		c.SQLite.Path = filepath.Join(baseDir, c.SQLite.Path)
	}
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("storage.mongo.uri is required")
		}
		if c.Mongo.DatabaseName == "" {
			return fmt.Errorf("storage.mongo.database_name is required")
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend '%s'", c.Backend)
	}
	return nil
}
