package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, BackendMongo, cfg.Backend)
	assert.Equal(t, "showroom", cfg.Mongo.DatabaseName)
	assert.Equal(t, 10*time.Second, cfg.Mongo.ConnectTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, DefaultConfig(), cfg)

	custom := Config{Backend: BackendSQLite, SQLite: SQLiteConfig{Path: "x.db"}}
	custom.ApplyDefaults()
	assert.Equal(t, BackendSQLite, custom.Backend)
	assert.Equal(t, "x.db", custom.SQLite.Path)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SHOWROOM_STORAGE_BACKEND", "memory")
	t.Setenv("SHOWROOM_MONGO_URI", "mongodb://db:27017")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
}

func TestResolvePaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ResolvePaths("/etc/showroom")
	assert.Equal(t, filepath.Join("/etc/showroom", "data/showroom.db"), cfg.SQLite.Path)

	mem := Config{SQLite: SQLiteConfig{Path: ":memory:"}}
	mem.ResolvePaths("/etc/showroom")
	assert.Equal(t, ":memory:", mem.SQLite.Path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown backend", func(c *Config) { c.Backend = "redis" }, "unknown storage backend"},
		{"mongo without uri", func(c *Config) { c.Mongo.URI = "" }, "storage.mongo.uri"},
		{"mongo without database", func(c *Config) { c.Mongo.DatabaseName = "" }, "database_name"},
		{"sqlite without path", func(c *Config) { c.Backend = BackendSQLite; c.SQLite.Path = "" }, "storage.sqlite.path"},
		{"memory ok", func(c *Config) { c.Backend = BackendMemory }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
