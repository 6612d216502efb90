package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/syntrixbase/showroom/internal/storage/config"
	"github.com/syntrixbase/showroom/internal/storage/memory"
	"github.com/syntrixbase/showroom/internal/storage/mongo"
	"github.com/syntrixbase/showroom/internal/storage/sqlite"
)

// mongoConnect is injectable for tests.
var mongoConnect = func(ctx context.Context, cfg config.MongoConfig) (DocumentStore, error) {
	provider, err := mongo.NewProvider(ctx, cfg.URI, cfg.DatabaseName, cfg.ConnectTimeout)
	if err != nil {
		return nil, err
	}
	store := mongo.NewDocumentStore(provider.Client(), provider.Database(), cfg.DataCollection)
	if ix, ok := store.(interface{ EnsureIndexes(context.Context) error }); ok {
		if err := ix.EnsureIndexes(ctx); err != nil {
			slog.Warn("Failed to ensure MongoDB indexes", "error", err)
		}
	}
	return store, nil
}

// NewDocumentStore opens the backend selected by cfg.Backend.
func NewDocumentStore(ctx context.Context, cfg config.Config) (DocumentStore, error) {
	switch cfg.Backend {
	case config.BackendMongo:
		store, err := mongoConnect(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB at %s: %w", cfg.Mongo.URI, err)
		}
		slog.Info("Document store ready", "backend", cfg.Backend, "database", cfg.Mongo.DatabaseName)
		return store, nil
	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.SQLite.Path, sqlite.Options{EnableWAL: cfg.SQLite.EnableWAL})
		if err != nil {
			return nil, err
		}
		slog.Info("Document store ready", "backend", cfg.Backend, "path", cfg.SQLite.Path)
		return store, nil
	case config.BackendMemory:
		slog.Info("Document store ready", "backend", cfg.Backend)
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend '%s'", cfg.Backend)
	}
}
