// Package services wires the catalog, its store, notifications and the HTTP
// surface into one process.
package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/syntrixbase/showroom/internal/catalog"
	"github.com/syntrixbase/showroom/internal/config"
	"github.com/syntrixbase/showroom/internal/notify"
	"github.com/syntrixbase/showroom/internal/server"
	"github.com/syntrixbase/showroom/internal/server/ratelimit"
	"github.com/syntrixbase/showroom/internal/storage"
)

type Manager struct {
	cfg    *config.Config
	logger *slog.Logger

	store          storage.DocumentStore
	notifier       notify.Notifier
	loader         *catalog.Loader
	sessions       *catalog.Sessions
	sessionLimiter ratelimit.Limiter
	server         server.Service

	cancel context.CancelFunc
	errCh  chan error
	wg     sync.WaitGroup
}

func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		cfg:    cfg,
		logger: slog.Default().With("component", "services"),
		errCh:  make(chan error, 1),
	}
}

// Addr returns the HTTP listen address once Start has bound it.
func (m *Manager) Addr() string {
	if m.server == nil {
		return ""
	}
	return m.server.Addr()
}

// Err receives a fatal server error, such as a failed bind.
func (m *Manager) Err() <-chan error {
	return m.errCh
}

// Sessions returns the session registry. It is nil before Init.
func (m *Manager) Sessions() *catalog.Sessions {
	return m.sessions
}
