package services

import (
	"context"
	"fmt"

	"github.com/syntrixbase/showroom/internal/catalog"
	"github.com/syntrixbase/showroom/internal/gateway"
	"github.com/syntrixbase/showroom/internal/notify"
	"github.com/syntrixbase/showroom/internal/server"
	"github.com/syntrixbase/showroom/internal/server/ratelimit"
	"github.com/syntrixbase/showroom/internal/storage"
)

var (
	storeFactory    = storage.NewDocumentStore
	notifierFactory = notify.New
)

// Init opens the store and the notifier and registers the HTTP routes.
// Resources opened before a failure are released.
func (m *Manager) Init(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			m.release(context.WithoutCancel(ctx))
		}
	}()

	m.store, err = storeFactory(ctx, m.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}

	checker, err := catalog.NewRecordChecker(m.cfg.Catalog.RecordRule)
	if err != nil {
		return fmt.Errorf("invalid catalog.record_rule: %w", err)
	}
	m.loader = catalog.NewLoader(m.store, m.cfg.Catalog, checker)

	m.notifier, err = notifierFactory(ctx, m.cfg.Notify)
	if err != nil {
		return fmt.Errorf("failed to initialize notifications: %w", err)
	}

	m.sessions = catalog.NewSessions(m.loader, m.notifier, m.cfg.Catalog)
	m.initServer()

	m.logger.Info("Services initialized",
		"backend", m.cfg.Storage.Backend,
		"collection", m.cfg.Catalog.Collection,
		"notify_sinks", m.cfg.Notify.Sinks,
	)
	return nil
}

func (m *Manager) initServer() {
	m.server = server.New(m.cfg.Server, nil)

	opts := []gateway.ServerOption{gateway.WithPinger(m.store)}
	if rl := m.cfg.Gateway.SessionRateLimit; rl.Enabled {
		m.sessionLimiter = ratelimit.NewMemoryLimiter(rl)
		opts = append(opts, gateway.WithSessionRateLimiter(m.sessionLimiter, rl.Window))
	}

	gateway.NewServer(m.sessions, m.loader, m.cfg.Gateway, opts...).RegisterRoutes(m.server.HTTPMux())
}
