package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/syntrixbase/showroom/internal/server/ratelimit"
)

// Shutdown stops serving, waits for background tasks and closes every resource.
func (m *Manager) Shutdown(ctx context.Context) error {
	var errs []error

	if m.server != nil {
		m.logger.Info("Stopping HTTP server...")
		if err := m.server.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if m.cancel != nil {
		m.cancel()
	}

	m.logger.Info("Waiting for background tasks to finish...")
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		m.logger.Info("Background tasks finished.")
	case <-ctx.Done():
		m.logger.Warn("Timeout waiting for background tasks.")
	}

	if err := m.release(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// release closes sessions, the notifier and the store, in that order.
func (m *Manager) release(ctx context.Context) error {
	var errs []error
	if m.sessions != nil {
		m.sessions.Close()
	}
	if stoppable, ok := m.sessionLimiter.(ratelimit.Stoppable); ok {
		stoppable.Stop()
	}
	if m.notifier != nil {
		if err := m.notifier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing notifier: %w", err))
		}
		m.notifier = nil
	}
	if m.store != nil {
		if err := m.store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("closing document store: %w", err))
		}
		m.store = nil
	}
	return errors.Join(errs...)
}
