package services

import (
	"context"
)

// Start runs the HTTP server and the session sweeper in the background.
func (m *Manager) Start(ctx context.Context) {
	bgCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.server.Start(bgCtx); err != nil {
			m.logger.Error("HTTP server stopped", "error", err)
			select {
			case m.errCh <- err:
			default:
			}
		}
	}()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.sessions.Run(bgCtx)
	}()
}
