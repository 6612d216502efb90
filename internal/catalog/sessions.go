package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/syntrixbase/showroom/internal/notify"
	"github.com/syntrixbase/showroom/pkg/model"
)

// ErrSessionLimit is returned by Create when MaxSessions sessions are open.
var ErrSessionLimit = errors.New("too many open sessions")

type sessionEntry struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Sessions holds one Controller per browser session.
type Sessions struct {
	catalog  Catalog
	notifier notify.Notifier
	cfg      Config
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

// NewSessions creates an empty registry.
func NewSessions(catalog Catalog, notifier notify.Notifier, cfg Config) *Sessions {
	cfg.ApplyDefaults()
	return &Sessions{
		catalog:  catalog,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
		entries:  make(map[string]*sessionEntry),
	}
}

// Create opens a session and activates it. The session is kept even when the
// first load fails; the error is returned alongside the view.
func (s *Sessions) Create(ctx context.Context) (*Controller, View, error) {
	s.mu.Lock()
	if s.cfg.MaxSessions > 0 && len(s.entries) >= s.cfg.MaxSessions {
		s.mu.Unlock()
		return nil, View{}, ErrSessionLimit
	}
	id := uuid.NewString()
	ctrl := NewController(id, s.catalog, s.notifier)
	s.entries[id] = &sessionEntry{ctrl: ctrl, lastSeen: s.now()}
	activeSessions.Set(float64(len(s.entries)))
	s.mu.Unlock()

	slog.Debug("Catalog session opened", "session", id)
	view, err := ctrl.Activate(ctx)
	return ctrl, view, err
}

// Get returns the session's controller and refreshes its idle timer.
func (s *Sessions) Get(id string) (*Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	e.lastSeen = s.now()
	return e.ctrl, nil
}

// Delete closes and removes a session.
func (s *Sessions) Delete(id string) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
		activeSessions.Set(float64(len(s.entries)))
	}
	s.mu.Unlock()

	if !ok {
		return model.ErrNotFound
	}
	e.ctrl.Close()
	slog.Debug("Catalog session closed", "session", id)
	return nil
}

// Len returns the number of open sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep closes sessions idle for longer than the TTL. Sessions with live
// subscribers are never idle. It returns how many were closed.
func (s *Sessions) Sweep() int {
	cutoff := s.now().Add(-s.cfg.SessionTTL)

	var expired []*Controller
	s.mu.Lock()
	for id, e := range s.entries {
		if e.lastSeen.After(cutoff) {
			continue
		}
		if e.ctrl.Subscribers() > 0 {
			e.lastSeen = s.now()
			continue
		}
		delete(s.entries, id)
		expired = append(expired, e.ctrl)
	}
	activeSessions.Set(float64(len(s.entries)))
	s.mu.Unlock()

	for _, ctrl := range expired {
		ctrl.Close()
	}
	if len(expired) > 0 {
		slog.Info("Expired catalog sessions", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps expired sessions until ctx is done.
func (s *Sessions) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Close closes every session.
func (s *Sessions) Close() {
	s.mu.Lock()
	entries := s.entries
	s.entries = make(map[string]*sessionEntry)
	activeSessions.Set(0)
	s.mu.Unlock()

	for _, e := range entries {
		e.ctrl.Close()
	}
}
