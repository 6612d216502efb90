package ratelimit

import (
	"sync"
	"time"
)

// memoryLimiter is an in-process token bucket limiter. Each key holds a bucket
// of Requests tokens refilled at Requests/Window per second.
type memoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	config  Config
	now     func() time.Time

	cleanupT *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
}

type tokenBucket struct {
	tokens     float64
	lastUpdate time.Time
}

// NewMemoryLimiter creates a token bucket limiter. Stale buckets are dropped in
// the background until Stop is called.
func NewMemoryLimiter(cfg Config) Limiter {
	return newMemoryLimiter(cfg, time.Now)
}

func newMemoryLimiter(cfg Config, now func() time.Time) *memoryLimiter {
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	l := &memoryLimiter{
		buckets: make(map[string]*tokenBucket),
		config:  cfg,
		now:     now,
		stopCh:  make(chan struct{}),
	}
	l.cleanupT = time.NewTicker(cfg.Window * 2)
	go l.cleanup()
	return l
}

func (l *memoryLimiter) Allow(key string) bool {
	if !l.config.Enabled {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	capacity := float64(l.config.Requests)

	b, ok := l.buckets[key]
	if !ok {
		if capacity < 1 {
			return false
		}
		l.buckets[key] = &tokenBucket{tokens: capacity - 1, lastUpdate: now}
		return true
	}

	elapsed := now.Sub(b.lastUpdate).Seconds()
	b.tokens = min(capacity, b.tokens+elapsed*capacity/l.config.Window.Seconds())
	b.lastUpdate = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

func (l *memoryLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

func (l *memoryLimiter) cleanup() {
	for {
		select {
		case <-l.cleanupT.C:
			l.cleanupStale()
		case <-l.stopCh:
			l.cleanupT.Stop()
			return
		}
	}
}

// cleanupStale drops buckets untouched for two windows; they would be full anyway.
func (l *memoryLimiter) cleanupStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-2 * l.config.Window)
	for key, b := range l.buckets {
		if b.lastUpdate.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *memoryLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// Stoppable extends Limiter with a Stop method for cleanup.
type Stoppable interface {
	Limiter
	Stop()
}

var _ Stoppable = (*memoryLimiter)(nil)
