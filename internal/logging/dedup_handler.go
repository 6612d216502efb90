package logging

import (
	"context"
	"encoding/binary"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DedupHandlerConfig holds configuration for DedupHandler
type DedupHandlerConfig struct {
	// Window is how long identical records are suppressed after the first (default: 10s)
	Window time.Duration
	// MinLevel is the lowest level deduplicated; lower records pass straight through.
	MinLevel slog.Level
}

// DedupHandler collapses identical records. The first occurrence is written
// immediately; repeats within the window are counted and written once as a
// single record carrying a repeated_count attribute when the window closes.
//
// Records are identical when level, message, attributes and the attributes
// or groups added through WithAttrs and WithGroup all match. The time is ignored.
type DedupHandler struct {
	handler slog.Handler
	scope   uint64
	state   *dedupState
}

type dedupState struct {
	window   time.Duration
	minLevel slog.Level
	now      func() time.Time

	mu      sync.Mutex
	entries map[uint64]*dedupEntry

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

type dedupEntry struct {
	handler    slog.Handler
	record     slog.Record
	first      time.Time
	suppressed int
}

func NewDedupHandler(handler slog.Handler, cfg DedupHandlerConfig) *DedupHandler {
	return newDedupHandler(handler, cfg, time.Now)
}

func newDedupHandler(handler slog.Handler, cfg DedupHandlerConfig, now func() time.Time) *DedupHandler {
	if cfg.Window <= 0 {
		cfg.Window = 10 * time.Second
	}
	st := &dedupState{
		window:   cfg.Window,
		minLevel: cfg.MinLevel,
		now:      now,
		entries:  make(map[uint64]*dedupEntry),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go st.flushLoop()
	return &DedupHandler{handler: handler, state: st}
}

func (h *DedupHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *DedupHandler) Handle(ctx context.Context, r slog.Record) error {
	st := h.state
	if r.Level < st.minLevel {
		return h.handler.Handle(ctx, r)
	}

	key := h.key(r)
	now := st.now()

	st.mu.Lock()
	prev, ok := st.entries[key]
	if ok && now.Sub(prev.first) < st.window {
		prev.suppressed++
		st.mu.Unlock()
		return nil
	}
	st.entries[key] = &dedupEntry{handler: h.handler, record: r.Clone(), first: now}
	st.mu.Unlock()

	if ok && prev.suppressed > 0 {
		st.emit(prev)
	}
	return h.handler.Handle(ctx, r)
}

func (h *DedupHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	d := h.digest()
	d.WriteString("a|")
	for _, a := range attrs {
		writeAttr(d, a)
	}
	return &DedupHandler{handler: h.handler.WithAttrs(attrs), scope: d.Sum64(), state: h.state}
}

func (h *DedupHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	d := h.digest()
	d.WriteString("g|")
	d.WriteString(name)
	return &DedupHandler{handler: h.handler.WithGroup(name), scope: d.Sum64(), state: h.state}
}

// Close writes the pending summaries and stops the flush loop. It is shared by
// every handler derived from the same DedupHandler.
func (h *DedupHandler) Close() error {
	st := h.state
	st.closeOnce.Do(func() { close(st.stop) })
	<-st.done
	return nil
}

func (h *DedupHandler) digest() *xxhash.Digest {
	d := xxhash.New()
	var scope [8]byte
	binary.LittleEndian.PutUint64(scope[:], h.scope)
	d.Write(scope[:])
	return d
}

// key hashes everything but the timestamp.
func (h *DedupHandler) key(r slog.Record) uint64 {
	d := h.digest()
	d.WriteString(r.Level.String())
	d.WriteString("|")
	d.WriteString(r.Message)
	d.WriteString("|")
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(d, a)
		return true
	})
	return d.Sum64()
}

func writeAttr(d *xxhash.Digest, a slog.Attr) {
	d.WriteString(a.Key)
	d.WriteString("=")
	d.WriteString(a.Value.Resolve().String())
	d.WriteString("|")
}

func (st *dedupState) flushLoop() {
	defer close(st.done)
	ticker := time.NewTicker(st.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			st.flush(false)
		case <-st.stop:
			st.flush(true)
			return
		}
	}
}

// flush drops closed windows, or every window when all is set, and writes a
// summary for each that suppressed something.
func (st *dedupState) flush(all bool) {
	now := st.now()

	st.mu.Lock()
	var pending []*dedupEntry
	for key, e := range st.entries {
		if !all && now.Sub(e.first) < st.window {
			continue
		}
		delete(st.entries, key)
		if e.suppressed > 0 {
			pending = append(pending, e)
		}
	}
	st.mu.Unlock()

	// Written outside the lock in case the handler logs.
	for _, e := range pending {
		st.emit(e)
	}
}

func (st *dedupState) emit(e *dedupEntry) {
	r := e.record.Clone()
	r.Time = st.now()
	r.AddAttrs(slog.Int("repeated_count", e.suppressed))
	_ = e.handler.Handle(context.Background(), r)
}
