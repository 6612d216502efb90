package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/syntrixbase/showroom/internal/config"
)

const (
	mainLogName  = "showroom.log"
	errorLogName = "errors.log"
)

var (
	// Global state for cleanup
	closers   []io.Closer
	closersMu sync.Mutex
)

// Initialize sets up the global logger based on configuration
func Initialize(cfg config.LoggingConfig) error {
	logger, err := NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	slog.SetDefault(logger)

	slog.Info("Logging initialized",
		"level", cfg.Level,
		"format", cfg.Format,
		"dir", cfg.Dir,
		"console_enabled", cfg.Console.Enabled,
		"file_enabled", cfg.File.Enabled,
		"dedup_window", cfg.Dedup.Window,
	)
	return nil
}

// NewLogger creates a new logger instance with the given configuration.
// Files are rotated by lumberjack; warnings and errors also go to errors.log.
func NewLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var handlers []slog.Handler

	if cfg.Console.Enabled {
		handlers = append(handlers, createHandler(os.Stdout, cfg.Console.Format, parseLevel(cfg.Console.Level)))
	}

	if cfg.File.Enabled {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		mainFile := newRotatingFile(filepath.Join(cfg.Dir, mainLogName), cfg.Rotation)
		handlers = append(handlers, createHandler(mainFile, cfg.File.Format, parseLevel(cfg.File.Level)))

		errorFile := newRotatingFile(filepath.Join(cfg.Dir, errorLogName), cfg.Rotation)
		errorHandler := createHandler(errorFile, cfg.File.Format, slog.LevelWarn)
		handlers = append(handlers, NewLevelFilter(errorHandler, slog.LevelWarn))
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewTextHandler(io.Discard, nil)
	case 1:
		handler = handlers[0]
	default:
		handler = NewMultiHandler(handlers...)
	}

	if cfg.Dedup.Enabled {
		dedup := NewDedupHandler(handler, DedupHandlerConfig{
			Window:   cfg.Dedup.Window,
			MinLevel: slog.LevelWarn,
		})
		register(dedup)
		handler = dedup
	}

	return slog.New(handler), nil
}

// Shutdown flushes pending summaries and closes all log files.
// Closers registered first are closed last, so handlers flush before files close.
func Shutdown() error {
	closersMu.Lock()
	defer closersMu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close log output: %w", err))
		}
	}
	closers = nil
	return errors.Join(errs...)
}

func newRotatingFile(path string, rot config.RotationConfig) *lumberjack.Logger {
	f := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rot.MaxSize,
		MaxBackups: rot.MaxBackups,
		MaxAge:     rot.MaxAge,
		Compress:   rot.Compress,
	}
	register(f)
	return f
}

func register(c io.Closer) {
	closersMu.Lock()
	defer closersMu.Unlock()
	closers = append(closers, c)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func createHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
