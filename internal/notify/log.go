package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("component", "notify")}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notification) error {
	level := slog.LevelInfo
	if n.Kind == KindStoreUnavailable {
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, "Notification",
		"kind", n.Kind,
		"session", n.Session,
		"code", n.Code,
		"message", n.Message,
		"retryable", n.Retryable,
	)
	notificationsTotal.WithLabelValues(string(n.Kind), "log", "ok").Inc()
	return nil
}

func (l *LogNotifier) Close() error { return nil }
