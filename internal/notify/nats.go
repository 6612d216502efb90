package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// JetStream is the subset of jetstream.JetStream the publisher needs.
type JetStream interface {
	CreateOrUpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// natsConnect is injectable for tests.
var natsConnect = func(url string) (*nats.Conn, error) {
	return nats.Connect(url, nats.Name("showroom"))
}

// jetStreamNew is injectable for tests.
var jetStreamNew = func(nc *nats.Conn) (JetStream, error) {
	return jetstream.New(nc)
}

// NATSNotifier publishes notifications as JSON to a JetStream stream.
// Subjects are <prefix>.<kind>.
type NATSNotifier struct {
	nc  *nats.Conn
	js  JetStream
	cfg NATSConfig
}

// DialNATS connects to NATS and ensures the notification stream exists.
func DialNATS(ctx context.Context, cfg NATSConfig) (*NATSNotifier, error) {
	nc, err := natsConnect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.URL, err)
	}
	js, err := jetStreamNew(nc)
	if err != nil {
		if nc != nil {
			nc.Close()
		}
		return nil, fmt.Errorf("failed to create JetStream: %w", err)
	}
	n, err := NewNATSNotifier(ctx, js, cfg)
	if err != nil {
		if nc != nil {
			nc.Close()
		}
		return nil, err
	}
	n.nc = nc
	slog.Info("Connected to NATS", "url", cfg.URL, "stream", cfg.StreamName)
	return n, nil
}

// NewNATSNotifier creates a notifier on an existing JetStream context.
func NewNATSNotifier(ctx context.Context, js JetStream, cfg NATSConfig) (*NATSNotifier, error) {
	if js == nil {
		return nil, fmt.Errorf("jetstream cannot be nil")
	}
	if cfg.StreamName != "" {
		storage := jetstream.MemoryStorage
		if cfg.FileStorage {
			storage = jetstream.FileStorage
		}
		prefix := cfg.SubjectPrefix
		if prefix == "" {
			prefix = cfg.StreamName
		}
		_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:     cfg.StreamName,
			Subjects: []string{prefix + ".>"},
			Storage:  storage,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to ensure stream: %w", err)
		}
	}
	return &NATSNotifier{js: js, cfg: cfg}, nil
}

// Subject returns the subject a notification of the given kind is published on.
func (p *NATSNotifier) Subject(kind Kind) string {
	prefix := p.cfg.SubjectPrefix
	if prefix == "" {
		prefix = p.cfg.StreamName
	}
	return prefix + "." + string(kind)
}

func (p *NATSNotifier) Notify(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	var opts []jetstream.PublishOpt
	if p.cfg.RetryAttempts > 0 {
		opts = append(opts, jetstream.WithRetryAttempts(p.cfg.RetryAttempts))
	}

	subject := p.Subject(n.Kind)
	if _, err := p.js.Publish(ctx, subject, data, opts...); err != nil {
		notificationsTotal.WithLabelValues(string(n.Kind), SinkNATS, "error").Inc()
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	notificationsTotal.WithLabelValues(string(n.Kind), SinkNATS, "ok").Inc()
	return nil
}

func (p *NATSNotifier) Close() error {
	if p.nc != nil {
		slog.Info("Closing NATS connection...")
		p.nc.Close()
		p.nc = nil
	}
	return nil
}

// New builds the notifier for cfg. The log sink is used when nothing else is enabled.
func New(ctx context.Context, cfg Config) (Notifier, error) {
	var sinks []Notifier
	if cfg.Enabled(SinkLog) {
		sinks = append(sinks, NewLogNotifier(nil))
	}
	if cfg.Enabled(SinkNATS) {
		n, err := DialNATS(ctx, cfg.NATS)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, n)
	}
	if len(sinks) == 0 {
		return NewLogNotifier(nil), nil
	}
	return Multi(sinks...), nil
}
