// Package notify delivers transient notifications raised by catalog sessions.
package notify

import (
	"context"
	"errors"
	"time"
)

// Kind classifies a notification.
type Kind string

const (
	// KindStoreUnavailable is raised when a catalog fetch could not reach the document store.
	KindStoreUnavailable Kind = "store_unavailable"
	// KindRecovered is raised when a fetch succeeds after a failure.
	KindRecovered Kind = "recovered"
)

// Notification is a transient, user-facing notice. It is never persisted by the service.
type Notification struct {
	Kind      Kind      `json:"kind"`
	Session   string    `json:"session,omitempty"`
	Code      string    `json:"code,omitempty"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Time      time.Time `json:"time"`
}

// Notifier delivers notifications to some sink.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
	Close() error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Notify(context.Context, Notification) error { return nil }
func (Nop) Close() error                               { return nil }

type multi []Notifier

// Multi fans a notification out to every notifier. Delivery continues past a failing sink.
func Multi(notifiers ...Notifier) Notifier {
	if len(notifiers) == 1 {
		return notifiers[0]
	}
	return multi(notifiers)
}

func (m multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, nt := range m {
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) Close() error {
	var errs []error
	for _, nt := range m {
		if err := nt.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
