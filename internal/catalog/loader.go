package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/syntrixbase/showroom/internal/storage"
	"github.com/syntrixbase/showroom/pkg/model"
)

// Fetch modes, used as metric labels.
const (
	modeAll    = "all"
	modePrefix = "prefix"
)

// Catalog is the read side of the vehicle collection.
type Catalog interface {
	// LoadAll returns every vehicle, newest first.
	LoadAll(ctx context.Context) ([]Vehicle, error)
	// SearchByNamePrefix returns vehicles whose name starts with the upper-cased prefix.
	// An empty prefix behaves like LoadAll.
	SearchByNamePrefix(ctx context.Context, prefix string) ([]Vehicle, error)
}

// Loader reads vehicles from a DocumentStore.
type Loader struct {
	store      storage.DocumentStore
	collection string
	timeout    time.Duration
	checker    *RecordChecker
	logger     *slog.Logger
}

var _ Catalog = (*Loader)(nil)

// NewLoader creates a Loader. checker may be nil to skip record checks.
func NewLoader(store storage.DocumentStore, cfg Config, checker *RecordChecker) *Loader {
	collection := cfg.Collection
	if collection == "" {
		collection = DefaultConfig().Collection
	}
	return &Loader{
		store:      store,
		collection: collection,
		timeout:    cfg.FetchTimeout,
		checker:    checker,
		logger:     slog.Default().With("component", "catalog-loader"),
	}
}

func (l *Loader) LoadAll(ctx context.Context) ([]Vehicle, error) {
	return l.fetch(ctx, modeAll, model.Query{
		Collection: l.collection,
		OrderBy:    []model.Order{{Field: storage.FieldCreated, Direction: model.Desc}},
	})
}

func (l *Loader) SearchByNamePrefix(ctx context.Context, prefix string) ([]Vehicle, error) {
	if prefix == "" {
		return l.LoadAll(ctx)
	}
	// No ordering: the store decides.
	return l.fetch(ctx, modePrefix, model.Query{
		Collection: l.collection,
		Filters:    prefixFilters(prefix),
	})
}

func (l *Loader) fetch(ctx context.Context, mode string, q model.Query) ([]Vehicle, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	docs, err := l.store.Query(ctx, q)
	fetchDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, l.classify(ctx, mode, err)
	}

	vehicles := make([]Vehicle, 0, len(docs))
	for _, doc := range docs {
		if l.checker != nil {
			if err := l.checker.Check(doc.Data); err != nil {
				malformedRecords.Inc()
				l.logger.Warn("Malformed vehicle record", "id", doc.Id, "error", err)
			}
		}
		vehicles = append(vehicles, vehicleFromDoc(doc))
	}

	fetchTotal.WithLabelValues(mode, "ok").Inc()
	fetchResults.Observe(float64(len(vehicles)))
	return vehicles, nil
}

// classify maps a store failure to ErrCanceled when the caller went away and to
// ErrStoreUnavailable otherwise. A fetch timeout counts as unavailable.
func (l *Loader) classify(ctx context.Context, mode string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		fetchTotal.WithLabelValues(mode, "canceled").Inc()
		return model.ErrCanceled
	}
	fetchTotal.WithLabelValues(mode, "unavailable").Inc()
	l.logger.Warn("Catalog fetch failed", "mode", mode, "error", err)
	return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
}
