package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/syntrixbase/showroom/internal/notify"
	"github.com/syntrixbase/showroom/internal/storage"
	"github.com/syntrixbase/showroom/internal/storage/memory"
	"github.com/syntrixbase/showroom/pkg/model"
)

// newCarStore seeds a memory store with one car per name. Later names are newer.
func newCarStore(t *testing.T, names ...string) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	for i, name := range names {
		doc := storage.NewStoredDoc("cars", fmt.Sprintf("car-%d", i), map[string]interface{}{
			"name":  name,
			"year":  "2020",
			"km":    "1000",
			"city":  "Campinas",
			"price": 50000 + i,
			"uid":   fmt.Sprintf("uid-%d", i),
			"images": []interface{}{
				map[string]interface{}{"name": "front.jpg", "uid": fmt.Sprintf("img-%d", i), "url": fmt.Sprintf("https://img.example/%d.jpg", i)},
			},
		})
		doc.CreatedAt = int64(1000 + i)
		require.NoError(t, store.Create(context.Background(), doc))
	}
	return store
}

func names(vehicles []Vehicle) []string {
	out := make([]string, len(vehicles))
	for i, v := range vehicles {
		out[i] = v.Name
	}
	return out
}

func cardNames(view View) []string {
	out := make([]string, len(view.Cards))
	for i, c := range view.Cards {
		out[i] = c.Name
	}
	return out
}

// flakyStore fails every query while fail is set.
type flakyStore struct {
	storage.DocumentStore
	fail atomic.Bool
}

func (f *flakyStore) Query(ctx context.Context, q model.Query) ([]*storage.StoredDoc, error) {
	if f.fail.Load() {
		return nil, errors.New("connection refused")
	}
	return f.DocumentStore.Query(ctx, q)
}

// pendingFetch is one catalog call held open until the test replies.
type pendingFetch struct {
	prefix string
	reply  chan fetchResult
}

type fetchResult struct {
	vehicles []Vehicle
	err      error
}

// gatedCatalog blocks every call until the test answers it, in any order.
type gatedCatalog struct {
	requests chan *pendingFetch
}

func newGatedCatalog() *gatedCatalog {
	return &gatedCatalog{requests: make(chan *pendingFetch, 8)}
}

func (g *gatedCatalog) LoadAll(ctx context.Context) ([]Vehicle, error) {
	return g.SearchByNamePrefix(ctx, "")
}

func (g *gatedCatalog) SearchByNamePrefix(_ context.Context, prefix string) ([]Vehicle, error) {
	p := &pendingFetch{prefix: prefix, reply: make(chan fetchResult, 1)}
	g.requests <- p
	r := <-p.reply
	return r.vehicles, r.err
}

// MockNotifier is a testify mock of notify.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n notify.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotifier) Close() error {
	args := m.Called()
	return args.Error(0)
}

func vehiclesNamed(names ...string) []Vehicle {
	out := make([]Vehicle, len(names))
	for i, n := range names {
		out[i] = Vehicle{ID: n, Name: n, Images: []Image{{URL: "https://img.example/" + n + ".jpg"}}}
	}
	return out
}
