package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/syntrixbase/showroom/internal/storage/types"
	"github.com/syntrixbase/showroom/pkg/model"
)

// Store is an in-process DocumentStore. Documents are kept in insertion
// order, which is the order an unordered query returns them in.
type Store struct {
	mu     sync.RWMutex
	docs   []*types.StoredDoc
	byID   map[string]*types.StoredDoc
	closed bool
}

var _ types.DocumentStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{byID: make(map[string]*types.StoredDoc)}
}

func (s *Store) Create(_ context.Context, doc types.StoredDoc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed
	}
	if _, ok := s.byID[doc.Id]; ok {
		return model.ErrExists
	}
	stored := doc
	stored.Data = copyMap(doc.Data)
	s.docs = append(s.docs, &stored)
	s.byID[stored.Id] = &stored
	return nil
}

func (s *Store) Query(ctx context.Context, q model.Query) ([]*types.StoredDoc, error) {
	if !q.Validate() {
		return nil, fmt.Errorf("%w: %+v", model.ErrInvalidQuery, q)
	}
	if err := ctx.Err(); err != nil {
		return nil, model.WrapError(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, errClosed
	}

	var out []*types.StoredDoc
	for _, doc := range s.docs {
		if doc.Collection != q.Collection || !matchAll(doc, q.Filters) {
			continue
		}
		clone := *doc
		clone.Data = copyMap(doc.Data)
		out = append(out, &clone)
	}

	if len(q.OrderBy) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range q.OrderBy {
				c := compareValues(fieldValue(out[i], o.Field), fieldValue(out[j], o.Field))
				if c == 0 {
					continue
				}
				if o.Direction == model.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errClosed
	}
	return nil
}

func (s *Store) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func copyMap(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
