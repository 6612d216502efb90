package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syntrixbase/showroom/internal/storage/types"
	"github.com/syntrixbase/showroom/pkg/model"
)

func seed(t *testing.T, s *Store, names ...string) {
	t.Helper()
	for i, name := range names {
		doc := types.NewStoredDoc("cars", name, map[string]interface{}{"name": name, "km": int64(i * 1000)})
		doc.CreatedAt = int64(100 + i)
		require.NoError(t, s.Create(context.Background(), doc))
	}
}

func docIDs(docs []*types.StoredDoc) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.DocID()
	}
	return ids
}

func TestStore_Query(t *testing.T) {
	s := NewStore()
	seed(t, s, "CIVIC", "COROLLA", "GOL", "CO")
	ctx := context.Background()

	tests := []struct {
		name  string
		query model.Query
		want  []string
	}{
		{
			name:  "insertion order without sort",
			query: model.Query{Collection: "cars"},
			want:  []string{"CIVIC", "COROLLA", "GOL", "CO"},
		},
		{
			name:  "created desc",
			query: model.Query{Collection: "cars", OrderBy: []model.Order{{Field: "created", Direction: model.Desc}}},
			want:  []string{"CO", "GOL", "COROLLA", "CIVIC"},
		},
		{
			name: "prefix range includes exact match",
			query: model.Query{Collection: "cars", Filters: model.Filters{
				{Field: "name", Op: model.OpGte, Value: "CO"},
				{Field: "name", Op: model.OpLt, Value: "CO\U0010FFFF"},
			}},
			want: []string{"COROLLA", "CO"},
		},
		{
			name:  "numeric filter",
			query: model.Query{Collection: "cars", Filters: model.Filters{{Field: "km", Op: model.OpGte, Value: 2000}}},
			want:  []string{"GOL", "CO"},
		},
		{
			name:  "in filter",
			query: model.Query{Collection: "cars", Filters: model.Filters{{Field: "name", Op: model.OpIn, Value: []string{"GOL", "CIVIC"}}}},
			want:  []string{"CIVIC", "GOL"},
		},
		{
			name:  "type mismatch excluded",
			query: model.Query{Collection: "cars", Filters: model.Filters{{Field: "name", Op: model.OpGte, Value: 1}}},
			want:  []string{},
		},
		{
			name:  "limit",
			query: model.Query{Collection: "cars", Limit: 2},
			want:  []string{"CIVIC", "COROLLA"},
		},
		{
			name:  "other collection",
			query: model.Query{Collection: "bikes"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := s.Query(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, docIDs(docs))
		})
	}
}

func TestStore_IsolatesCallers(t *testing.T) {
	s := NewStore()
	seed(t, s, "GOL")

	docs, err := s.Query(context.Background(), model.Query{Collection: "cars"})
	require.NoError(t, err)
	docs[0].Data["name"] = "MUTATED"

	again, err := s.Query(context.Background(), model.Query{Collection: "cars"})
	require.NoError(t, err)
	assert.Equal(t, "GOL", again[0].Data["name"])
}

func TestStore_Errors(t *testing.T) {
	s := NewStore()
	seed(t, s, "GOL")
	ctx := context.Background()

	assert.ErrorIs(t, s.Create(ctx, types.NewStoredDoc("cars", "GOL", nil)), model.ErrExists)

	_, err := s.Query(ctx, model.Query{})
	assert.ErrorIs(t, err, model.ErrInvalidQuery)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.Query(canceled, model.Query{Collection: "cars"})
	assert.ErrorIs(t, err, model.ErrCanceled)

	require.NoError(t, s.Close(ctx))
	assert.Error(t, s.Ping(ctx))
	_, err = s.Query(ctx, model.Query{Collection: "cars"})
	assert.Error(t, err)
}

func TestCompareValues(t *testing.T) {
	assert.Equal(t, 0, compareValues(nil, nil))
	assert.Less(t, compareValues(nil, 1), 0)
	assert.Less(t, compareValues(1, "a"), 0)
	assert.Less(t, compareValues("a", "b"), 0)
	assert.Greater(t, compareValues(int64(5), 2.5), 0)
}
