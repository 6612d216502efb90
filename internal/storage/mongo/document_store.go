package mongo

import (
	"context"
	"fmt"

	"github.com/syntrixbase/showroom/internal/storage/types"
	"github.com/syntrixbase/showroom/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type documentStore struct {
	client         *mongo.Client
	db             *mongo.Database
	dataCollection string
}

// NewDocumentStore initializes a new MongoDB document store
func NewDocumentStore(client *mongo.Client, db *mongo.Database, dataColl string) types.DocumentStore {
	return &documentStore{
		client:         client,
		db:             db,
		dataCollection: dataColl,
	}
}

func (m *documentStore) getCollection() *mongo.Collection {
	return m.db.Collection(m.dataCollection)
}

func (m *documentStore) Create(ctx context.Context, doc types.StoredDoc) error {
	_, err := m.getCollection().InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return model.ErrExists
	}
	return model.WrapError(err)
}

func (m *documentStore) Query(ctx context.Context, q model.Query) ([]*types.StoredDoc, error) {
	if !q.Validate() {
		return nil, fmt.Errorf("%w: %+v", model.ErrInvalidQuery, q)
	}

	filter := makeFilterBSON(q.Filters)
	filter["collection"] = q.Collection

	findOptions := options.Find()
	if q.Limit > 0 {
		findOptions.SetLimit(int64(q.Limit))
	}
	if len(q.OrderBy) > 0 {
		findOptions.SetSort(makeSortBSON(q.OrderBy))
	}

	cursor, err := m.getCollection().Find(ctx, filter, findOptions)
	if err != nil {
		return nil, model.WrapError(err)
	}
	defer cursor.Close(ctx)

	var docs []*types.StoredDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, model.WrapError(err)
	}
	for _, doc := range docs {
		doc.Data = normalizeMap(doc.Data)
	}

	return docs, nil
}

func (m *documentStore) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the indexes catalog reads rely on
func (m *documentStore) EnsureIndexes(ctx context.Context) error {
	coll := m.getCollection()

	// (collection, created_at) serves the creation-ordered listing
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "collection", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return err
	}

	// (collection, data.name) serves prefix range scans
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "collection", Value: 1}, {Key: "data.name", Value: 1}},
	})
	return err
}

func (m *documentStore) Close(ctx context.Context) error {
	if m.client != nil {
		return m.client.Disconnect(ctx)
	}
	return nil
}
