package types

import (
	"context"

	"github.com/syntrixbase/showroom/pkg/model"
)

// StoredDoc represents a stored document in the database
type StoredDoc struct {
	// Id is the unique identifier for the document, collection/docID
	Id string `json:"id" bson:"_id"`

	// Collection is the parent collection name
	Collection string `json:"collection" bson:"collection"`

	// UpdatedAt is the timestamp of the last update (Unix milliseconds)
	UpdatedAt int64 `json:"updatedAt" bson:"updated_at"`

	// CreatedAt is the server-assigned creation timestamp (Unix milliseconds)
	CreatedAt int64 `json:"createdAt" bson:"created_at"`

	// Data is the actual content of the document
	Data map[string]interface{} `json:"data" bson:"data"`
}

// DocumentStore defines the interface for document storage operations
type DocumentStore interface {
	// Create inserts a new document. Fails with model.ErrExists if it already exists.
	Create(ctx context.Context, doc StoredDoc) error

	// Query executes a filtered, optionally ordered read over one collection
	Query(ctx context.Context, q model.Query) ([]*StoredDoc, error)

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error

	// Close closes the connection to the backend
	Close(ctx context.Context) error
}

// Reserved query fields that address document metadata instead of Data.
const (
	FieldID      = "id"
	FieldCreated = "created"
	FieldUpdated = "updated"
)
