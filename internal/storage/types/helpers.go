package types

import (
	"strings"
	"time"
)

// Fullpath joins a collection and document id into the stored key.
func Fullpath(collection, docID string) string {
	return collection + "/" + docID
}

// DocID returns the document id part of the stored key.
func (d *StoredDoc) DocID() string {
	if i := strings.LastIndex(d.Id, "/"); i >= 0 {
		return d.Id[i+1:]
	}
	return d.Id
}

// NewStoredDoc creates a new document with server-assigned timestamps.
func NewStoredDoc(collection, docID string, data map[string]interface{}) StoredDoc {
	now := time.Now().UnixMilli()
	return StoredDoc{
		Id:         Fullpath(collection, docID),
		Collection: collection,
		CreatedAt:  now,
		UpdatedAt:  now,
		Data:       data,
	}
}
