package model

import (
	"github.com/google/uuid"
)

// User facing document type, represents a JSON object.
//
//	"id" field is reserved for document ID.
//	"created" field is reserved for the server-assigned creation timestamp.
type Document map[string]interface{}

func (doc Document) GetID() string {
	if id, ok := doc["id"].(string); ok {
		return id
	}
	return ""
}

func (doc Document) SetID(newID string) {
	doc["id"] = newID
}

func (doc Document) GenerateIDIfEmpty() {
	if id, ok := doc["id"].(string); !ok || id == "" {
		doc["id"] = uuid.New().String()
	}
}

func (doc Document) HasKey(key string) bool {
	_, exists := doc[key]
	return exists
}

// GetString returns the field as a string, or "" if missing or not a string.
func (doc Document) GetString(key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}

// StripProtectedFields removes fields only the server may assign.
func (doc Document) StripProtectedFields() {
	delete(doc, "created")
}
