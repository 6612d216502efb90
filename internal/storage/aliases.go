package storage

import (
	"github.com/syntrixbase/showroom/internal/storage/types"
)

type StoredDoc = types.StoredDoc
type DocumentStore = types.DocumentStore

const (
	FieldID      = types.FieldID
	FieldCreated = types.FieldCreated
	FieldUpdated = types.FieldUpdated
)

var (
	NewStoredDoc = types.NewStoredDoc
	Fullpath     = types.Fullpath
)
