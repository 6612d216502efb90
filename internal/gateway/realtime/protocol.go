package realtime

import (
	"encoding/json"
)

// Message types
const (
	// Server to client
	TypeView   = "view"
	TypeNotice = "notice"
	TypeError  = "error"

	// Client to server
	TypeSearch      = "search"
	TypeImageLoaded = "image_loaded"
	TypeRetry       = "retry"
)

// Error codes carried by TypeError messages
const (
	ErrCodeInvalidPayload = "invalid_payload"
	ErrCodeUnknownType    = "unknown_type"
	ErrCodeInternal       = "internal"
)

// BaseMessage is the envelope of every frame in both directions.
type BaseMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type SearchPayload struct {
	Query string `json:"query"`
}

// ImageLoadedPayload reports that the primary image of Vehicle finished
// loading for the result set identified by Seq.
type ImageLoadedPayload struct {
	Vehicle string `json:"vehicle"`
	Seq     uint64 `json:"seq"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func mustMarshal(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func errorMessage(id, code, message string) BaseMessage {
	return BaseMessage{ID: id, Type: TypeError, Payload: mustMarshal(ErrorPayload{Code: code, Message: message})}
}
