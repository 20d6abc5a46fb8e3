// Package service implements the documentation-service channel used when an
// external resolver is an already-running service instead of a child process.
// Requests and responses travel as correlated envelope messages; the payload
// bytes are the same JSON shapes the child-process wire protocol uses.
package service

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Message kinds used by the reference-resolution exchange
const (
	// MessageKindResolveRequest asks the service to resolve a reference
	MessageKindResolveRequest = "resolve-reference"
	// MessageKindResolveResponse answers a resolve-reference message
	MessageKindResolveResponse = "resolved-reference-response"
)

// Message is the documentation-service envelope. Replies carry the
// identifier of the message they answer.
type Message struct {
	Kind       string          `json:"type"`
	Identifier string          `json:"identifier"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Compressed bool            `json:"compressed,omitempty"`
}

// NewMessage creates a message of the given kind with a fresh correlation
// identifier and an uncompressed payload.
func NewMessage(kind string, payload []byte) Message {
	return Message{
		Kind:       kind,
		Identifier: uuid.New().String(),
		Payload:    json.RawMessage(payload),
	}
}

// NewReply creates a reply to msg, reusing its correlation identifier
func NewReply(msg Message, kind string, payload []byte) Message {
	return Message{
		Kind:       kind,
		Identifier: msg.Identifier,
		Payload:    json.RawMessage(payload),
	}
}

// Client is a request/response channel to a documentation service.
// Implementations must return the reply whose identifier matches the
// request's identifier. Calls are serialized by the caller.
type Client interface {
	Request(msg Message) (Message, error)
}
