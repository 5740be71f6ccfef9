package server

import (
	"encoding/json"
	"time"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/table"
)

// MessageType identifies a WebSocket message
type MessageType string

const (
	// MessageTypeAction carries a table.Request from the client.
	MessageTypeAction MessageType = "action"
	// MessageTypeResponse carries a table.Response to the client.
	MessageTypeResponse MessageType = "response"
	// MessageTypeWelcome tells a new connection which session it is bound to.
	MessageTypeWelcome MessageType = "welcome"
	// MessageTypeError reports a malformed message.
	MessageTypeError MessageType = "error"
)

// Message is the WebSocket envelope
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage encodes data into an envelope stamped with now.
func NewMessage(messageType MessageType, data any, now time.Time) (*Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{Type: messageType, Data: raw, Timestamp: now}, nil
}

// WelcomeData is sent once after the upgrade
type WelcomeData struct {
	Session string   `json:"session"`
	Tables  []string `json:"tables"`
	Actions []string `json:"actions"`
}

// ErrorData describes a message the server could not process
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ActionRequest is the HTTP body for POST /api/action
type ActionRequest struct {
	Session string `json:"session,omitempty"`
	table.Request
}

// ActionResponse is the HTTP reply, echoing the session so a client that
// did not send one learns its new ID.
type ActionResponse struct {
	Session string `json:"session"`
	table.Response
}

// TableInfo describes one configured table
type TableInfo struct {
	Name    string     `json:"name"`
	Default bool       `json:"default"`
	Rules   game.Rules `json:"rules"`
}
