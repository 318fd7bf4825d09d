// internal/model/event.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventTransactionCompleted EventType = "TRANSACTION_COMPLETED"
	EventTransactionFailed    EventType = "TRANSACTION_FAILED"
	EventConnectionOpened     EventType = "CONNECTION_OPENED"
	EventConnectionClosed     EventType = "CONNECTION_CLOSED"
)

// RotatorEvent is published after every rotator transaction and on
// connection changes
type RotatorEvent struct {
	ID        uuid.UUID  `json:"id"`
	EventType EventType  `json:"event_type"`
	Data      JSONObject `json:"data,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Source    string     `json:"source"`
	Severity  string     `json:"severity"` // INFO, WARNING, ERROR
}

// TransactionEventData describes one rotator transaction
type TransactionEventData struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Operation     string    `json:"operation"`
	Duration      int64     `json:"duration_ms"`
	ErrorMessage  *string   `json:"error_message,omitempty"`
}

// JSONObject is a free-form JSON object
type JSONObject map[string]interface{}
