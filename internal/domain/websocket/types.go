// internal/domain/websocket/types.go
package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents different real-time event types
type EventType string

const (
	// Connection events
	EventTypePing         EventType = "ping"
	EventTypePong         EventType = "pong"
	EventTypeConnected    EventType = "connected"
	EventTypeDisconnected EventType = "disconnected"
	EventTypeError        EventType = "error"

	// Customer events (server -> client)
	EventTypeCustomerCreated    EventType = "customer.created"
	EventTypeCustomerSyncFailed EventType = "customer.sync_failed"
	EventTypeBatchSynced        EventType = "customers.batch_synced"
)

// WSMessage is the universal message format
type WSMessage struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorData for error events
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SyncFailedData describes a rejected creation attempt.
type SyncFailedData struct {
	Email      string `json:"email"`
	Outlet     string `json:"outlet"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// BatchSyncedData summarises a batch resync run.
type BatchSyncedData struct {
	Attempted int `json:"attempted"`
	Synced    int `json:"synced"`
	Failed    int `json:"failed"`
}

func NewMessage(eventType EventType, data interface{}) *WSMessage {
	return &WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

func ParseMessage(data []byte) (*WSMessage, error) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid message format: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("message type is required")
	}
	return &msg, nil
}

func (m *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
