package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScanEvent is one raw tap from the RFID sensor network. Consumed once,
// never persisted.
type ScanEvent struct {
	UID      string `json:"uid"`
	ReaderID string `json:"reader_id"`
}

// Notification is a transient push payload. If the user has no live
// connection when it is emitted, it is dropped.
type Notification struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      string         `json:"type"`
	Timestamp string         `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
	Read      bool           `json:"read"`
	ActionURL string         `json:"action_url,omitempty"`
}

// NewNotification stamps a fresh id and timestamp on a push payload.
func NewNotification(title, message, typ string, metadata map[string]any) Notification {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Type:      typ,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Metadata:  metadata,
	}
}

// RfidEvent mirrors a gate transition to the rfid namespace.
type RfidEvent struct {
	UserID         int64          `json:"user_id"`
	StationID      string         `json:"station_id"`
	StationName    string         `json:"station_name"`
	Timestamp      string         `json:"timestamp"`
	EventType      string         `json:"event_type"`
	AdditionalData map[string]any `json:"additional_data"`
}

// RfidEvent types.
const (
	RfidEntry = "entry"
	RfidExit  = "exit"
)
