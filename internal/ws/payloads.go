package ws

import "encoding/json"

// Envelope frames every message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// client → server
type SubscribePayload struct {
	Channels []string `json:"channels"`
}

type MarkReadPayload struct {
	NotificationID string `json:"notification_id"`
}

// server → client
type SubscriptionSuccessPayload struct {
	Channels []string `json:"channels"`
}

type MarkReadSuccessPayload struct {
	NotificationID string `json:"notification_id"`
}

type PongPayload struct {
	Timestamp string `json:"timestamp"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// encode wraps a payload in an Envelope and marshals it. Marshal errors
// cannot happen for our payload types, so the result is returned directly.
func encode(msgType string, payload any) []byte {
	data, _ := json.Marshal(payload)
	b, _ := json.Marshal(Envelope{Type: msgType, Data: data})
	return b
}
