package ws

import (
	"encoding/json"
	"testing"
)

func TestHandleMessage_Ping(t *testing.T) {
	hub := NewHub()
	c := testClient(hub, 1, NamespaceRfid)

	c.handleMessage([]byte(`{"type":"ping"}`))

	env := drain(t, c)
	if env.Type != MsgPong {
		t.Fatalf("reply type = %s; want %s", env.Type, MsgPong)
	}
	var p PongPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		t.Fatalf("unmarshal pong: %v", err)
	}
	if p.Timestamp == "" {
		t.Fatal("pong carries no timestamp")
	}
}

func TestHandleMessage_Subscribe(t *testing.T) {
	hub := NewHub()
	c := testClient(hub, 1, NamespaceNotifications)
	hub.Register(c)

	c.handleMessage([]byte(`{"type":"subscribe","data":{"channels":["travel","promotions"]}}`))

	env := drain(t, c)
	if env.Type != MsgSubscriptionSuccess {
		t.Fatalf("reply type = %s; want %s", env.Type, MsgSubscriptionSuccess)
	}

	if n := hub.BroadcastToGroup("travel", MsgNotification, map[string]string{"m": "x"}); n != 1 {
		t.Fatalf("broadcast after subscribe reached %d users; want 1", n)
	}
}

func TestHandleMessage_SubscribeRejectedOnRfid(t *testing.T) {
	hub := NewHub()
	c := testClient(hub, 1, NamespaceRfid)

	c.handleMessage([]byte(`{"type":"subscribe","data":{"channels":["travel"]}}`))

	env := drain(t, c)
	if env.Type != MsgError {
		t.Fatalf("reply type = %s; want %s", env.Type, MsgError)
	}
}

func TestHandleMessage_MarkRead(t *testing.T) {
	hub := NewHub()
	c := testClient(hub, 1, NamespaceNotifications)

	c.handleMessage([]byte(`{"type":"mark_read","data":{"notification_id":"abc-123"}}`))

	env := drain(t, c)
	if env.Type != MsgMarkReadSuccess {
		t.Fatalf("reply type = %s; want %s", env.Type, MsgMarkReadSuccess)
	}
	var p MarkReadSuccessPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		t.Fatalf("unmarshal ack: %v", err)
	}
	if p.NotificationID != "abc-123" {
		t.Fatalf("ack id = %q; want abc-123", p.NotificationID)
	}
}

func TestHandleMessage_Malformed(t *testing.T) {
	hub := NewHub()
	c := testClient(hub, 1, NamespaceNotifications)

	c.handleMessage([]byte(`{not json`))

	env := drain(t, c)
	if env.Type != MsgError {
		t.Fatalf("reply type = %s; want %s", env.Type, MsgError)
	}
}

func TestHandleMessage_UnknownType(t *testing.T) {
	hub := NewHub()
	c := testClient(hub, 1, NamespaceNotifications)

	c.handleMessage([]byte(`{"type":"teleport"}`))

	env := drain(t, c)
	if env.Type != MsgError {
		t.Fatalf("reply type = %s; want %s", env.Type, MsgError)
	}
}
