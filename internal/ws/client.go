package ws

import (
	"encoding/json"
	"time"

	"velociti_backend/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	sendBuffer = 64
)

// Client is one live connection of an authenticated user in a namespace.
type Client struct {
	UserID    int64
	Email     string
	Namespace Namespace

	Conn *websocket.Conn
	Send chan []byte

	hub *Hub
}

func NewClient(userID int64, email string, ns Namespace, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID:    userID,
		Email:     email,
		Namespace: ns,
		Conn:      conn,
		Send:      make(chan []byte, sendBuffer),
		hub:       hub,
	}
}

// Run registers the connection and starts the read/write pumps. It
// returns when the connection drops.
func (c *Client) Run() {
	c.hub.Register(c)
	go c.writePump()
	c.readPump()
}

// enqueue pushes a message onto the send queue without blocking. A full
// queue means the peer stopped reading; the message is dropped.
func (c *Client) enqueue(msg []byte) bool {
	select {
	case c.Send <- msg:
		return true
	default:
		logger.Warn("ws send buffer full, dropping message",
			"namespace", c.Namespace, "user_id", c.UserID)
		return false
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws read error", "user_id", c.UserID, "error", err)
			}
			return
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		c.enqueue(encode(MsgError, ErrorPayload{Message: "malformed message"}))
		return
	}

	switch env.Type {
	case MsgPing:
		c.enqueue(encode(MsgPong, PongPayload{Timestamp: time.Now().UTC().Format(time.RFC3339)}))

	case MsgSubscribe:
		if c.Namespace != NamespaceNotifications {
			c.enqueue(encode(MsgError, ErrorPayload{Message: "subscribe not supported on this namespace"}))
			return
		}
		var p SubscribePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.enqueue(encode(MsgError, ErrorPayload{Message: "malformed subscribe payload"}))
			return
		}
		c.hub.Subscribe(c, p.Channels)
		c.enqueue(encode(MsgSubscriptionSuccess, SubscriptionSuccessPayload{Channels: p.Channels}))

	case MsgMarkRead:
		// No persistent inbox: acknowledge so clients can clear local state.
		var p MarkReadPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.enqueue(encode(MsgError, ErrorPayload{Message: "malformed mark_read payload"}))
			return
		}
		c.enqueue(encode(MsgMarkReadSuccess, MarkReadSuccessPayload{NotificationID: p.NotificationID}))

	default:
		c.enqueue(encode(MsgError, ErrorPayload{Message: "unknown message type"}))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
