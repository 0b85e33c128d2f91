package ws

import (
	"sync"

	"velociti_backend/internal/domain"
	"velociti_backend/internal/logger"
)

// Hub tracks every live push connection, keyed by namespace and user.
// One user may hold several connections per namespace (multiple devices);
// delivery fans out to all of them. There is no buffering: an event for a
// user with no tracked connection is dropped.
type Hub struct {
	mu sync.RWMutex

	// namespace → user id → connection set
	clients map[Namespace]map[int64]map[*Client]struct{}

	// user id → subscribed channel set, session-scoped
	userGroups map[int64]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: map[Namespace]map[int64]map[*Client]struct{}{
			NamespaceNotifications: {},
			NamespaceRfid:          {},
		},
		userGroups: make(map[int64]map[string]struct{}),
	}
}

// Register admits an authenticated connection into the index.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	byUser, ok := h.clients[c.Namespace]
	if !ok {
		byUser = make(map[int64]map[*Client]struct{})
		h.clients[c.Namespace] = byUser
	}
	if byUser[c.UserID] == nil {
		byUser[c.UserID] = make(map[*Client]struct{})
	}
	byUser[c.UserID][c] = struct{}{}

	logger.Info("ws connected", "namespace", c.Namespace, "user_id", c.UserID,
		"connections", len(byUser[c.UserID]))
}

// Unregister removes a connection from every index entry it participates
// in. Closing a user's last connection in a namespace prunes the per-user
// entry; losing the last notifications connection also drops the user's
// session-scoped group memberships.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	byUser, ok := h.clients[c.Namespace]
	if !ok {
		return
	}
	conns, ok := byUser[c.UserID]
	if !ok {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(byUser, c.UserID)
		if c.Namespace == NamespaceNotifications {
			delete(h.userGroups, c.UserID)
		}
	}

	logger.Info("ws disconnected", "namespace", c.Namespace, "user_id", c.UserID)
}

// DeliverNotification fans a notification out to every connection the
// user holds in the notifications namespace. Returns false when none are
// tracked; the payload is then simply dropped.
func (h *Hub) DeliverNotification(userID int64, n domain.Notification) bool {
	return h.deliver(NamespaceNotifications, userID, encode(MsgNotification, n))
}

// DeliverRfidEvent is the rfid-namespace analogue of DeliverNotification.
func (h *Hub) DeliverRfidEvent(userID int64, e domain.RfidEvent) bool {
	return h.deliver(NamespaceRfid, userID, encode(MsgRfidEvent, e))
}

func (h *Hub) deliver(ns Namespace, userID int64, msg []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns := h.clients[ns][userID]
	if len(conns) == 0 {
		return false
	}

	delivered := false
	for c := range conns {
		if c.enqueue(msg) {
			delivered = true
		}
	}
	return delivered
}

// Subscribe adds channels to the user's session-scoped group set.
func (h *Hub) Subscribe(c *Client, channels []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	groups := h.userGroups[c.UserID]
	if groups == nil {
		groups = make(map[string]struct{})
		h.userGroups[c.UserID] = groups
	}
	for _, ch := range channels {
		groups[ch] = struct{}{}
	}
}

// BroadcastToGroup sends a payload to every user subscribed to the group,
// across all their notifications connections. Returns the number of users
// reached.
func (h *Hub) BroadcastToGroup(group, msgType string, payload any) int {
	msg := encode(msgType, payload)

	h.mu.RLock()
	defer h.mu.RUnlock()

	recipients := 0
	for userID, groups := range h.userGroups {
		if _, ok := groups[group]; !ok {
			continue
		}
		reached := false
		for c := range h.clients[NamespaceNotifications][userID] {
			if c.enqueue(msg) {
				reached = true
			}
		}
		if reached {
			recipients++
		}
	}
	return recipients
}

// ConnectionCount reports how many live connections a user holds in a
// namespace.
func (h *Hub) ConnectionCount(ns Namespace, userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[ns][userID])
}
