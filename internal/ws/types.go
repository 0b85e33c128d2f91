package ws

// Namespace separates the two push channels a user can connect to.
type Namespace string

const (
	NamespaceNotifications Namespace = "notifications"
	NamespaceRfid          Namespace = "rfid"
)

const (
	// client → server
	MsgSubscribe = "subscribe"
	MsgMarkRead  = "mark_read"
	MsgPing      = "ping"

	// server → client
	MsgNotification        = "notification"
	MsgRfidEvent           = "rfid_event"
	MsgSubscriptionSuccess = "subscription_success"
	MsgMarkReadSuccess     = "mark_read_success"
	MsgPong                = "pong"
	MsgError               = "error"
)
