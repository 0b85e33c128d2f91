package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

// Connects to the notifications namespace with the given token, sends a
// subscribe and a ping, and prints everything the server pushes back.
func main() {
	token := os.Getenv("WS_TOKEN")
	if token == "" {
		log.Fatal("WS_TOKEN not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	url := fmt.Sprintf("ws://127.0.0.1:%s/ws/notifications?token=%s", port, token)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	send := func(v any) {
		b, _ := json.Marshal(v)
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Fatalf("write: %v", err)
		}
	}

	send(map[string]any{"type": "subscribe", "data": map[string]any{"channels": []string{"travel"}}})
	send(map[string]any{"type": "ping"})

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			continue
		}
		fmt.Printf("<- %s\n", msg)
	}
}
