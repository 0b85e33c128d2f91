package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/nats-io/nats.go"
)

// Publishes a synthetic scan onto the broker, standing in for the RFID
// sensor network during local testing.
func main() {
	uid := flag.String("uid", "04A1B2C3", "card uid")
	reader := flag.String("reader", "READER-01", "reader id")
	flag.Parse()

	url := os.Getenv("NATS_URL")
	if url == "" {
		url = nats.DefaultURL
	}
	subject := os.Getenv("SCAN_SUBJECT")
	if subject == "" {
		subject = "rfid.scans"
	}

	nc, err := nats.Connect(url)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer nc.Close()

	payload, _ := json.Marshal(map[string]string{"uid": *uid, "reader_id": *reader})
	if err := nc.Publish(subject, payload); err != nil {
		log.Fatalf("publish: %v", err)
	}
	if err := nc.Flush(); err != nil {
		log.Fatalf("flush: %v", err)
	}

	log.Printf("published scan uid=%s reader=%s to %s", *uid, *reader, subject)
}
