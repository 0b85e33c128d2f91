package rfid

import (
	"context"
	"encoding/json"
	"time"

	"velociti_backend/internal/domain"
	"velociti_backend/internal/logger"
	"velociti_backend/internal/service"

	"github.com/nats-io/nats.go"
)

const scanTimeout = 10 * time.Second

// Ingestor subscribes to the raw scan feed and drives the fare gate.
// Malformed or unmapped scans are counted and dropped; nothing on this
// path may kill the subscription.
type Ingestor struct {
	nc      *nats.Conn
	subject string
	fares   *service.FareService
	readers ReaderLookup

	sub *nats.Subscription
}

func NewIngestor(nc *nats.Conn, subject string, fares *service.FareService, readers ReaderLookup) *Ingestor {
	return &Ingestor{
		nc:      nc,
		subject: subject,
		fares:   fares,
		readers: readers,
	}
}

// Connect dials the broker with unbounded reconnects. The reconnect
// handler re-arms the scan subscription in case it did not survive the
// transport drop.
func Connect(url string, onReconnect func(*nats.Conn)) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("broker disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("broker reconnected", "url", nc.ConnectedUrl())
			if onReconnect != nil {
				onReconnect(nc)
			}
		}),
	)
}

// Start arms the subscription. Each scan is handled on its own goroutine
// with a timeout so one slow ledger commit cannot stall the feed.
func (i *Ingestor) Start() error {
	sub, err := i.nc.Subscribe(i.subject, func(m *nats.Msg) {
		ScansReceived.Inc()
		go i.handle(m.Data)
	})
	if err != nil {
		return err
	}
	i.sub = sub
	logger.Info("scan subscription armed", "subject", i.subject)
	return nil
}

// Rearm re-subscribes after a broker reconnect if the old subscription
// went invalid.
func (i *Ingestor) Rearm() {
	if i.sub != nil && i.sub.IsValid() {
		return
	}
	if err := i.Start(); err != nil {
		logger.Error("failed to re-arm scan subscription", "error", err)
	}
}

// Stop drains the subscription so in-flight scans finish.
func (i *Ingestor) Stop() {
	if i.sub != nil {
		_ = i.sub.Drain()
	}
}

func (i *Ingestor) handle(payload []byte) {
	var scan domain.ScanEvent
	if err := json.Unmarshal(payload, &scan); err != nil {
		ScansRejected.WithLabelValues("malformed").Inc()
		logger.Warn("discarding malformed scan payload", "error", err)
		return
	}

	userID, ok := i.readers.UserForReader(scan.ReaderID)
	if !ok {
		ScansRejected.WithLabelValues("unmapped_reader").Inc()
		logger.Warn("discarding scan from unmapped reader", "reader_id", scan.ReaderID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	if err := i.fares.HandleScan(ctx, userID, scan); err != nil {
		ScansRejected.WithLabelValues("gate_error").Inc()
		logger.Error("scan processing failed", "user_id", userID, "reader_id", scan.ReaderID, "error", err)
		return
	}

	ScansProcessed.Inc()
}
