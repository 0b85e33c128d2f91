package rfid

import "github.com/prometheus/client_golang/prometheus"

var (
	ScansReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rfid_scans_received_total",
		Help: "Total scan messages received from the broker",
	})
	ScansRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rfid_scans_rejected_total",
		Help: "Scan messages dropped before reaching the fare gate",
	}, []string{"reason"})
	ScansProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rfid_scans_processed_total",
		Help: "Scan messages that completed a fare gate transition",
	})
)

func init() {
	prometheus.MustRegister(ScansReceived)
	prometheus.MustRegister(ScansRejected)
	prometheus.MustRegister(ScansProcessed)
}
