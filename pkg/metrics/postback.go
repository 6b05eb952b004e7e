package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the postback ingestion handler
	PostbackDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "postback_ingest_latency_seconds",
		Help:    "Latency of the postback ingestion pipeline",
		Buckets: prometheus.DefBuckets,
	})

	// Postbacks received, labelled by pipeline outcome status
	PostbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postback_received_total",
		Help: "Total postbacks received by outcome status",
	}, []string{"status"})

	// Commission value credited, labelled by commission type
	CommissionCredited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postback_commission_credited_total",
		Help: "Total commission value credited by type",
	}, []string{"type"})
)

func Init() {
	prometheus.MustRegister(PostbackDuration, PostbackTotal, CommissionCredited)
}
