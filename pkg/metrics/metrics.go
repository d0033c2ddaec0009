package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Provider call latency in milliseconds
	ProviderCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_call_latency_ms",
			Help:    "Delivery provider call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"status"},
	)

	// Document store write latency in seconds
	StoreWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_write_duration_seconds",
			Help:    "Document store write duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"doc"},
	)

	// Dispatched email count
	EmailDispatchedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_dispatched_count",
			Help: "Total number of emails dispatched",
		},
		[]string{"status"}, // status: sent, invalid, failed
	)

	// Webhook event count
	WebhookEventCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_event_count",
			Help: "Total number of webhook events received",
		},
		[]string{"result"}, // result: applied, skipped, failed
	)
)

// RecordProviderCallLatency records one delivery provider call.
func RecordProviderCallLatency(status string, duration time.Duration) {
	ProviderCallLatency.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

// RecordStoreWriteDuration records one document store write.
func RecordStoreWriteDuration(doc string, duration time.Duration) {
	StoreWriteDuration.WithLabelValues(doc).Observe(duration.Seconds())
}

// RecordEmailDispatched increments the dispatch counter.
func RecordEmailDispatched(status string, n int) {
	EmailDispatchedCount.WithLabelValues(status).Add(float64(n))
}

// RecordWebhookEvent increments the webhook event counter.
func RecordWebhookEvent(result string) {
	WebhookEventCount.WithLabelValues(result).Inc()
}
