// Package metrics exposes the engine's Prometheus collectors, grounded on
// the same prometheus/client_golang package the rest of the pack uses for
// process metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EventsDroppedTotal counts events Push rejected, by reason
	// (no_listeners, too_big).
	EventsDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventhub_events_dropped_total",
			Help: "Total number of events dropped by Push, by reason",
		},
		[]string{"reason"},
	)

	// BatchesSealedTotal counts pending batches sealed into ready, by
	// reason (size, time).
	BatchesSealedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventhub_batches_sealed_total",
			Help: "Total number of batches sealed, by reason",
		},
		[]string{"reason"},
	)

	// DispatchTickDuration is a histogram for the wall time spent in one
	// SendEvents call. It is registered and served, but nothing in this
	// module observes into it.
	DispatchTickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventhub_dispatch_tick_duration_seconds",
			Help:    "Duration of one dispatcher heartbeat tick",
			Buckets: prometheus.DefBuckets,
		},
	)

	// PendingBatchCount is a gauge for the number of open pending batches.
	// It is registered and served, but nothing in this module sets it.
	PendingBatchCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventhub_pending_batch_count",
			Help: "Current number of open pending batches",
		},
	)

	// RemoteCallFailuresTotal is a counter for dispatcher remote-call
	// failures. It is registered and served, but the dispatcher only logs
	// failures and nothing in this module increments it.
	RemoteCallFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "eventhub_remote_call_failures_total",
			Help: "Total number of remote calls whose returned future resolved to an error",
		},
	)
)

func init() {
	prometheus.MustRegister(EventsDroppedTotal)
	prometheus.MustRegister(BatchesSealedTotal)
	prometheus.MustRegister(DispatchTickDuration)
	prometheus.MustRegister(PendingBatchCount)
	prometheus.MustRegister(RemoteCallFailuresTotal)
}

// Handler returns the HTTP handler serving the registered collectors.
func Handler() http.Handler {
	return promhttp.Handler()
}
