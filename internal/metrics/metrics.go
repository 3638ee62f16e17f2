package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch results.
const (
	ResultSuccess     = "success"
	ResultUnreachable = "unreachable"
	ResultBadResponse = "bad_response"
	ResultFailure     = "failure"
)

var (
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "couchlist_upstream_requests_total",
			Help: "Requests sent to CouchPotato by request type and result",
		},
		[]string{"request", "result"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "couchlist_upstream_request_duration_seconds",
			Help:    "Duration of CouchPotato requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"request"},
	)

	EntriesEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "couchlist_entries_emitted_total",
			Help: "Entries produced from active movies",
		},
		[]string{"source"},
	)

	EntriesInvalidTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "couchlist_entries_invalid_total",
			Help: "Entries dropped by validation",
		},
		[]string{"source"},
	)

	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "couchlist_sync_runs_total",
			Help: "List sync runs by source and result",
		},
		[]string{"source", "result"},
	)

	ListSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "couchlist_list_entries",
			Help: "Entries currently stored per list",
		},
		[]string{"list"},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "couchlist_websocket_clients",
			Help: "Connected websocket clients",
		},
	)
)

// RecordUpstreamRequest records one request to CouchPotato.
func RecordUpstreamRequest(request, result string, d time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(request, result).Inc()
	UpstreamRequestDuration.WithLabelValues(request).Observe(d.Seconds())
}

// RecordSync records a sync outcome and the resulting list size.
func RecordSync(source string, err error, size int) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	} else {
		ListSize.WithLabelValues(source).Set(float64(size))
	}
	SyncRunsTotal.WithLabelValues(source, result).Inc()
}
