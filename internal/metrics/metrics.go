// Package metrics defines Prometheus metrics for the college directory.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collegedir_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegedir_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegedir_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	// IngestRecords counts upload records by outcome: inserted, updated or failed.
	IngestRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegedir_ingest_records_total",
			Help: "Uploaded records by outcome",
		},
		[]string{"outcome"},
	)

	// IngestRuns counts uploads by source and status (ok, partial, rejected).
	IngestRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegedir_ingest_runs_total",
			Help: "Upload runs by source and status",
		},
		[]string{"source", "status"},
	)

	IngestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collegedir_ingest_duration_seconds",
			Help:    "Time spent reconciling one upload",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"source"},
	)

	CollegeCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "collegedir_colleges_total",
			Help: "Total college count as of the last stats query",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "collegedir_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		IngestRecords, IngestRuns, IngestDuration,
		CollegeCount, WSConnections,
	)
}
