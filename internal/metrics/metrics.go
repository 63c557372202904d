// Package metrics provides Prometheus metrics for DocSentry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "docsentry"
)

// Scan metrics
var (
	// ScansTotal counts scan runs by outcome.
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "runs_total",
			Help:      "Total number of scan runs",
		},
		[]string{"outcome"},
	)

	// ScanDuration tracks end-to-end scan latency.
	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Scan run duration in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	// DocumentsScanned counts documents walked across all scans.
	DocumentsScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "documents_total",
			Help:      "Total number of documents scanned",
		},
	)
)

// Alert metrics
var (
	// AlertsCreatedTotal counts created alerts by type and severity.
	AlertsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "created_total",
			Help:      "Total number of alerts created",
		},
		[]string{"type", "severity"},
	)

	// OpenAlerts tracks the number of currently open alerts.
	OpenAlerts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "open",
			Help:      "Number of currently open alerts",
		},
	)

	// RemediationsTotal counts remediation attempts by action and outcome.
	RemediationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "remediations_total",
			Help:      "Total number of remediation attempts",
		},
		[]string{"action", "outcome"},
	)
)

// Source metrics
var (
	// SourceRequestsTotal counts requests to the document source API.
	SourceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "requests_total",
			Help:      "Total number of document source API requests",
		},
		[]string{"method", "status"},
	)
)

// HTTP metrics
var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)
