// Package obs exposes Prometheus instrumentation for the ingestion
// pipeline.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PayloadsDecoded counts successfully decoded payloads by format.
	PayloadsDecoded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitalsync_payloads_decoded_total",
			Help: "Total number of successfully decoded device payloads",
		},
		[]string{"format"},
	)

	// DecodeFailures counts payloads the decoder rejected.
	DecodeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vitalsync_decode_failures_total",
			Help: "Total number of payloads that failed decoding",
		},
	)

	// ValidationFailures counts readings discarded on hard errors.
	ValidationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vitalsync_validation_failures_total",
			Help: "Total number of readings discarded by validation",
		},
	)

	// ValidationWarnings counts suspicious-but-accepted readings.
	ValidationWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vitalsync_validation_warnings_total",
			Help: "Total number of readings that produced validation warnings",
		},
	)

	// MetricsMapped counts emitted backend metrics by type.
	MetricsMapped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitalsync_metrics_mapped_total",
			Help: "Total number of backend metrics produced by the mapper",
		},
		[]string{"metric_type"},
	)

	// BatchesRouted counts router outcomes by status.
	BatchesRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitalsync_batches_routed_total",
			Help: "Total number of metric batches by routing outcome",
		},
		[]string{"status"},
	)

	// QueueDepth is the current offline queue size.
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vitalsync_offline_queue_depth",
			Help: "Current number of metrics in the offline queue",
		},
	)

	// BufferSize is the current in-memory time-series length.
	BufferSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vitalsync_buffer_points",
			Help: "Current number of points in the charting buffer",
		},
	)

	// ProcessDuration tracks end-to-end pipeline latency per payload.
	ProcessDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vitalsync_process_duration_seconds",
			Help:    "End-to-end payload processing latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)
)
