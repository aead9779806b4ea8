// Package metrics defines dataset-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Dataset-specific counter vectors
var (
	DatasetRowsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forecast_eval",
		Name:      "dataset_rows_skipped_total",
		Help:      "Total number of dataset rows skipped by source type and reason",
	}, []string{"source_type", "reason"})
)

// Dataset-specific histogram vectors
var (
	DatasetFetchLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "forecast_eval",
		Name:      "dataset_fetch_latency_seconds",
		Help:      "Latency of remote dataset fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source_type"})
)

// RecordRowSkipped records skipped dataset rows for one reason.
func RecordRowSkipped(sourceType, reason string, count int) {
	DatasetRowsSkippedTotal.WithLabelValues(sourceType, reason).Add(float64(count))
}

// RecordDatasetFetchLatency records remote fetch latency.
func RecordDatasetFetchLatency(sourceType string, durationSeconds float64) {
	DatasetFetchLatency.WithLabelValues(sourceType).Observe(durationSeconds)
}
