// Package metrics defines evaluation-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Evaluation-specific counter vectors
var (
	EvaluationsByGranularityTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forecast_eval",
		Name:      "evaluations_by_granularity_total",
		Help:      "Total number of evaluation runs by granularity and mode",
	}, []string{"granularity", "mode"})

	ReportsPersistedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forecast_eval",
		Name:      "reports_persisted_total",
		Help:      "Total number of evaluation reports written to storage by status",
	}, []string{"status"})
)

// Evaluation-specific gauge vectors
var (
	MetricScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "forecast_eval",
		Name:      "metric_score",
		Help:      "Most recent value of each accuracy metric at the evaluated granularity",
	}, []string{"metric", "granularity"})
)

// RecordEvaluationByGranularity records an evaluation run broken down by granularity.
func RecordEvaluationByGranularity(granularity, mode string) {
	EvaluationsByGranularityTotal.WithLabelValues(granularity, mode).Inc()
}

// UpdateMetricScore updates the latest score for a metric.
func UpdateMetricScore(metric, granularity string, value float64) {
	MetricScore.WithLabelValues(metric, granularity).Set(value)
}

// RecordReportPersisted records a report persistence attempt.
func RecordReportPersisted(status string) {
	ReportsPersistedTotal.WithLabelValues(status).Inc()
}
