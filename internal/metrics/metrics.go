// Package metrics provides centralized Prometheus metrics registry for the evaluation service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	EvaluationRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "forecast_eval",
		Name:      "evaluation_runs_total",
		Help:      "Total number of evaluation runs",
	})
	EvaluationErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "forecast_eval",
		Name:      "evaluation_errors_total",
		Help:      "Total number of failed evaluation runs",
	})
	ReportCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "forecast_eval",
		Name:      "report_cache_hits_total",
		Help:      "Total number of report cache hits",
	})
	ReportCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "forecast_eval",
		Name:      "report_cache_misses_total",
		Help:      "Total number of report cache misses",
	})
	ScheduledRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forecast_eval",
		Name:      "scheduled_runs_total",
		Help:      "Total number of scheduled evaluation runs by job and status",
	}, []string{"job_name", "status"})
)

// Gauge metrics
var (
	DatasetRows = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "forecast_eval",
		Name:      "dataset_rows",
		Help:      "Number of rows in the most recently loaded dataset",
	})
	LastRunGroups = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "forecast_eval",
		Name:      "last_run_groups",
		Help:      "Number of groups scored in the most recent evaluation run",
	})
)

// Histogram metrics
var (
	EvaluationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "forecast_eval",
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of evaluation runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	DatasetLoadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "forecast_eval",
		Name:      "dataset_load_duration_seconds",
		Help:      "Duration of dataset loads in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(EvaluationRunsTotal)
		registry.MustRegister(EvaluationErrorsTotal)
		registry.MustRegister(ReportCacheHitsTotal)
		registry.MustRegister(ReportCacheMissesTotal)
		registry.MustRegister(ScheduledRunsTotal)

		// Register gauge metrics
		registry.MustRegister(DatasetRows)
		registry.MustRegister(LastRunGroups)

		// Register histogram metrics
		registry.MustRegister(EvaluationDuration)
		registry.MustRegister(DatasetLoadDuration)

		// Register evaluation metrics
		registry.MustRegister(EvaluationsByGranularityTotal)
		registry.MustRegister(MetricScore)
		registry.MustRegister(ReportsPersistedTotal)

		// Register dataset metrics
		registry.MustRegister(DatasetRowsSkippedTotal)
		registry.MustRegister(DatasetFetchLatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordEvaluationRun records a completed evaluation run.
func RecordEvaluationRun(durationSeconds float64) {
	EvaluationRunsTotal.Inc()
	EvaluationDuration.Observe(durationSeconds)
}

// RecordEvaluationError records a failed evaluation run.
func RecordEvaluationError() {
	EvaluationErrorsTotal.Inc()
}

// RecordCacheResult records a report cache lookup outcome.
func RecordCacheResult(hit bool) {
	if hit {
		ReportCacheHitsTotal.Inc()
	} else {
		ReportCacheMissesTotal.Inc()
	}
}

// RecordScheduledRun records a scheduled run outcome.
func RecordScheduledRun(jobName, status string) {
	ScheduledRunsTotal.WithLabelValues(jobName, status).Inc()
}

// UpdateDatasetRows updates the dataset row count gauge.
func UpdateDatasetRows(count float64) {
	DatasetRows.Set(count)
}

// UpdateLastRunGroups updates the scored group count gauge.
func UpdateLastRunGroups(count float64) {
	LastRunGroups.Set(count)
}

// RecordDatasetLoadDuration records dataset load duration.
func RecordDatasetLoadDuration(durationSeconds float64) {
	DatasetLoadDuration.Observe(durationSeconds)
}
