package evaluation

import (
	"github.com/yourusername/forecast-eval/internal/models"
)

// EvalOptions select the metrics to compute and how rows are grouped.
type EvalOptions struct {
	// Metrics holds the requested metric names in display order.
	Metrics []string
	// Granularity is the grouping column: a time bucket name, or "cutoff"
	// in cross-validation mode.
	Granularity string
	// AggregateForecasts sums truth and forecast per group before scoring
	// instead of scoring the full per-row series.
	AggregateForecasts bool
}

// DatesOptions carries the cross-validation fold geometry.
type DatesOptions struct {
	// FoldsHorizon is the validation window length in frequency units.
	FoldsHorizon int
}

// ResamplingOptions carries the dataset frequency code, e.g. "D" or "3H".
type ResamplingOptions struct {
	Freq string
}

// FormatOptions maps each metric name to its display precision.
type FormatOptions struct {
	Precision map[string]int
}

// EvaluatePerformance computes the requested accuracy metrics over the
// evaluation rows and renders them for presentation. It returns the display
// table plus one raw-valued table per metric; on any fault neither output is
// returned.
func EvaluatePerformance(points []models.EvalPoint, eval EvalOptions, dates DatesOptions, resampling ResamplingOptions, useCV bool, format FormatOptions) (*DisplayTable, map[string]*MetricTable, error) {
	prepared := preprocessPoints(points, useCV)
	table, err := computeMetrics(prepared, builtinMetrics(), eval)
	if err != nil {
		return nil, nil, err
	}
	return formatResults(table, dates, resampling, useCV, format)
}
