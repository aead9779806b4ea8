package evaluation

import (
	"fmt"
	"math"

	"github.com/yourusername/forecast-eval/internal/models"
)

// Func is the uniform shape of a metric function: two positionally paired
// series in, one scalar out.
type Func func(truth, forecast []float64) (float64, error)

// Canonical metric names.
const (
	MetricMAPE  = "MAPE"
	MetricSMAPE = "SMAPE"
	MetricMSE   = "MSE"
	MetricRMSE  = "RMSE"
	MetricMAE   = "MAE"
)

// MetricNames returns the supported metric names in display order.
func MetricNames() []string {
	return []string{MetricMAPE, MetricSMAPE, MetricMSE, MetricRMSE, MetricMAE}
}

// builtinMetrics maps metric names to functions with the uniform signature.
// MAPE and SMAPE never fail; the rest report malformed input.
func builtinMetrics() map[string]Func {
	return map[string]Func{
		MetricMAPE: func(truth, forecast []float64) (float64, error) {
			return MAPE(truth, forecast), nil
		},
		MetricSMAPE: func(truth, forecast []float64) (float64, error) {
			return SMAPE(truth, forecast), nil
		},
		MetricMSE:  MSE,
		MetricRMSE: RMSE,
		MetricMAE:  MAE,
	}
}

// MAPE returns the mean absolute percentage error over the points whose truth
// is nonzero. Multiply by 100 to get a percentage. Degenerate input (length
// mismatch, or no nonzero truth left after filtering) returns 0.
func MAPE(truth, forecast []float64) float64 {
	if len(truth) != len(forecast) {
		return 0
	}
	sum := 0.0
	kept := 0
	for i, t := range truth {
		if t == 0 {
			continue
		}
		sum += math.Abs((t - forecast[i]) / t)
		kept++
	}
	if kept == 0 {
		return 0
	}
	return sum / float64(kept)
}

// SMAPE returns the symmetric mean absolute percentage error over the points
// whose absolute truth plus absolute forecast is nonzero. Degenerate input
// returns 0, as MAPE.
func SMAPE(truth, forecast []float64) float64 {
	if len(truth) != len(forecast) {
		return 0
	}
	sum := 0.0
	kept := 0
	for i, t := range truth {
		f := forecast[i]
		denominator := math.Abs(t) + math.Abs(f)
		if denominator == 0 {
			continue
		}
		sum += 2.0 * math.Abs(t-f) / denominator
		kept++
	}
	if kept == 0 {
		return 0
	}
	return sum / float64(kept)
}

// MSE returns the mean squared error.
func MSE(truth, forecast []float64) (float64, error) {
	if len(truth) != len(forecast) {
		return 0, fmt.Errorf("%w: %d truth vs %d forecast", models.ErrLengthMismatch, len(truth), len(forecast))
	}
	if len(truth) == 0 {
		return 0, models.ErrEmptyInput
	}
	sum := 0.0
	for i, t := range truth {
		diff := t - forecast[i]
		sum += diff * diff
	}
	return sum / float64(len(truth)), nil
}

// RMSE returns the root mean squared error.
func RMSE(truth, forecast []float64) (float64, error) {
	mse, err := MSE(truth, forecast)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE returns the mean absolute error.
func MAE(truth, forecast []float64) (float64, error) {
	if len(truth) != len(forecast) {
		return 0, fmt.Errorf("%w: %d truth vs %d forecast", models.ErrLengthMismatch, len(truth), len(forecast))
	}
	if len(truth) == 0 {
		return 0, models.ErrEmptyInput
	}
	sum := 0.0
	for i, t := range truth {
		sum += math.Abs(t - forecast[i])
	}
	return sum / float64(len(truth)), nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStddev uses an N-1 denominator; fewer than two values yield NaN.
func sampleStddev(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	m := mean(values)
	variance := 0.0
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(len(values)-1))
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
