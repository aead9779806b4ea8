package evaluation

import (
	"fmt"
	"sort"
	"time"

	"github.com/yourusername/forecast-eval/internal/models"
)

// GranularityCutoff selects the fold cutoff timestamp as the grouping key.
const GranularityCutoff = "cutoff"

// timeKeyLayout renders timestamps so that string order equals time order.
const timeKeyLayout = "2006-01-02 15:04:05"

// MetricsRow is one raw scored group.
type MetricsRow struct {
	Group  string
	Start  time.Time
	Values map[string]float64
}

// MetricsTable is the raw output of the metric computer: one row per group in
// ascending group-key order, one value per requested metric.
type MetricsTable struct {
	Granularity string
	Metrics     []string
	Rows        []MetricsRow
}

type groupedSeries struct {
	start    time.Time
	truth    []float64
	forecast []float64
}

// computeMetrics scores every group of the prepared rows. With
// AggregateForecasts set, truth and forecast are summed per group first and
// each metric sees the two totals; otherwise each metric sees the group's
// full paired series.
func computeMetrics(points []models.EvalPoint, funcs map[string]Func, eval EvalOptions) (*MetricsTable, error) {
	for _, name := range eval.Metrics {
		if _, ok := funcs[name]; !ok {
			return nil, fmt.Errorf("%w: %s", models.ErrUnknownMetric, name)
		}
	}

	groups, keys, err := groupPoints(points, eval.Granularity)
	if err != nil {
		return nil, err
	}

	table := &MetricsTable{
		Granularity: eval.Granularity,
		Metrics:     append([]string(nil), eval.Metrics...),
		Rows:        make([]MetricsRow, 0, len(keys)),
	}
	for _, key := range keys {
		g := groups[key]
		truth, forecast := g.truth, g.forecast
		if eval.AggregateForecasts {
			truth = []float64{sum(g.truth)}
			forecast = []float64{sum(g.forecast)}
		}
		row := MetricsRow{
			Group:  key,
			Start:  g.start,
			Values: make(map[string]float64, len(eval.Metrics)),
		}
		for _, name := range eval.Metrics {
			value, err := funcs[name](truth, forecast)
			if err != nil {
				return nil, fmt.Errorf("computing %s for group %s: %w", name, key, err)
			}
			row.Values[name] = value
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// groupPoints buckets rows by their grouping key and returns the buckets
// together with the ascending sorted key order. Row order inside a bucket
// follows input order.
func groupPoints(points []models.EvalPoint, granularity string) (map[string]*groupedSeries, []string, error) {
	groups := make(map[string]*groupedSeries)
	keys := make([]string, 0)
	for i, p := range points {
		key, start, err := groupKey(p, granularity)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i, err)
		}
		g, ok := groups[key]
		if !ok {
			g = &groupedSeries{start: start}
			groups[key] = g
			keys = append(keys, key)
		}
		g.truth = append(g.truth, p.Truth)
		g.forecast = append(g.forecast, p.Forecast)
	}
	sort.Strings(keys)
	return groups, keys, nil
}

func groupKey(p models.EvalPoint, granularity string) (string, time.Time, error) {
	if granularity == GranularityCutoff {
		if !p.HasCutoff() {
			return "", time.Time{}, models.ErrMissingCutoff
		}
		return p.Cutoff.Format(timeKeyLayout), p.Cutoff, nil
	}
	label, ok := p.Groups[granularity]
	if !ok {
		return "", time.Time{}, fmt.Errorf("%w: %s", models.ErrUnknownGrouping, granularity)
	}
	return label, time.Time{}, nil
}
