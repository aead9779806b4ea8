package evaluation

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/forecast-eval/internal/frequency"
	"github.com/yourusername/forecast-eval/internal/models"
)

// Display column headers and summary labels for cross-validation tables.
const (
	ColumnValidStart = "Valid Start"
	ColumnValidEnd   = "Valid End"

	labelAvg       = "Avg"
	labelStd       = "Std"
	labelAverage   = "Average"
	labelPlusMinus = "+/-"
)

// DisplayRow is one formatted line of the display table. ValidStart and
// ValidEnd are only populated in cross-validation mode.
type DisplayRow struct {
	Label      string            `json:"label"`
	ValidStart string            `json:"valid_start,omitempty"`
	ValidEnd   string            `json:"valid_end,omitempty"`
	Cells      map[string]string `json:"cells"`
}

// DisplayTable is the presentation artifact: metric values as formatted
// strings, one row per group plus the Avg and Std rows in cross-validation
// mode.
type DisplayTable struct {
	Index   string       `json:"index"`
	Columns []string     `json:"columns"`
	CV      bool         `json:"cv"`
	Rows    []DisplayRow `json:"rows"`
}

// MetricPoint is one raw value of a per-metric table.
type MetricPoint struct {
	Group string  `json:"group"`
	Value float64 `json:"value"`
}

// MetricTable is the per-metric charting artifact; values stay numeric.
type MetricTable struct {
	Metric string        `json:"metric"`
	Points []MetricPoint `json:"points"`
}

type foldRow struct {
	label      string
	validStart string
	validEnd   string
	values     map[string]float64
}

// formatResults turns the raw metrics table into the display table and the
// per-metric lookup tables.
func formatResults(table *MetricsTable, dates DatesOptions, resampling ResamplingOptions, useCV bool, format FormatOptions) (*DisplayTable, map[string]*MetricTable, error) {
	formatters, err := buildFormatters(table.Metrics, format)
	if err != nil {
		return nil, nil, err
	}
	if useCV {
		return formatCV(table, dates, resampling, formatters)
	}
	return formatPlain(table, formatters)
}

// formatPlain keeps the ascending group order of the raw table. Per-metric
// tables hold the raw values; only display cells are formatted.
func formatPlain(table *MetricsTable, formatters map[string]formatterFunc) (*DisplayTable, map[string]*MetricTable, error) {
	labels := make([]string, len(table.Rows))
	for i, row := range table.Rows {
		labels[i] = row.Group
	}
	metricTables := extractMetricTables(table.Metrics, labels, table.Rows)

	display := &DisplayTable{
		Index:   table.Granularity,
		Columns: append([]string(nil), table.Metrics...),
		Rows:    make([]DisplayRow, 0, len(table.Rows)),
	}
	for _, row := range table.Rows {
		display.Rows = append(display.Rows, DisplayRow{
			Label: row.Group,
			Cells: formatCells(row.Values, table.Metrics, formatters),
		})
	}
	return display, metricTables, nil
}

// formatCV builds the fold table: validity window columns, reverse
// chronological order, synthetic fold labels, then Avg and Std rows over the
// fold rows. Per-metric tables are extracted after relabeling and before the
// summary rows, so they carry fold labels and raw values only.
func formatCV(table *MetricsTable, dates DatesOptions, resampling ResamplingOptions, formatters map[string]formatterFunc) (*DisplayTable, map[string]*MetricTable, error) {
	if table.Granularity != GranularityCutoff {
		return nil, nil, fmt.Errorf("%w: cross-validation requires %q grouping, got %q", models.ErrUnknownGrouping, GranularityCutoff, table.Granularity)
	}
	horizon, err := horizonDuration(resampling.Freq, dates.FoldsHorizon)
	if err != nil {
		return nil, nil, err
	}

	folds := make([]foldRow, len(table.Rows))
	for i, row := range table.Rows {
		folds[i] = foldRow{
			validStart: row.Start.Format(timeKeyLayout),
			validEnd:   row.Start.Add(horizon).Format(timeKeyLayout),
			values:     row.Values,
		}
	}
	// Most recent validation window first; the sort key is the rendered
	// string, which orders like the timestamp.
	sort.SliceStable(folds, func(i, j int) bool {
		return folds[i].validStart > folds[j].validStart
	})
	for i := range folds {
		folds[i].label = fmt.Sprintf("Fold %d", i+1)
	}

	labels := make([]string, len(folds))
	rows := make([]MetricsRow, len(folds))
	for i, f := range folds {
		labels[i] = f.label
		rows[i] = MetricsRow{Group: f.label, Values: f.values}
	}
	metricTables := extractMetricTables(table.Metrics, labels, rows)

	display := &DisplayTable{
		Index:   table.Granularity,
		Columns: append([]string(nil), table.Metrics...),
		CV:      true,
		Rows:    make([]DisplayRow, 0, len(folds)+2),
	}
	for _, f := range folds {
		display.Rows = append(display.Rows, DisplayRow{
			Label:      f.label,
			ValidStart: f.validStart,
			ValidEnd:   f.validEnd,
			Cells:      formatCells(f.values, table.Metrics, formatters),
		})
	}

	avgCells := make(map[string]string, len(table.Metrics))
	stdCells := make(map[string]string, len(table.Metrics))
	for _, name := range table.Metrics {
		column := make([]float64, len(folds))
		for i, f := range folds {
			column[i] = f.values[name]
		}
		avgCells[name] = formatters[name](mean(column))
		stdCells[name] = formatters[name](sampleStddev(column))
	}
	display.Rows = append(display.Rows,
		DisplayRow{Label: labelAvg, ValidStart: "", ValidEnd: labelAverage, Cells: avgCells},
		DisplayRow{Label: labelStd, ValidStart: "", ValidEnd: labelPlusMinus, Cells: stdCells},
	)
	return display, metricTables, nil
}

// extractMetricTables pulls the raw per-metric series in display row order.
func extractMetricTables(metrics []string, labels []string, rows []MetricsRow) map[string]*MetricTable {
	out := make(map[string]*MetricTable, len(metrics))
	for _, name := range metrics {
		mt := &MetricTable{Metric: name, Points: make([]MetricPoint, 0, len(rows))}
		for i, row := range rows {
			mt.Points = append(mt.Points, MetricPoint{Group: labels[i], Value: row.Values[name]})
		}
		out[name] = mt
	}
	return out
}

func formatCells(values map[string]float64, metrics []string, formatters map[string]formatterFunc) map[string]string {
	cells := make(map[string]string, len(metrics))
	for _, name := range metrics {
		cells[name] = formatters[name](values[name])
	}
	return cells
}

// horizonDuration converts the fold horizon into an absolute duration: the
// seconds family for sub-daily frequencies, whole 24h days otherwise.
func horizonDuration(freq string, horizon int) (time.Duration, error) {
	subDaily, err := frequency.SubDaily(freq)
	if err != nil {
		return 0, err
	}
	if subDaily {
		seconds, err := frequency.Seconds(freq, horizon)
		if err != nil {
			return 0, err
		}
		return time.Duration(seconds) * time.Second, nil
	}
	days, err := frequency.Days(freq, horizon)
	if err != nil {
		return 0, err
	}
	return time.Duration(days) * 24 * time.Hour, nil
}

type formatterFunc func(float64) string

// buildFormatters resolves one formatter per requested metric from the
// configured precisions. A metric without a precision is a configuration
// fault.
func buildFormatters(metrics []string, format FormatOptions) (map[string]formatterFunc, error) {
	formatters := make(map[string]formatterFunc, len(metrics))
	for _, name := range metrics {
		precision, ok := format.Precision[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", models.ErrMissingPrecision, name)
		}
		formatters[name] = formatterFor(precision)
	}
	return formatters, nil
}

// formatterFor builds the fixed-point renderer for one precision: round half
// to even at that precision, then thousands-separated fixed-point notation.
func formatterFor(precision int) formatterFunc {
	return func(v float64) string {
		rounded := roundHalfEven(v, precision)
		return groupThousands(strconv.FormatFloat(rounded, 'f', precision, 64))
	}
}

// roundHalfEven rounds v to the given number of decimals with ties going to
// the even neighbor. Non-finite values pass through.
func roundHalfEven(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	pow := math.Pow(10, float64(decimals))
	return math.RoundToEven(v*pow) / pow
}

// groupThousands inserts comma separators into the integer part of a
// fixed-point number string. Non-finite renderings pass through.
func groupThousands(s string) string {
	if s == "NaN" || strings.Contains(s, "Inf") {
		return s
	}
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, fracPart := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot:]
	}
	if len(intPart) > 3 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}
	return sign + intPart + fracPart
}
