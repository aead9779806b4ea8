package evaluation

import (
	"errors"
	"testing"
	"time"

	"github.com/yourusername/forecast-eval/internal/models"
	"github.com/yourusername/forecast-eval/internal/timebucket"
)

func cvTable(starts []time.Time, mapeValues []float64) *MetricsTable {
	table := &MetricsTable{
		Granularity: GranularityCutoff,
		Metrics:     []string{MetricMAPE},
	}
	for i, start := range starts {
		table.Rows = append(table.Rows, MetricsRow{
			Group:  start.Format("2006-01-02 15:04:05"),
			Start:  start,
			Values: map[string]float64{MetricMAPE: mapeValues[i]},
		})
	}
	return table
}

func TestFormatterRounding(t *testing.T) {
	tests := []struct {
		value     float64
		precision int
		want      string
	}{
		{0.125, 2, "0.12"},
		{0.375, 2, "0.38"},
		{2.5, 0, "2"},
		{3.5, 0, "4"},
		{0, 2, "0.00"},
		{1234.567, 2, "1,234.57"},
		{1234567.891, 2, "1,234,567.89"},
		{1000000, 0, "1,000,000"},
		{-1234.5, 0, "-1,234"},
		{-1000.25, 2, "-1,000.25"},
	}
	for _, tt := range tests {
		f := formatterFor(tt.precision)
		if got := f(tt.value); got != tt.want {
			t.Fatalf("format(%v, %d) = %q, want %q", tt.value, tt.precision, got, tt.want)
		}
	}
}

func TestFormatterIdempotence(t *testing.T) {
	f := formatterFor(2)
	for _, v := range []float64{98765.4321, 0.125, 1234.567, -19.995} {
		direct := f(v)
		preRounded := f(roundHalfEven(v, 2))
		if direct != preRounded {
			t.Fatalf("formatting %v not idempotent: %q vs %q", v, direct, preRounded)
		}
	}
}

func TestGroupThousands(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123", "123"},
		{"1234", "1,234"},
		{"1234567.89", "1,234,567.89"},
		{"-100", "-100"},
		{"-12345.6", "-12,345.6"},
		{"NaN", "NaN"},
		{"+Inf", "+Inf"},
	}
	for _, tt := range tests {
		if got := groupThousands(tt.in); got != tt.want {
			t.Fatalf("groupThousands(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPlain(t *testing.T) {
	table := &MetricsTable{
		Granularity: timebucket.Daily,
		Metrics:     []string{MetricRMSE, MetricMAPE},
		Rows: []MetricsRow{
			{Group: "2021-01-01", Values: map[string]float64{MetricRMSE: 1234.567, MetricMAPE: 0.125}},
			{Group: "2021-01-02", Values: map[string]float64{MetricRMSE: 2, MetricMAPE: 0.375}},
		},
	}
	format := FormatOptions{Precision: map[string]int{MetricRMSE: 1, MetricMAPE: 2}}

	display, metricTables, err := formatResults(table, DatesOptions{}, ResamplingOptions{}, false, format)
	if err != nil {
		t.Fatalf("formatResults: %v", err)
	}
	if display.CV {
		t.Fatalf("plain mode should not mark the table as cross-validated")
	}
	if len(display.Columns) != 2 || display.Columns[0] != MetricRMSE || display.Columns[1] != MetricMAPE {
		t.Fatalf("columns out of request order: %v", display.Columns)
	}
	if display.Rows[0].Label != "2021-01-01" || display.Rows[1].Label != "2021-01-02" {
		t.Fatalf("rows out of group order")
	}
	if got := display.Rows[0].Cells[MetricRMSE]; got != "1,234.6" {
		t.Fatalf("RMSE cell = %q, want 1,234.6", got)
	}
	if got := display.Rows[0].Cells[MetricMAPE]; got != "0.12" {
		t.Fatalf("MAPE cell = %q, want 0.12", got)
	}

	// Per-metric tables keep raw values in display order.
	rmse := metricTables[MetricRMSE]
	if len(rmse.Points) != 2 || rmse.Points[0].Group != "2021-01-01" || rmse.Points[0].Value != 1234.567 {
		t.Fatalf("per-metric table malformed: %+v", rmse.Points)
	}
}

func TestFormatCVFoldOrdering(t *testing.T) {
	starts := []time.Time{
		time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	table := cvTable(starts, []float64{0.5, 1.0, 1.5})
	format := FormatOptions{Precision: map[string]int{MetricMAPE: 3}}

	display, metricTables, err := formatResults(table, DatesOptions{FoldsHorizon: 10}, ResamplingOptions{Freq: "D"}, true, format)
	if err != nil {
		t.Fatalf("formatResults: %v", err)
	}
	if !display.CV {
		t.Fatalf("expected a cross-validation table")
	}
	if len(display.Rows) != 5 {
		t.Fatalf("expected 3 folds + Avg + Std, got %d rows", len(display.Rows))
	}

	// Fold 1 is the most recent cutoff.
	first := display.Rows[0]
	if first.Label != "Fold 1" || first.ValidStart != "2021-03-01 00:00:00" {
		t.Fatalf("Fold 1 = %q starting %q, want the 2021-03-01 fold", first.Label, first.ValidStart)
	}
	if first.ValidEnd != "2021-03-11 00:00:00" {
		t.Fatalf("Fold 1 valid end = %q, want 2021-03-11 00:00:00", first.ValidEnd)
	}
	if display.Rows[2].Label != "Fold 3" || display.Rows[2].ValidStart != "2021-01-01 00:00:00" {
		t.Fatalf("Fold 3 should be the oldest cutoff")
	}

	// Per-metric tables are extracted after relabeling, before summary rows.
	mape := metricTables[MetricMAPE]
	if len(mape.Points) != 3 {
		t.Fatalf("per-metric table should only hold fold rows, got %d", len(mape.Points))
	}
	if mape.Points[0].Group != "Fold 1" || mape.Points[0].Value != 1.5 {
		t.Fatalf("Fold 1 point = %+v, want the most recent raw value 1.5", mape.Points[0])
	}
}

func TestFormatCVSummaryRows(t *testing.T) {
	starts := []time.Time{
		time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	table := cvTable(starts, []float64{0.5, 1.0, 1.5})
	format := FormatOptions{Precision: map[string]int{MetricMAPE: 3}}

	display, _, err := formatResults(table, DatesOptions{FoldsHorizon: 10}, ResamplingOptions{Freq: "D"}, true, format)
	if err != nil {
		t.Fatalf("formatResults: %v", err)
	}

	avg := display.Rows[3]
	if avg.Label != "Avg" || avg.ValidStart != "" || avg.ValidEnd != "Average" {
		t.Fatalf("Avg row malformed: %+v", avg)
	}
	if got := avg.Cells[MetricMAPE]; got != "1.000" {
		t.Fatalf("Avg MAPE = %q, want 1.000", got)
	}

	std := display.Rows[4]
	if std.Label != "Std" || std.ValidStart != "" || std.ValidEnd != "+/-" {
		t.Fatalf("Std row malformed: %+v", std)
	}
	if got := std.Cells[MetricMAPE]; got != "0.500" {
		t.Fatalf("Std MAPE = %q, want 0.500 (sample standard deviation)", got)
	}
}

func TestFormatCVSingleFoldStdIsNaN(t *testing.T) {
	starts := []time.Time{time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)}
	table := cvTable(starts, []float64{0.5})
	format := FormatOptions{Precision: map[string]int{MetricMAPE: 3}}

	display, _, err := formatResults(table, DatesOptions{FoldsHorizon: 5}, ResamplingOptions{Freq: "D"}, true, format)
	if err != nil {
		t.Fatalf("formatResults: %v", err)
	}
	std := display.Rows[len(display.Rows)-1]
	if got := std.Cells[MetricMAPE]; got != "NaN" {
		t.Fatalf("single-fold Std = %q, want NaN", got)
	}
}

func TestFormatCVSubDailyHorizon(t *testing.T) {
	starts := []time.Time{time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)}
	table := cvTable(starts, []float64{0.5})
	format := FormatOptions{Precision: map[string]int{MetricMAPE: 3}}

	display, _, err := formatResults(table, DatesOptions{FoldsHorizon: 48}, ResamplingOptions{Freq: "H"}, true, format)
	if err != nil {
		t.Fatalf("formatResults: %v", err)
	}
	if got := display.Rows[0].ValidEnd; got != "2021-01-03 12:00:00" {
		t.Fatalf("hourly valid end = %q, want 2021-01-03 12:00:00", got)
	}
}

func TestFormatCVRequiresCutoffGranularity(t *testing.T) {
	table := &MetricsTable{Granularity: timebucket.Daily, Metrics: []string{MetricMAPE}}
	format := FormatOptions{Precision: map[string]int{MetricMAPE: 3}}
	_, _, err := formatResults(table, DatesOptions{FoldsHorizon: 10}, ResamplingOptions{Freq: "D"}, true, format)
	if !errors.Is(err, models.ErrUnknownGrouping) {
		t.Fatalf("expected ErrUnknownGrouping, got %v", err)
	}
}

func TestFormatMissingPrecision(t *testing.T) {
	table := &MetricsTable{
		Granularity: timebucket.Daily,
		Metrics:     []string{MetricMAPE, MetricRMSE},
		Rows:        []MetricsRow{{Group: "Global", Values: map[string]float64{MetricMAPE: 1, MetricRMSE: 1}}},
	}
	format := FormatOptions{Precision: map[string]int{MetricMAPE: 3}}
	_, _, err := formatResults(table, DatesOptions{}, ResamplingOptions{}, false, format)
	if !errors.Is(err, models.ErrMissingPrecision) {
		t.Fatalf("expected ErrMissingPrecision, got %v", err)
	}
}
