package evaluation

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
)

// GenerateConsoleReport formats the display table for terminal output
func GenerateConsoleReport(table *DisplayTable) string {
	var builder strings.Builder
	builder.WriteString("Forecast Accuracy Report\n")
	builder.WriteString("========================\n")

	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headerFields(table), "\t"))
	for _, row := range table.Rows {
		fmt.Fprintln(w, strings.Join(rowFields(table, row), "\t"))
	}
	w.Flush()
	return builder.String()
}

// GenerateCSVExport writes the display table for spreadsheets
func GenerateCSVExport(table *DisplayTable, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	var buf strings.Builder
	w := csv.NewWriter(&buf)
	if err := w.Write(headerFields(table)); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := w.Write(rowFields(table, row)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte(buf.String()), 0o644)
}

// GenerateJSONExport writes the display table and the raw per-metric tables
// for downstream charting
func GenerateJSONExport(table *DisplayTable, metricTables map[string]*MetricTable, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	payload := struct {
		Display *DisplayTable           `json:"display"`
		Metrics map[string]*MetricTable `json:"metrics"`
	}{Display: table, Metrics: metricTables}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}

func headerFields(table *DisplayTable) []string {
	header := []string{table.Index}
	if table.CV {
		header = append(header, ColumnValidStart, ColumnValidEnd)
	}
	return append(header, table.Columns...)
}

func rowFields(table *DisplayTable, row DisplayRow) []string {
	fields := []string{row.Label}
	if table.CV {
		fields = append(fields, row.ValidStart, row.ValidEnd)
	}
	for _, col := range table.Columns {
		fields = append(fields, row.Cells[col])
	}
	return fields
}
