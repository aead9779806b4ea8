package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/forecast-eval/internal/models"
)

// Accepted timestamp layouts, tried in order
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseCSV reads a column-mapped CSV dataset. Rows that fail to parse are
// skipped and counted rather than failing the whole load.
func parseCSV(r io.Reader, mapping ColumnMapping, sourceName string, logger *log.Logger) (*LoadResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, NewSourceError(sourceName, ErrCodeInvalidData, "dataset is empty", models.ErrEmptyInput)
	}
	if err != nil {
		return nil, NewSourceError(sourceName, ErrCodeInvalidData, "failed to read header", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	timestampIdx, err := requireColumn(columns, mapping.Timestamp, sourceName)
	if err != nil {
		return nil, err
	}
	truthIdx, err := requireColumn(columns, mapping.Truth, sourceName)
	if err != nil {
		return nil, err
	}
	forecastIdx, err := requireColumn(columns, mapping.Forecast, sourceName)
	if err != nil {
		return nil, err
	}

	cutoffIdx := -1
	if mapping.Cutoff != "" {
		if idx, ok := columns[mapping.Cutoff]; ok {
			cutoffIdx = idx
		}
	}

	reserved := map[int]bool{timestampIdx: true, truthIdx: true, forecastIdx: true}
	if cutoffIdx >= 0 {
		reserved[cutoffIdx] = true
	}

	result := newLoadResult()
	row := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipRow(result, logger, sourceName, row, "malformed_row")
				continue
			}
			return nil, NewSourceError(sourceName, ErrCodeInvalidData, "failed to read rows", err)
		}

		timestamp, err := parseTimestamp(record[timestampIdx])
		if err != nil {
			skipRow(result, logger, sourceName, row, "unparseable_timestamp")
			continue
		}
		truth, err := parseValue(record[truthIdx])
		if err != nil {
			skipRow(result, logger, sourceName, row, "unparseable_value")
			continue
		}
		forecast, err := parseValue(record[forecastIdx])
		if err != nil {
			skipRow(result, logger, sourceName, row, "unparseable_value")
			continue
		}

		point := models.EvalPoint{Timestamp: timestamp, Truth: truth, Forecast: forecast}

		if cutoffIdx >= 0 && strings.TrimSpace(record[cutoffIdx]) != "" {
			cutoff, err := parseTimestamp(record[cutoffIdx])
			if err != nil {
				skipRow(result, logger, sourceName, row, "unparseable_cutoff")
				continue
			}
			point.Cutoff = cutoff
		}

		// Remaining columns become grouping labels
		for name, idx := range columns {
			if reserved[idx] || idx >= len(record) {
				continue
			}
			value := strings.TrimSpace(record[idx])
			if value == "" {
				continue
			}
			if point.Groups == nil {
				point.Groups = make(map[string]string)
			}
			point.Groups[name] = value
		}

		result.Points = append(result.Points, point)
	}

	return result, nil
}

func requireColumn(columns map[string]int, name, sourceName string) (int, error) {
	idx, ok := columns[name]
	if !ok {
		return 0, NewSourceError(sourceName, ErrCodeInvalidData, fmt.Sprintf("missing column %q", name), models.ErrMissingColumn)
	}
	return idx, nil
}

func skipRow(result *LoadResult, logger *log.Logger, sourceName string, row int, reason string) {
	result.skip(reason)
	if logger != nil {
		logger.Printf("Skipping row %d in %s: %s", row, sourceName, reason)
	}
}

// parseTimestamp parses a timestamp using the accepted layouts
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %s", s)
}

// parseValue parses a numeric field, tolerating thousands separators
func parseValue(s string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
