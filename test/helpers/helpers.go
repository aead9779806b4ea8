// Package helpers provides shared fixtures for integration and e2e tests.
package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// DatasetRow is one row of a fixture dataset.
type DatasetRow struct {
	Timestamp string
	Truth     float64
	Forecast  float64
	Cutoff    string
}

// SampleDailyRows builds a deterministic daily series with two forecasts per
// day, one 10% under and one 20% over the truth.
func SampleDailyRows(start time.Time, days int) []DatasetRow {
	rows := make([]DatasetRow, 0, days*2)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		truth := 100.0 + float64(i*10)
		rows = append(rows,
			DatasetRow{Timestamp: day, Truth: truth, Forecast: truth * 0.9},
			DatasetRow{Timestamp: day, Truth: truth, Forecast: truth * 1.2},
		)
	}
	return rows
}

// WriteDatasetCSV writes a ds,y,yhat[,cutoff] fixture file and returns its path.
func WriteDatasetCSV(t *testing.T, dir, name string, rows []DatasetRow) string {
	t.Helper()

	withCutoff := false
	for _, row := range rows {
		if row.Cutoff != "" {
			withCutoff = true
			break
		}
	}

	var b strings.Builder
	if withCutoff {
		b.WriteString("ds,y,yhat,cutoff\n")
	} else {
		b.WriteString("ds,y,yhat\n")
	}
	for _, row := range rows {
		if withCutoff {
			fmt.Fprintf(&b, "%s,%g,%g,%s\n", row.Timestamp, row.Truth, row.Forecast, row.Cutoff)
		} else {
			fmt.Fprintf(&b, "%s,%g,%g\n", row.Timestamp, row.Truth, row.Forecast)
		}
	}

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

// DatasetServerConfig controls the mock dataset endpoint.
type DatasetServerConfig struct {
	// AuthToken, when set, is the bearer token required on every request.
	AuthToken string
	// Rows is the payload served as a JSON array.
	Rows []DatasetRow
	// FailFirst answers the given number of leading requests with a 500.
	FailFirst int
}

// MockDatasetServer serves a JSON dataset the way a forecast store would.
// The server is closed automatically when the test finishes.
func MockDatasetServer(t *testing.T, cfg DatasetServerConfig) *httptest.Server {
	t.Helper()

	var requests atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cfg.AuthToken != "" && r.Header.Get("Authorization") != "Bearer "+cfg.AuthToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		if n := requests.Add(1); int(n) <= cfg.FailFirst {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		payload := make([]map[string]interface{}, 0, len(cfg.Rows))
		for _, row := range cfg.Rows {
			entry := map[string]interface{}{
				"ds":   row.Timestamp,
				"y":    row.Truth,
				"yhat": row.Forecast,
			}
			if row.Cutoff != "" {
				entry["cutoff"] = row.Cutoff
			}
			payload = append(payload, entry)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(payload)
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// WaitForCondition waits for a condition to become true or times out.
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}

	require.Fail(t, "condition not met within timeout", message)
}

// CreateTestContext creates a context with a timeout for testing.
func CreateTestContext(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)

	return ctx
}

// GetEnvOrDefault returns environment variable value or a default.
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// SkipIfShort skips test if running in short mode.
func SkipIfShort(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode")
	}
}
