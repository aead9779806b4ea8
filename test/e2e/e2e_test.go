//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/forecast-eval/internal/config"
	"github.com/yourusername/forecast-eval/internal/database"
	"github.com/yourusername/forecast-eval/internal/dataset"
	"github.com/yourusername/forecast-eval/internal/evaluation"
	"github.com/yourusername/forecast-eval/internal/repository"
	"github.com/yourusername/forecast-eval/internal/service"
	"github.com/yourusername/forecast-eval/test/helpers"
)

const skipE2E = "Skipping E2E test in short mode"

type jsonExport struct {
	Display *evaluation.DisplayTable           `json:"display"`
	Metrics map[string]*evaluation.MetricTable `json:"metrics"`
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func fileSource(t *testing.T, path string) dataset.Source {
	t.Helper()

	src, err := dataset.NewSource(config.DatasetConfig{
		Source:          path,
		TimestampColumn: "ds",
		TruthColumn:     "y",
		ForecastColumn:  "yhat",
		CutoffColumn:    "cutoff",
	}, nil, nil)
	require.NoError(t, err)
	return src
}

// TestCompleteWorkflow validates the pipeline from CSV file to rendered reports
func TestCompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip(skipE2E)
	}

	ctx := context.Background()
	dir := t.TempDir()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := helpers.SampleDailyRows(start, 10)
	csvPath := helpers.WriteDatasetCSV(t, dir, "history.csv", rows)

	source := fileSource(t, csvPath)

	opts := evaluation.Options{
		Eval: evaluation.EvalOptions{
			Metrics:     []string{"MAPE", "RMSE", "MAE"},
			Granularity: "Daily",
		},
		Format: evaluation.FormatOptions{
			Precision: map[string]int{"MAPE": 3, "RMSE": 1, "MAE": 1},
		},
	}
	require.NoError(t, opts.Validate())

	cache := service.NewReportCache(time.Minute, time.Minute)
	svc := service.NewEvaluationService(source, opts, nil, cache, quietLogger())

	// Run the evaluation
	result, err := svc.Run(ctx)
	require.NoError(t, err)
	require.NotNil(t, result.Display)
	require.NotNil(t, result.Report)

	assert.Equal(t, len(rows), result.Report.RowCount)
	assert.Equal(t, 10, result.Report.GroupCount)

	// Render the console report
	console := evaluation.GenerateConsoleReport(result.Display)
	assert.Contains(t, console, "Forecast Accuracy Report")
	assert.Contains(t, console, "MAPE")
	assert.Contains(t, console, "RMSE")
	assert.Contains(t, console, "2024-01-01")

	// Export CSV
	csvOut := filepath.Join(dir, "report.csv")
	require.NoError(t, evaluation.GenerateCSVExport(result.Display, csvOut))

	exported, err := os.ReadFile(csvOut)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(exported)), "\n")
	require.Len(t, lines, 11, "Header plus one row per day")
	assert.Contains(t, lines[0], "MAPE")

	// Export JSON
	jsonOut := filepath.Join(dir, "report.json")
	require.NoError(t, evaluation.GenerateJSONExport(result.Display, result.MetricTables, jsonOut))

	payload, err := os.ReadFile(jsonOut)
	require.NoError(t, err)

	var export jsonExport
	require.NoError(t, json.Unmarshal(payload, &export))
	require.NotNil(t, export.Display)
	require.Contains(t, export.Metrics, "MAPE")
	assert.Len(t, export.Metrics["MAPE"].Points, 10)

	// A repeated run with the same configuration is served from cache
	again, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Same(t, result, again)
}

// TestCompleteWorkflowOverHTTP validates the pipeline against a remote dataset
func TestCompleteWorkflowOverHTTP(t *testing.T) {
	if testing.Short() {
		t.Skip(skipE2E)
	}

	ctx := context.Background()

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := helpers.SampleDailyRows(start, 5)
	server := helpers.MockDatasetServer(t, helpers.DatasetServerConfig{
		AuthToken: "e2e-token",
		Rows:      rows,
	})

	httpClient := dataset.NewRateLimitedHTTPClient(dataset.HTTPClientConfig{
		Timeout:           5 * time.Second,
		MaxRetries:        2,
		RetryWaitMin:      10 * time.Millisecond,
		RetryWaitMax:      50 * time.Millisecond,
		RateLimit:         100,
		CircuitBreakerMax: 5,
	}, nil)

	source, err := dataset.NewSource(config.DatasetConfig{
		Source:    server.URL,
		AuthToken: "e2e-token",
	}, httpClient, nil)
	require.NoError(t, err)

	opts := evaluation.Options{
		Eval: evaluation.EvalOptions{
			Metrics:     []string{"MAPE"},
			Granularity: "Daily",
		},
		Format: evaluation.FormatOptions{Precision: map[string]int{"MAPE": 3}},
	}

	svc := service.NewEvaluationService(source, opts, nil, nil, quietLogger())

	result, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Report.GroupCount)
	assert.Equal(t, server.URL, result.Report.Dataset)

	for _, point := range result.MetricTables["MAPE"].Points {
		assert.InDelta(t, 0.15, point.Value, 1e-9)
	}
}

// TestCompleteWorkflowCrossValidation validates fold scoring with a cutoff column
func TestCompleteWorkflowCrossValidation(t *testing.T) {
	if testing.Short() {
		t.Skip(skipE2E)
	}

	ctx := context.Background()
	dir := t.TempDir()

	// Two folds with three forecast days each
	var rows []helpers.DatasetRow
	for fold := 0; fold < 2; fold++ {
		cutoff := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, fold*3)
		for day := 1; day <= 3; day++ {
			ds := cutoff.AddDate(0, 0, day)
			rows = append(rows, helpers.DatasetRow{
				Timestamp: ds.Format("2006-01-02"),
				Truth:     200,
				Forecast:  220,
				Cutoff:    cutoff.Format("2006-01-02"),
			})
		}
	}
	csvPath := helpers.WriteDatasetCSV(t, dir, "cv.csv", rows)

	source := fileSource(t, csvPath)

	opts := evaluation.Options{
		Eval: evaluation.EvalOptions{
			Metrics:     []string{"MAPE"},
			Granularity: evaluation.GranularityCutoff,
		},
		Dates:      evaluation.DatesOptions{FoldsHorizon: 3},
		Resampling: evaluation.ResamplingOptions{Freq: "D"},
		UseCV:      true,
		Format:     evaluation.FormatOptions{Precision: map[string]int{"MAPE": 3}},
	}
	require.NoError(t, opts.Validate())

	svc := service.NewEvaluationService(source, opts, nil, nil, quietLogger())

	result, err := svc.Run(ctx)
	require.NoError(t, err)
	require.True(t, result.Display.CV)

	// One row per fold plus the Avg and Std rows
	require.Len(t, result.Display.Rows, 4)
	assert.Equal(t, "Avg", result.Display.Rows[2].Label)
	assert.Equal(t, "Std", result.Display.Rows[3].Label)

	console := evaluation.GenerateConsoleReport(result.Display)
	assert.Contains(t, console, "Valid Start")
	assert.Contains(t, console, "Valid End")

	// Constant 10% overshoot in every fold
	for _, point := range result.MetricTables["MAPE"].Points {
		assert.InDelta(t, 0.1, point.Value, 1e-9)
	}
}

// TestCompleteWorkflowWithPersistence validates report storage and history retrieval
func TestCompleteWorkflowWithPersistence(t *testing.T) {
	if testing.Short() {
		t.Skip(skipE2E)
	}

	ctx := context.Background()
	dir := t.TempDir()

	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := repository.NewRepositories(db)
	require.NoError(t, err)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	csvPath := helpers.WriteDatasetCSV(t, dir, "history.csv", helpers.SampleDailyRows(start, 4))

	source := fileSource(t, csvPath)

	opts := evaluation.Options{
		Eval: evaluation.EvalOptions{
			Metrics:     []string{"MAPE", "RMSE"},
			Granularity: "Daily",
		},
		Format: evaluation.FormatOptions{Precision: map[string]int{"MAPE": 3, "RMSE": 1}},
	}

	svc := service.NewEvaluationService(source, opts, repos.Report, nil, quietLogger())

	result, err := svc.Run(ctx)
	require.NoError(t, err)

	// The run is stored and retrievable by ID
	stored, err := repos.Report.GetByID(ctx, result.Report.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Report.Dataset, stored.Dataset)
	assert.Equal(t, result.Report.ConfigHash, stored.ConfigHash)
	assert.Equal(t, []string{"MAPE", "RMSE"}, stored.Metrics)

	// And shows up in the dataset history
	history, err := repos.Report.GetByDataset(ctx, csvPath, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)

	// The stored display table renders the same console report
	var display evaluation.DisplayTable
	require.NoError(t, json.Unmarshal(stored.DisplayTable, &display))
	assert.Equal(t, evaluation.GenerateConsoleReport(result.Display), evaluation.GenerateConsoleReport(&display))

	// A rerun of the same configuration shares the fingerprint
	rerun, err := svc.Run(ctx)
	require.NoError(t, err)

	matching, err := repos.Report.GetByConfigHash(ctx, result.Report.ConfigHash, 10)
	require.NoError(t, err)
	require.Len(t, matching, 2)
	assert.Equal(t, rerun.Report.ConfigHash, result.Report.ConfigHash)
}
