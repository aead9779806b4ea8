package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/forecast-eval/internal/database"
	"github.com/yourusername/forecast-eval/internal/models"
)

// Integration tests; SetupTestDB skips when no test database is configured.

func seedReport(dataset string) *models.EvaluationReport {
	report := models.NewEvaluationReport(dataset, "Daily")
	report.UseCV = false
	report.Aggregated = false
	report.Metrics = []string{"MAPE", "RMSE"}
	report.ConfigHash = "deadbeef"
	report.RowCount = 100
	report.GroupCount = 4
	report.Summary = json.RawMessage(`{"MAPE":"0.042"}`)
	report.DisplayTable = json.RawMessage(`{"rows":[]}`)
	report.MetricTables = json.RawMessage(`{}`)
	return report
}

// TestReportRepositorySaveAndGet tests report persistence round trip
func TestReportRepositorySaveAndGet(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	if err != nil {
		t.Fatalf("failed to create repositories: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	report := seedReport("it_sales.csv")
	if err := repos.Report.Save(ctx, report); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	retrieved, err := repos.Report.GetByID(ctx, report.ID)
	if err != nil {
		t.Fatalf("failed to retrieve report: %v", err)
	}
	if retrieved.ID != report.ID {
		t.Errorf("expected report ID %v, got %v", report.ID, retrieved.ID)
	}
	if retrieved.Dataset != "it_sales.csv" || len(retrieved.Metrics) != 2 {
		t.Errorf("report fields did not survive round trip: %+v", retrieved)
	}
}

// TestReportRepositoryDuplicateID tests the duplicate key sentinel
func TestReportRepositoryDuplicateID(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	if err != nil {
		t.Fatalf("failed to create repositories: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	report := seedReport("it_dup.csv")
	if err := repos.Report.Save(ctx, report); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	err = repos.Report.Save(ctx, report)
	if !errors.Is(err, models.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey on second save, got: %v", err)
	}
}

// TestReportRepositoryGetByDataset tests dataset-scoped queries
func TestReportRepositoryGetByDataset(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	if err != nil {
		t.Fatalf("failed to create repositories: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dataset := "it_by_dataset_" + uuid.NewString() + ".csv"
	for i := 0; i < 3; i++ {
		report := seedReport(dataset)
		report.RunDate = time.Now().UTC().Add(time.Duration(-i) * time.Hour)
		if err := repos.Report.Save(ctx, report); err != nil {
			t.Fatalf("failed to save report %d: %v", i, err)
		}
	}

	reports, err := repos.Report.GetByDataset(ctx, dataset, 2)
	if err != nil {
		t.Fatalf("failed to query reports by dataset: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].RunDate.Before(reports[1].RunDate) {
		t.Errorf("expected newest report first")
	}
}

// TestReportRepositoryNotFound tests the not-found sentinel
func TestReportRepositoryNotFound(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	if err != nil {
		t.Fatalf("failed to create repositories: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = repos.Report.GetByID(ctx, uuid.New())
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

// TestNewRepositoriesRequiresDB tests the nil database guard
func TestNewRepositoriesRequiresDB(t *testing.T) {
	if _, err := NewRepositories(nil); err == nil {
		t.Errorf("expected error for nil database")
	}
}
