//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/forecast-eval/internal/database"
	"github.com/yourusername/forecast-eval/internal/models"
	"github.com/yourusername/forecast-eval/internal/repository"
)

const skipIntegration = "Skipping integration test in short mode"

// TestReportRepositoryIntegration tests the report repository against real PostgreSQL
func TestReportRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repo := repository.NewPostgresReportRepository(db)

	t.Run("SaveAndRetrieve", func(t *testing.T) {
		report := seedReport(t, "history.csv", "Daily", time.Now().UTC())

		err := repo.Save(ctx, report)
		require.NoError(t, err)

		retrieved, err := repo.GetByID(ctx, report.ID)
		require.NoError(t, err)
		assert.Equal(t, report.Dataset, retrieved.Dataset)
		assert.Equal(t, report.Granularity, retrieved.Granularity)
		assert.Equal(t, report.Metrics, retrieved.Metrics)
		assert.Equal(t, report.RowCount, retrieved.RowCount)
		assert.Equal(t, report.GroupCount, retrieved.GroupCount)
		assert.WithinDuration(t, report.RunDate, retrieved.RunDate, time.Second)

		// JSONB does not preserve key order, so compare decoded values
		var summary map[string]float64
		require.NoError(t, json.Unmarshal(retrieved.Summary, &summary))
		assert.InDelta(t, 0.042, summary["MAPE"], 1e-9)
		assert.InDelta(t, 12.5, summary["RMSE"], 1e-9)
	})

	t.Run("DuplicateID", func(t *testing.T) {
		report := seedReport(t, "history.csv", "Daily", time.Now().UTC())
		require.NoError(t, repo.Save(ctx, report))

		err := repo.Save(ctx, report)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrDuplicateKey)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("GetLatestOrdering", func(t *testing.T) {
		base := time.Now().UTC().Add(24 * time.Hour)
		newest := seedReport(t, "ordering.csv", "Daily", base)
		middle := seedReport(t, "ordering.csv", "Daily", base.Add(-1*time.Hour))
		oldest := seedReport(t, "ordering.csv", "Daily", base.Add(-2*time.Hour))

		require.NoError(t, repo.Save(ctx, oldest))
		require.NoError(t, repo.Save(ctx, newest))
		require.NoError(t, repo.Save(ctx, middle))

		latest, err := repo.GetLatest(ctx, 2)
		require.NoError(t, err)
		require.Len(t, latest, 2)
		assert.Equal(t, newest.ID, latest[0].ID)
		assert.Equal(t, middle.ID, latest[1].ID)
	})

	t.Run("GetByDataset", func(t *testing.T) {
		wanted := seedReport(t, "dataset-filter.csv", "Global", time.Now().UTC())
		other := seedReport(t, "unrelated.csv", "Global", time.Now().UTC())
		require.NoError(t, repo.Save(ctx, wanted))
		require.NoError(t, repo.Save(ctx, other))

		reports, err := repo.GetByDataset(ctx, "dataset-filter.csv", 10)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, wanted.ID, reports[0].ID)
	})

	t.Run("GetByConfigHash", func(t *testing.T) {
		first := seedReport(t, "hash.csv", "Daily", time.Now().UTC())
		second := seedReport(t, "hash.csv", "Daily", time.Now().UTC().Add(time.Minute))
		first.ConfigHash = "shared-fingerprint"
		second.ConfigHash = "shared-fingerprint"
		require.NoError(t, repo.Save(ctx, first))
		require.NoError(t, repo.Save(ctx, second))

		reports, err := repo.GetByConfigHash(ctx, "shared-fingerprint", 10)
		require.NoError(t, err)
		require.Len(t, reports, 2)
		assert.Equal(t, second.ID, reports[0].ID, "Newest run should sort first")
	})

	t.Run("GetByDateRange", func(t *testing.T) {
		anchor := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
		inside := seedReport(t, "range.csv", "Daily", anchor)
		before := seedReport(t, "range.csv", "Daily", anchor.Add(-48*time.Hour))
		after := seedReport(t, "range.csv", "Daily", anchor.Add(48*time.Hour))
		require.NoError(t, repo.Save(ctx, inside))
		require.NoError(t, repo.Save(ctx, before))
		require.NoError(t, repo.Save(ctx, after))

		reports, err := repo.GetByDateRange(ctx, anchor.Add(-24*time.Hour), anchor.Add(24*time.Hour))
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, inside.ID, reports[0].ID)
	})
}

// TestReportRetentionPruning tests bulk deletion of aged reports
func TestReportRetentionPruning(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repo := repository.NewPostgresReportRepository(db)
	now := time.Now().UTC()

	// Two aged reports and one recent report
	for _, age := range []time.Duration{120 * 24 * time.Hour, 100 * 24 * time.Hour, 1 * time.Hour} {
		report := seedReport(t, "retention.csv", "Daily", now.Add(-age))
		require.NoError(t, repo.Save(ctx, report))
	}

	deleted, err := repo.DeleteOlderThan(ctx, now.Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	remaining, err := repo.GetByDataset(ctx, "retention.csv", 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.WithinDuration(t, now.Add(-1*time.Hour), remaining[0].RunDate, time.Second)

	t.Log("✓ Retention pruning validated")
}

// TestConcurrentReportSaves tests concurrent writes through the pool
func TestConcurrentReportSaves(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repo := repository.NewPostgresReportRepository(db)

	var wg sync.WaitGroup
	concurrency := 10

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()

			report := models.NewEvaluationReport(fmt.Sprintf("concurrent-%d.csv", index), "Daily")
			report.Metrics = []string{"MAPE"}
			report.ConfigHash = fmt.Sprintf("hash-%d", index)
			report.RowCount = 10 * index
			err := repo.Save(ctx, report)
			assert.NoError(t, err)
		}(i)
	}

	wg.Wait()

	latest, err := repo.GetLatest(ctx, concurrency)
	require.NoError(t, err)
	assert.Len(t, latest, concurrency)

	t.Log("✓ Concurrent operations validated")
}

// TestTransactionRollback tests that rolled back inserts are not persisted
func TestTransactionRollback(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repo := repository.NewPostgresReportRepository(db)
	report := seedReport(t, "rollback.csv", "Daily", time.Now().UTC())

	tx, err := db.GetPool().Begin(ctx)
	require.NoError(t, err)

	query := `
		INSERT INTO evaluation_reports (
			id, run_date, dataset, granularity, use_cv, aggregated, metrics,
			config_hash, row_count, group_count, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`
	_, err = tx.Exec(ctx, query,
		report.ID, report.RunDate, report.Dataset, report.Granularity, report.UseCV, report.Aggregated,
		report.Metrics, report.ConfigHash, report.RowCount, report.GroupCount, report.CreatedAt,
	)
	require.NoError(t, err)

	require.NoError(t, tx.Rollback(ctx))

	_, err = repo.GetByID(ctx, report.ID)
	assert.ErrorIs(t, err, models.ErrNotFound, "Report should not exist after rollback")

	t.Log("✓ Transaction rollback validated: data inserted in transaction was not persisted after rollback")
}

// TestConnectionPoolBehavior tests connection pool under load
func TestConnectionPoolBehavior(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repo := repository.NewPostgresReportRepository(db)

	var wg sync.WaitGroup
	requests := 50

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()

			// Read operation
			_, err := repo.GetLatest(ctx, 5)
			assert.NoError(t, err)

			// Write operation
			report := models.NewEvaluationReport("pool.csv", "Daily")
			report.Metrics = []string{"RMSE"}
			report.ConfigHash = fmt.Sprintf("pool-%d", index)
			err = repo.Save(ctx, report)
			assert.NoError(t, err)
		}(i)
	}

	wg.Wait()

	t.Log("✓ Connection pool behavior validated")
}

// TestReportSchema tests that the schema bootstrap created the expected objects
func TestReportSchema(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	ctx := context.Background()

	var exists bool
	query := `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = $1
		)
	`
	err := db.GetPool().QueryRow(ctx, query, "evaluation_reports").Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "Table evaluation_reports should exist")

	indexes := []string{"idx_evaluation_reports_dataset", "idx_evaluation_reports_config_hash"}
	for _, index := range indexes {
		var found bool
		err := db.GetPool().QueryRow(ctx,
			`SELECT EXISTS (SELECT FROM pg_indexes WHERE indexname = $1)`, index,
		).Scan(&found)
		require.NoError(t, err)
		assert.True(t, found, "Index %s should exist", index)
	}

	t.Log("✓ Report schema validated")
}

func seedReport(t *testing.T, dataset, granularity string, runDate time.Time) *models.EvaluationReport {
	t.Helper()

	summary, err := json.Marshal(map[string]float64{"MAPE": 0.042, "RMSE": 12.5})
	require.NoError(t, err)

	report := models.NewEvaluationReport(dataset, granularity)
	report.RunDate = runDate
	report.Metrics = []string{"MAPE", "RMSE"}
	report.ConfigHash = uuid.NewString()
	report.RowCount = 1440
	report.GroupCount = 30
	report.Summary = summary
	return report
}
