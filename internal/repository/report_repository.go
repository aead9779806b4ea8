package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yourusername/forecast-eval/internal/database"
	"github.com/yourusername/forecast-eval/internal/models"
)

const errScanReport = "failed to scan evaluation report: %w"

const reportColumns = `id, run_date, dataset, granularity, use_cv, aggregated, metrics,
	config_hash, row_count, group_count, summary, display_table, metric_tables, created_at`

// PostgresReportRepository implements ReportRepository for PostgreSQL
type PostgresReportRepository struct {
	db *database.DB
}

// NewPostgresReportRepository creates a new evaluation report repository
func NewPostgresReportRepository(db *database.DB) ReportRepository {
	return &PostgresReportRepository{db: db}
}

// Save inserts an evaluation report
func (r *PostgresReportRepository) Save(ctx context.Context, report *models.EvaluationReport) error {
	query := `
		INSERT INTO evaluation_reports (
			id, run_date, dataset, granularity, use_cv, aggregated, metrics,
			config_hash, row_count, group_count, summary, display_table, metric_tables, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		report.ID, report.RunDate, report.Dataset, report.Granularity, report.UseCV, report.Aggregated, report.Metrics,
		report.ConfigHash, report.RowCount, report.GroupCount, report.Summary, report.DisplayTable, report.MetricTables, report.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("report %s: %w", report.ID, models.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to save evaluation report: %w", err)
	}
	return nil
}

// GetByID retrieves a single evaluation report
func (r *PostgresReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.EvaluationReport, error) {
	query := `SELECT ` + reportColumns + ` FROM evaluation_reports WHERE id = $1`

	report := &models.EvaluationReport{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&report.ID, &report.RunDate, &report.Dataset, &report.Granularity, &report.UseCV, &report.Aggregated, &report.Metrics,
		&report.ConfigHash, &report.RowCount, &report.GroupCount, &report.Summary, &report.DisplayTable, &report.MetricTables, &report.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf(errScanReport, err)
	}
	return report, nil
}

// GetLatest retrieves the most recent evaluation reports
func (r *PostgresReportRepository) GetLatest(ctx context.Context, limit int) ([]*models.EvaluationReport, error) {
	query := `SELECT ` + reportColumns + ` FROM evaluation_reports ORDER BY run_date DESC LIMIT $1`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest evaluation reports: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

// GetByDataset retrieves evaluation reports for a dataset
func (r *PostgresReportRepository) GetByDataset(ctx context.Context, dataset string, limit int) ([]*models.EvaluationReport, error) {
	query := `SELECT ` + reportColumns + ` FROM evaluation_reports WHERE dataset = $1 ORDER BY run_date DESC LIMIT $2`

	rows, err := r.db.GetPool().Query(ctx, query, dataset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluation reports by dataset: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

// GetByConfigHash retrieves evaluation reports sharing a configuration fingerprint
func (r *PostgresReportRepository) GetByConfigHash(ctx context.Context, configHash string, limit int) ([]*models.EvaluationReport, error) {
	query := `SELECT ` + reportColumns + ` FROM evaluation_reports WHERE config_hash = $1 ORDER BY run_date DESC LIMIT $2`

	rows, err := r.db.GetPool().Query(ctx, query, configHash, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluation reports by config hash: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

// GetByDateRange retrieves evaluation reports within a date range
func (r *PostgresReportRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.EvaluationReport, error) {
	query := `SELECT ` + reportColumns + ` FROM evaluation_reports WHERE run_date >= $1 AND run_date <= $2 ORDER BY run_date DESC`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluation reports by date range: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

// DeleteOlderThan removes evaluation reports older than the cutoff
func (r *PostgresReportRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.GetPool().Exec(ctx, `DELETE FROM evaluation_reports WHERE run_date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old evaluation reports: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanReports(rows pgx.Rows) ([]*models.EvaluationReport, error) {
	var reports []*models.EvaluationReport
	for rows.Next() {
		report := &models.EvaluationReport{}
		if err := rows.Scan(
			&report.ID, &report.RunDate, &report.Dataset, &report.Granularity, &report.UseCV, &report.Aggregated, &report.Metrics,
			&report.ConfigHash, &report.RowCount, &report.GroupCount, &report.Summary, &report.DisplayTable, &report.MetricTables, &report.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf(errScanReport, err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
