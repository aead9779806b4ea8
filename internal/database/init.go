package database

import (
	"context"
	"fmt"

	"github.com/yourusername/forecast-eval/internal/config"
)

// Schema for stored evaluation reports
const reportsSchema = `
CREATE TABLE IF NOT EXISTS evaluation_reports (
	id UUID PRIMARY KEY,
	run_date TIMESTAMPTZ NOT NULL,
	dataset TEXT NOT NULL,
	granularity TEXT NOT NULL,
	use_cv BOOLEAN NOT NULL,
	aggregated BOOLEAN NOT NULL,
	metrics TEXT[] NOT NULL,
	config_hash TEXT NOT NULL,
	row_count INTEGER NOT NULL,
	group_count INTEGER NOT NULL,
	summary JSONB,
	display_table JSONB,
	metric_tables JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_evaluation_reports_dataset ON evaluation_reports (dataset, run_date DESC);
CREATE INDEX IF NOT EXISTS idx_evaluation_reports_config_hash ON evaluation_reports (config_hash);
`

// Initialize creates a database connection pool and ensures the report schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	// Create connection pool
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.InitSchema(ctx); err != nil {
		closeErr := db.Close(ctx)
		if closeErr != nil {
			return nil, fmt.Errorf("schema init failed and close failed: close=%w, init=%w", closeErr, err)
		}
		return nil, err
	}

	return db, nil
}

// InitSchema creates the evaluation report tables if they do not exist
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, reportsSchema); err != nil {
		return fmt.Errorf("failed to initialize report schema: %w", err)
	}
	return nil
}
