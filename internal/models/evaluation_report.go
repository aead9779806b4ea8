package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EvaluationReport represents a persisted evaluation run
type EvaluationReport struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	RunDate      time.Time       `db:"run_date" json:"run_date"`
	Dataset      string          `db:"dataset" json:"dataset"`
	Granularity  string          `db:"granularity" json:"granularity"`
	UseCV        bool            `db:"use_cv" json:"use_cv"`
	Aggregated   bool            `db:"aggregated" json:"aggregated"`
	Metrics      []string        `db:"metrics" json:"metrics"`
	ConfigHash   string          `db:"config_hash" json:"config_hash"`
	RowCount     int             `db:"row_count" json:"row_count"`
	GroupCount   int             `db:"group_count" json:"group_count"`
	Summary      json.RawMessage `db:"summary" json:"summary"`
	DisplayTable json.RawMessage `db:"display_table" json:"display_table"`
	MetricTables json.RawMessage `db:"metric_tables" json:"metric_tables"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// NewEvaluationReport creates a report shell with a fresh ID and run date
func NewEvaluationReport(dataset, granularity string) *EvaluationReport {
	now := time.Now().UTC()
	return &EvaluationReport{
		ID:          uuid.New(),
		RunDate:     now,
		Dataset:     dataset,
		Granularity: granularity,
		CreatedAt:   now,
	}
}
