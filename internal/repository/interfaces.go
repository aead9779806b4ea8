package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/forecast-eval/internal/models"
)

// ReportRepository defines the interface for evaluation report storage
type ReportRepository interface {
	Save(ctx context.Context, report *models.EvaluationReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.EvaluationReport, error)
	GetLatest(ctx context.Context, limit int) ([]*models.EvaluationReport, error)
	GetByDataset(ctx context.Context, dataset string, limit int) ([]*models.EvaluationReport, error)
	GetByConfigHash(ctx context.Context, configHash string, limit int) ([]*models.EvaluationReport, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.EvaluationReport, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
