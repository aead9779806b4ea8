package repository

import (
	"fmt"

	"github.com/yourusername/forecast-eval/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Report ReportRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Report: NewPostgresReportRepository(db),
	}, nil
}
