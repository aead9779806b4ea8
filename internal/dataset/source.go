package dataset

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/forecast-eval/internal/config"
	"github.com/yourusername/forecast-eval/internal/models"
)

// Source defines the interface for loading forecast datasets
type Source interface {
	// Load reads the dataset and returns the parsed evaluation points
	Load(ctx context.Context) (*LoadResult, error)

	// Name returns an identifier for the dataset, used in logs and reports
	Name() string
}

// LoadResult holds the parsed rows of a dataset along with skip counts
type LoadResult struct {
	Points      []models.EvalPoint
	RowsSkipped int
	SkipReasons map[string]int
}

func newLoadResult() *LoadResult {
	return &LoadResult{SkipReasons: make(map[string]int)}
}

func (r *LoadResult) skip(reason string) {
	r.RowsSkipped++
	r.SkipReasons[reason]++
}

// ColumnMapping names the dataset columns holding each evaluation field
type ColumnMapping struct {
	Timestamp string
	Truth     string
	Forecast  string
	Cutoff    string
}

// MappingFromConfig builds a column mapping from dataset configuration
func MappingFromConfig(cfg config.DatasetConfig) ColumnMapping {
	return ColumnMapping{
		Timestamp: cfg.TimestampColumn,
		Truth:     cfg.TruthColumn,
		Forecast:  cfg.ForecastColumn,
		Cutoff:    cfg.CutoffColumn,
	}
}

// SourceType represents the type of dataset source
type SourceType string

const (
	// FileSourceType reads a local CSV file
	FileSourceType SourceType = "file"
	// HTTPSourceType fetches the dataset over HTTP
	HTTPSourceType SourceType = "http"
)

// SourceError represents errors from dataset source operations
type SourceError struct {
	Source  string // Dataset source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e SourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// NewSourceError creates a new dataset source error
func NewSourceError(source, code, message string, err error) SourceError {
	return SourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewSource creates a Source for the configured dataset location
func NewSource(cfg config.DatasetConfig, httpClient *RateLimitedHTTPClient, logger *log.Logger) (Source, error) {
	mapping := MappingFromConfig(cfg)

	switch {
	case strings.HasPrefix(cfg.Source, "http://"), strings.HasPrefix(cfg.Source, "https://"):
		if httpClient == nil {
			return nil, fmt.Errorf("HTTP client is required for remote datasets")
		}
		return NewHTTPSource(httpClient, cfg.Source, cfg.AuthToken, mapping, logger), nil

	case strings.HasSuffix(cfg.Source, ".csv"):
		return NewFileSource(cfg.Source, mapping, logger), nil

	default:
		return nil, fmt.Errorf("unknown dataset source: %s", cfg.Source)
	}
}

// TypeOf reports the source type a dataset location resolves to
func TypeOf(source string) SourceType {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return HTTPSourceType
	}
	return FileSourceType
}
