package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/yourusername/forecast-eval/internal/models"
)

// HTTPSource implements Source for datasets served over HTTP
type HTTPSource struct {
	httpClient *RateLimitedHTTPClient
	url        string
	authToken  string
	mapping    ColumnMapping
	logger     *log.Logger
}

// jsonPoint is the wire format for JSON datasets
type jsonPoint struct {
	Timestamp string            `json:"ds"`
	Truth     float64           `json:"y"`
	Forecast  float64           `json:"yhat"`
	Cutoff    string            `json:"cutoff"`
	Groups    map[string]string `json:"groups"`
}

// NewHTTPSource creates a new HTTP-backed dataset source
func NewHTTPSource(httpClient *RateLimitedHTTPClient, url, authToken string, mapping ColumnMapping, logger *log.Logger) *HTTPSource {
	return &HTTPSource{
		httpClient: httpClient,
		url:        url,
		authToken:  authToken,
		mapping:    mapping,
		logger:     logger,
	}
}

// Load fetches the dataset and parses it as CSV or JSON by content type
func (s *HTTPSource) Load(ctx context.Context) (*LoadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, NewSourceError(s.Name(), ErrCodeNetworkError, "failed to create request", err)
	}

	if s.authToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.authToken))
	}
	req.Header.Set("Accept", "text/csv, application/json")

	resp, err := s.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewSourceError(s.Name(), ErrCodeNetworkError, "failed to fetch dataset", err)
	}
	defer resp.Body.Close()

	// Handle authentication errors
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, NewSourceError(s.Name(), ErrCodeAuthenticationFailed, "invalid auth token", nil)
	}

	// Handle rate limiting
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewSourceError(s.Name(), ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, NewSourceError(s.Name(), ErrCodeNotFound, "dataset not found", nil)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewSourceError(s.Name(), ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return parseJSON(resp.Body, s.Name(), s.logger)
	}
	return parseCSV(resp.Body, s.mapping, s.Name(), s.logger)
}

// Name returns the dataset URL
func (s *HTTPSource) Name() string {
	return s.url
}

// parseJSON reads a JSON array of evaluation points
func parseJSON(r io.Reader, sourceName string, logger *log.Logger) (*LoadResult, error) {
	var rows []jsonPoint
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, NewSourceError(sourceName, ErrCodeInvalidData, "failed to parse response", err)
	}

	result := newLoadResult()
	for i, row := range rows {
		timestamp, err := parseTimestamp(row.Timestamp)
		if err != nil {
			skipRow(result, logger, sourceName, i+1, "unparseable_timestamp")
			continue
		}

		point := models.EvalPoint{
			Timestamp: timestamp,
			Truth:     row.Truth,
			Forecast:  row.Forecast,
			Groups:    row.Groups,
		}

		if row.Cutoff != "" {
			cutoff, err := parseTimestamp(row.Cutoff)
			if err != nil {
				skipRow(result, logger, sourceName, i+1, "unparseable_cutoff")
				continue
			}
			point.Cutoff = cutoff
		}

		result.Points = append(result.Points, point)
	}

	return result, nil
}
