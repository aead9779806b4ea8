// Package service orchestrates dataset loading, evaluation and report delivery.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/forecast-eval/internal/dataset"
	"github.com/yourusername/forecast-eval/internal/evaluation"
	"github.com/yourusername/forecast-eval/internal/logger"
	"github.com/yourusername/forecast-eval/internal/metrics"
	"github.com/yourusername/forecast-eval/internal/models"
	"github.com/yourusername/forecast-eval/internal/repository"
)

// EvaluationService runs the scoring pipeline for one dataset
type EvaluationService struct {
	source     dataset.Source
	sourceType dataset.SourceType
	opts       evaluation.Options
	reportRepo repository.ReportRepository
	cache      *ReportCache
	logger     *logrus.Logger
	evalLog    *logger.EvaluationLogger
	dataLog    *logger.DatasetLogger
}

// NewEvaluationService creates a new evaluation service. The repository and
// cache are optional; pass nil to run without persistence or caching.
func NewEvaluationService(
	source dataset.Source,
	opts evaluation.Options,
	reportRepo repository.ReportRepository,
	cache *ReportCache,
	log *logrus.Logger,
) *EvaluationService {
	return &EvaluationService{
		source:     source,
		sourceType: dataset.TypeOf(source.Name()),
		opts:       opts,
		reportRepo: reportRepo,
		cache:      cache,
		logger:     log,
		evalLog:    logger.NewEvaluationLogger(log),
		dataLog:    logger.NewDatasetLogger(log),
	}
}

// RunResult bundles the artifacts of one evaluation run
type RunResult struct {
	Display      *evaluation.DisplayTable
	MetricTables map[string]*evaluation.MetricTable
	Report       *models.EvaluationReport
}

// Run loads the dataset, scores it and assembles the report. A fresh result
// for an identical configuration is served from cache without reloading.
func (s *EvaluationService) Run(ctx context.Context) (*RunResult, error) {
	key := CacheKey{Dataset: s.source.Name(), ConfigHash: ConfigFingerprint(s.opts, s.source.Name())}

	if s.cache != nil {
		if cached := s.cache.Get(key); cached != nil {
			s.evalLog.LogCacheResult(key.ConfigHash, true)
			return cached, nil
		}
		s.evalLog.LogCacheResult(key.ConfigHash, false)
	}

	points, err := s.loadPoints(ctx)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	display, metricTables, err := s.opts.Evaluate(points)
	if err != nil {
		metrics.RecordEvaluationError()
		s.evalLog.LogEvaluationError(s.source.Name(), s.opts.Eval.Granularity, err.Error())
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}
	duration := time.Since(started)

	groups := groupCount(metricTables)
	metrics.RecordEvaluationRun(duration.Seconds())
	metrics.RecordEvaluationByGranularity(s.opts.Eval.Granularity, s.mode())
	metrics.UpdateLastRunGroups(float64(groups))
	s.publishScores(metricTables)

	if s.opts.UseCV {
		s.evalLog.LogFoldSummary(s.source.Name(), groups, s.opts.Dates.FoldsHorizon, s.opts.Resampling.Freq)
	}
	if s.opts.Eval.AggregateForecasts {
		s.evalLog.LogAggregateMode(s.source.Name(), s.opts.Eval.Granularity, len(points), groups)
	}

	report, err := s.buildReport(key.ConfigHash, len(points), groups, display, metricTables)
	if err != nil {
		return nil, err
	}

	if s.reportRepo != nil {
		if err := s.reportRepo.Save(ctx, report); err != nil {
			metrics.RecordReportPersisted("error")
			s.logger.WithError(err).Warn("Failed to persist evaluation report, returning in-memory result")
		} else {
			metrics.RecordReportPersisted("success")
			s.evalLog.LogReportPersisted(report.ID.String(), report.Dataset, report.GroupCount)
		}
	}

	result := &RunResult{Display: display, MetricTables: metricTables, Report: report}
	if s.cache != nil {
		s.cache.Set(key, result)
	}

	s.evalLog.LogEvaluationRun(s.source.Name(), s.opts.Eval.Granularity, len(points), groups, s.opts.UseCV, float64(duration.Milliseconds()))
	return result, nil
}

// loadPoints reads the dataset and publishes load telemetry
func (s *EvaluationService) loadPoints(ctx context.Context) ([]models.EvalPoint, error) {
	started := time.Now()
	result, err := s.source.Load(ctx)
	if err != nil {
		s.dataLog.LogDatasetError(s.source.Name(), err.Error())
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	duration := time.Since(started)

	metrics.RecordDatasetLoadDuration(duration.Seconds())
	metrics.UpdateDatasetRows(float64(len(result.Points)))
	for reason, count := range result.SkipReasons {
		metrics.RecordRowSkipped(string(s.sourceType), reason, count)
	}
	s.dataLog.LogDatasetLoad(s.source.Name(), len(result.Points), result.RowsSkipped, float64(duration.Milliseconds()))

	if len(result.Points) == 0 {
		s.dataLog.LogDatasetError(s.source.Name(), "no usable rows")
		return nil, fmt.Errorf("dataset %s: %w", s.source.Name(), models.ErrEmptyInput)
	}

	return result.Points, nil
}

// buildReport assembles the persistable report from the run artifacts
func (s *EvaluationService) buildReport(configHash string, rowCount, groups int, display *evaluation.DisplayTable, tables map[string]*evaluation.MetricTable) (*models.EvaluationReport, error) {
	report := models.NewEvaluationReport(s.source.Name(), s.opts.Eval.Granularity)
	report.UseCV = s.opts.UseCV
	report.Aggregated = s.opts.Eval.AggregateForecasts
	report.Metrics = append([]string(nil), s.opts.Eval.Metrics...)
	report.ConfigHash = configHash
	report.RowCount = rowCount
	report.GroupCount = groups

	summary, err := json.Marshal(summarizeScores(tables))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	displayJSON, err := json.Marshal(display)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal display table: %w", err)
	}
	tablesJSON, err := json.Marshal(tables)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metric tables: %w", err)
	}
	report.Summary = summary
	report.DisplayTable = displayJSON
	report.MetricTables = tablesJSON

	return report, nil
}

// publishScores exports the mean score per metric to the metrics registry
func (s *EvaluationService) publishScores(tables map[string]*evaluation.MetricTable) {
	for name, score := range summarizeScores(tables) {
		metrics.UpdateMetricScore(name, s.opts.Eval.Granularity, score)
	}
}

// mode names the scoring mode for metric labels
func (s *EvaluationService) mode() string {
	if s.opts.Eval.AggregateForecasts {
		return "aggregate"
	}
	return "per_row"
}

// summarizeScores reduces each metric table to its mean value across groups
func summarizeScores(tables map[string]*evaluation.MetricTable) map[string]float64 {
	summary := make(map[string]float64, len(tables))
	for name, table := range tables {
		if len(table.Points) == 0 {
			continue
		}
		var total float64
		for _, point := range table.Points {
			total += point.Value
		}
		summary[name] = total / float64(len(table.Points))
	}
	return summary
}

// groupCount returns the number of scored groups. Every metric table carries
// the same group rows, so the first one seen is authoritative.
func groupCount(tables map[string]*evaluation.MetricTable) int {
	for _, table := range tables {
		return len(table.Points)
	}
	return 0
}

// ConfigFingerprint creates a stable hash for an evaluation configuration
func ConfigFingerprint(opts evaluation.Options, dataset string) string {
	params := map[string]interface{}{
		"dataset":             dataset,
		"metrics":             opts.Eval.Metrics,
		"granularity":         opts.Eval.Granularity,
		"aggregate_forecasts": opts.Eval.AggregateForecasts,
		"use_cv":              opts.UseCV,
		"folds_horizon":       opts.Dates.FoldsHorizon,
		"freq":                opts.Resampling.Freq,
		"precision":           opts.Format.Precision,
	}
	data, _ := json.Marshal(params)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}
