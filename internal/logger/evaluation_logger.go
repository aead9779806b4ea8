// Package logger provides evaluation-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// EvaluationLogger provides dedicated logging for evaluation runs.
type EvaluationLogger struct {
	*logrus.Entry
}

// NewEvaluationLogger creates a new evaluation logger.
func NewEvaluationLogger(baseLogger *logrus.Logger) *EvaluationLogger {
	return &EvaluationLogger{
		Entry: baseLogger.WithField("component", "evaluation"),
	}
}

// LogEvaluationRun logs a completed evaluation run.
func (el *EvaluationLogger) LogEvaluationRun(dataset, granularity string, rowsScored, groupsScored int, useCV bool, durationMs float64) {
	el.WithFields(logrus.Fields{
		"dataset":                dataset,
		"granularity":            granularity,
		"rows_scored":            rowsScored,
		"groups_scored":          groupsScored,
		"cross_validation":       useCV,
		"evaluation_duration_ms": durationMs,
	}).Info("Evaluation run completed")
}

// LogEvaluationError logs a failed evaluation run.
func (el *EvaluationLogger) LogEvaluationError(dataset, granularity, reason string) {
	el.WithFields(logrus.Fields{
		"dataset":      dataset,
		"granularity":  granularity,
		"error_reason": reason,
	}).Error("Evaluation run failed")
}

// LogFoldSummary logs the cross-validation fold geometry of a run.
func (el *EvaluationLogger) LogFoldSummary(dataset string, folds, horizon int, freq string) {
	el.WithFields(logrus.Fields{
		"dataset": dataset,
		"folds":   folds,
		"horizon": horizon,
		"freq":    freq,
	}).Info("Cross-validation folds evaluated")
}

// LogAggregateMode logs that forecasts were summed per group before scoring.
func (el *EvaluationLogger) LogAggregateMode(dataset, granularity string, rowsIn, groupsOut int) {
	el.WithFields(logrus.Fields{
		"dataset":     dataset,
		"granularity": granularity,
		"rows_in":     rowsIn,
		"groups_out":  groupsOut,
	}).Info("Forecasts aggregated before scoring")
}

// LogReportPersisted logs a stored evaluation report.
func (el *EvaluationLogger) LogReportPersisted(reportID, dataset string, groupCount int) {
	el.WithFields(logrus.Fields{
		"report_id":   reportID,
		"dataset":     dataset,
		"group_count": groupCount,
	}).Info("Evaluation report persisted")
}

// LogCacheResult logs whether a run was served from the report cache.
func (el *EvaluationLogger) LogCacheResult(configHash string, hit bool) {
	el.WithFields(logrus.Fields{
		"config_hash": configHash,
		"cache_hit":   hit,
	}).Debug("Report cache lookup")
}
