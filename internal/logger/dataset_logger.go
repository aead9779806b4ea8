// Package logger provides dataset-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// DatasetLogger provides dedicated logging for dataset loading.
type DatasetLogger struct {
	*logrus.Entry
}

// NewDatasetLogger creates a new dataset logger.
func NewDatasetLogger(baseLogger *logrus.Logger) *DatasetLogger {
	return &DatasetLogger{
		Entry: baseLogger.WithField("component", "dataset"),
	}
}

// LogDatasetLoad logs a completed dataset load.
func (dl *DatasetLogger) LogDatasetLoad(source string, rowsLoaded, rowsSkipped int, durationMs float64) {
	dl.WithFields(logrus.Fields{
		"source":           source,
		"rows_loaded":      rowsLoaded,
		"rows_skipped":     rowsSkipped,
		"load_duration_ms": durationMs,
	}).Info("Dataset loaded")
}

// LogDatasetFetch logs an HTTP dataset fetch.
func (dl *DatasetLogger) LogDatasetFetch(url string, statusCode int, bytesRead int64, latencyMs float64) {
	dl.WithFields(logrus.Fields{
		"url":         url,
		"status_code": statusCode,
		"bytes_read":  bytesRead,
		"latency_ms":  latencyMs,
	}).Info("Dataset fetched over HTTP")
}

// LogRowSkipped logs a single unparseable row.
func (dl *DatasetLogger) LogRowSkipped(source string, row int, reason string) {
	dl.WithFields(logrus.Fields{
		"source": source,
		"row":    row,
		"reason": reason,
	}).Warn("Dataset row skipped")
}

// LogDatasetError logs a failed dataset load.
func (dl *DatasetLogger) LogDatasetError(source, reason string) {
	dl.WithFields(logrus.Fields{
		"source":       source,
		"error_reason": reason,
	}).Error("Dataset load failed")
}
