// Package logger provides scheduler logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// SchedulerLogger provides dedicated logging for scheduled evaluations.
type SchedulerLogger struct {
	*logrus.Entry
}

// NewSchedulerLogger creates a new scheduler logger.
func NewSchedulerLogger(baseLogger *logrus.Logger) *SchedulerLogger {
	return &SchedulerLogger{
		Entry: baseLogger.WithField("component", "scheduler"),
	}
}

// LogSchedulerStarted logs scheduler start-up.
func (sl *SchedulerLogger) LogSchedulerStarted(jobs int) {
	sl.WithFields(logrus.Fields{
		"jobs": jobs,
	}).Info("Scheduler started")
}

// LogJobScheduled logs the registration of a cron job.
func (sl *SchedulerLogger) LogJobScheduled(jobName, cronExpr string) {
	sl.WithFields(logrus.Fields{
		"job_name":        jobName,
		"cron_expression": cronExpr,
	}).Info("Job scheduled")
}

// LogScheduledRunStart logs the start of a scheduled evaluation.
func (sl *SchedulerLogger) LogScheduledRunStart(jobName string, startedAt time.Time) {
	sl.WithFields(logrus.Fields{
		"job_name":   jobName,
		"started_at": startedAt.Unix(),
	}).Info("Scheduled evaluation started")
}

// LogScheduledRunComplete logs a finished scheduled evaluation.
func (sl *SchedulerLogger) LogScheduledRunComplete(jobName string, durationMs float64, groupsScored int) {
	sl.WithFields(logrus.Fields{
		"job_name":      jobName,
		"duration_ms":   durationMs,
		"groups_scored": groupsScored,
	}).Info("Scheduled evaluation completed")
}

// LogRetentionComplete logs a finished retention sweep.
func (sl *SchedulerLogger) LogRetentionComplete(jobName string, durationMs float64, reportsDeleted int64) {
	sl.WithFields(logrus.Fields{
		"job_name":        jobName,
		"duration_ms":     durationMs,
		"reports_deleted": reportsDeleted,
	}).Info("Report retention sweep completed")
}

// LogScheduledRunSkipped logs a run suppressed by the failure breaker.
func (sl *SchedulerLogger) LogScheduledRunSkipped(jobName, breakerState string) {
	sl.WithFields(logrus.Fields{
		"job_name":      jobName,
		"breaker_state": breakerState,
	}).Warn("Scheduled evaluation skipped")
}

// LogScheduledRunFailure logs a failed scheduled evaluation.
func (sl *SchedulerLogger) LogScheduledRunFailure(jobName, reason string) {
	sl.WithFields(logrus.Fields{
		"job_name":     jobName,
		"error_reason": reason,
	}).Error("Scheduled evaluation failed")
}

// LogSchedulerStopped logs scheduler shutdown.
func (sl *SchedulerLogger) LogSchedulerStopped(reason string) {
	sl.WithFields(logrus.Fields{
		"reason": reason,
	}).Info("Scheduler stopped")
}
