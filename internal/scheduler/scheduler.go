// Package scheduler runs periodic evaluation and retention jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/forecast-eval/internal/config"
	"github.com/yourusername/forecast-eval/internal/logger"
	"github.com/yourusername/forecast-eval/internal/metrics"
	"github.com/yourusername/forecast-eval/internal/repository"
	"github.com/yourusername/forecast-eval/internal/service"
)

const (
	evaluationJobTimeout = 30 * time.Minute
	retentionJobTimeout  = 5 * time.Minute
	retentionJobName     = "report-retention"
)

// Scheduler manages periodic evaluation jobs
type Scheduler struct {
	cron            *cron.Cron
	evaluationSvc   *service.EvaluationService
	schedLog        *logger.SchedulerLogger
	breaker         *RunBreaker
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(evaluationSvc *service.EvaluationService, log *logrus.Logger, cfg config.SchedulerConfig) *Scheduler {
	gracefulTimeout := 30 * time.Second
	if cfg.GracefulTimeoutSeconds > 0 {
		gracefulTimeout = time.Duration(cfg.GracefulTimeoutSeconds) * time.Second
	}

	breaker := NewRunBreaker(BreakerConfig{
		MaxConsecutiveFailures: cfg.MaxConsecutiveFailures,
		Cooldown:               time.Duration(cfg.FailureCooldownSeconds) * time.Second,
	}, log)

	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		evaluationSvc:   evaluationSvc,
		schedLog:        logger.NewSchedulerLogger(log),
		breaker:         breaker,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: gracefulTimeout,
	}
}

// ScheduleEvaluation schedules periodic re-evaluation of the configured dataset
func (s *Scheduler) ScheduleEvaluation(cronExpression, jobName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		if !s.breaker.Allow() {
			metrics.RecordScheduledRun(jobName, "skipped")
			s.schedLog.LogScheduledRunSkipped(jobName, s.breaker.State().String())
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), evaluationJobTimeout)
		defer cancel()

		started := time.Now()
		s.schedLog.LogScheduledRunStart(jobName, started)

		result, err := s.evaluationSvc.Run(ctx)
		if err != nil {
			s.breaker.RecordFailure(err)
			metrics.RecordScheduledRun(jobName, "failure")
			s.schedLog.LogScheduledRunFailure(jobName, err.Error())
			return
		}

		s.breaker.RecordSuccess()
		metrics.RecordScheduledRun(jobName, "success")
		s.schedLog.LogScheduledRunComplete(jobName, float64(time.Since(started).Milliseconds()), result.Report.GroupCount)
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.schedLog.LogJobScheduled(jobName, cronExpression)

	return nil
}

// ScheduleRetention schedules pruning of persisted reports older than maxAge
func (s *Scheduler) ScheduleRetention(cronExpression string, reports repository.ReportRepository, maxAge time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if reports == nil {
		return fmt.Errorf("report repository is required for retention")
	}
	if maxAge <= 0 {
		return fmt.Errorf("retention age must be positive")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), retentionJobTimeout)
		defer cancel()

		started := time.Now()
		s.schedLog.LogScheduledRunStart(retentionJobName, started)

		deleted, err := reports.DeleteOlderThan(ctx, time.Now().Add(-maxAge))
		if err != nil {
			metrics.RecordScheduledRun(retentionJobName, "failure")
			s.schedLog.LogScheduledRunFailure(retentionJobName, err.Error())
			return
		}

		metrics.RecordScheduledRun(retentionJobName, "success")
		s.schedLog.LogRetentionComplete(retentionJobName, float64(time.Since(started).Milliseconds()), deleted)
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.schedLog.LogJobScheduled(retentionJobName, cronExpression)

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.breaker.Reset()
	s.cron.Start()
	s.isRunning = true
	s.schedLog.LogSchedulerStarted(len(s.jobIDs))

	return nil
}

// Stop stops the scheduler, waiting up to the graceful timeout for running
// jobs to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.gracefulTimeout)
	defer cancel()

	select {
	case <-s.cron.Stop().Done():
		s.schedLog.LogSchedulerStopped("jobs drained")
	case <-ctx.Done():
		s.schedLog.LogSchedulerStopped("graceful timeout exceeded")
	}
	s.isRunning = false

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
