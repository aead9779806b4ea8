package scheduler

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// BreakerState represents the position of the run breaker
type BreakerState int

const (
	// BreakerClosed means scheduled runs execute normally
	BreakerClosed BreakerState = iota
	// BreakerHalfOpen means a single probe run is allowed after cooldown
	BreakerHalfOpen
	// BreakerOpen means scheduled runs are skipped
	BreakerOpen
)

// String returns string representation of the breaker state
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "CLOSED"
	case BreakerHalfOpen:
		return "HALF_OPEN"
	case BreakerOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

// BreakerConfig defines failure thresholds for scheduled runs
type BreakerConfig struct {
	MaxConsecutiveFailures int
	Cooldown               time.Duration
}

// RunBreaker suspends scheduled evaluations after repeated failures so a
// broken upstream is probed after a cooldown instead of hit on every tick.
type RunBreaker struct {
	config   BreakerConfig
	logger   *logrus.Logger
	mu       sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time
}

// NewRunBreaker creates a breaker in the closed state
func NewRunBreaker(config BreakerConfig, logger *logrus.Logger) *RunBreaker {
	if config.MaxConsecutiveFailures <= 0 {
		config.MaxConsecutiveFailures = 3
	}
	if config.Cooldown <= 0 {
		config.Cooldown = 30 * time.Minute
	}

	return &RunBreaker{
		config: config,
		logger: logger,
		state:  BreakerClosed,
	}
}

// Allow reports whether a scheduled run may proceed. Once the cooldown has
// passed, an open breaker moves to half-open and admits one probe run.
func (b *RunBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen && time.Since(b.openedAt) >= b.config.Cooldown {
		b.state = BreakerHalfOpen
		b.logger.Info("Run breaker entering half-open state after cooldown")
	}

	return b.state != BreakerOpen
}

// RecordFailure counts a failed run. The breaker opens once the consecutive
// failure threshold is reached, and reopens immediately on a failed probe.
func (b *RunBreaker) RecordFailure(err error) {
	if err == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerHalfOpen {
		b.openLocked("probe run failed: " + err.Error())
		return
	}

	b.failures++
	if b.failures >= b.config.MaxConsecutiveFailures {
		b.openLocked(err.Error())
	}
}

// RecordSuccess closes the breaker and resets the failure count
func (b *RunBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != BreakerClosed {
		b.logger.WithField("old_state", b.state.String()).Info("Run breaker closed after successful run")
	}
	b.state = BreakerClosed
	b.failures = 0
}

// State returns the current breaker state
func (b *RunBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// Reset closes the breaker regardless of its current state
func (b *RunBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = BreakerClosed
	b.failures = 0
	b.openedAt = time.Time{}
}

// openLocked assumes b.mu is held
func (b *RunBreaker) openLocked(reason string) {
	if b.state == BreakerOpen {
		return
	}

	b.state = BreakerOpen
	b.openedAt = time.Now()

	b.logger.WithFields(logrus.Fields{
		"consecutive_failures": b.failures,
		"cooldown":             b.config.Cooldown,
		"reason":               reason,
	}).Warn("Run breaker opened, scheduled evaluations suspended")
}
