package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Task is a repeating unit of work with a fixed period. It tracks only the
// last start time in memory; a process restart resets the cycle.
type Task struct {
	interval time.Duration
	fn       func(context.Context)
	lastRun  time.Time
}

// NewTask creates a Task that should run every interval.
func NewTask(interval time.Duration, fn func(context.Context)) *Task {
	return &Task{interval: interval, fn: fn}
}

// Due reports whether the task should run at the given time. A task that has
// never run is always due.
func (t *Task) Due(now time.Time) bool {
	return t.lastRun.IsZero() || now.Sub(t.lastRun) >= t.interval
}

// Until returns the time remaining before the task is next due, zero if due.
func (t *Task) Until(now time.Time) time.Duration {
	if t.lastRun.IsZero() {
		return 0
	}
	remaining := t.interval - now.Sub(t.lastRun)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RunNow executes the task inline, marking the cycle start first so a long
// run pushes the next one out by the full interval from its start.
func (t *Task) RunNow(ctx context.Context) {
	t.lastRun = time.Now()
	t.fn(ctx)
}

// Scheduler drives a single Task on one thread of control: the run it
// triggers executes inline, so a long scrape simply delays the next check.
type Scheduler struct {
	task          *Task
	checkInterval time.Duration
	logger        *slog.Logger
}

// New creates a Scheduler that checks the task every checkInterval.
func New(task *Task, checkInterval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		task:          task,
		checkInterval: checkInterval,
		logger:        logger.With("component", "scheduler"),
	}
}

// Start runs the task once immediately, then loops until the context is
// cancelled, firing the task whenever it comes due.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("scheduler started",
		"period", s.task.interval,
		"check_interval", s.checkInterval,
	)

	s.task.RunNow(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-time.After(s.checkInterval):
		}

		now := time.Now()
		if s.task.Due(now) {
			s.task.RunNow(ctx)
		} else {
			s.logger.Debug("next run not due yet", "in", s.task.Until(now))
		}
	}
}
