package scheduler

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestTaskDue(t *testing.T) {
	task := NewTask(7*24*time.Hour, func(context.Context) {})

	now := time.Now()
	if !task.Due(now) {
		t.Error("a task that has never run should be due")
	}
	if task.Until(now) != 0 {
		t.Error("a task that has never run should have zero wait")
	}

	task.RunNow(context.Background())

	if task.Due(time.Now()) {
		t.Error("a task that just ran should not be due")
	}
	if task.Due(task.lastRun.Add(time.Hour)) {
		t.Error("task should not be due one hour into a weekly period")
	}
	if !task.Due(task.lastRun.Add(7 * 24 * time.Hour)) {
		t.Error("task should be due after a full period")
	}
}

func TestTaskUntil(t *testing.T) {
	task := NewTask(time.Hour, func(context.Context) {})
	task.RunNow(context.Background())

	until := task.Until(task.lastRun.Add(15 * time.Minute))
	if until != 45*time.Minute {
		t.Errorf("Until() = %s, want 45m", until)
	}
	if task.Until(task.lastRun.Add(2*time.Hour)) != 0 {
		t.Error("Until() past the period should clamp to zero")
	}
}

func TestSchedulerRunsImmediately(t *testing.T) {
	runs := 0
	task := NewTask(time.Hour, func(context.Context) { runs++ })
	sched := New(task, 10*time.Millisecond, testLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	sched.Start(ctx)

	if runs != 1 {
		t.Errorf("expected exactly one immediate run, got %d", runs)
	}
}

func TestSchedulerFiresWhenDue(t *testing.T) {
	runs := 0
	task := NewTask(20*time.Millisecond, func(context.Context) { runs++ })
	sched := New(task, 5*time.Millisecond, testLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	sched.Start(ctx)

	if runs < 2 {
		t.Errorf("expected at least one scheduled run after the immediate one, got %d", runs)
	}
}
