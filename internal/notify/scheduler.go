// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/robfig/cron/v3"

	"github.com/taibuivan/cryptonotify/internal/platform/ctxutil"
	"github.com/taibuivan/cryptonotify/internal/platform/metrics"
)

// JobFunc is one unit of scheduled work.
type JobFunc func(ctx context.Context) error

// Scheduler runs named jobs on cron expressions.
//
// Every run gets its own ULID run id, a logger carrying it, and a deadline.
// Overlapping runs of the same job are skipped.
type Scheduler struct {
	cron     *cron.Cron
	logger   *slog.Logger
	recorder *metrics.Metrics
	timeout  time.Duration

	mu   sync.Mutex
	jobs map[string]JobFunc
}

// NewScheduler builds an idle scheduler. recorder may be nil.
func NewScheduler(logger *slog.Logger, recorder *metrics.Metrics, timeout time.Duration) *Scheduler {
	adapter := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		logger:   logger,
		recorder: recorder,
		timeout:  timeout,
		jobs:     make(map[string]JobFunc),
	}
}

/*
Register schedules job under name.

Parameters:
  - name: string (unique job name, used in logs and metrics)
  - spec: string (standard 5-field cron expression)
  - job: JobFunc

Returns:
  - error: Invalid spec or duplicate name
*/
func (scheduler *Scheduler) Register(name, spec string, job JobFunc) error {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if _, exists := scheduler.jobs[name]; exists {
		return fmt.Errorf("scheduler_register_failed: job %q already registered", name)
	}

	if _, err := scheduler.cron.AddFunc(spec, func() { _ = scheduler.run(context.Background(), name, job) }); err != nil {
		return fmt.Errorf("scheduler_register_failed: %s: %w", name, err)
	}

	scheduler.jobs[name] = job
	return nil
}

// Names lists the registered jobs in name order.
func (scheduler *Scheduler) Names() []string {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	names := make([]string, 0, len(scheduler.jobs))
	for name := range scheduler.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunNow executes a registered job immediately, outside the schedule.
func (scheduler *Scheduler) RunNow(ctx context.Context, name string) error {
	scheduler.mu.Lock()
	job, ok := scheduler.jobs[name]
	scheduler.mu.Unlock()

	if !ok {
		return fmt.Errorf("scheduler_run_failed: unknown job %q", name)
	}
	return scheduler.run(ctx, name, job)
}

// Start begins firing jobs in the background.
func (scheduler *Scheduler) Start() {
	scheduler.cron.Start()
	scheduler.logger.Info("scheduler_started", slog.Any("jobs", scheduler.Names()))
}

// Stop halts the schedule and waits for running jobs until ctx is done.
func (scheduler *Scheduler) Stop(ctx context.Context) error {
	done := scheduler.cron.Stop()

	select {
	case <-done.Done():
		scheduler.logger.Info("scheduler_stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler_stop_timeout: %w", ctx.Err())
	}
}

func (scheduler *Scheduler) run(parent context.Context, name string, job JobFunc) error {
	runID := ulid.Make().String()
	logger := scheduler.logger.With(slog.String("job", name), slog.String("run_id", runID))

	ctx, cancel := context.WithTimeout(ctxutil.WithLogger(parent, logger), scheduler.timeout)
	defer cancel()

	start := time.Now()
	err := job(ctx)
	elapsed := time.Since(start)

	if err != nil {
		scheduler.recorder.JobRan(name, "failure")
		logger.ErrorContext(ctx, "job_failed", slog.Duration("elapsed", elapsed), slog.Any("error", err))
		return err
	}

	scheduler.recorder.JobRan(name, "success")
	logger.InfoContext(ctx, "job_finished", slog.Duration("elapsed", elapsed))
	return nil
}

// cronLogger routes robfig/cron's internal logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (adapter cronLogger) Info(msg string, keysAndValues ...any) {
	adapter.logger.Debug("cron_"+msg, keysAndValues...)
}

func (adapter cronLogger) Error(err error, msg string, keysAndValues ...any) {
	adapter.logger.Error("cron_"+msg, append(keysAndValues, slog.Any("error", err))...)
}
