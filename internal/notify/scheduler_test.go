// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cryptonotify/internal/notify"
	"github.com/taibuivan/cryptonotify/internal/platform/ctxutil"
	"github.com/taibuivan/cryptonotify/internal/platform/metrics"
)

func newScheduler(recorder *metrics.Metrics) *notify.Scheduler {
	return notify.NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)), recorder, time.Second)
}

func TestScheduler_Register(t *testing.T) {
	scheduler := newScheduler(nil)
	noop := func(context.Context) error { return nil }

	require.NoError(t, scheduler.Register("b", "10 * * * *", noop))
	require.NoError(t, scheduler.Register("a", "@hourly", noop))

	assert.Error(t, scheduler.Register("a", "10 * * * *", noop), "duplicate name")
	assert.Error(t, scheduler.Register("c", "not a schedule", noop), "bad spec")
	assert.Equal(t, []string{"a", "b"}, scheduler.Names())
}

/*
TestScheduler_RunNow verifies a manual run carries a deadline and a logger,
and is counted by result.
*/
func TestScheduler_RunNow(t *testing.T) {
	recorder := metrics.New()
	scheduler := newScheduler(recorder)

	require.NoError(t, scheduler.Register("ok", "@hourly", func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		assert.NotNil(t, ctxutil.GetLogger(ctx))
		return nil
	}))
	require.NoError(t, scheduler.Register("broken", "@hourly", func(context.Context) error {
		return errors.New("boom")
	}))

	assert.NoError(t, scheduler.RunNow(context.Background(), "ok"))
	assert.EqualError(t, scheduler.RunNow(context.Background(), "broken"), "boom")
	assert.Error(t, scheduler.RunNow(context.Background(), "missing"))

	count, err := testutil.GatherAndCount(recorder.Gatherer(), "cryptonotify_notify_job_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestScheduler_StartStop(t *testing.T) {
	scheduler := newScheduler(nil)
	require.NoError(t, scheduler.Register("noop", "@hourly", func(context.Context) error { return nil }))

	scheduler.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, scheduler.Stop(ctx))
}
