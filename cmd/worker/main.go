// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command worker runs the scheduled price notifications.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to Redis for the price history.
//  4. Register the jobs on the configured cron schedule.
//  5. Run the requested command (default: schedule until interrupted).
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/taibuivan/cryptonotify/internal/command"
	"github.com/taibuivan/cryptonotify/internal/crypto"
	"github.com/taibuivan/cryptonotify/internal/notify"
	"github.com/taibuivan/cryptonotify/internal/platform/config"
	"github.com/taibuivan/cryptonotify/internal/platform/constants"
	"github.com/taibuivan/cryptonotify/internal/platform/logger"
	"github.com/taibuivan/cryptonotify/internal/platform/metrics"
	redisstore "github.com/taibuivan/cryptonotify/internal/platform/redis"
)

func main() {
	os.Exit(run())
}

// run owns every deferred cleanup so that os.Exit in main never skips one.
func run() int {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := logger.New(os.Stdout, "worker", false)

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return failed(log, err, "load configuration")
	}

	if cfg.Debug {
		log = logger.New(os.Stdout, "worker", true)
	}
	if cfg.IFTTTKey == "" {
		log.Warn("ifttt_key_missing", slog.String("effect", "every notification will fail"))
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, redisstore.WorkerProfile, log)
	if err != nil {
		return failed(log, err, "connect to redis")
	}
	defer func() {
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 4. Jobs ───────────────────────────────────────────────────────────
	recorder := metrics.New()

	jobs := notify.NewJobs(
		crypto.NewClient(cfg.TickerURL, cfg.TickerTimeout, recorder),
		notify.NewWebhook(cfg.IFTTTURL, cfg.IFTTTKey, cfg.TickerTimeout, recorder),
		notify.NewRedisHistory(rdb, constants.RedisKeyPriceHistory, constants.PriceHistoryLength),
		cfg.BitcoinPriceThreshold,
	)

	scheduler := notify.NewScheduler(log, recorder, constants.JobTimeout)
	if err := scheduler.Register(notify.JobPriceEmergency, cfg.NotifySchedule, jobs.PriceEmergency); err != nil {
		return failed(log, err, "register price emergency")
	}
	if err := scheduler.Register(notify.JobPriceUpdate, cfg.NotifySchedule, jobs.PriceUpdate); err != nil {
		return failed(log, err, "register price update")
	}

	// ── 5. Command ────────────────────────────────────────────────────────
	return command.Execute(command.WorkerApp(scheduler, os.Stdout), os.Args, log)
}

// failed logs a structured startup error and returns the process exit code.
func failed(log *slog.Logger, err error, context string) int {
	log.Error("startup_failure",
		slog.String("context", context),
		slog.Any("error", err),
	)
	return 1
}
