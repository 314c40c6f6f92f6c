// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Cryptonotify HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Build the token codec, mail composer and metrics.
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/cryptonotify/internal/api"
	"github.com/taibuivan/cryptonotify/internal/crypto"
	"github.com/taibuivan/cryptonotify/internal/platform/config"
	"github.com/taibuivan/cryptonotify/internal/platform/constants"
	"github.com/taibuivan/cryptonotify/internal/platform/logger"
	"github.com/taibuivan/cryptonotify/internal/platform/mail"
	"github.com/taibuivan/cryptonotify/internal/platform/metrics"
	"github.com/taibuivan/cryptonotify/internal/platform/migration"
	pgstore "github.com/taibuivan/cryptonotify/internal/platform/postgres"
	redisstore "github.com/taibuivan/cryptonotify/internal/platform/redis"
	"github.com/taibuivan/cryptonotify/internal/platform/sec"
	"github.com/taibuivan/cryptonotify/internal/users/account"
	"github.com/taibuivan/cryptonotify/internal/users/auth"
)

func main() {
	os.Exit(run())
}

// run owns every deferred cleanup so that os.Exit in main never skips one.
func run() int {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := logger.New(os.Stdout, "api", false)
	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return failed(log, err, "load configuration")
	}

	if cfg.Debug {
		log = logger.New(os.Stdout, "api", true)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, pgstore.APIProfile, log)
	if err != nil {
		return failed(log, err, "connect to postgres")
	}
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, redisstore.APIProfile, log)
	if err != nil {
		return failed(log, err, "connect to redis")
	}
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		return failed(log, err, "run migrations")
	}

	// ── 6. Shared Services ────────────────────────────────────────────────
	recorder := metrics.New()

	codec, err := sec.NewTokenCodec(cfg.SecretKey, cfg.PasswordSalt)
	if err != nil {
		return failed(log, err, "initialize token codec")
	}

	sender, err := newMailSender(cfg, log)
	if err != nil {
		return failed(log, err, "initialize mail sender")
	}

	composer, err := mail.NewComposer(sender, constants.MailSubjectPrefix)
	if err != nil {
		return failed(log, err, "initialize mail templates")
	}

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	sessions := auth.NewSessionStore(rdb)

	authService := auth.NewService(
		auth.NewAccountRepository(pool),
		sessions,
		codec,
		composer,
		recorder,
		auth.Settings{
			PublicURL:      cfg.PublicURL,
			TokenTTL:       cfg.TokenTTL,
			BearerTokenTTL: cfg.BearerTokenTTL,
			SessionTTL:     cfg.SessionTTL,
		},
	)

	accountService := account.NewService(account.NewAccountRepository(pool), sessions)
	ticker := crypto.NewClient(cfg.TickerURL, cfg.TickerTimeout, recorder)

	liveness, readiness := api.NewHealthHandlers(log,
		api.HealthCheck{Name: "postgres", Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
		api.HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
	)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, cfg.IsProduction()),
		Account:   account.NewHandler(accountService),
		Crypto:    crypto.NewHandler(ticker),
	}

	// The rate limiter's sweeper lives as long as this context.
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, recorder, authService, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		return 1
	}

	log.Info("server_stopped_cleanly")
	return 0
}

// newMailSender picks SMTP when a host is configured and the logging sender otherwise.
func newMailSender(cfg *config.Config, log *slog.Logger) (mail.Sender, error) {
	if cfg.SMTPHost == "" {
		log.Warn("smtp_not_configured", slog.String("fallback", "log"))
		return mail.NewLogSender(log), nil
	}

	return mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		UseSSL:   cfg.SMTPUseSSL,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailSender,
	})
}

// failed logs a structured startup error and returns the process exit code.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func failed(log *slog.Logger, err error, context string) int {
	log.Error("startup_failure",
		slog.String("context", context),
		slog.Any("error", err),
	)
	return 1
}
