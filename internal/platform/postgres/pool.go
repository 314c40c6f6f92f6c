// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres opens the pgx pool behind the account repositories.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/cryptonotify/internal/platform/constants"
)

const (
	connectTimeout = 5 * time.Second
	pingTimeout    = 2 * time.Second
)

// Profile sizes the pool for one binary.
type Profile struct {
	// Name is appended to the application_name reported to PostgreSQL.
	Name     string
	MaxConns int32
	MinConns int32
	// MaxConnIdleTime is zero for pools that should never go idle.
	MaxConnIdleTime time.Duration
}

var (
	// APIProfile serves request traffic. bcrypt dominates login latency, so a
	// small pool keeps up with the CPU-bound callers.
	APIProfile = Profile{Name: "api", MaxConns: 10, MinConns: 2, MaxConnIdleTime: 10 * time.Minute}

	// CommandProfile serves one-shot manage commands.
	CommandProfile = Profile{Name: "manage", MaxConns: 2, MinConns: 0, MaxConnIdleTime: time.Minute}
)

// ParseConfig builds the pool configuration for dsn without connecting.
//
// Every connection reports "cryptonotify-<profile>" as application_name and
// carries a statement_timeout equal to the request deadline.
func ParseConfig(dsn string, profile Profile) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres_dsn_invalid: %w", err)
	}

	poolConfig.MaxConns = profile.MaxConns
	poolConfig.MinConns = profile.MinConns
	poolConfig.MaxConnIdleTime = profile.MaxConnIdleTime
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.HealthCheckPeriod = time.Minute
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout

	params := poolConfig.ConnConfig.RuntimeParams
	params["application_name"] = constants.AppName + "-" + profile.Name
	params["statement_timeout"] = strconv.FormatInt(constants.GlobalRequestTimeout.Milliseconds(), 10)

	return poolConfig, nil
}

// NewPool connects with [ParseConfig] and pings once before returning.
func NewPool(ctx context.Context, dsn string, profile Profile, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := ParseConfig(dsn, profile)
	if err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres_pool_create_failed: %w", err)
	}

	if err := Ping(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres_pool_connected",
		slog.String("profile", profile.Name),
		slog.String("host", poolConfig.ConnConfig.Host),
		slog.String("database", poolConfig.ConnConfig.Database),
		slog.Int("max_conns", int(profile.MaxConns)),
	)
	return pool, nil
}

// Ping backs the readiness check.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("postgres_ping_failed: %w", err)
	}
	return nil
}
