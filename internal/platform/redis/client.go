// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis opens the go-redis client shared by login sessions and the
worker's price history.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/cryptonotify/internal/platform/constants"
)

const pingTimeout = 2 * time.Second

// Profile sizes the client for one binary.
type Profile struct {
	Name         string
	PoolSize     int
	MinIdleConns int
}

var (
	// APIProfile resolves a session on every authenticated request.
	APIProfile = Profile{Name: "api", PoolSize: 10, MinIdleConns: 2}

	// WorkerProfile touches Redis once per job run.
	WorkerProfile = Profile{Name: "worker", PoolSize: 2, MinIdleConns: 0}
)

// ParseOptions builds client options for redisURL without connecting.
func ParseOptions(redisURL string, profile Profile) (*redis.Options, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis_url_invalid: %w", err)
	}

	options.ClientName = constants.AppName + "-" + profile.Name
	options.PoolSize = profile.PoolSize
	options.MinIdleConns = profile.MinIdleConns
	options.DialTimeout = 3 * time.Second
	options.ReadTimeout = 2 * time.Second
	options.WriteTimeout = 2 * time.Second

	return options, nil
}

// NewClient connects with [ParseOptions] and pings once before returning.
func NewClient(context stdctx.Context, redisURL string, profile Profile, logger *slog.Logger) (*redis.Client, error) {
	options, err := ParseOptions(redisURL, profile)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(options)
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("profile", profile.Name),
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
	)
	return client, nil
}

// Ping backs the readiness check.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis_ping_failed: %w", err)
	}
	return nil
}
