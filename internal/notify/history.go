// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// telegramTimeLayout renders as "24.02.2018 15:09".
const telegramTimeLayout = "02.01.2006 15:04"

// PricePoint is one observed price. Price keeps the upstream string form.
type PricePoint struct {
	At    time.Time `json:"at"`
	Price string    `json:"price"`
}

// FormatHistory renders points with the HTML subset Telegram accepts, one
// "date: $<b>price</b>" row per point joined by <br>.
func FormatHistory(points []PricePoint) string {
	rows := make([]string, 0, len(points))
	for _, point := range points {
		rows = append(rows, fmt.Sprintf("%s: $<b>%s</b>", point.At.Format(telegramTimeLayout), point.Price))
	}
	return strings.Join(rows, "<br>")
}

// History keeps the most recent price points.
type History interface {
	// Append stores point and returns the retained points, oldest first.
	Append(ctx context.Context, point PricePoint) ([]PricePoint, error)
}

// # Redis Implementation

// RedisHistory is a capped Redis list of JSON encoded points.
type RedisHistory struct {
	client   *redis.Client
	key      string
	capacity int64
}

// NewRedisHistory keeps at most capacity points under key.
func NewRedisHistory(client *redis.Client, key string, capacity int) *RedisHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &RedisHistory{client: client, key: key, capacity: int64(capacity)}
}

// Append implements [History].
func (history *RedisHistory) Append(ctx context.Context, point PricePoint) ([]PricePoint, error) {
	encoded, err := json.Marshal(point)
	if err != nil {
		return nil, fmt.Errorf("price_history_encode_failed: %w", err)
	}

	pipe := history.client.TxPipeline()
	pipe.RPush(ctx, history.key, encoded)
	pipe.LTrim(ctx, history.key, -history.capacity, -1)
	entries := pipe.LRange(ctx, history.key, 0, -1)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("price_history_append_failed: %w", err)
	}

	points := make([]PricePoint, 0, len(entries.Val()))
	for _, entry := range entries.Val() {
		var stored PricePoint
		if err := json.Unmarshal([]byte(entry), &stored); err != nil {
			continue
		}
		points = append(points, stored)
	}
	return points, nil
}

// # In-Memory Implementation

// LatestOnly is a [History] that retains nothing and returns just the new point.
type LatestOnly struct{}

// Append implements [History].
func (LatestOnly) Append(_ context.Context, point PricePoint) ([]PricePoint, error) {
	return []PricePoint{point}, nil
}
