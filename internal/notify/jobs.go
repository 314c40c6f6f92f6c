// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/cryptonotify/internal/crypto"
	"github.com/taibuivan/cryptonotify/internal/platform/ctxutil"
)

// Job and event names.
const (
	JobPriceEmergency = "price_emergency"
	JobPriceUpdate    = "price_update"

	EventPriceEmergency = "bitcoin_price_emergency"
	EventPriceUpdate    = "bitcoin_price_update"

	trackedCurrency = "bitcoin"
)

// Quoter returns the latest ticker entry for a currency.
type Quoter interface {
	LatestQuote(ctx context.Context, currency string) (*crypto.Quote, error)
}

// Notifier delivers one event with a single value.
type Notifier interface {
	Trigger(ctx context.Context, event string, value any) error
}

// Jobs holds the scheduled notification tasks.
type Jobs struct {
	quotes    Quoter
	notifier  Notifier
	history   History
	threshold float64
	now       func() time.Time
}

// NewJobs wires the jobs. A nil history keeps only the latest price.
func NewJobs(quotes Quoter, notifier Notifier, history History, threshold float64) *Jobs {
	if history == nil {
		history = LatestOnly{}
	}
	return &Jobs{
		quotes:    quotes,
		notifier:  notifier,
		history:   history,
		threshold: threshold,
		now:       time.Now,
	}
}

// WithClock replaces the clock used to stamp price points.
func (jobs *Jobs) WithClock(now func() time.Time) *Jobs {
	jobs.now = now
	return jobs
}

/*
PriceEmergency fires the emergency event when bitcoin drops below the threshold.

Parameters:
  - context: context.Context

Returns:
  - error: Ticker, parse or webhook failures. Prices at or above the
    threshold are not an error.
*/
func (jobs *Jobs) PriceEmergency(context context.Context) error {
	quote, err := jobs.quotes.LatestQuote(context, trackedCurrency)
	if err != nil {
		return fmt.Errorf("price_emergency_quote_failed: %w", err)
	}

	price, err := quote.Price()
	if err != nil {
		return fmt.Errorf("price_emergency_parse_failed: %w", err)
	}

	logger := ctxutil.GetLogger(context)
	if price >= jobs.threshold {
		logger.DebugContext(context, "price_above_threshold",
			slog.Float64("price", price),
			slog.Float64("threshold", jobs.threshold),
		)
		return nil
	}

	if err := jobs.notifier.Trigger(context, EventPriceEmergency, price); err != nil {
		return fmt.Errorf("price_emergency_notify_failed: %w", err)
	}

	logger.InfoContext(context, "price_emergency_sent",
		slog.Float64("price", price),
		slog.Float64("threshold", jobs.threshold),
	)
	return nil
}

// PriceUpdate records the current bitcoin price and posts the recent history.
func (jobs *Jobs) PriceUpdate(context context.Context) error {
	quote, err := jobs.quotes.LatestQuote(context, trackedCurrency)
	if err != nil {
		return fmt.Errorf("price_update_quote_failed: %w", err)
	}

	point := PricePoint{At: jobs.now(), Price: quote.PriceUSD}

	points, err := jobs.history.Append(context, point)
	if err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "price_history_unavailable", slog.Any("error", err))
		points = []PricePoint{point}
	}

	if err := jobs.notifier.Trigger(context, EventPriceUpdate, FormatHistory(points)); err != nil {
		return fmt.Errorf("price_update_notify_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "price_update_sent",
		slog.String("price", quote.PriceUSD),
		slog.Int("rows", len(points)),
	)
	return nil
}
