// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package notify posts price alerts to an IFTTT Maker webhook on a schedule.

# Jobs

  - price_emergency: fires "bitcoin_price_emergency" when bitcoin trades
    below the configured threshold.
  - price_update: fires "bitcoin_price_update" with the recent price history
    formatted for Telegram.
*/
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/cryptonotify/internal/platform/metrics"
)

// ErrMissingKey is returned by [Webhook.Trigger] when no IFTTT key is configured.
var ErrMissingKey = errors.New("ifttt key is not configured")

// Payload is the body IFTTT Maker expects. Only value1 is used.
type Payload struct {
	Value1 any `json:"value1"`
}

// Webhook posts events to IFTTT Maker.
type Webhook struct {
	baseURL    string
	key        string
	httpClient *http.Client
	recorder   *metrics.Metrics
}

// NewWebhook builds an IFTTT client. baseURL is normally
// "https://maker.ifttt.com/trigger". recorder may be nil.
func NewWebhook(baseURL, key string, timeout time.Duration, recorder *metrics.Metrics) *Webhook {
	return &Webhook{
		baseURL:    strings.TrimRight(baseURL, "/"),
		key:        key,
		httpClient: &http.Client{Timeout: timeout},
		recorder:   recorder,
	}
}

// EventURL returns the trigger URL for event.
func (webhook *Webhook) EventURL(event string) string {
	return fmt.Sprintf("%s/%s/with/key/%s", webhook.baseURL, url.PathEscape(event), url.PathEscape(webhook.key))
}

/*
Trigger posts value as value1 of event.

Parameters:
  - context: context.Context
  - event: string (IFTTT event name)
  - value: any (JSON encodable)

Returns:
  - error: ErrMissingKey, transport errors or a non-2xx answer
*/
func (webhook *Webhook) Trigger(context context.Context, event string, value any) error {
	if webhook.key == "" {
		return ErrMissingKey
	}

	body, err := json.Marshal(Payload{Value1: value})
	if err != nil {
		return fmt.Errorf("ifttt_payload_encode_failed: %w", err)
	}

	request, err := http.NewRequestWithContext(context, http.MethodPost, webhook.EventURL(event), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ifttt_request_build_failed: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := webhook.httpClient.Do(request)
	if err != nil {
		webhook.recorder.UpstreamCalled("ifttt", "error")
		return fmt.Errorf("ifttt_request_failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		webhook.recorder.UpstreamCalled("ifttt", "status_"+strconv.Itoa(response.StatusCode))
		detail, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return fmt.Errorf("ifttt %s returned %d: %s", event, response.StatusCode, strings.TrimSpace(string(detail)))
	}

	webhook.recorder.UpstreamCalled("ifttt", "ok")
	return nil
}
