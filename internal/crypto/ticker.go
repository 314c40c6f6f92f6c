// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package crypto proxies read-only price queries to the external ticker API.

Upstream failures of any kind are reported to clients as "not found"; the
proxy never turns a third-party outage into a server error.
*/
package crypto

import (
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

// upstreamName labels ticker calls in metrics.
const upstreamName = "ticker"

// ErrUnavailable is returned when the ticker answered with a non-2xx status,
// could not be reached, or returned nothing usable.
var ErrUnavailable = errors.New("ticker unavailable")

// # Domain Types

// Quote is the subset of a ticker entry the notification jobs read. Every
// numeric value arrives as a string.
type Quote struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	PriceUSD string `json:"price_usd"`
}

// Price parses [Quote.PriceUSD].
func (quote Quote) Price() (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(quote.PriceUSD), 64)
	if err != nil {
		return 0, fmt.Errorf("ticker_price_parse_failed: %q: %w", quote.PriceUSD, err)
	}
	return price, nil
}

// # Client

// Client fetches prices from a CoinMarketCap v1 style ticker.
type Client struct {
	baseURL    string
	httpClient *http.Client
	recorder   *metrics.Metrics
}

// NewClient builds a ticker client. recorder may be nil.
func NewClient(baseURL string, timeout time.Duration, recorder *metrics.Metrics) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		recorder:   recorder,
	}
}

/*
All returns the full ticker listing as received.

Parameters:
  - context: context.Context

Returns:
  - json.RawMessage: The upstream JSON array or object, untouched
  - error: ErrUnavailable wrapping the cause
*/
func (client *Client) All(context context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := client.get(context, client.baseURL+"/", &raw); err != nil {
		return nil, err
	}
	if isEmpty(raw) {
		client.recorder.UpstreamCalled(upstreamName, "empty")
		return nil, fmt.Errorf("ticker_all_empty: %w", ErrUnavailable)
	}
	return raw, nil
}

// Latest returns the ticker entry for currency as received. An array body
// yields its first element and an object body is returned whole.
func (client *Client) Latest(context context.Context, currency string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := client.get(context, client.currencyURL(currency), &raw); err != nil {
		return nil, err
	}

	var entries []json.RawMessage
	if json.Unmarshal(raw, &entries) == nil {
		if len(entries) > 0 {
			raw = entries[0]
		} else {
			raw = nil
		}
	}
	if isEmpty(raw) {
		client.recorder.UpstreamCalled(upstreamName, "empty")
		return nil, fmt.Errorf("ticker_latest_empty: %s: %w", currency, ErrUnavailable)
	}
	return raw, nil
}

// isEmpty reports whether raw carries nothing a client could use: no body,
// null, an empty array or an empty object.
func isEmpty(raw json.RawMessage) bool {
	var value any
	if len(raw) == 0 || json.Unmarshal(raw, &value) != nil {
		return true
	}
	switch typed := value.(type) {
	case nil:
		return true
	case []any:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	}
	return false
}

// LatestQuote is [Client.Latest] decoded into a [Quote].
func (client *Client) LatestQuote(context context.Context, currency string) (*Quote, error) {
	raw, err := client.Latest(context, currency)
	if err != nil {
		return nil, err
	}

	var quote Quote
	if err := json.Unmarshal(raw, &quote); err != nil {
		return nil, fmt.Errorf("ticker_quote_decode_failed: %v: %w", err, ErrUnavailable)
	}
	return &quote, nil
}

func (client *Client) currencyURL(currency string) string {
	return client.baseURL + "/" + url.PathEscape(currency) + "/"
}

// get performs one GET and decodes a JSON body into target.
func (client *Client) get(context context.Context, target string, into any) error {
	request, err := http.NewRequestWithContext(context, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("ticker_request_build_failed: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		client.recorder.UpstreamCalled(upstreamName, "error")
		return fmt.Errorf("ticker_request_failed: %v: %w", err, ErrUnavailable)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		client.recorder.UpstreamCalled(upstreamName, "status_"+strconv.Itoa(response.StatusCode))
		_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, 64<<10))
		return fmt.Errorf("ticker returned %d: %w", response.StatusCode, ErrUnavailable)
	}

	if err := json.NewDecoder(response.Body).Decode(into); err != nil {
		client.recorder.UpstreamCalled(upstreamName, "decode_error")
		return fmt.Errorf("ticker_decode_failed: %v: %w", err, ErrUnavailable)
	}

	client.recorder.UpstreamCalled(upstreamName, "ok")
	return nil
}
