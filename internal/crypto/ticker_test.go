// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crypto_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cryptonotify/internal/crypto"
	"github.com/taibuivan/cryptonotify/internal/platform/metrics"
)

const tickerFixture = `[
	{"id":"storj","name":"Storj","symbol":"STORJ","price_usd":"0.952095","rank":"99","max_supply":null},
	{"id":"skycoin","name":"Skycoin","symbol":"SKY","price_usd":"16.0151","rank":"100","max_supply":"100000000.0"}
]`

// newTicker serves tickerFixture on "/" and "/{currency}/", and fails with
// status for any path listed in failing.
func newTicker(t *testing.T, status int, failing ...string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		for _, path := range failing {
			if request.URL.Path == path {
				writer.WriteHeader(status)
				return
			}
		}
		if request.URL.Path == "/empty/" {
			_, _ = writer.Write([]byte(`[]`))
			return
		}
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(tickerFixture))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_All(t *testing.T) {
	server := newTicker(t, http.StatusOK)
	client := crypto.NewClient(server.URL, time.Second, nil)

	raw, err := client.All(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, tickerFixture, string(raw))
}

/*
TestClient_Latest verifies the first entry is returned untouched and that the
quote view parses the price.
*/
func TestClient_Latest(t *testing.T) {
	server := newTicker(t, http.StatusOK)
	client := crypto.NewClient(server.URL+"/", time.Second, nil)

	raw, err := client.Latest(context.Background(), "bitcoin")
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, "storj", entry["id"])
	assert.Contains(t, entry, "max_supply")

	quote, err := client.LatestQuote(context.Background(), "bitcoin")
	require.NoError(t, err)
	price, err := quote.Price()
	require.NoError(t, err)
	assert.InDelta(t, 0.952095, price, 1e-9)
}

func TestClient_Unavailable(t *testing.T) {
	recorder := metrics.New()
	server := newTicker(t, http.StatusServiceUnavailable, "/", "/bitcoin/")
	client := crypto.NewClient(server.URL, time.Second, recorder)

	tests := []struct {
		name string
		call func() error
	}{
		{"all_non_2xx", func() error { _, err := client.All(context.Background()); return err }},
		{"latest_non_2xx", func() error { _, err := client.Latest(context.Background(), "bitcoin"); return err }},
		{"latest_empty", func() error { _, err := client.Latest(context.Background(), "empty"); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), crypto.ErrUnavailable)
		})
	}

	count, err := testutil.GatherAndCount(recorder.Gatherer(), "cryptonotify_upstream_requests_total")
	require.NoError(t, err)
	assert.Positive(t, count)
}

/*
TestClient_ObjectBody checks that a JSON object is passed through as it is
and that empty bodies are reported as unavailable.
*/
func TestClient_ObjectBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"object", `{"data":{"id":"bitcoin","price_usd":"64000.1"}}`, false},
		{"empty_object", `{}`, true},
		{"null", `null`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				_, _ = writer.Write([]byte(tt.body))
			}))
			t.Cleanup(server.Close)
			client := crypto.NewClient(server.URL, time.Second, nil)

			all, err := client.All(context.Background())
			latest, latestErr := client.Latest(context.Background(), "bitcoin")
			if tt.wantErr {
				assert.ErrorIs(t, err, crypto.ErrUnavailable)
				assert.ErrorIs(t, latestErr, crypto.ErrUnavailable)
				return
			}

			require.NoError(t, err)
			require.NoError(t, latestErr)
			assert.JSONEq(t, tt.body, string(all))
			assert.JSONEq(t, tt.body, string(latest))
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	server := newTicker(t, http.StatusOK)
	server.Close()

	client := crypto.NewClient(server.URL, time.Second, nil)
	_, err := client.All(context.Background())
	assert.ErrorIs(t, err, crypto.ErrUnavailable)
}

func TestQuote_Price(t *testing.T) {
	_, err := crypto.Quote{PriceUSD: "n/a"}.Price()
	assert.Error(t, err)

	price, err := crypto.Quote{PriceUSD: " 9999.5 "}.Price()
	require.NoError(t, err)
	assert.Equal(t, 9999.5, price)
}
