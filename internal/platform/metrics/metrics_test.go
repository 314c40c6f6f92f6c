// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cryptonotify/internal/platform/metrics"
)

func TestMetrics_Recorders(t *testing.T) {
	m := metrics.New()

	m.TokenVerified("reset", "expired")
	m.TokenVerified("reset", "expired")
	m.LoginAttempted("unknown_user")
	m.ObserveHTTP(http.MethodGet, "/health", http.StatusOK, 5*time.Millisecond)

	count, err := testutil.GatherAndCount(m.Gatherer(), "cryptonotify_token_verifications_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `cryptonotify_token_verifications_total{outcome="expired",purpose="reset"} 2`)
	assert.Contains(t, recorder.Body.String(), `cryptonotify_auth_logins_total{outcome="unknown_user"} 1`)
}

/*
TestMetrics_NilSafe verifies recorders are no-ops on a nil receiver.
*/
func TestMetrics_NilSafe(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.TokenVerified("confirm", "valid")
		m.LoginAttempted("success")
		m.JobRan("price_update", "ok")
		m.UpstreamCalled("ticker", "ok")
		m.ObserveHTTP(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	})
}
