// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cryptonotify/internal/platform/ctxutil"
	"github.com/taibuivan/cryptonotify/internal/platform/metrics"
	"github.com/taibuivan/cryptonotify/internal/platform/middleware"
	"github.com/taibuivan/cryptonotify/internal/platform/sec"
)

// fakeResolver accepts one bearer token and one session id.
type fakeResolver struct {
	bearer    string
	sessionID string
	principal *sec.Principal
}

func (f *fakeResolver) ResolveBearer(_ context.Context, token string) (*sec.Principal, error) {
	if token != f.bearer {
		return nil, errors.New("bad token")
	}
	return f.principal, nil
}

func (f *fakeResolver) ResolveSession(_ context.Context, sessionID string) (*sec.Principal, error) {
	if sessionID != f.sessionID {
		return nil, nil
	}
	return f.principal, nil
}

type countingTracker struct {
	touched []string
	err     error
}

func (c *countingTracker) Touch(_ context.Context, accountID string) error {
	c.touched = append(c.touched, accountID)
	return c.err
}

func whoAmI(writer http.ResponseWriter, request *http.Request) {
	if principal := ctxutil.GetPrincipal(request.Context()); principal != nil {
		_, _ = writer.Write([]byte(principal.AccountID))
		return
	}
	_, _ = writer.Write([]byte("anonymous"))
}

/*
TestAuthenticate covers the bearer, cookie and anonymous paths.
*/
func TestAuthenticate(t *testing.T) {
	resolver := &fakeResolver{
		bearer:    "good-token",
		sessionID: "good-session",
		principal: &sec.Principal{AccountID: "account-1"},
	}
	handler := middleware.Authenticate(resolver)(http.HandlerFunc(whoAmI))

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantBody   string
	}{
		{"anonymous", "", "", http.StatusOK, "anonymous"},
		{"bearer", "Bearer good-token", "", http.StatusOK, "account-1"},
		{"bearer_lowercase_scheme", "bearer good-token", "", http.StatusOK, "account-1"},
		{"bad_bearer", "Bearer forged", "", http.StatusUnauthorized, ""},
		{"bad_scheme", "Basic abc", "", http.StatusUnauthorized, ""},
		{"session", "", "good-session", http.StatusOK, "account-1"},
		{"stale_session", "", "gone", http.StatusOK, "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				request.AddCookie(&http.Cookie{Name: "session_id", Value: tt.cookie})
			}

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, recorder.Body.String())
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	handler := middleware.RequireAuth(http.HandlerFunc(whoAmI))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestRequireAdmin(t *testing.T) {
	handler := middleware.RequireAdmin(http.HandlerFunc(whoAmI))

	tests := []struct {
		name       string
		principal  *sec.Principal
		wantStatus int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"member", &sec.Principal{AccountID: "a"}, http.StatusForbidden},
		{"admin", &sec.Principal{AccountID: "a", IsAdmin: true}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/admin/accounts", nil)
			if tt.principal != nil {
				request = request.WithContext(ctxutil.WithPrincipal(request.Context(), tt.principal))
			}

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)
			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

/*
TestTrackLastSeen verifies only authenticated requests are tracked and that a
tracker failure does not fail the request.
*/
func TestTrackLastSeen(t *testing.T) {
	tracker := &countingTracker{err: errors.New("db down")}
	handler := middleware.TrackLastSeen(tracker)(http.HandlerFunc(whoAmI))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, tracker.touched)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(ctxutil.WithPrincipal(request.Context(), &sec.Principal{AccountID: "account-1"}))

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, []string{"account-1"}, tracker.touched)
}

func TestRequestID(t *testing.T) {
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(ctxutil.GetRequestID(request.Context())))
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, recorder.Body.String())
	assert.Equal(t, recorder.Body.String(), recorder.Header().Get("X-Request-ID"))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "client-id")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "client-id", recorder.Body.String())
}

func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx, 1, 2)(http.HandlerFunc(whoAmI))

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.RemoteAddr = "10.0.0.1:5555"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		statuses = append(statuses, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}

func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", middleware.RealIP(request))

	request.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", middleware.RealIP(request))

	request.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", middleware.RealIP(request))
}

/*
TestInstrument verifies requests are labelled by route pattern, not raw path.
*/
func TestInstrument(t *testing.T) {
	m := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.Instrument(m))
	router.Get("/confirm/{token}", whoAmI)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/confirm/abc.def.ghi", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	metricsRecorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(metricsRecorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, metricsRecorder.Body.String(), `route="/confirm/{token}"`)
	assert.NotContains(t, metricsRecorder.Body.String(), "abc.def.ghi")
}
