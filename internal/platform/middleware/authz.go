// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/cryptonotify/internal/platform/apperr"
	"github.com/taibuivan/cryptonotify/internal/platform/constants"
	"github.com/taibuivan/cryptonotify/internal/platform/ctxutil"
	"github.com/taibuivan/cryptonotify/internal/platform/respond"
	"github.com/taibuivan/cryptonotify/internal/platform/sec"
)

// IdentityResolver turns request credentials into a [sec.Principal].
//
// Defining it here keeps the middleware independent of the auth package and
// lets tests inject a fake.
type IdentityResolver interface {
	// ResolveBearer verifies a bearer token. Any error rejects the request.
	ResolveBearer(ctx context.Context, token string) (*sec.Principal, error)

	// ResolveSession looks up a session id. A nil principal with a nil error
	// means the session is unknown or expired.
	ResolveSession(ctx context.Context, sessionID string) (*sec.Principal, error)
}

// ActivityTracker records that an account was just active.
type ActivityTracker interface {
	Touch(ctx context.Context, accountID string) error
}

// Authenticate resolves the caller from the Authorization header or the
// session cookie.
//
// # Flow
//  1. 'Authorization: Bearer <token>' wins when present; a bad token is a 401.
//  2. Otherwise the session cookie is looked up; a stale cookie is anonymous.
//  3. Without either, the request proceeds as anonymous.
func Authenticate(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()

			// ── 1. Bearer Token ───────────────────────────────────────────────
			if authHeader := request.Header.Get(constants.HeaderAuthorization); authHeader != "" {
				scheme, token, found := strings.Cut(authHeader, " ")
				if !found || !strings.EqualFold(scheme, constants.BearerScheme) || strings.TrimSpace(token) == "" {
					respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
					return
				}

				principal, err := resolver.ResolveBearer(ctx, strings.TrimSpace(token))
				if err != nil {
					if !apperr.IsAppError(err) {
						err = apperr.Unauthorized("Invalid or expired token")
					}
					respond.Error(writer, request, err)
					return
				}

				next.ServeHTTP(writer, request.WithContext(withPrincipal(ctx, principal)))
				return
			}

			// ── 2. Session Cookie ─────────────────────────────────────────────
			if cookie, err := request.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
				principal, err := resolver.ResolveSession(ctx, cookie.Value)
				if err != nil {
					ctxutil.GetLogger(ctx).WarnContext(ctx, "session_lookup_failed", slog.Any("error", err))
				}
				if principal != nil {
					next.ServeHTTP(writer, request.WithContext(withPrincipal(ctx, principal)))
					return
				}
			}

			// ── 3. Anonymous ──────────────────────────────────────────────────
			next.ServeHTTP(writer, request)
		})
	}
}

func withPrincipal(ctx context.Context, principal *sec.Principal) context.Context {
	captureIdentity(ctx, principal.AccountID)
	return ctxutil.WithPrincipal(ctx, principal)
}

// TrackLastSeen stamps the caller's last-seen time before the handler runs.
// Failures are logged and never fail the request.
func TrackLastSeen(tracker ActivityTracker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()
			if principal := ctxutil.GetPrincipal(ctx); principal != nil {
				if err := tracker.Touch(ctx, principal.AccountID); err != nil {
					ctxutil.GetLogger(ctx).WarnContext(ctx, "last_seen_update_failed",
						slog.String("account_id", principal.AccountID),
						slog.Any("error", err),
					)
				}
			}
			next.ServeHTTP(writer, request)
		})
	}
}

// RequireAuth blocks anonymous requests with a 401.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetPrincipal(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireAdmin blocks anonymous requests with a 401 and non-admins with a 403.
// It implies [RequireAuth].
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal := ctxutil.GetPrincipal(request.Context())

		if principal == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		if !principal.CanAdminister() {
			respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
			return
		}

		next.ServeHTTP(writer, request)
	})
}
