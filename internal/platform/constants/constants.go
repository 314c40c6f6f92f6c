// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, header names and cookie settings that
are shared between different layers of the system.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "cryptonotify"
	AppVersion = "0.1.0-dev"

	// MailSubjectPrefix is prepended to every outbound email subject.
	MailSubjectPrefix = "[CryptoNotifications]"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 20 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 15 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 40

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID     = "X-Request-ID"
	HeaderXRealIP        = "X-Real-IP"
	HeaderXForwardedFor  = "X-Forwarded-For"
	HeaderAuthorization  = "Authorization"
	HeaderContentType    = "Content-Type"
	BearerScheme         = "bearer"
	ContentTypeJSON      = "application/json"
	ContentTypeForm      = "application/x-www-form-urlencoded"
	ContentTypeMultipart = "multipart/form-data"
)

// # Sessions

const (
	// SessionCookieName is the cookie carrying the login session id.
	SessionCookieName = "session_id"

	// SessionCookiePath scopes the session cookie to the API.
	SessionCookiePath = "/"

	// SessionIDBytes is the entropy of a session id.
	SessionIDBytes = 32
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixSession        = "auth:session:"
	RedisPrefixAccountSession = "auth:account_sessions:"
)

// # Notifications

const (
	// RedisKeyPriceHistory holds the recent bitcoin prices sent to Telegram.
	RedisKeyPriceHistory = "notify:price_history:bitcoin"

	// PriceHistoryLength is the number of rows in a price update message.
	PriceHistoryLength = 5

	// JobTimeout bounds a single scheduled job run.
	JobTimeout = 1 * time.Minute
)
