// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/taibuivan/cryptonotify/internal/platform/mail"
)

// # Credential Data Access

// AccountRepository is the credential store contract used by the auth flows.
//
// Lookups return apperr NOT_FOUND for missing rows. Writes that collide with
// the username or email unique index return apperr CONFLICT.
type AccountRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Account, error)

	// FindByUsername returns the account owning username.
	FindByUsername(context context.Context, username string) (*Account, error)

	// FindByEmail returns the account owning the normalized email.
	FindByEmail(context context.Context, email string) (*Account, error)

	/*
		Create persists a brand-new account.

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: apperr.Conflict on a duplicate username or email
	*/
	Create(context context.Context, account *Account) error

	// UpdatePassword replaces only the password hash.
	UpdatePassword(context context.Context, accountID, passwordHash string) error

	/*
		UpdateEmail moves the account to a new email address.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - email: string (normalized)

		Returns:
		  - error: apperr.Conflict when another account owns email
	*/
	UpdateEmail(context context.Context, accountID, email string) error

	// MarkConfirmed flags the account as confirmed at the given time.
	MarkConfirmed(context context.Context, accountID string, confirmedAt time.Time) error

	// TouchLastSeen stamps the last activity time.
	TouchLastSeen(context context.Context, accountID string, seenAt time.Time) error
}

// # Session Data Access

// SessionStore holds login sessions. Session ids are opaque random strings.
type SessionStore interface {

	/*
		Create issues a new session for accountID.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - ttl: time.Duration

		Returns:
		  - string: The session id to hand to the client
		  - error: Storage failures
	*/
	Create(context context.Context, accountID string, ttl time.Duration) (string, error)

	// Get returns the account owning sessionID, or "" when the session is
	// unknown or expired.
	Get(context context.Context, sessionID string) (string, error)

	// Delete ends one session. Deleting an unknown session is not an error.
	Delete(context context.Context, sessionID string) error

	// DeleteAllForAccount ends every session of accountID.
	DeleteAllForAccount(context context.Context, accountID string) error
}

// # Outbound Mail

// Mailer renders and sends a templated email.
type Mailer interface {
	SendTemplate(ctx context.Context, recipient, subject, template string, data mail.LinkData) error
}
