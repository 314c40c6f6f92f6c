// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements account identity: registration, login sessions and the
token-backed confirmation, password reset and email change flows.

# Architecture

  - Account: the credential record, persisted in PostgreSQL.
  - SessionStore: login sessions keyed by an opaque cookie value, in Redis.
  - Service: orchestrates the flows and translates token outcomes into
    client-facing errors.
  - Handler: the HTTP delivery layer under /api/v1/auth.
*/
package auth

import (
	"time"

	"github.com/taibuivan/cryptonotify/internal/platform/entity"
	"github.com/taibuivan/cryptonotify/internal/platform/sec"
)

// # Domain Entities

// Account is a registered user.
type Account struct {
	entity.Base

	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	IsAdmin      bool       `json:"is_admin"`
	IsConfirmed  bool       `json:"is_confirmed"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	LastSeenAt   time.Time  `json:"last_seen_at"`
	RegisteredAt time.Time  `json:"registered_at"`
}

var _ entity.Identifiable = (*Account)(nil)

// NewAccount builds an unconfirmed account registered at now.
func NewAccount(username, email, passwordHash string, now time.Time) *Account {
	now = now.UTC()
	return &Account{
		Base:         entity.NewBase(now),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		LastSeenAt:   now,
		RegisteredAt: now,
	}
}

// Principal converts the account into the identity attached to a request.
func (account *Account) Principal(method sec.AuthMethod, sessionID string) *sec.Principal {
	return &sec.Principal{
		AccountID: account.ID,
		Username:  account.Username,
		IsAdmin:   account.IsAdmin,
		SessionID: sessionID,
		Method:    method,
	}
}

// # Field Identifiers

const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldOldPassword = "old_password"
	FieldNewPassword = "new_password"
	FieldToken       = "token"
)

// # Mail Subjects

const (
	SubjectConfirm     = "Please confirm your email"
	SubjectReset       = "Reset your password"
	SubjectChangeEmail = "Confirm your new email address"
)
