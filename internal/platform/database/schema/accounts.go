// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns of the relational store, so
// queries never spell identifiers inline.
package schema

import "strings"

// AccountsTable represents the 'accounts' table.
type AccountsTable struct {
	Table        string
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsAdmin      string
	IsConfirmed  string
	ConfirmedAt  string
	LastSeenAt   string
	RegisteredAt string
	CreatedAt    string
	UpdatedAt    string
}

// Accounts is the schema definition for accounts.
var Accounts = AccountsTable{
	Table:        "accounts",
	ID:           "id",
	Username:     "username",
	Email:        "email",
	PasswordHash: "password_hash",
	FirstName:    "first_name",
	LastName:     "last_name",
	IsAdmin:      "is_admin",
	IsConfirmed:  "is_confirmed",
	ConfirmedAt:  "confirmed_at",
	LastSeenAt:   "last_seen_at",
	RegisteredAt: "registered_at",
	CreatedAt:    "created_at",
	UpdatedAt:    "updated_at",
}

// Unique index names, as created by the accounts migration.
const (
	AccountsUsernameKey = "accounts_username_key"
	AccountsEmailKey    = "accounts_email_key"
)

// Columns returns all column names in table order.
func (t AccountsTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.PasswordHash, t.FirstName, t.LastName,
		t.IsAdmin, t.IsConfirmed, t.ConfirmedAt, t.LastSeenAt, t.RegisteredAt,
		t.CreatedAt, t.UpdatedAt,
	}
}

// SelectList returns the columns joined for a SELECT or INSERT list.
func (t AccountsTable) SelectList() string {
	return strings.Join(t.Columns(), ", ")
}
