// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles profile management and account administration.

It lets callers read and edit their own profile, and lets administrators list
and delete accounts or toggle the admin flag.

# Architecture

  - Domain: The Account entity belongs to the auth package; this package only
    works on its profile and administrative fields.
  - Security: Deleting an account also ends its login sessions.
*/
package account

import (
	"context"

	"github.com/taibuivan/cryptonotify/internal/users/auth"
)

// # Repository Contracts

// AccountRepository defines the persistence contract for profile and admin operations.
type AccountRepository interface {
	/*
		FindByID retrieves an account by its ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.Account: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.Account, error)

	// UpdateProfile replaces the first and last name.
	UpdateProfile(context context.Context, accountID, firstName, lastName string) error

	/*
		SetAdmin toggles the administrative flag of the account owning username.

		Parameters:
		  - context: context.Context
		  - username: string
		  - isAdmin: bool

		Returns:
		  - *auth.Account: The updated account
		  - error: apperr.NotFound or storage failures
	*/
	SetAdmin(context context.Context, username string, isAdmin bool) (*auth.Account, error)

	// Delete physically removes the account row.
	Delete(context context.Context, id string) error

	// List returns one page of accounts ordered by registration time.
	List(context context.Context, offset, limit int) ([]*auth.Account, error)

	// Count returns the total number of accounts.
	Count(context context.Context) (int, error)
}

// SessionRevoker ends every login session of an account.
type SessionRevoker interface {
	DeleteAllForAccount(context context.Context, accountID string) error
}

// # Field Identifiers

const (
	FieldID        = "id"
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
)
