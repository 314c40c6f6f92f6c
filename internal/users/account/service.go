// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/cryptonotify/internal/platform/apperr"
	"github.com/taibuivan/cryptonotify/internal/platform/ctxutil"
	"github.com/taibuivan/cryptonotify/internal/users/auth"
	"github.com/taibuivan/cryptonotify/pkg/pagination"
	"github.com/taibuivan/cryptonotify/pkg/pointer"
	"github.com/taibuivan/cryptonotify/pkg/uuidv7"
)

// # Service Layer

// Service orchestrates profile edits and account administration.
type Service struct {
	accountRepository AccountRepository
	sessions          SessionRevoker
}

// NewService constructs a new [Service] with its dependencies.
func NewService(accountRepo AccountRepository, sessions SessionRevoker) *Service {
	return &Service{
		accountRepository: accountRepo,
		sessions:          sessions,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private view of an account.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *auth.Account: The hydrated account
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, accountID string) (*auth.Account, error) {
	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return account, nil
}

// UpdateProfileInput defines the mutable subset of profile fields. Nil fields
// are left unchanged.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
}

/*
UpdateProfile applies a partial set of changes to the caller's profile.

Parameters:
  - context: context.Context
  - accountID: string
  - input: UpdateProfileInput

Returns:
  - *auth.Account: The updated account
  - error: Update or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, accountID string, input UpdateProfileInput) (*auth.Account, error) {
	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_lookup_failed: %w", err)
	}

	account.FirstName = pointer.Or(input.FirstName, account.FirstName)
	account.LastName = pointer.Or(input.LastName, account.LastName)

	if err := service.accountRepository.UpdateProfile(context, account.ID, account.FirstName, account.LastName); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "account_profile_updated", slog.String("account_id", accountID))
	return account, nil
}

// # Administration

// List returns one page of accounts and the total count.
func (service *Service) List(context context.Context, params pagination.Params) ([]*auth.Account, int, error) {
	accounts, err := service.accountRepository.List(context, params.Offset(), params.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("account_service_list_failed: %w", err)
	}

	total, err := service.accountRepository.Count(context)
	if err != nil {
		return nil, 0, fmt.Errorf("account_service_count_failed: %w", err)
	}

	return accounts, total, nil
}

/*
Delete removes an account and ends its sessions.

Description: Administrators cannot delete their own account, so at least one
admin always remains able to log in.

Parameters:
  - context: context.Context
  - actorID: string (The administrator performing the deletion)
  - accountID: string

Returns:
  - error: NotFound, Conflict or storage failures
*/
func (service *Service) Delete(context context.Context, actorID, accountID string) error {
	if _, ok := uuidv7.Parse(accountID); !ok {
		return apperr.NotFound("Account")
	}
	if actorID == accountID {
		return apperr.Conflict("You cannot delete your own account")
	}

	if err := service.accountRepository.Delete(context, accountID); err != nil {
		return err
	}

	logger := ctxutil.GetLogger(context)
	if err := service.sessions.DeleteAllForAccount(context, accountID); err != nil {
		logger.WarnContext(context, "session_cleanup_failed",
			slog.String("account_id", accountID),
			slog.Any("error", err),
		)
	}

	logger.WarnContext(context, "account_deleted",
		slog.String("account_id", accountID),
		slog.String("actor_id", actorID),
	)
	return nil
}

// SetAdmin grants or revokes the admin flag of the account owning username.
func (service *Service) SetAdmin(context context.Context, username string, isAdmin bool) (*auth.Account, error) {
	account, err := service.accountRepository.SetAdmin(context, username, isAdmin)
	if err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "account_admin_flag_changed",
		slog.String("account_id", account.ID),
		slog.Bool("is_admin", isAdmin),
	)
	return account, nil
}
