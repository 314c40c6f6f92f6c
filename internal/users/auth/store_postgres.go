// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/cryptonotify/internal/platform/apperr"
	"github.com/taibuivan/cryptonotify/internal/platform/database/schema"
	"github.com/taibuivan/cryptonotify/internal/platform/dberr"
)

// ScanAccount reads one row selected with schema.Accounts.SelectList().
func ScanAccount(row pgx.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.FirstName,
		&account.LastName,
		&account.IsAdmin,
		&account.IsConfirmed,
		&account.ConfirmedAt,
		&account.LastSeenAt,
		&account.RegisteredAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ConflictFromViolation maps a unique index violation on accounts to the
// client-facing conflict. Other errors are returned unchanged.
func ConflictFromViolation(err error) error {
	constraint, ok := dberr.IsUniqueViolation(err)
	if !ok {
		return err
	}

	switch constraint {
	case schema.AccountsEmailKey:
		return apperr.Conflict("Email is already registered").WithCause(err)
	case schema.AccountsUsernameKey:
		return apperr.Conflict("Username is already taken").WithCause(err)
	default:
		return apperr.Conflict("User already exists").WithCause(err)
	}
}

// # Account Repository

// PostgresAccountRepository implements [AccountRepository] using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a PostgreSQL credential store.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

func (repository *PostgresAccountRepository) findOne(context context.Context, column, value, action string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.Accounts.SelectList(), schema.Accounts.Table, column)

	account, err := ScanAccount(repository.pool.QueryRow(context, query, value))
	if err != nil {
		return nil, dberr.Wrap(err, "Account", action)
	}
	return account, nil
}

// FindByID implements [AccountRepository].
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*Account, error) {
	return repository.findOne(context, schema.Accounts.ID, id, "postgres_account_find_by_id_failed")
}

// FindByUsername implements [AccountRepository].
func (repository *PostgresAccountRepository) FindByUsername(context context.Context, username string) (*Account, error) {
	return repository.findOne(context, schema.Accounts.Username, username, "postgres_account_find_by_username_failed")
}

// FindByEmail implements [AccountRepository].
func (repository *PostgresAccountRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	return repository.findOne(context, schema.Accounts.Email, email, "postgres_account_find_by_email_failed")
}

/*
Create persists a new account row.

Description: The unique indexes on username and email are the final arbiter;
a violation here means another registration won the race.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: apperr.Conflict or database errors
*/
func (repository *PostgresAccountRepository) Create(context context.Context, account *Account) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		schema.Accounts.Table, schema.Accounts.SelectList(),
	)

	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		account.IsAdmin,
		account.IsConfirmed,
		account.ConfirmedAt,
		account.LastSeenAt,
		account.RegisteredAt,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return ConflictFromViolation(dberr.Wrap(err, "Account", "postgres_account_create_failed"))
	}
	return nil
}

// exec runs a single-row update and reports NOT_FOUND when nothing matched.
func (repository *PostgresAccountRepository) exec(context context.Context, action, query string, args ...any) error {
	tag, err := repository.pool.Exec(context, query, args...)
	if err != nil {
		return ConflictFromViolation(dberr.Wrap(err, "Account", action))
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}
	return nil
}

// UpdatePassword implements [AccountRepository].
func (repository *PostgresAccountRepository) UpdatePassword(context context.Context, accountID, passwordHash string) error {
	const query = `UPDATE accounts SET password_hash = $2, updated_at = $3 WHERE id = $1`
	return repository.exec(context, "postgres_account_update_password_failed", query, accountID, passwordHash, time.Now().UTC())
}

// UpdateEmail implements [AccountRepository].
func (repository *PostgresAccountRepository) UpdateEmail(context context.Context, accountID, email string) error {
	const query = `UPDATE accounts SET email = $2, updated_at = $3 WHERE id = $1`
	return repository.exec(context, "postgres_account_update_email_failed", query, accountID, email, time.Now().UTC())
}

// MarkConfirmed implements [AccountRepository]. The first confirmation time is kept.
func (repository *PostgresAccountRepository) MarkConfirmed(context context.Context, accountID string, confirmedAt time.Time) error {
	const query = `
		UPDATE accounts
		SET is_confirmed = TRUE, confirmed_at = COALESCE(confirmed_at, $2), updated_at = $2
		WHERE id = $1`
	return repository.exec(context, "postgres_account_mark_confirmed_failed", query, accountID, confirmedAt.UTC())
}

// TouchLastSeen implements [AccountRepository].
func (repository *PostgresAccountRepository) TouchLastSeen(context context.Context, accountID string, seenAt time.Time) error {
	const query = `UPDATE accounts SET last_seen_at = $2 WHERE id = $1`
	if _, err := repository.pool.Exec(context, query, accountID, seenAt.UTC()); err != nil {
		return fmt.Errorf("postgres_account_touch_last_seen_failed: %w", err)
	}
	return nil
}
