// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/cryptonotify/internal/platform/apperr"
	"github.com/taibuivan/cryptonotify/internal/platform/database/schema"
	"github.com/taibuivan/cryptonotify/internal/platform/dberr"
	"github.com/taibuivan/cryptonotify/internal/users/auth"
)

// # Repository Implementation

// PostgresAccountRepository implements [AccountRepository] on the accounts table.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL implementation of [AccountRepository].
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// FindByID retrieves an account by its primary key.
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*auth.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.Accounts.SelectList(), schema.Accounts.Table, schema.Accounts.ID,
	)

	account, err := auth.ScanAccount(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Account", "postgres_account_repo_find_by_id_failed")
	}
	return account, nil
}

/*
UpdateProfile replaces the name fields of an account.

Parameters:
  - context: context.Context
  - accountID: string
  - firstName: string
  - lastName: string

Returns:
  - error: apperr.NotFound or update failures
*/
func (repository *PostgresAccountRepository) UpdateProfile(context context.Context, accountID, firstName, lastName string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4
		WHERE %s = $1`,
		schema.Accounts.Table,
		schema.Accounts.FirstName, schema.Accounts.LastName, schema.Accounts.UpdatedAt,
		schema.Accounts.ID,
	)

	tag, err := repository.pool.Exec(context, query, accountID, firstName, lastName, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_profile_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}
	return nil
}

// SetAdmin toggles the admin flag and returns the updated row.
func (repository *PostgresAccountRepository) SetAdmin(context context.Context, username string, isAdmin bool) (*auth.Account, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3
		WHERE %s = $1
		RETURNING %s`,
		schema.Accounts.Table,
		schema.Accounts.IsAdmin, schema.Accounts.UpdatedAt,
		schema.Accounts.Username,
		schema.Accounts.SelectList(),
	)

	account, err := auth.ScanAccount(repository.pool.QueryRow(context, query, username, isAdmin, time.Now().UTC()))
	if err != nil {
		return nil, dberr.Wrap(err, "Account", "postgres_account_repo_set_admin_failed")
	}
	return account, nil
}

// Delete physically removes an account.
func (repository *PostgresAccountRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.Accounts.Table, schema.Accounts.ID)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}
	return nil
}

/*
List returns a page of accounts, oldest registration first.

Parameters:
  - context: context.Context
  - offset: int
  - limit: int

Returns:
  - []*auth.Account: The page, possibly empty
  - error: Query failures
*/
func (repository *PostgresAccountRepository) List(context context.Context, offset, limit int) ([]*auth.Account, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		ORDER BY %s ASC, %s ASC
		LIMIT $1 OFFSET $2`,
		schema.Accounts.SelectList(), schema.Accounts.Table,
		schema.Accounts.RegisteredAt, schema.Accounts.ID,
	)

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("postgres_account_repo_list_failed: %w", err)
	}
	defer rows.Close()

	accounts := make([]*auth.Account, 0, limit)
	for rows.Next() {
		account, err := auth.ScanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_account_repo_list_scan_failed: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_account_repo_list_rows_failed: %w", err)
	}
	return accounts, nil
}

// Count returns the number of accounts.
func (repository *PostgresAccountRepository) Count(context context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, schema.Accounts.Table)

	var total int
	if err := repository.pool.QueryRow(context, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("postgres_account_repo_count_failed: %w", err)
	}
	return total, nil
}
