// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/cryptonotify/internal/platform/apperr"
	"github.com/taibuivan/cryptonotify/internal/platform/dberr"
)

func TestWrap(t *testing.T) {
	uniqueErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "accounts_email_key"}

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, dberr.Wrap(nil, "Account", "find"))
	})

	t.Run("no_rows", func(t *testing.T) {
		err := dberr.Wrap(pgx.ErrNoRows, "Account", "find")
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	})

	t.Run("unique_violation", func(t *testing.T) {
		err := dberr.Wrap(fmt.Errorf("exec: %w", uniqueErr), "Account", "insert")

		constraint, ok := dberr.IsUniqueViolation(err)
		assert.True(t, ok)
		assert.Equal(t, "accounts_email_key", constraint)
	})

	t.Run("other", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := dberr.Wrap(cause, "Account", "insert")

		assert.ErrorIs(t, err, cause)
		assert.False(t, apperr.IsAppError(err))
		_, ok := dberr.IsUniqueViolation(err)
		assert.False(t, ok)
	})
}
