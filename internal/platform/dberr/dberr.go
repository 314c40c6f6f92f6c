// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/cryptonotify/internal/platform/apperr"
)

// UniqueViolation describes a failed insert or update on a unique index.
type UniqueViolation struct {
	Constraint string
	Cause      error
}

func (e *UniqueViolation) Error() string {
	return fmt.Sprintf("unique violation on %s", e.Constraint)
}

func (e *UniqueViolation) Unwrap() error { return e.Cause }

// IsUniqueViolation reports whether err is a PostgreSQL unique violation and
// returns the name of the violated constraint.
func IsUniqueViolation(err error) (string, bool) {
	var violation *UniqueViolation
	if errors.As(err, &violation) {
		return violation.Constraint, true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// IsNotFound reports whether err is a missing-row error from pgx.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Wrap inspects a database error and classifies it. Missing rows become a
// NOT_FOUND for resource, unique violations become a [*UniqueViolation] the
// caller can map to its own conflict message, and everything else is wrapped
// with action for the logs.
func Wrap(err error, resource, action string) error {
	if err == nil {
		return nil
	}

	if IsNotFound(err) {
		return apperr.NotFound(resource)
	}

	if constraint, ok := IsUniqueViolation(err); ok {
		return &UniqueViolation{Constraint: constraint, Cause: err}
	}

	return fmt.Errorf("%s: %w", action, err)
}
