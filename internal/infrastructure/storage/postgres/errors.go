package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"stockledger/internal/core/apperror"
)

// PostgreSQL error codes handled explicitly.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgDeadlockDetected    = "40P01"
	pgSerialization       = "40001"
	pgQueryCanceled       = "57014"
)

// mapError translates driver errors into AppErrors. AppErrors pass through.
func mapError(err error) error {
	if err == nil || apperror.IsAppError(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperror.NewConflict("record already exists").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case pgForeignKeyViolation:
			return apperror.NewValidation("referenced record does not exist").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case pgCheckViolation:
			return apperror.NewValidation("value violates a table constraint").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case pgDeadlockDetected, pgSerialization, pgQueryCanceled:
			return apperror.NewInternal(err).WithDetail("sqlstate", pgErr.Code)
		}
	}
	return apperror.NewInternal(err)
}

// IsNoRows reports whether err is pgx.ErrNoRows.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// MapError is mapError for repositories in sub-packages.
func MapError(err error) error {
	return mapError(err)
}
