package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned by writes that matched no row.
	ErrNotFound = errors.New("record not found")
	// ErrUsernameTaken is returned when the users_username_key constraint rejects an insert.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrExternalIDTaken is returned when a user with the same external id already exists.
	ErrExternalIDTaken = errors.New("external id already registered")
)

const uniqueViolation = "23505"

// uniqueConstraint returns the violated constraint name if err is a unique violation.
func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
