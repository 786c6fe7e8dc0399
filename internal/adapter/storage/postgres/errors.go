package postgres

import (
	"errors"
	"fmt"

	"money-tracker/internal/core/ports"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes translated into storage errors.
const (
	codeUniqueViolation      = "23505"
	codeLockNotAvailable     = "55P03"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// mapErr translates PostgreSQL errors into the storage errors of ports.
// Other errors, including nil, are returned unchanged.
func mapErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", ports.ErrDuplicate, pgErr.ConstraintName)
	case codeLockNotAvailable, codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %s", ports.ErrLockTimeout, pgErr.Message)
	}
	return err
}
