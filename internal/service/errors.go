package service

import (
	"errors"
	"fmt"
	"strings"

	"money-tracker/internal/core/domain"
	"money-tracker/internal/core/ports"
	"money-tracker/pkg/apperror"
)

// storageErr converts a repository or transaction failure into the
// AppError returned to callers. Lock contention becomes a retryable busy error.
func storageErr(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	wrapped := fmt.Errorf("%s: %w", op, err)
	if errors.Is(err, ports.ErrLockTimeout) {
		return apperror.ErrBusy(wrapped)
	}
	return apperror.ErrDatabaseError(wrapped)
}

// shapeErr turns a domain shape error into the client-facing message.
func shapeErr(err error) error {
	msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidShape.Error()+": ")
	return apperror.ErrInvalidShape(msg)
}
