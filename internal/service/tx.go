package service

import (
	"context"
	"errors"
	"fmt"

	"stablecoin-gateway/internal/core/domain"
	"stablecoin-gateway/pkg/apperror"
)

// txError converts a failure inside a ledger transaction. Lock waits and
// deadlines become SYS_002 so clients know to retry; the rest is SYS_001.
func txError(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, domain.ErrLockTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return apperror.ErrLockTimeout(fmt.Errorf("%s: %w", op, err))
	}
	return apperror.ErrDatabaseError(fmt.Errorf("%s: %w", op, err))
}
