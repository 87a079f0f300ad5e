package postgres

import (
	"errors"
	"fmt"
	"strings"

	"stablecoin-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the adapters react to.
const (
	codeUniqueViolation  = "23505"
	codeLockNotAvailable = "55P03"
	codeQueryCanceled    = "57014"
)

// wrapErr annotates err with op and tags lock and statement timeouts with
// domain.ErrLockTimeout.
func wrapErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeLockNotAvailable, codeQueryCanceled:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrLockTimeout, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error, constraintSubstr string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeUniqueViolation {
		return false
	}
	return constraintSubstr == "" || strings.Contains(pgErr.ConstraintName, constraintSubstr)
}
