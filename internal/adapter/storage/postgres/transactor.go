package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Transactor implements ports.DBTransactor using pgxpool.Pool.
type Transactor struct {
	pool             Pool
	lockTimeout      time.Duration
	statementTimeout time.Duration
}

// NewTransactor creates a new Transactor wrapping the connection pool.
// Non-zero timeouts are applied with SET LOCAL to every transaction it opens.
func NewTransactor(pool Pool, lockTimeout, statementTimeout time.Duration) *Transactor {
	return &Transactor{pool: pool, lockTimeout: lockTimeout, statementTimeout: statementTimeout}
}

// Begin starts a new database transaction.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return nil, wrapErr("begin tx", err)
	}

	if t.lockTimeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", t.lockTimeout.Milliseconds())); err != nil {
			tx.Rollback(ctx) //nolint:errcheck
			return nil, wrapErr("set lock_timeout", err)
		}
	}
	if t.statementTimeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", t.statementTimeout.Milliseconds())); err != nil {
			tx.Rollback(ctx) //nolint:errcheck
			return nil, wrapErr("set statement_timeout", err)
		}
	}
	return tx, nil
}
