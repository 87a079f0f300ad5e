package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stablecoin-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// refundSelect joins the owning payment session so every read carries the owner.
const refundSelect = `SELECT r.id, r.payment_session_id, s.owner_id, r.amount, r.status, r.reason,
		r.tx_hash, r.block_number, r.created_at, r.updated_at, r.completed_at, r.failed_at
	FROM refunds r
	JOIN payment_sessions s ON s.id = r.payment_session_id`

// RefundRepo implements ports.RefundRepository.
type RefundRepo struct {
	pool Pool
}

// NewRefundRepo creates a new RefundRepo.
func NewRefundRepo(pool Pool) *RefundRepo {
	return &RefundRepo{pool: pool}
}

func scanRefund(row pgx.Row) (*domain.Refund, error) {
	r := &domain.Refund{}
	err := row.Scan(
		&r.ID, &r.PaymentSessionID, &r.OwnerID, &r.Amount, &r.Status, &r.Reason,
		&r.TxHash, &r.BlockNumber, &r.CreatedAt, &r.UpdatedAt, &r.CompletedAt, &r.FailedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Create inserts a refund within a transaction.
func (r *RefundRepo) Create(ctx context.Context, tx pgx.Tx, ref *domain.Refund) error {
	query := `INSERT INTO refunds (id, payment_session_id, amount, status, reason, tx_hash, block_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		ref.ID, ref.PaymentSessionID, ref.Amount, ref.Status, ref.Reason,
		ref.TxHash, ref.BlockNumber, ref.CreatedAt, ref.UpdatedAt,
	)
	if err != nil {
		return wrapErr("insert refund", err)
	}
	return nil
}

// GetByID fetches a refund of one of ownerID's payments (without locking).
func (r *RefundRepo) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Refund, error) {
	query := refundSelect + ` WHERE r.id = $1 AND s.owner_id = $2`

	ref, err := scanRefund(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get refund by id", err)
	}
	return ref, nil
}

// GetByIDForUpdate locks the refund row. Ownership is enforced in the same
// statement when ownerID is set.
// This MUST be called within a transaction.
func (r *RefundRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID, ownerID *uuid.UUID) (*domain.Refund, error) {
	var row pgx.Row
	if ownerID != nil {
		row = tx.QueryRow(ctx, refundSelect+` WHERE r.id = $1 AND s.owner_id = $2 FOR UPDATE OF r`, id, *ownerID)
	} else {
		row = tx.QueryRow(ctx, refundSelect+` WHERE r.id = $1 FOR UPDATE OF r`, id)
	}

	ref, err := scanRefund(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get refund for update", err)
	}
	return ref, nil
}

// ListBySession returns all refunds of a payment, oldest first.
func (r *RefundRepo) ListBySession(ctx context.Context, sessionID, ownerID uuid.UUID) ([]domain.Refund, error) {
	query := refundSelect + ` WHERE r.payment_session_id = $1 AND s.owner_id = $2 ORDER BY r.created_at`

	rows, err := r.pool.Query(ctx, query, sessionID, ownerID)
	if err != nil {
		return nil, wrapErr("list refunds", err)
	}
	defer rows.Close()

	var refunds []domain.Refund
	for rows.Next() {
		ref, err := scanRefund(rows)
		if err != nil {
			return nil, fmt.Errorf("scan refund: %w", err)
		}
		refunds = append(refunds, *ref)
	}
	return refunds, rows.Err()
}

// ListAmountsBySession returns the amounts of the session's refunds in the
// given statuses. Summation is left to the caller.
func (r *RefundRepo) ListAmountsBySession(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID, statuses []domain.RefundStatus) ([]decimal.Decimal, error) {
	query := `SELECT amount FROM refunds WHERE payment_session_id = $1 AND status = ANY($2)`

	st := make([]string, len(statuses))
	for i, s := range statuses {
		st[i] = string(s)
	}

	rows, err := tx.Query(ctx, query, sessionID, st)
	if err != nil {
		return nil, wrapErr("list refund amounts", err)
	}
	defer rows.Close()

	var amounts []decimal.Decimal
	for rows.Next() {
		var a decimal.Decimal
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scan refund amount: %w", err)
		}
		amounts = append(amounts, a)
	}
	return amounts, rows.Err()
}

// MarkProcessing records the broadcast transaction of a PENDING refund.
func (r *RefundRepo) MarkProcessing(ctx context.Context, tx pgx.Tx, id uuid.UUID, txHash string) error {
	query := `UPDATE refunds SET status = $2, tx_hash = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4`

	tag, err := tx.Exec(ctx, query, id, domain.RefundStatusProcessing, txHash, domain.RefundStatusPending)
	if err != nil {
		return wrapErr("mark refund processing", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("refund not pending: %s", id)
	}
	return nil
}

// MarkCompleted finalises a PROCESSING refund.
func (r *RefundRepo) MarkCompleted(ctx context.Context, tx pgx.Tx, id uuid.UUID, txHash string, blockNumber *int64, at time.Time) error {
	query := `UPDATE refunds
		SET status = $2, tx_hash = $3, block_number = COALESCE($4, block_number), completed_at = $5, updated_at = $5
		WHERE id = $1 AND status = $6`

	tag, err := tx.Exec(ctx, query, id, domain.RefundStatusCompleted, txHash, blockNumber, at, domain.RefundStatusProcessing)
	if err != nil {
		return wrapErr("mark refund completed", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("refund not processing: %s", id)
	}
	return nil
}

// MarkFailed fails a refund that is neither COMPLETED nor FAILED.
func (r *RefundRepo) MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID, reason string, at time.Time) error {
	query := `UPDATE refunds
		SET status = $2, reason = $3, failed_at = $4, updated_at = $4
		WHERE id = $1 AND status IN ($5, $6)`

	tag, err := tx.Exec(ctx, query, id, domain.RefundStatusFailed, reason, at,
		domain.RefundStatusPending, domain.RefundStatusProcessing)
	if err != nil {
		return wrapErr("mark refund failed", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("refund not failable: %s", id)
	}
	return nil
}
