package postgres

import (
	"context"
	"errors"

	"stablecoin-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const paymentSessionColumns = `id, owner_id, payment_link_id, amount, currency, network, token,
	payer_email, tx_hash, status, created_at, updated_at`

// PaymentSessionRepo implements ports.PaymentSessionRepository.
type PaymentSessionRepo struct {
	pool Pool
}

// NewPaymentSessionRepo creates a new PaymentSessionRepo.
func NewPaymentSessionRepo(pool Pool) *PaymentSessionRepo {
	return &PaymentSessionRepo{pool: pool}
}

func scanPaymentSession(row pgx.Row) (*domain.PaymentSession, error) {
	s := &domain.PaymentSession{}
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.PaymentLinkID, &s.Amount, &s.Currency, &s.Network, &s.Token,
		&s.PayerEmail, &s.TxHash, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a payment session within a transaction.
func (r *PaymentSessionRepo) Create(ctx context.Context, tx pgx.Tx, s *domain.PaymentSession) error {
	query := `INSERT INTO payment_sessions (` + paymentSessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := tx.Exec(ctx, query,
		s.ID, s.OwnerID, s.PaymentLinkID, s.Amount, s.Currency, s.Network, s.Token,
		s.PayerEmail, s.TxHash, s.Status, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return wrapErr("insert payment session", err)
	}
	return nil
}

// GetByID fetches a session owned by ownerID (without locking).
func (r *PaymentSessionRepo) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentSession, error) {
	query := `SELECT ` + paymentSessionColumns + ` FROM payment_sessions WHERE id = $1 AND owner_id = $2`

	s, err := scanPaymentSession(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get payment session by id", err)
	}
	return s, nil
}

// GetByIDForUpdate fetches a session with pessimistic locking.
// This MUST be called within a transaction.
func (r *PaymentSessionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.PaymentSession, error) {
	query := `SELECT ` + paymentSessionColumns + ` FROM payment_sessions WHERE id = $1 FOR UPDATE`

	s, err := scanPaymentSession(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get payment session for update", err)
	}
	return s, nil
}

// TransitionStatus conditionally moves a session to target.
func (r *PaymentSessionRepo) TransitionStatus(
	ctx context.Context,
	tx pgx.Tx,
	id uuid.UUID,
	from []domain.PaymentStatus,
	target domain.PaymentStatus,
	txHash *string,
) (*domain.PaymentSession, error) {
	query := `UPDATE payment_sessions
		SET status = $2, tx_hash = COALESCE($3, tx_hash), updated_at = NOW()
		WHERE id = $1 AND status = ANY($4)
		RETURNING ` + paymentSessionColumns

	statuses := make([]string, len(from))
	for i, st := range from {
		statuses[i] = string(st)
	}

	s, err := scanPaymentSession(tx.QueryRow(ctx, query, id, target, txHash, statuses))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("transition payment session", err)
	}
	return s, nil
}
