package postgres

import (
	"context"
	"errors"
	"fmt"

	"stablecoin-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const paymentLinkColumns = `id, owner_id, short_code, title, amount, currency, network, token,
	merchant_address, active, usage_count, max_usages, expires_at, created_at, updated_at`

// PaymentLinkRepo implements ports.PaymentLinkRepository.
type PaymentLinkRepo struct {
	pool Pool
}

// NewPaymentLinkRepo creates a new PaymentLinkRepo.
func NewPaymentLinkRepo(pool Pool) *PaymentLinkRepo {
	return &PaymentLinkRepo{pool: pool}
}

func scanPaymentLink(row pgx.Row) (*domain.PaymentLink, error) {
	l := &domain.PaymentLink{}
	err := row.Scan(
		&l.ID, &l.OwnerID, &l.ShortCode, &l.Title, &l.Amount, &l.Currency, &l.Network, &l.Token,
		&l.MerchantAddress, &l.Active, &l.UsageCount, &l.MaxUsages, &l.ExpiresAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Create inserts a new payment link.
// A collision on short_code is reported as domain.ErrShortCodeTaken.
func (r *PaymentLinkRepo) Create(ctx context.Context, l *domain.PaymentLink) error {
	query := `INSERT INTO payment_links (` + paymentLinkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.pool.Exec(ctx, query,
		l.ID, l.OwnerID, l.ShortCode, l.Title, l.Amount, l.Currency, l.Network, l.Token,
		l.MerchantAddress, l.Active, l.UsageCount, l.MaxUsages, l.ExpiresAt, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "short_code") {
			return domain.ErrShortCodeTaken
		}
		return wrapErr("insert payment link", err)
	}
	return nil
}

// GetByID fetches a link owned by ownerID.
func (r *PaymentLinkRepo) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentLink, error) {
	query := `SELECT ` + paymentLinkColumns + ` FROM payment_links WHERE id = $1 AND owner_id = $2`

	l, err := scanPaymentLink(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get payment link by id", err)
	}
	return l, nil
}

// GetByShortCode fetches a link by its public short code.
func (r *PaymentLinkRepo) GetByShortCode(ctx context.Context, code string) (*domain.PaymentLink, error) {
	query := `SELECT ` + paymentLinkColumns + ` FROM payment_links WHERE short_code = $1`

	l, err := scanPaymentLink(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get payment link by short code", err)
	}
	return l, nil
}

// ListByOwner returns the owner's links, newest first.
func (r *PaymentLinkRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.PaymentLink, error) {
	query := `SELECT ` + paymentLinkColumns + ` FROM payment_links
		WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, wrapErr("list payment links", err)
	}
	defer rows.Close()

	var links []domain.PaymentLink
	for rows.Next() {
		l, err := scanPaymentLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment link: %w", err)
		}
		links = append(links, *l)
	}
	return links, rows.Err()
}

// IncrementUsage bumps usage_count in one conditional statement.
func (r *PaymentLinkRepo) IncrementUsage(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentLink, error) {
	return incrementUsage(ctx, r.pool, id, ownerID)
}

// IncrementUsageTx is IncrementUsage inside the caller's transaction.
func (r *PaymentLinkRepo) IncrementUsageTx(ctx context.Context, tx pgx.Tx, id, ownerID uuid.UUID) (*domain.PaymentLink, error) {
	return incrementUsage(ctx, tx, id, ownerID)
}

// incrementUsage never reads before writing: the predicate and the increment
// are evaluated by the database under the row lock of the UPDATE itself.
func incrementUsage(ctx context.Context, q querier, id, ownerID uuid.UUID) (*domain.PaymentLink, error) {
	query := `UPDATE payment_links
		SET usage_count = usage_count + 1, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2 AND active
			AND (expires_at IS NULL OR expires_at > NOW())
			AND (max_usages IS NULL OR usage_count < max_usages)
		RETURNING ` + paymentLinkColumns

	l, err := scanPaymentLink(q.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("increment payment link usage", err)
	}
	return l, nil
}

// Deactivate turns a link off. Returns nil, nil if the link does not exist for ownerID.
func (r *PaymentLinkRepo) Deactivate(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentLink, error) {
	query := `UPDATE payment_links SET active = FALSE, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + paymentLinkColumns

	l, err := scanPaymentLink(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("deactivate payment link", err)
	}
	return l, nil
}
