package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stablecoin-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const webhookDeliveryColumns = `d.id, d.endpoint_id, d.event_type, d.payload, d.status, d.attempts,
	d.next_attempt_at, d.response_code, d.last_error, d.created_at, d.updated_at`

// WebhookDeliveryRepo implements ports.WebhookDeliveryRepository.
type WebhookDeliveryRepo struct {
	pool Pool
}

// NewWebhookDeliveryRepo creates a new WebhookDeliveryRepo.
func NewWebhookDeliveryRepo(pool Pool) *WebhookDeliveryRepo {
	return &WebhookDeliveryRepo{pool: pool}
}

func scanWebhookDelivery(row pgx.Row, withEndpoint bool) (*domain.WebhookDelivery, error) {
	d := &domain.WebhookDelivery{}
	var payload []byte
	dest := []any{
		&d.ID, &d.EndpointID, &d.EventType, &payload, &d.Status, &d.Attempts,
		&d.NextAttemptAt, &d.ResponseCode, &d.LastError, &d.CreatedAt, &d.UpdatedAt,
	}

	var e domain.WebhookEndpoint
	var events []string
	if withEndpoint {
		dest = append(dest, &e.OwnerID, &e.URL, &e.SecretEnc, &events, &e.Active)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &d.Payload); err != nil {
		return nil, fmt.Errorf("decode payload of delivery %s: %w", d.ID, err)
	}
	if withEndpoint {
		e.ID = d.EndpointID
		e.Events = toEventTypes(events)
		d.Endpoint = &e
	}
	return d, nil
}

// Create inserts a PENDING delivery in the caller's transaction.
func (r *WebhookDeliveryRepo) Create(ctx context.Context, tx pgx.Tx, d *domain.WebhookDelivery) error {
	payload, err := json.Marshal(d.Payload)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	query := `INSERT INTO webhook_deliveries
		(id, endpoint_id, event_type, payload, status, attempts, next_attempt_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = tx.Exec(ctx, query,
		d.ID, d.EndpointID, d.EventType, payload, d.Status, d.Attempts,
		d.NextAttemptAt, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return wrapErr("insert webhook delivery", err)
	}
	return nil
}

// ListDue returns PENDING deliveries and FAILED deliveries whose retry time
// has come, for active endpoints only, oldest first.
func (r *WebhookDeliveryRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.WebhookDelivery, error) {
	query := `SELECT ` + webhookDeliveryColumns + `, e.owner_id, e.url, e.secret_enc, e.events, e.active
		FROM webhook_deliveries d
		JOIN webhook_endpoints e ON e.id = d.endpoint_id
		WHERE e.active
			AND (d.status = 'PENDING'
				OR (d.status = 'FAILED' AND d.next_attempt_at IS NOT NULL AND d.next_attempt_at <= $1))
		ORDER BY COALESCE(d.next_attempt_at, d.created_at)
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, wrapErr("list due webhook deliveries", err)
	}
	defer rows.Close()

	var out []*domain.WebhookDelivery
	for rows.Next() {
		d, err := scanWebhookDelivery(rows, true)
		if err != nil {
			return nil, fmt.Errorf("scan webhook delivery: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListByEndpoint returns the most recent deliveries of an endpoint.
func (r *WebhookDeliveryRepo) ListByEndpoint(ctx context.Context, endpointID uuid.UUID, limit int) ([]domain.WebhookDelivery, error) {
	query := `SELECT ` + webhookDeliveryColumns + `
		FROM webhook_deliveries d WHERE d.endpoint_id = $1
		ORDER BY d.created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, endpointID, limit)
	if err != nil {
		return nil, wrapErr("list webhook deliveries", err)
	}
	defer rows.Close()

	var out []domain.WebhookDelivery
	for rows.Next() {
		d, err := scanWebhookDelivery(rows, false)
		if err != nil {
			return nil, fmt.Errorf("scan webhook delivery: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Claim takes ownership of a due delivery for one attempt.
func (r *WebhookDeliveryRepo) Claim(ctx context.Context, id uuid.UUID, now time.Time) (int, bool, error) {
	query := `UPDATE webhook_deliveries
		SET status = 'DELIVERING', attempts = attempts + 1, updated_at = $2
		WHERE id = $1
			AND (status = 'PENDING'
				OR (status = 'FAILED' AND next_attempt_at IS NOT NULL AND next_attempt_at <= $2))
		RETURNING attempts`

	var attempts int
	if err := r.pool.QueryRow(ctx, query, id, now).Scan(&attempts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, wrapErr("claim webhook delivery", err)
	}
	return attempts, true, nil
}

// MarkSucceeded records a 2xx response.
func (r *WebhookDeliveryRepo) MarkSucceeded(ctx context.Context, id uuid.UUID, responseCode int) error {
	query := `UPDATE webhook_deliveries
		SET status = 'SUCCEEDED', response_code = $2, next_attempt_at = NULL, last_error = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'DELIVERING'`

	tag, err := r.pool.Exec(ctx, query, id, responseCode)
	if err != nil {
		return wrapErr("mark webhook delivery succeeded", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("webhook delivery not in flight: %s", id)
	}
	return nil
}

// MarkFailed records a failed attempt; nextAttemptAt nil makes it terminal.
func (r *WebhookDeliveryRepo) MarkFailed(ctx context.Context, id uuid.UUID, responseCode *int, lastError string, nextAttemptAt *time.Time) error {
	query := `UPDATE webhook_deliveries
		SET status = 'FAILED', response_code = $2, last_error = $3, next_attempt_at = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'DELIVERING'`

	tag, err := r.pool.Exec(ctx, query, id, responseCode, lastError, nextAttemptAt)
	if err != nil {
		return wrapErr("mark webhook delivery failed", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("webhook delivery not in flight: %s", id)
	}
	return nil
}

// RequeueStale releases deliveries whose worker died mid-attempt.
func (r *WebhookDeliveryRepo) RequeueStale(ctx context.Context, cutoff time.Time, maxAttempts int) (int64, error) {
	query := `UPDATE webhook_deliveries
		SET status = 'FAILED',
			last_error = 'delivery interrupted',
			next_attempt_at = CASE WHEN attempts < $2 THEN NOW() ELSE NULL END,
			updated_at = NOW()
		WHERE status = 'DELIVERING' AND updated_at < $1`

	tag, err := r.pool.Exec(ctx, query, cutoff, maxAttempts)
	if err != nil {
		return 0, wrapErr("requeue stale webhook deliveries", err)
	}
	return tag.RowsAffected(), nil
}
