package postgres

import (
	"context"
	"errors"
	"fmt"

	"stablecoin-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const webhookEndpointColumns = `id, owner_id, url, secret_enc, events, active, created_at, updated_at`

// WebhookEndpointRepo implements ports.WebhookEndpointRepository.
type WebhookEndpointRepo struct {
	pool Pool
}

// NewWebhookEndpointRepo creates a new WebhookEndpointRepo.
func NewWebhookEndpointRepo(pool Pool) *WebhookEndpointRepo {
	return &WebhookEndpointRepo{pool: pool}
}

func scanWebhookEndpoint(row pgx.Row) (*domain.WebhookEndpoint, error) {
	e := &domain.WebhookEndpoint{}
	var events []string
	err := row.Scan(&e.ID, &e.OwnerID, &e.URL, &e.SecretEnc, &events, &e.Active, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Events = toEventTypes(events)
	return e, nil
}

func toEventTypes(events []string) []domain.EventType {
	out := make([]domain.EventType, len(events))
	for i, ev := range events {
		out[i] = domain.EventType(ev)
	}
	return out
}

func fromEventTypes(events []domain.EventType) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = string(ev)
	}
	return out
}

// Create inserts a new endpoint.
func (r *WebhookEndpointRepo) Create(ctx context.Context, e *domain.WebhookEndpoint) error {
	query := `INSERT INTO webhook_endpoints (` + webhookEndpointColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.OwnerID, e.URL, e.SecretEnc, fromEventTypes(e.Events), e.Active, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return wrapErr("insert webhook endpoint", err)
	}
	return nil
}

// GetByID fetches an endpoint owned by ownerID.
func (r *WebhookEndpointRepo) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.WebhookEndpoint, error) {
	query := `SELECT ` + webhookEndpointColumns + ` FROM webhook_endpoints WHERE id = $1 AND owner_id = $2`

	e, err := scanWebhookEndpoint(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get webhook endpoint", err)
	}
	return e, nil
}

// ListByOwner returns every endpoint of ownerID, active or not.
func (r *WebhookEndpointRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.WebhookEndpoint, error) {
	query := `SELECT ` + webhookEndpointColumns + ` FROM webhook_endpoints WHERE owner_id = $1 ORDER BY created_at`
	return r.list(ctx, r.pool, "list webhook endpoints", query, ownerID)
}

// ListSubscribed returns the active endpoints of ownerID subscribed to event.
// It runs in the caller's transaction so the outbox rows commit atomically
// with the state change that produced the event.
func (r *WebhookEndpointRepo) ListSubscribed(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, event domain.EventType) ([]domain.WebhookEndpoint, error) {
	query := `SELECT ` + webhookEndpointColumns + ` FROM webhook_endpoints
		WHERE owner_id = $1 AND active AND $2 = ANY(events)`
	return r.list(ctx, tx, "list subscribed webhook endpoints", query, ownerID, string(event))
}

func (r *WebhookEndpointRepo) list(ctx context.Context, q querier, op, query string, args ...any) ([]domain.WebhookEndpoint, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	var endpoints []domain.WebhookEndpoint
	for rows.Next() {
		e, err := scanWebhookEndpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan webhook endpoint: %w", err)
		}
		endpoints = append(endpoints, *e)
	}
	return endpoints, rows.Err()
}

// UpdateSecret replaces the encrypted signing secret.
func (r *WebhookEndpointRepo) UpdateSecret(ctx context.Context, id, ownerID uuid.UUID, secretEnc string) error {
	query := `UPDATE webhook_endpoints SET secret_enc = $3, updated_at = NOW() WHERE id = $1 AND owner_id = $2`

	tag, err := r.pool.Exec(ctx, query, id, ownerID, secretEnc)
	if err != nil {
		return wrapErr("update webhook secret", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("webhook endpoint %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Deactivate stops future deliveries to the endpoint.
func (r *WebhookEndpointRepo) Deactivate(ctx context.Context, id, ownerID uuid.UUID) error {
	query := `UPDATE webhook_endpoints SET active = FALSE, updated_at = NOW() WHERE id = $1 AND owner_id = $2`

	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return wrapErr("deactivate webhook endpoint", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("webhook endpoint %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
