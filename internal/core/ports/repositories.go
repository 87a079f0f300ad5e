package ports

import (
	"context"
	"time"

	"stablecoin-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PaymentLinkRepository defines persistence operations for payment links.
type PaymentLinkRepository interface {
	// Create returns domain.ErrShortCodeTaken on a short_code unique violation.
	Create(ctx context.Context, link *domain.PaymentLink) error
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentLink, error)
	GetByShortCode(ctx context.Context, code string) (*domain.PaymentLink, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.PaymentLink, error)
	// IncrementUsage is a single conditional write. It returns nil, nil when the
	// link is inactive, expired, at its limit, or not owned by ownerID.
	IncrementUsage(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentLink, error)
	IncrementUsageTx(ctx context.Context, tx pgx.Tx, id, ownerID uuid.UUID) (*domain.PaymentLink, error)
	Deactivate(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentLink, error)
}

// PaymentSessionRepository defines persistence operations for payment sessions.
type PaymentSessionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, session *domain.PaymentSession) error
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentSession, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.PaymentSession, error)
	// TransitionStatus moves the session to target only if its current status is
	// one of from. It returns nil, nil when the predicate does not hold.
	TransitionStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from []domain.PaymentStatus, target domain.PaymentStatus, txHash *string) (*domain.PaymentSession, error)
}

// RefundRepository defines persistence operations for refunds.
type RefundRepository interface {
	Create(ctx context.Context, tx pgx.Tx, refund *domain.Refund) error
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Refund, error)
	// GetByIDForUpdate locks the refund row. A non-nil ownerID restricts the
	// lookup to refunds of that owner's payment sessions.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID, ownerID *uuid.UUID) (*domain.Refund, error)
	ListBySession(ctx context.Context, sessionID, ownerID uuid.UUID) ([]domain.Refund, error)
	ListAmountsBySession(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID, statuses []domain.RefundStatus) ([]decimal.Decimal, error)
	MarkProcessing(ctx context.Context, tx pgx.Tx, id uuid.UUID, txHash string) error
	MarkCompleted(ctx context.Context, tx pgx.Tx, id uuid.UUID, txHash string, blockNumber *int64, at time.Time) error
	MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID, reason string, at time.Time) error
}

// WebhookEndpointRepository defines persistence operations for webhook endpoints.
type WebhookEndpointRepository interface {
	Create(ctx context.Context, endpoint *domain.WebhookEndpoint) error
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.WebhookEndpoint, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.WebhookEndpoint, error)
	ListSubscribed(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, event domain.EventType) ([]domain.WebhookEndpoint, error)
	UpdateSecret(ctx context.Context, id, ownerID uuid.UUID, secretEnc string) error
	Deactivate(ctx context.Context, id, ownerID uuid.UUID) error
}

// WebhookDeliveryRepository defines persistence and state transitions of deliveries.
type WebhookDeliveryRepository interface {
	Create(ctx context.Context, tx pgx.Tx, delivery *domain.WebhookDelivery) error
	// ListDue returns deliveries ready for an attempt, with their endpoint attached.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.WebhookDelivery, error)
	ListByEndpoint(ctx context.Context, endpointID uuid.UUID, limit int) ([]domain.WebhookDelivery, error)
	// Claim atomically marks a due delivery DELIVERING and increments its
	// attempt counter. ok is false when another worker holds it or it is not due.
	Claim(ctx context.Context, id uuid.UUID, now time.Time) (attempts int, ok bool, err error)
	MarkSucceeded(ctx context.Context, id uuid.UUID, responseCode int) error
	// MarkFailed records a failed attempt. A nil nextAttemptAt makes it terminal.
	MarkFailed(ctx context.Context, id uuid.UUID, responseCode *int, lastError string, nextAttemptAt *time.Time) error
	// RequeueStale returns deliveries stuck in DELIVERING since before cutoff to
	// the retry queue. maxAttempts bounds which of them stay retryable.
	RequeueStale(ctx context.Context, cutoff time.Time, maxAttempts int) (int64, error)
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// DBTransactor provides database transaction management. Transactions it
// opens carry the configured lock and statement timeouts.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
