package ports

import (
	"context"
	"time"

	"stablecoin-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// EncryptionService handles AES-256-GCM encryption/decryption.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService handles HMAC-SHA256 signing and verification.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
	BuildCanonicalString(method, path string, timestamp int64, nonce string, body string) string
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(ownerID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	OwnerID uuid.UUID
}

// IdempotencyCache stores responses of idempotent requests.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Reserve claims key for one in-flight request; false means another holds it.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// NonceStore manages nonce uniqueness for replay attack prevention.
type NonceStore interface {
	// CheckAndSet atomically checks if nonce exists, sets it if not.
	// Returns true if nonce is new (valid), false if already used.
	CheckAndSet(ctx context.Context, scope string, nonce string, ttl time.Duration) (bool, error)
}

// ConfirmationOracle reports how many blocks bury a transaction and the
// block it was mined in.
type ConfirmationOracle interface {
	GetConfirmations(ctx context.Context, network domain.Network, txHash string) (domain.TxConfirmation, error)
}

// EventPublisher forwards committed domain events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, ownerID uuid.UUID, payload domain.WebhookPayload) error
}

// WebhookOutbox records webhook deliveries in the caller's transaction and
// announces committed events.
type WebhookOutbox interface {
	// Enqueue inserts one delivery per active endpoint of ownerID subscribed to
	// the payload's event type. It returns the number of deliveries created.
	Enqueue(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, payload domain.WebhookPayload) (int, error)
	// Announce is called after commit. It never fails the caller.
	Announce(ctx context.Context, ownerID uuid.UUID, payload domain.WebhookPayload)
}

// --- Service Ports (Business Logic) ---

// PaymentLinkService defines the payment link registry.
type PaymentLinkService interface {
	CreatePaymentLink(ctx context.Context, ownerID uuid.UUID, req CreatePaymentLinkRequest) (*domain.PaymentLink, error)
	GetPaymentLink(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentLink, error)
	ListPaymentLinks(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.PaymentLink, error)
	GetPaymentLinkByShortCode(ctx context.Context, code string) (*domain.PaymentLink, error)
	IncrementUsage(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentLink, error)
	DeactivatePaymentLink(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentLink, error)
	RedeemPaymentLink(ctx context.Context, code string, req RedeemRequest) (*domain.PaymentSession, error)
}

// CreatePaymentLinkRequest holds validated input for link creation.
type CreatePaymentLinkRequest struct {
	Title           string
	Amount          *decimal.Decimal // nil = open amount
	Currency        string
	Network         string
	Token           string
	MerchantAddress string
	MaxUsages       *int
	ExpiresAt       *time.Time
}

// RedeemRequest holds the payer's input when opening a session from a link.
type RedeemRequest struct {
	Amount     *decimal.Decimal // required for open-amount links
	PayerEmail *string
}

// PaymentSessionService handles payment session lifecycle changes.
type PaymentSessionService interface {
	GetPaymentSession(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentSession, error)
	TransitionPaymentSession(ctx context.Context, id uuid.UUID, target domain.PaymentStatus, txHash *string) (*domain.PaymentSession, error)
}

// RefundService defines the refund ledger.
type RefundService interface {
	RequestRefund(ctx context.Context, req RequestRefundRequest) (*domain.Refund, error)
	MarkRefundProcessing(ctx context.Context, id uuid.UUID, txHash string, ownerID *uuid.UUID) (*domain.Refund, error)
	CompleteRefund(ctx context.Context, req CompleteRefundRequest) (*domain.Refund, error)
	FailRefund(ctx context.Context, id uuid.UUID, reason string, ownerID *uuid.UUID) (*domain.Refund, error)
	ConfirmRefundFinality(ctx context.Context, id uuid.UUID, txHash string, network string) (*domain.FinalityResult, error)
	UpdatePaymentStatusIfFullyRefunded(ctx context.Context, paymentSessionID uuid.UUID) error
	GetRefund(ctx context.Context, id, ownerID uuid.UUID) (*domain.Refund, error)
	ListRefunds(ctx context.Context, paymentSessionID, ownerID uuid.UUID) ([]domain.Refund, error)
}

// RequestRefundRequest holds validated input for a new refund.
type RequestRefundRequest struct {
	OwnerID          uuid.UUID
	PaymentSessionID uuid.UUID
	Amount           decimal.Decimal
	Reason           *string
	IdempotencyKey   string // optional
}

// CompleteRefundRequest holds the on-chain evidence for a refund.
type CompleteRefundRequest struct {
	ID          uuid.UUID
	TxHash      string
	BlockNumber *int64
	OwnerID     *uuid.UUID // nil for trusted system callers
}

// WebhookEndpointService manages merchant webhook endpoints.
type WebhookEndpointService interface {
	RegisterEndpoint(ctx context.Context, ownerID uuid.UUID, url string, events []domain.EventType) (*RegisteredEndpoint, error)
	ListEndpoints(ctx context.Context, ownerID uuid.UUID) ([]domain.WebhookEndpoint, error)
	RotateSecret(ctx context.Context, id, ownerID uuid.UUID) (*RegisteredEndpoint, error)
	DeactivateEndpoint(ctx context.Context, id, ownerID uuid.UUID) error
	ListDeliveries(ctx context.Context, id, ownerID uuid.UUID, limit int) ([]domain.WebhookDelivery, error)
}

// RegisteredEndpoint carries the plaintext signing secret, shown only once.
type RegisteredEndpoint struct {
	Endpoint *domain.WebhookEndpoint
	Secret   string
}

// AuditService records audit entries.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
