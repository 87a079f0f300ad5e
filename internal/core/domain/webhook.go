package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType names a notification merchants can subscribe to.
type EventType string

const (
	EventPaymentCreated   EventType = "payment.created"
	EventPaymentCompleted EventType = "payment.completed"
	EventPaymentFailed    EventType = "payment.failed"
	EventPaymentRefunded  EventType = "payment.refunded"
	EventRefundCompleted  EventType = "refund.completed"
	EventRefundFailed     EventType = "refund.failed"
)

// KnownEventTypes lists every event an endpoint may subscribe to.
var KnownEventTypes = []EventType{
	EventPaymentCreated,
	EventPaymentCompleted,
	EventPaymentFailed,
	EventPaymentRefunded,
	EventRefundCompleted,
	EventRefundFailed,
}

// IsKnownEvent reports whether e is a supported event type.
func IsKnownEvent(e EventType) bool {
	for _, k := range KnownEventTypes {
		if k == e {
			return true
		}
	}
	return false
}

// WebhookEndpoint is a merchant-registered HTTPS receiver.
type WebhookEndpoint struct {
	ID        uuid.UUID   `json:"id"`
	OwnerID   uuid.UUID   `json:"owner_id"`
	URL       string      `json:"url"`
	SecretEnc string      `json:"-"` // AES-256-GCM ciphertext, never exposed
	Events    []EventType `json:"events"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Subscribes reports whether the endpoint wants events of type e.
func (e *WebhookEndpoint) Subscribes(t EventType) bool {
	for _, ev := range e.Events {
		if ev == t {
			return true
		}
	}
	return false
}

// DeliveryStatus is the state of one webhook delivery.
type DeliveryStatus string

const (
	DeliveryStatusPending    DeliveryStatus = "PENDING"
	DeliveryStatusDelivering DeliveryStatus = "DELIVERING"
	DeliveryStatusSucceeded  DeliveryStatus = "SUCCEEDED"
	// DeliveryStatusFailed is retryable while NextAttemptAt is set and terminal otherwise.
	DeliveryStatusFailed DeliveryStatus = "FAILED"
)

// WebhookDelivery is one event bound for one endpoint. It is immutable once
// SUCCEEDED or terminally FAILED.
type WebhookDelivery struct {
	ID            uuid.UUID        `json:"id"`
	EndpointID    uuid.UUID        `json:"endpoint_id"`
	EventType     EventType        `json:"event_type"`
	Payload       WebhookPayload   `json:"payload"`
	Status        DeliveryStatus   `json:"status"`
	Attempts      int              `json:"attempts"`
	NextAttemptAt *time.Time       `json:"next_attempt_at,omitempty"`
	ResponseCode  *int             `json:"response_code,omitempty"`
	LastError     *string          `json:"last_error,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Endpoint      *WebhookEndpoint `json:"-"`
}

// IsTerminal reports whether the delivery will never be attempted again.
func (d *WebhookDelivery) IsTerminal() bool {
	return d.Status == DeliveryStatusSucceeded ||
		(d.Status == DeliveryStatusFailed && d.NextAttemptAt == nil)
}

// WebhookPayload is the signed JSON body sent to receivers. Exactly one of the
// data sections is set, selected by Type.
type WebhookPayload struct {
	ID        uuid.UUID         `json:"id"`
	Type      EventType         `json:"type"`
	CreatedAt time.Time         `json:"created_at"`
	Payment   *PaymentEventData `json:"payment,omitempty"`
	Refund    *RefundEventData  `json:"refund,omitempty"`
}

// PaymentEventData is the payment section of a webhook payload.
type PaymentEventData struct {
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentLinkID *uuid.UUID      `json:"payment_link_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Network       Network         `json:"network"`
	Token         string          `json:"token"`
	Status        PaymentStatus   `json:"status"`
	TxHash        *string         `json:"tx_hash,omitempty"`
}

// RefundEventData is the refund section of a webhook payload.
type RefundEventData struct {
	RefundID    uuid.UUID       `json:"refund_id"`
	PaymentID   uuid.UUID       `json:"payment_id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      RefundStatus    `json:"status"`
	TxHash      *string         `json:"tx_hash,omitempty"`
	BlockNumber *int64          `json:"block_number,omitempty"`
	Reason      *string         `json:"reason,omitempty"`
}

// NewPaymentPayload builds the payload for a payment event.
func NewPaymentPayload(t EventType, s *PaymentSession, now time.Time) WebhookPayload {
	return WebhookPayload{
		ID:        uuid.New(),
		Type:      t,
		CreatedAt: now,
		Payment: &PaymentEventData{
			PaymentID:     s.ID,
			PaymentLinkID: s.PaymentLinkID,
			Amount:        s.Amount,
			Currency:      s.Currency,
			Network:       s.Network,
			Token:         s.Token,
			Status:        s.Status,
			TxHash:        s.TxHash,
		},
	}
}

// NewRefundPayload builds the payload for a refund event.
func NewRefundPayload(t EventType, r *Refund, now time.Time) WebhookPayload {
	return WebhookPayload{
		ID:        uuid.New(),
		Type:      t,
		CreatedAt: now,
		Refund: &RefundEventData{
			RefundID:    r.ID,
			PaymentID:   r.PaymentSessionID,
			Amount:      r.Amount,
			Status:      r.Status,
			TxHash:      r.TxHash,
			BlockNumber: r.BlockNumber,
			Reason:      r.Reason,
		},
	}
}

// CircuitState is the state of an endpoint's circuit breaker.
type CircuitState string

const (
	CircuitClosed   CircuitState = "CLOSED"
	CircuitOpen     CircuitState = "OPEN"
	CircuitHalfOpen CircuitState = "HALF_OPEN"
)
