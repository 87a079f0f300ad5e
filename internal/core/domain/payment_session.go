package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle state of a payment session.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusConfirming PaymentStatus = "CONFIRMING"
	PaymentStatusCompleted  PaymentStatus = "COMPLETED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	// PaymentStatusRefunded overlays COMPLETED once refunds cover the full amount.
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// paymentTransitions lists, per target status, the statuses it may be reached from.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusConfirming: {PaymentStatusPending},
	PaymentStatusCompleted:  {PaymentStatusPending, PaymentStatusConfirming},
	PaymentStatusFailed:     {PaymentStatusPending, PaymentStatusConfirming},
	PaymentStatusRefunded:   {PaymentStatusCompleted},
}

// AllowedPaymentSources returns the statuses a session must be in to move to target.
func AllowedPaymentSources(target PaymentStatus) []PaymentStatus {
	return paymentTransitions[target]
}

// PaymentSession is a single payment attempt.
type PaymentSession struct {
	ID            uuid.UUID       `json:"id"`
	OwnerID       uuid.UUID       `json:"owner_id"`
	PaymentLinkID *uuid.UUID      `json:"payment_link_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Network       Network         `json:"network"`
	Token         string          `json:"token"`
	PayerEmail    *string         `json:"payer_email,omitempty"`
	TxHash        *string         `json:"tx_hash,omitempty"`
	Status        PaymentStatus   `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsRefundable reports whether refunds may be requested against the session.
func (s *PaymentSession) IsRefundable() bool {
	return s.Status == PaymentStatusCompleted
}
