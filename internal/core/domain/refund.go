package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RefundStatus is the lifecycle state of a refund.
type RefundStatus string

const (
	RefundStatusPending    RefundStatus = "PENDING"
	RefundStatusProcessing RefundStatus = "PROCESSING"
	RefundStatusCompleted  RefundStatus = "COMPLETED"
	RefundStatusFailed     RefundStatus = "FAILED"
)

// Refund returns part or all of a completed payment to the payer.
// COMPLETED and FAILED refunds are immutable.
type Refund struct {
	ID               uuid.UUID       `json:"id"`
	PaymentSessionID uuid.UUID       `json:"payment_session_id"`
	OwnerID          uuid.UUID       `json:"owner_id"` // owner of the payment session
	Amount           decimal.Decimal `json:"amount"`
	Status           RefundStatus    `json:"status"`
	Reason           *string         `json:"reason,omitempty"`
	TxHash           *string         `json:"tx_hash,omitempty"`
	BlockNumber      *int64          `json:"block_number,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
	FailedAt         *time.Time      `json:"failed_at,omitempty"`
}

// IsTerminal returns true for COMPLETED and FAILED.
func (r *Refund) IsTerminal() bool {
	return r.Status == RefundStatusCompleted || r.Status == RefundStatusFailed
}

// SumAmounts adds amounts exactly.
func SumAmounts(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// FinalityStatus is the outcome of a finality check.
type FinalityStatus string

const (
	FinalityPending   FinalityStatus = "pending"
	FinalityConfirmed FinalityStatus = "confirmed"
)

// TxConfirmation is what a chain node reports about a transaction.
// BlockNumber is nil while the transaction is unmined or when it reverted.
type TxConfirmation struct {
	Confirmations int
	BlockNumber   *int64
}

// SameTxHash compares transaction hashes. 0x-prefixed hex hashes compare
// case-insensitively; other encodings (base58) are case-sensitive.
func SameTxHash(a, b string) bool {
	if strings.HasPrefix(a, "0x") && strings.HasPrefix(b, "0x") {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// FinalityResult describes how deep a refund transaction is buried.
type FinalityResult struct {
	Status   FinalityStatus `json:"status"`
	Current  int            `json:"current_confirmations"`
	Required int            `json:"required_confirmations"`
	Refund   *Refund        `json:"refund,omitempty"`
}
