package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentLink is a reusable, optionally usage-limited URL that creates
// payment sessions for its owner. Links are deactivated, never deleted.
type PaymentLink struct {
	ID              uuid.UUID           `json:"id"`
	OwnerID         uuid.UUID           `json:"owner_id"`
	ShortCode       string              `json:"short_code"`
	Title           string              `json:"title,omitempty"`
	Amount          decimal.NullDecimal `json:"amount"` // Invalid = payer chooses
	Currency        string              `json:"currency"`
	Network         Network             `json:"network"`
	Token           string              `json:"token"`
	MerchantAddress string              `json:"merchant_address"`
	Active          bool                `json:"active"`
	UsageCount      int                 `json:"usage_count"`
	MaxUsages       *int                `json:"max_usages,omitempty"`
	ExpiresAt       *time.Time          `json:"expires_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// LinkState is the redeemability of a link at a point in time.
type LinkState int

const (
	LinkUsable LinkState = iota
	LinkInactive
	LinkExpired
	LinkExhausted
)

// State evaluates the link in the order active, expiry, usage limit.
func (l *PaymentLink) State(now time.Time) LinkState {
	switch {
	case !l.Active:
		return LinkInactive
	case l.ExpiresAt != nil && !now.Before(*l.ExpiresAt):
		return LinkExpired
	case l.MaxUsages != nil && l.UsageCount >= *l.MaxUsages:
		return LinkExhausted
	}
	return LinkUsable
}

// HasFixedAmount reports whether the payer must pay exactly Amount.
func (l *PaymentLink) HasFixedAmount() bool {
	return l.Amount.Valid
}
