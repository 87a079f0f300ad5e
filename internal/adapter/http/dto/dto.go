package dto

import (
	"time"

	"stablecoin-gateway/internal/core/domain"

	"github.com/shopspring/decimal"
)

// TimeFormat is used for every timestamp in responses.
const TimeFormat = time.RFC3339

// CreatePaymentLinkRequest is the request body for link creation.
type CreatePaymentLinkRequest struct {
	Title           string     `json:"title" binding:"required,max=200"`
	Amount          *string    `json:"amount,omitempty" binding:"omitempty,decimal_gt0"`
	Currency        string     `json:"currency" binding:"required,min=3,max=10,alphanum"`
	Network         string     `json:"network" binding:"required,network"`
	Token           string     `json:"token" binding:"required,min=2,max=10,alphanum"`
	MerchantAddress string     `json:"merchant_address" binding:"required,max=64,safe_id"`
	MaxUsages       *int       `json:"max_usages,omitempty" binding:"omitempty,gte=1"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

// PaymentLinkResponse is a link as seen by its owner.
type PaymentLinkResponse struct {
	ID              string  `json:"id"`
	ShortCode       string  `json:"short_code"`
	URL             string  `json:"url"`
	Title           string  `json:"title"`
	Amount          *string `json:"amount"`
	Currency        string  `json:"currency"`
	Network         string  `json:"network"`
	Token           string  `json:"token"`
	MerchantAddress string  `json:"merchant_address"`
	Active          bool    `json:"active"`
	UsageCount      int     `json:"usage_count"`
	MaxUsages       *int    `json:"max_usages,omitempty"`
	ExpiresAt       *string `json:"expires_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// PublicLinkResponse is what a payer sees when opening a link.
type PublicLinkResponse struct {
	ShortCode       string  `json:"short_code"`
	Title           string  `json:"title"`
	Amount          *string `json:"amount"`
	Currency        string  `json:"currency"`
	Network         string  `json:"network"`
	Token           string  `json:"token"`
	MerchantAddress string  `json:"merchant_address"`
	ExpiresAt       *string `json:"expires_at,omitempty"`
}

// RedeemRequest is the payer's request to open a payment session.
type RedeemRequest struct {
	Amount     *string `json:"amount,omitempty" binding:"omitempty,decimal_gt0"`
	PayerEmail *string `json:"payer_email,omitempty" binding:"omitempty,email,max=254"`
}

// PaymentSessionResponse is a payment session.
type PaymentSessionResponse struct {
	ID            string  `json:"id"`
	PaymentLinkID *string `json:"payment_link_id,omitempty"`
	Amount        string  `json:"amount"`
	Currency      string  `json:"currency"`
	Network       string  `json:"network"`
	Token         string  `json:"token"`
	Status        string  `json:"status"`
	TxHash        *string `json:"tx_hash,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// CreateRefundRequest is the request body for a refund. Clients may send an
// Idempotency-Key header to make retries safe.
type CreateRefundRequest struct {
	Amount string  `json:"amount" binding:"required,decimal_gt0"`
	Reason *string `json:"reason,omitempty" binding:"omitempty,max=500"`
}

// RefundTxRequest carries the hash of a broadcast refund transaction.
type RefundTxRequest struct {
	TxHash string `json:"tx_hash" binding:"required,tx_hash"`
}

// CompleteRefundRequest carries the on-chain evidence of a refund.
type CompleteRefundRequest struct {
	TxHash      string `json:"tx_hash" binding:"required,tx_hash"`
	BlockNumber *int64 `json:"block_number,omitempty" binding:"omitempty,gte=0"`
}

// FailRefundRequest is the request body for failing a refund.
type FailRefundRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// RefundResponse is a refund.
type RefundResponse struct {
	ID               string  `json:"id"`
	PaymentSessionID string  `json:"payment_session_id"`
	Amount           string  `json:"amount"`
	Status           string  `json:"status"`
	Reason           *string `json:"reason,omitempty"`
	TxHash           *string `json:"tx_hash,omitempty"`
	BlockNumber      *int64  `json:"block_number,omitempty"`
	CreatedAt        string  `json:"created_at"`
	CompletedAt      *string `json:"completed_at,omitempty"`
	FailedAt         *string `json:"failed_at,omitempty"`
}

// RegisterWebhookRequest is the request body for endpoint registration.
type RegisterWebhookRequest struct {
	URL    string   `json:"url" binding:"required,max=2048,safe_url" sanitize:"-"`
	Events []string `json:"events" binding:"required,min=1,dive,required"`
}

// WebhookEndpointResponse is an endpoint. Secret is set only when it was
// just generated.
type WebhookEndpointResponse struct {
	ID        string   `json:"id"`
	URL       string   `json:"url"`
	Events    []string `json:"events"`
	Active    bool     `json:"active"`
	Secret    string   `json:"secret,omitempty"`
	CreatedAt string   `json:"created_at"`
}

// WebhookDeliveryResponse is one delivery of an event to an endpoint.
type WebhookDeliveryResponse struct {
	ID            string  `json:"id"`
	EventType     string  `json:"event_type"`
	Status        string  `json:"status"`
	Attempts      int     `json:"attempts"`
	NextAttemptAt *string `json:"next_attempt_at,omitempty"`
	ResponseCode  *int    `json:"response_code,omitempty"`
	LastError     *string `json:"last_error,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// PaymentStatusRequest is a monitor callback moving a payment session.
type PaymentStatusRequest struct {
	Status string  `json:"status" binding:"required,oneof=CONFIRMING COMPLETED FAILED"`
	TxHash *string `json:"tx_hash,omitempty" binding:"omitempty,tx_hash"`
}

// RefundFinalityRequest is a monitor callback asking whether a refund
// transaction is final.
type RefundFinalityRequest struct {
	TxHash  string `json:"tx_hash" binding:"required,tx_hash"`
	Network string `json:"network" binding:"required,network"`
}

// FinalityResponse reports confirmation progress of a refund transaction.
type FinalityResponse struct {
	Status                string          `json:"status"`
	CurrentConfirmations  int             `json:"current_confirmations"`
	RequiredConfirmations int             `json:"required_confirmations"`
	Refund                *RefundResponse `json:"refund,omitempty"`
}

// ListResponse wraps a page of items.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// ParseAmount parses a validated decimal string.
func ParseAmount(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ToPaymentLinkResponse converts a link; baseURL prefixes the public URL.
func ToPaymentLinkResponse(l *domain.PaymentLink, baseURL string) PaymentLinkResponse {
	return PaymentLinkResponse{
		ID:              l.ID.String(),
		ShortCode:       l.ShortCode,
		URL:             baseURL + "/pay/" + l.ShortCode,
		Title:           l.Title,
		Amount:          nullDecimalString(l.Amount),
		Currency:        l.Currency,
		Network:         string(l.Network),
		Token:           l.Token,
		MerchantAddress: l.MerchantAddress,
		Active:          l.Active,
		UsageCount:      l.UsageCount,
		MaxUsages:       l.MaxUsages,
		ExpiresAt:       formatTimePtr(l.ExpiresAt),
		CreatedAt:       l.CreatedAt.Format(TimeFormat),
	}
}

// ToPublicLinkResponse converts a link for an anonymous payer.
func ToPublicLinkResponse(l *domain.PaymentLink) PublicLinkResponse {
	return PublicLinkResponse{
		ShortCode:       l.ShortCode,
		Title:           l.Title,
		Amount:          nullDecimalString(l.Amount),
		Currency:        l.Currency,
		Network:         string(l.Network),
		Token:           l.Token,
		MerchantAddress: l.MerchantAddress,
		ExpiresAt:       formatTimePtr(l.ExpiresAt),
	}
}

// ToPaymentSessionResponse converts a payment session.
func ToPaymentSessionResponse(s *domain.PaymentSession) PaymentSessionResponse {
	resp := PaymentSessionResponse{
		ID:        s.ID.String(),
		Amount:    s.Amount.String(),
		Currency:  s.Currency,
		Network:   string(s.Network),
		Token:     s.Token,
		Status:    string(s.Status),
		TxHash:    s.TxHash,
		CreatedAt: s.CreatedAt.Format(TimeFormat),
		UpdatedAt: s.UpdatedAt.Format(TimeFormat),
	}
	if s.PaymentLinkID != nil {
		id := s.PaymentLinkID.String()
		resp.PaymentLinkID = &id
	}
	return resp
}

// ToRefundResponse converts a refund.
func ToRefundResponse(r *domain.Refund) RefundResponse {
	return RefundResponse{
		ID:               r.ID.String(),
		PaymentSessionID: r.PaymentSessionID.String(),
		Amount:           r.Amount.String(),
		Status:           string(r.Status),
		Reason:           r.Reason,
		TxHash:           r.TxHash,
		BlockNumber:      r.BlockNumber,
		CreatedAt:        r.CreatedAt.Format(TimeFormat),
		CompletedAt:      formatTimePtr(r.CompletedAt),
		FailedAt:         formatTimePtr(r.FailedAt),
	}
}

// ToFinalityResponse converts a finality check result.
func ToFinalityResponse(f *domain.FinalityResult) FinalityResponse {
	resp := FinalityResponse{
		Status:                string(f.Status),
		CurrentConfirmations:  f.Current,
		RequiredConfirmations: f.Required,
	}
	if f.Refund != nil {
		r := ToRefundResponse(f.Refund)
		resp.Refund = &r
	}
	return resp
}

// ToWebhookEndpointResponse converts an endpoint without its secret.
func ToWebhookEndpointResponse(e *domain.WebhookEndpoint) WebhookEndpointResponse {
	events := make([]string, len(e.Events))
	for i, ev := range e.Events {
		events[i] = string(ev)
	}
	return WebhookEndpointResponse{
		ID:        e.ID.String(),
		URL:       e.URL,
		Events:    events,
		Active:    e.Active,
		CreatedAt: e.CreatedAt.Format(TimeFormat),
	}
}

// ToWebhookDeliveryResponse converts a delivery.
func ToWebhookDeliveryResponse(d *domain.WebhookDelivery) WebhookDeliveryResponse {
	return WebhookDeliveryResponse{
		ID:            d.ID.String(),
		EventType:     string(d.EventType),
		Status:        string(d.Status),
		Attempts:      d.Attempts,
		NextAttemptAt: formatTimePtr(d.NextAttemptAt),
		ResponseCode:  d.ResponseCode,
		LastError:     d.LastError,
		CreatedAt:     d.CreatedAt.Format(TimeFormat),
	}
}

func nullDecimalString(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(TimeFormat)
	return &s
}
