package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stablecoin-gateway/internal/core/domain"
	"stablecoin-gateway/internal/core/ports"
	"stablecoin-gateway/internal/telemetry"
	"stablecoin-gateway/pkg/apperror"
	"stablecoin-gateway/pkg/shortcode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultShortCodeAttempts = 5
	defaultLinkPageSize      = 20
	maxLinkPageSize          = 100
)

// PaymentLinkServiceImpl implements ports.PaymentLinkService.
type PaymentLinkServiceImpl struct {
	links        ports.PaymentLinkRepository
	sessions     ports.PaymentSessionRepository
	outbox       ports.WebhookOutbox
	transactor   ports.DBTransactor
	metrics      *telemetry.Metrics
	log          zerolog.Logger
	codeAttempts int
	codeGen      func() (string, error)
	now          func() time.Time
}

// NewPaymentLinkService creates a new PaymentLinkServiceImpl. codeAttempts
// bounds short code generation; values below 1 use the default of 5.
func NewPaymentLinkService(
	links ports.PaymentLinkRepository,
	sessions ports.PaymentSessionRepository,
	outbox ports.WebhookOutbox,
	transactor ports.DBTransactor,
	metrics *telemetry.Metrics,
	codeAttempts int,
	log zerolog.Logger,
) *PaymentLinkServiceImpl {
	if codeAttempts < 1 {
		codeAttempts = defaultShortCodeAttempts
	}
	return &PaymentLinkServiceImpl{
		links:        links,
		sessions:     sessions,
		outbox:       outbox,
		transactor:   transactor,
		metrics:      metrics,
		log:          log,
		codeAttempts: codeAttempts,
		codeGen:      shortcode.Generate,
		now:          time.Now,
	}
}

// CreatePaymentLink validates the request and stores a link under a fresh
// short code, retrying on short code collisions.
func (s *PaymentLinkServiceImpl) CreatePaymentLink(ctx context.Context, ownerID uuid.UUID, req ports.CreatePaymentLinkRequest) (*domain.PaymentLink, error) {
	now := s.now().UTC()

	if req.Amount != nil && !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.MaxUsages != nil && *req.MaxUsages < 1 {
		return nil, apperror.Validation("max_usages must be at least 1")
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return nil, apperror.Validation("expires_at must be in the future")
	}
	network, ok := domain.ParseNetwork(req.Network)
	if !ok {
		return nil, apperror.ErrUnsupportedNetwork(req.Network)
	}
	if err := network.ValidateAddress(req.MerchantAddress); err != nil {
		return nil, apperror.Validation(fmt.Sprintf("invalid merchant address: %v", err))
	}

	link := &domain.PaymentLink{
		OwnerID:         ownerID,
		Title:           strings.TrimSpace(req.Title),
		Currency:        strings.ToUpper(req.Currency),
		Network:         network,
		Token:           strings.ToUpper(req.Token),
		MerchantAddress: req.MerchantAddress,
		Active:          true,
		MaxUsages:       req.MaxUsages,
		ExpiresAt:       req.ExpiresAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.Amount != nil {
		link.Amount = decimal.NewNullDecimal(*req.Amount)
	}

	var lastErr error
	for attempt := 1; attempt <= s.codeAttempts; attempt++ {
		code, err := s.codeGen()
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("generate short code: %w", err))
		}
		link.ID = uuid.New()
		link.ShortCode = code

		err = s.links.Create(ctx, link)
		if err == nil {
			s.log.Info().
				Str("link_id", link.ID.String()).
				Str("short_code", code).
				Str("owner_id", ownerID.String()).
				Msg("payment link created")
			return link, nil
		}
		if !errors.Is(err, domain.ErrShortCodeTaken) {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("create payment link: %w", err))
		}
		s.log.Warn().Str("short_code", code).Int("attempt", attempt).Msg("short code collision, retrying")
		lastErr = err
	}

	return nil, apperror.ErrShortCodeGenerationFailed(
		fmt.Errorf("%d attempts: %w", s.codeAttempts, lastErr))
}

// GetPaymentLink returns a link of ownerID.
func (s *PaymentLinkServiceImpl) GetPaymentLink(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentLink, error) {
	link, err := s.links.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if link == nil {
		return nil, apperror.ErrNotFound("Payment link")
	}
	return link, nil
}

// ListPaymentLinks pages through the links of ownerID, newest first.
func (s *PaymentLinkServiceImpl) ListPaymentLinks(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.PaymentLink, error) {
	if limit <= 0 {
		limit = defaultLinkPageSize
	}
	if limit > maxLinkPageSize {
		limit = maxLinkPageSize
	}
	if offset < 0 {
		offset = 0
	}
	links, err := s.links.ListByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	return links, nil
}

// GetPaymentLinkByShortCode resolves a public link and checks, in order,
// that it is active, not expired and under its usage limit.
func (s *PaymentLinkServiceImpl) GetPaymentLinkByShortCode(ctx context.Context, code string) (*domain.PaymentLink, error) {
	if !shortcode.Valid(code) {
		return nil, apperror.ErrNotFound("Payment link")
	}
	link, err := s.links.GetByShortCode(ctx, code)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if link == nil {
		return nil, apperror.ErrNotFound("Payment link")
	}
	if err := linkStateError(link.State(s.now())); err != nil {
		return nil, err
	}
	return link, nil
}

// IncrementUsage consumes one use of the link. It returns nil without an
// error when the link is inactive, expired, exhausted or not owned by ownerID.
func (s *PaymentLinkServiceImpl) IncrementUsage(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentLink, error) {
	link, err := s.links.IncrementUsage(ctx, id, ownerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	return link, nil
}

// DeactivatePaymentLink stops a link from accepting further payments.
func (s *PaymentLinkServiceImpl) DeactivatePaymentLink(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentLink, error) {
	link, err := s.links.Deactivate(ctx, id, ownerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if link == nil {
		return nil, apperror.ErrNotFound("Payment link")
	}
	s.log.Info().Str("link_id", id.String()).Msg("payment link deactivated")
	return link, nil
}

// RedeemPaymentLink opens a PENDING payment session from a public link. The
// usage increment and the session insert commit together, so a session
// exists exactly for every counted use.
func (s *PaymentLinkServiceImpl) RedeemPaymentLink(ctx context.Context, code string, req ports.RedeemRequest) (*domain.PaymentSession, error) {
	link, err := s.GetPaymentLinkByShortCode(ctx, code)
	if err != nil {
		s.metrics.RecordRedemption("rejected")
		return nil, err
	}

	amount, err := redemptionAmount(link, req.Amount)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, txError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	updated, err := s.links.IncrementUsageTx(ctx, dbTx, link.ID, link.OwnerID)
	if err != nil {
		return nil, txError("increment link usage", err)
	}
	if updated == nil {
		// Another redemption won the last use, or the link changed since it was read.
		s.metrics.RecordRedemption("rejected")
		return nil, s.unavailableReason(ctx, link)
	}

	now := s.now().UTC()
	linkID := link.ID
	session := &domain.PaymentSession{
		ID:            uuid.New(),
		OwnerID:       link.OwnerID,
		PaymentLinkID: &linkID,
		Amount:        amount,
		Currency:      link.Currency,
		Network:       link.Network,
		Token:         link.Token,
		PayerEmail:    req.PayerEmail,
		Status:        domain.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.sessions.Create(ctx, dbTx, session); err != nil {
		return nil, txError("create payment session", err)
	}

	payload := domain.NewPaymentPayload(domain.EventPaymentCreated, session, now)
	if _, err := s.outbox.Enqueue(ctx, dbTx, link.OwnerID, payload); err != nil {
		return nil, txError("enqueue payment.created", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, txError("commit redemption", err)
	}

	s.outbox.Announce(ctx, link.OwnerID, payload)
	s.metrics.RecordRedemption("accepted")
	s.log.Info().
		Str("link_id", link.ID.String()).
		Str("payment_id", session.ID.String()).
		Int("usage_count", updated.UsageCount).
		Msg("payment link redeemed")

	return session, nil
}

// unavailableReason re-reads a link whose conditional increment matched no
// row and reports why it can no longer be redeemed.
func (s *PaymentLinkServiceImpl) unavailableReason(ctx context.Context, link *domain.PaymentLink) error {
	fresh, err := s.links.GetByID(ctx, link.ID, link.OwnerID)
	if err != nil || fresh == nil {
		return apperror.ErrLinkMaxUsageReached()
	}
	if err := linkStateError(fresh.State(s.now())); err != nil {
		return err
	}
	return apperror.ErrLinkMaxUsageReached()
}

func linkStateError(state domain.LinkState) error {
	switch state {
	case domain.LinkInactive:
		return apperror.ErrLinkInactive()
	case domain.LinkExpired:
		return apperror.ErrLinkExpired()
	case domain.LinkExhausted:
		return apperror.ErrLinkMaxUsageReached()
	}
	return nil
}

func redemptionAmount(link *domain.PaymentLink, requested *decimal.Decimal) (decimal.Decimal, error) {
	if link.HasFixedAmount() {
		if requested != nil && !requested.Equal(link.Amount.Decimal) {
			return decimal.Decimal{}, apperror.Validation("amount does not match the payment link")
		}
		return link.Amount.Decimal, nil
	}
	if requested == nil {
		return decimal.Decimal{}, apperror.Validation("amount is required for this payment link")
	}
	if !requested.IsPositive() {
		return decimal.Decimal{}, apperror.ErrInvalidAmount()
	}
	return *requested, nil
}
