package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"stablecoin-gateway/internal/core/domain"
	"stablecoin-gateway/internal/core/ports"
	"stablecoin-gateway/internal/telemetry"
	"stablecoin-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	defaultTxTimeout      = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	idempotencyLockTTL    = 30 * time.Second
)

// refundHeldStatuses count against the refundable balance of a payment.
var refundHeldStatuses = []domain.RefundStatus{
	domain.RefundStatusPending,
	domain.RefundStatusProcessing,
	domain.RefundStatusCompleted,
}

// RefundServiceConfig tunes the refund ledger.
type RefundServiceConfig struct {
	TxTimeout      time.Duration
	IdempotencyTTL time.Duration
	Finality       domain.FinalityPolicy
}

// RefundServiceImpl implements ports.RefundService. Every mutation runs in
// one database transaction holding the refund (or payment) row lock.
type RefundServiceImpl struct {
	refunds    ports.RefundRepository
	sessions   ports.PaymentSessionRepository
	outbox     ports.WebhookOutbox
	transactor ports.DBTransactor
	oracle     ports.ConfirmationOracle
	idempCache ports.IdempotencyCache
	metrics    *telemetry.Metrics
	cfg        RefundServiceConfig
	log        zerolog.Logger
	now        func() time.Time
}

// NewRefundService creates a new RefundServiceImpl. idempCache and metrics may be nil.
func NewRefundService(
	refunds ports.RefundRepository,
	sessions ports.PaymentSessionRepository,
	outbox ports.WebhookOutbox,
	transactor ports.DBTransactor,
	oracle ports.ConfirmationOracle,
	idempCache ports.IdempotencyCache,
	metrics *telemetry.Metrics,
	cfg RefundServiceConfig,
	log zerolog.Logger,
) *RefundServiceImpl {
	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = defaultTxTimeout
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = defaultIdempotencyTTL
	}
	if cfg.Finality == nil {
		cfg.Finality = domain.NewFinalityPolicy(nil)
	}
	return &RefundServiceImpl{
		refunds:    refunds,
		sessions:   sessions,
		outbox:     outbox,
		transactor: transactor,
		oracle:     oracle,
		idempCache: idempCache,
		metrics:    metrics,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

// RequestRefund records a PENDING refund against a completed payment of the
// caller. Refunds that are not FAILED may never add up to more than the
// payment amount.
func (s *RefundServiceImpl) RequestRefund(ctx context.Context, req ports.RequestRefundRequest) (*domain.Refund, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	idemKey := ""
	if req.IdempotencyKey != "" && s.idempCache != nil {
		idemKey = fmt.Sprintf("refund:%s:%s", req.OwnerID, req.IdempotencyKey)

		cached, err := s.idempCache.Get(ctx, idemKey)
		if err != nil {
			s.log.Warn().Err(err).Str("key", idemKey).Msg("redis idempotency check failed, continuing without it")
			idemKey = ""
		} else if cached != nil {
			return s.unmarshalCachedRefund(cached)
		}
	}
	if idemKey != "" {
		reserved, err := s.idempCache.Reserve(ctx, idemKey, idempotencyLockTTL)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("key", idemKey).Msg("redis idempotency reserve failed, continuing without it")
			idemKey = ""
		case !reserved:
			return nil, apperror.ErrIdempotencyInProgress()
		}
	}

	refund, err := s.createRefund(ctx, req)
	if err != nil {
		if idemKey != "" {
			if relErr := s.idempCache.Release(ctx, idemKey); relErr != nil {
				s.log.Warn().Err(relErr).Str("key", idemKey).Msg("failed to release idempotency key")
			}
		}
		return nil, err
	}

	if idemKey != "" {
		if data, err := json.Marshal(refund); err == nil {
			if err := s.idempCache.Set(ctx, idemKey, data, s.cfg.IdempotencyTTL); err != nil {
				s.log.Warn().Err(err).Str("key", idemKey).Msg("failed to cache refund response")
			}
		}
	}
	return refund, nil
}

func (s *RefundServiceImpl) createRefund(ctx context.Context, req ports.RequestRefundRequest) (*domain.Refund, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout)
	defer cancel()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, txError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	session, err := s.sessions.GetByIDForUpdate(ctx, dbTx, req.PaymentSessionID)
	if err != nil {
		return nil, txError("lock payment session", err)
	}
	if session == nil || session.OwnerID != req.OwnerID {
		return nil, apperror.ErrNotFound("Payment")
	}
	if !session.IsRefundable() {
		return nil, apperror.ErrPaymentNotRefundable()
	}

	held, err := s.refunds.ListAmountsBySession(ctx, dbTx, session.ID, refundHeldStatuses)
	if err != nil {
		return nil, txError("sum refunds", err)
	}
	if domain.SumAmounts(held).Add(req.Amount).GreaterThan(session.Amount) {
		return nil, apperror.ErrRefundAmountExceedsPayment()
	}

	now := s.now().UTC()
	refund := &domain.Refund{
		ID:               uuid.New(),
		PaymentSessionID: session.ID,
		OwnerID:          session.OwnerID,
		Amount:           req.Amount,
		Status:           domain.RefundStatusPending,
		Reason:           req.Reason,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.refunds.Create(ctx, dbTx, refund); err != nil {
		return nil, txError("create refund", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, txError("commit refund", err)
	}

	s.metrics.RecordRefund(string(domain.RefundStatusPending))
	s.log.Info().
		Str("refund_id", refund.ID.String()).
		Str("payment_id", session.ID.String()).
		Str("amount", refund.Amount.String()).
		Msg("refund requested")
	return refund, nil
}

// MarkRefundProcessing records the broadcast transaction of a PENDING refund.
// Repeating the call with the same hash is a no-op.
func (s *RefundServiceImpl) MarkRefundProcessing(ctx context.Context, id uuid.UUID, txHash string, ownerID *uuid.UUID) (*domain.Refund, error) {
	txHash = strings.TrimSpace(txHash)
	if txHash == "" {
		return nil, apperror.Validation("tx_hash is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout)
	defer cancel()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, txError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	refund, err := s.lockRefund(ctx, dbTx, id, ownerID)
	if err != nil {
		return nil, err
	}

	switch refund.Status {
	case domain.RefundStatusPending:
	case domain.RefundStatusProcessing:
		if refund.TxHash != nil && domain.SameTxHash(*refund.TxHash, txHash) {
			return refund, nil
		}
		return nil, apperror.ErrInvalidRefundStatus(string(refund.Status))
	case domain.RefundStatusCompleted:
		return nil, apperror.ErrRefundAlreadyCompleted()
	default:
		return nil, apperror.ErrInvalidRefundStatus(string(refund.Status))
	}

	if err := s.refunds.MarkProcessing(ctx, dbTx, id, txHash); err != nil {
		return nil, txError("mark refund processing", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, txError("commit refund", err)
	}

	refund.Status = domain.RefundStatusProcessing
	refund.TxHash = &txHash
	refund.UpdatedAt = s.now().UTC()
	s.metrics.RecordRefund(string(domain.RefundStatusProcessing))
	s.log.Info().Str("refund_id", id.String()).Str("tx_hash", txHash).Msg("refund processing")
	return refund, nil
}

// CompleteRefund marks a PROCESSING refund COMPLETED and then checks whether
// the payment is now fully refunded.
func (s *RefundServiceImpl) CompleteRefund(ctx context.Context, req ports.CompleteRefundRequest) (*domain.Refund, error) {
	refund, err := s.complete(ctx, req)
	if err != nil {
		return nil, err
	}
	s.rollup(ctx, refund.PaymentSessionID)
	return refund, nil
}

func (s *RefundServiceImpl) complete(ctx context.Context, req ports.CompleteRefundRequest) (*domain.Refund, error) {
	txHash := strings.TrimSpace(req.TxHash)
	if txHash == "" {
		return nil, apperror.Validation("tx_hash is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout)
	defer cancel()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, txError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	refund, err := s.lockRefund(ctx, dbTx, req.ID, req.OwnerID)
	if err != nil {
		return nil, err
	}

	switch refund.Status {
	case domain.RefundStatusProcessing:
	case domain.RefundStatusCompleted:
		return nil, apperror.ErrRefundAlreadyCompleted()
	default:
		return nil, apperror.ErrInvalidRefundStatus(string(refund.Status))
	}
	// Only the transaction recorded at broadcast can settle the refund.
	if refund.TxHash != nil {
		if !domain.SameTxHash(*refund.TxHash, txHash) {
			s.log.Warn().
				Str("refund_id", refund.ID.String()).
				Str("broadcast_tx_hash", *refund.TxHash).
				Str("tx_hash", txHash).
				Msg("refund completion with unrelated transaction rejected")
			return nil, apperror.ErrRefundTxHashMismatch()
		}
		txHash = *refund.TxHash
	}

	now := s.now().UTC()
	if err := s.refunds.MarkCompleted(ctx, dbTx, refund.ID, txHash, req.BlockNumber, now); err != nil {
		return nil, txError("mark refund completed", err)
	}
	refund.Status = domain.RefundStatusCompleted
	refund.TxHash = &txHash
	refund.BlockNumber = req.BlockNumber
	refund.CompletedAt = &now
	refund.UpdatedAt = now

	payload := domain.NewRefundPayload(domain.EventRefundCompleted, refund, now)
	if _, err := s.outbox.Enqueue(ctx, dbTx, refund.OwnerID, payload); err != nil {
		return nil, txError("enqueue refund.completed", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, txError("commit refund", err)
	}

	s.outbox.Announce(ctx, refund.OwnerID, payload)
	s.metrics.RecordRefund(string(domain.RefundStatusCompleted))
	s.log.Info().
		Str("refund_id", refund.ID.String()).
		Str("tx_hash", txHash).
		Msg("refund completed")
	return refund, nil
}

// FailRefund marks a refund FAILED. A COMPLETED refund is never failed and
// failing a FAILED refund again changes nothing.
func (s *RefundServiceImpl) FailRefund(ctx context.Context, id uuid.UUID, reason string, ownerID *uuid.UUID) (*domain.Refund, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout)
	defer cancel()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, txError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	refund, err := s.lockRefund(ctx, dbTx, id, ownerID)
	if err != nil {
		return nil, err
	}

	switch refund.Status {
	case domain.RefundStatusCompleted:
		return nil, apperror.ErrRefundAlreadyCompleted()
	case domain.RefundStatusFailed:
		return refund, nil
	}

	now := s.now().UTC()
	if err := s.refunds.MarkFailed(ctx, dbTx, id, reason, now); err != nil {
		return nil, txError("mark refund failed", err)
	}
	refund.Status = domain.RefundStatusFailed
	refund.FailedAt = &now
	refund.UpdatedAt = now
	if reason != "" {
		refund.Reason = &reason
	}

	payload := domain.NewRefundPayload(domain.EventRefundFailed, refund, now)
	if _, err := s.outbox.Enqueue(ctx, dbTx, refund.OwnerID, payload); err != nil {
		return nil, txError("enqueue refund.failed", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, txError("commit refund", err)
	}

	s.outbox.Announce(ctx, refund.OwnerID, payload)
	s.metrics.RecordRefund(string(domain.RefundStatusFailed))
	s.log.Warn().Str("refund_id", id.String()).Str("reason", reason).Msg("refund failed")
	return refund, nil
}

// ConfirmRefundFinality asks the oracle how deep txHash is buried and
// completes the refund once the network's required depth is reached.
// Insufficient depth is reported as a pending result, not an error.
func (s *RefundServiceImpl) ConfirmRefundFinality(ctx context.Context, id uuid.UUID, txHash string, network string) (*domain.FinalityResult, error) {
	n, ok := domain.ParseNetwork(network)
	if !ok {
		return nil, apperror.ErrUnsupportedNetwork(network)
	}
	required, ok := s.cfg.Finality.Required(n)
	if !ok {
		return nil, apperror.ErrUnsupportedNetwork(network)
	}

	conf, err := s.oracle.GetConfirmations(ctx, n, txHash)
	if err != nil {
		return nil, apperror.ErrOracleUnavailable(err)
	}
	current := conf.Confirmations

	if current < required {
		s.log.Debug().
			Str("refund_id", id.String()).
			Int("confirmations", current).
			Int("required", required).
			Msg("refund not final yet")
		return &domain.FinalityResult{Status: domain.FinalityPending, Current: current, Required: required}, nil
	}

	refund, err := s.CompleteRefund(ctx, ports.CompleteRefundRequest{ID: id, TxHash: txHash, BlockNumber: conf.BlockNumber})
	if err != nil {
		return nil, err
	}
	return &domain.FinalityResult{
		Status:   domain.FinalityConfirmed,
		Current:  current,
		Required: required,
		Refund:   refund,
	}, nil
}

// UpdatePaymentStatusIfFullyRefunded moves a COMPLETED payment to REFUNDED
// when its COMPLETED refunds add up to exactly the payment amount.
func (s *RefundServiceImpl) UpdatePaymentStatusIfFullyRefunded(ctx context.Context, paymentSessionID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout)
	defer cancel()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return txError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	session, err := s.sessions.GetByIDForUpdate(ctx, dbTx, paymentSessionID)
	if err != nil {
		return txError("lock payment session", err)
	}
	if session == nil {
		return apperror.ErrNotFound("Payment")
	}
	if session.Status == domain.PaymentStatusRefunded {
		return nil
	}

	amounts, err := s.refunds.ListAmountsBySession(ctx, dbTx, paymentSessionID,
		[]domain.RefundStatus{domain.RefundStatusCompleted})
	if err != nil {
		return txError("sum completed refunds", err)
	}
	refunded := domain.SumAmounts(amounts)
	if !refunded.Equal(session.Amount) {
		if refunded.GreaterThan(session.Amount) {
			s.log.Error().
				Str("payment_id", paymentSessionID.String()).
				Str("refunded", refunded.String()).
				Str("amount", session.Amount.String()).
				Msg("completed refunds exceed payment amount")
		}
		return nil
	}

	updated, err := s.sessions.TransitionStatus(ctx, dbTx, paymentSessionID,
		[]domain.PaymentStatus{domain.PaymentStatusCompleted}, domain.PaymentStatusRefunded, nil)
	if err != nil {
		return txError("mark payment refunded", err)
	}
	if updated == nil {
		return nil
	}

	payload := domain.NewPaymentPayload(domain.EventPaymentRefunded, updated, s.now().UTC())
	if _, err := s.outbox.Enqueue(ctx, dbTx, updated.OwnerID, payload); err != nil {
		return txError("enqueue payment.refunded", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return txError("commit payment refunded", err)
	}

	s.outbox.Announce(ctx, updated.OwnerID, payload)
	s.log.Info().Str("payment_id", paymentSessionID.String()).Msg("payment fully refunded")
	return nil
}

// GetRefund returns a refund of one of ownerID's payments.
func (s *RefundServiceImpl) GetRefund(ctx context.Context, id, ownerID uuid.UUID) (*domain.Refund, error) {
	refund, err := s.refunds.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if refund == nil {
		return nil, apperror.ErrNotFound("Refund")
	}
	return refund, nil
}

// ListRefunds returns the refunds of a payment of ownerID.
func (s *RefundServiceImpl) ListRefunds(ctx context.Context, paymentSessionID, ownerID uuid.UUID) ([]domain.Refund, error) {
	session, err := s.sessions.GetByID(ctx, paymentSessionID, ownerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if session == nil {
		return nil, apperror.ErrNotFound("Payment")
	}
	refunds, err := s.refunds.ListBySession(ctx, paymentSessionID, ownerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	return refunds, nil
}

// rollup runs after a completion has committed. Its failure does not undo the
// completion; the next completion or a manual call retries it.
func (s *RefundServiceImpl) rollup(ctx context.Context, paymentSessionID uuid.UUID) {
	if err := s.UpdatePaymentStatusIfFullyRefunded(ctx, paymentSessionID); err != nil {
		s.log.Error().Err(err).
			Str("payment_id", paymentSessionID.String()).
			Msg("payment refund rollup failed")
	}
}

func (s *RefundServiceImpl) lockRefund(ctx context.Context, dbTx pgx.Tx, id uuid.UUID, ownerID *uuid.UUID) (*domain.Refund, error) {
	refund, err := s.refunds.GetByIDForUpdate(ctx, dbTx, id, ownerID)
	if err != nil {
		return nil, txError("lock refund", err)
	}
	if refund == nil {
		return nil, apperror.ErrNotFound("Refund")
	}
	return refund, nil
}

func (s *RefundServiceImpl) unmarshalCachedRefund(data []byte) (*domain.Refund, error) {
	var refund domain.Refund
	if err := json.Unmarshal(data, &refund); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached refund: %w", err))
	}
	return &refund, nil
}
