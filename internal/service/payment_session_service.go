package service

import (
	"context"
	"time"

	"stablecoin-gateway/internal/core/domain"
	"stablecoin-gateway/internal/core/ports"
	"stablecoin-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// paymentEvents maps a session status to the event announcing it.
var paymentEvents = map[domain.PaymentStatus]domain.EventType{
	domain.PaymentStatusCompleted: domain.EventPaymentCompleted,
	domain.PaymentStatusFailed:    domain.EventPaymentFailed,
}

// PaymentSessionServiceImpl implements ports.PaymentSessionService.
type PaymentSessionServiceImpl struct {
	sessions   ports.PaymentSessionRepository
	outbox     ports.WebhookOutbox
	transactor ports.DBTransactor
	log        zerolog.Logger
	txTimeout  time.Duration
	now        func() time.Time
}

// NewPaymentSessionService creates a new PaymentSessionServiceImpl.
func NewPaymentSessionService(
	sessions ports.PaymentSessionRepository,
	outbox ports.WebhookOutbox,
	transactor ports.DBTransactor,
	txTimeout time.Duration,
	log zerolog.Logger,
) *PaymentSessionServiceImpl {
	if txTimeout <= 0 {
		txTimeout = defaultTxTimeout
	}
	return &PaymentSessionServiceImpl{
		sessions:   sessions,
		outbox:     outbox,
		transactor: transactor,
		log:        log,
		txTimeout:  txTimeout,
		now:        time.Now,
	}
}

// GetPaymentSession returns a session of ownerID.
func (s *PaymentSessionServiceImpl) GetPaymentSession(ctx context.Context, id, ownerID uuid.UUID) (*domain.PaymentSession, error) {
	session, err := s.sessions.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if session == nil {
		return nil, apperror.ErrNotFound("Payment")
	}
	return session, nil
}

// TransitionPaymentSession applies a status reported by the chain monitor.
// Repeating a transition the session already made returns it unchanged.
func (s *PaymentSessionServiceImpl) TransitionPaymentSession(ctx context.Context, id uuid.UUID, target domain.PaymentStatus, txHash *string) (*domain.PaymentSession, error) {
	sources := domain.AllowedPaymentSources(target)
	if len(sources) == 0 || target == domain.PaymentStatusRefunded {
		return nil, apperror.Validation("unsupported target status: " + string(target))
	}

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, txError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	session, err := s.sessions.TransitionStatus(ctx, dbTx, id, sources, target, txHash)
	if err != nil {
		return nil, txError("transition payment session", err)
	}
	if session == nil {
		current, err := s.sessions.GetByIDForUpdate(ctx, dbTx, id)
		if err != nil {
			return nil, txError("load payment session", err)
		}
		if current == nil {
			return nil, apperror.ErrNotFound("Payment")
		}
		if current.Status == target {
			return current, nil
		}
		return nil, apperror.ErrInvalidSessionTransition(string(current.Status), string(target))
	}

	var payload *domain.WebhookPayload
	if event, ok := paymentEvents[target]; ok {
		p := domain.NewPaymentPayload(event, session, s.now().UTC())
		if _, err := s.outbox.Enqueue(ctx, dbTx, session.OwnerID, p); err != nil {
			return nil, txError("enqueue "+string(event), err)
		}
		payload = &p
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, txError("commit payment transition", err)
	}
	if payload != nil {
		s.outbox.Announce(ctx, session.OwnerID, *payload)
	}

	s.log.Info().
		Str("payment_id", id.String()).
		Str("status", string(target)).
		Msg("payment session transitioned")
	return session, nil
}
