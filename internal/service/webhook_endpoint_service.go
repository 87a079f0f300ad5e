package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"stablecoin-gateway/internal/core/domain"
	"stablecoin-gateway/internal/core/ports"
	"stablecoin-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	webhookSecretPrefix = "whsec_"
	webhookSecretBytes  = 32
	maxDeliveryListing  = 100
)

type webhookEndpointService struct {
	endpoints  ports.WebhookEndpointRepository
	deliveries ports.WebhookDeliveryRepository
	encSvc     ports.EncryptionService
	guard      *URLGuard
	secrets    *SecretCache
	log        zerolog.Logger
	now        func() time.Time
}

// NewWebhookEndpointService creates the endpoint management service.
func NewWebhookEndpointService(
	endpoints ports.WebhookEndpointRepository,
	deliveries ports.WebhookDeliveryRepository,
	encSvc ports.EncryptionService,
	guard *URLGuard,
	secrets *SecretCache,
	log zerolog.Logger,
) ports.WebhookEndpointService {
	return &webhookEndpointService{
		endpoints:  endpoints,
		deliveries: deliveries,
		encSvc:     encSvc,
		guard:      guard,
		secrets:    secrets,
		log:        log,
		now:        time.Now,
	}
}

func (s *webhookEndpointService) RegisterEndpoint(ctx context.Context, ownerID uuid.UUID, url string, events []domain.EventType) (*ports.RegisteredEndpoint, error) {
	if err := s.guard.Validate(ctx, url); err != nil {
		return nil, apperror.ErrInvalidWebhookURL(err.Error())
	}

	events, err := normalizeEvents(events)
	if err != nil {
		return nil, err
	}

	secret, secretEnc, err := s.newSecret()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	endpoint := &domain.WebhookEndpoint{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		URL:       url,
		SecretEnc: secretEnc,
		Events:    events,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.endpoints.Create(ctx, endpoint); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create webhook endpoint: %w", err))
	}

	s.log.Info().
		Str("endpoint_id", endpoint.ID.String()).
		Str("owner_id", ownerID.String()).
		Msg("webhook endpoint registered")

	return &ports.RegisteredEndpoint{Endpoint: endpoint, Secret: secret}, nil
}

func (s *webhookEndpointService) ListEndpoints(ctx context.Context, ownerID uuid.UUID) ([]domain.WebhookEndpoint, error) {
	endpoints, err := s.endpoints.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	return endpoints, nil
}

// RotateSecret issues a new signing secret. The cached plaintext of the old
// one is dropped right away.
func (s *webhookEndpointService) RotateSecret(ctx context.Context, id, ownerID uuid.UUID) (*ports.RegisteredEndpoint, error) {
	endpoint, err := s.getOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	secret, secretEnc, err := s.newSecret()
	if err != nil {
		return nil, err
	}
	if err := s.endpoints.UpdateSecret(ctx, id, ownerID, secretEnc); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.ErrNotFound("Webhook endpoint")
		}
		return nil, apperror.ErrDatabaseError(err)
	}

	s.secrets.Invalidate(endpoint.SecretEnc)
	endpoint.SecretEnc = secretEnc
	endpoint.UpdatedAt = s.now().UTC()

	s.log.Info().Str("endpoint_id", id.String()).Msg("webhook secret rotated")
	return &ports.RegisteredEndpoint{Endpoint: endpoint, Secret: secret}, nil
}

func (s *webhookEndpointService) DeactivateEndpoint(ctx context.Context, id, ownerID uuid.UUID) error {
	if err := s.endpoints.Deactivate(ctx, id, ownerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.ErrNotFound("Webhook endpoint")
		}
		return apperror.ErrDatabaseError(err)
	}
	s.log.Info().Str("endpoint_id", id.String()).Msg("webhook endpoint deactivated")
	return nil
}

func (s *webhookEndpointService) ListDeliveries(ctx context.Context, id, ownerID uuid.UUID, limit int) ([]domain.WebhookDelivery, error) {
	if _, err := s.getOwned(ctx, id, ownerID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxDeliveryListing {
		limit = maxDeliveryListing
	}
	deliveries, err := s.deliveries.ListByEndpoint(ctx, id, limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	return deliveries, nil
}

func (s *webhookEndpointService) getOwned(ctx context.Context, id, ownerID uuid.UUID) (*domain.WebhookEndpoint, error) {
	endpoint, err := s.endpoints.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if endpoint == nil {
		return nil, apperror.ErrNotFound("Webhook endpoint")
	}
	return endpoint, nil
}

func (s *webhookEndpointService) newSecret() (plain, encrypted string, err error) {
	buf := make([]byte, webhookSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", apperror.InternalError(fmt.Errorf("generate webhook secret: %w", err))
	}
	plain = webhookSecretPrefix + hex.EncodeToString(buf)

	encrypted, err = s.encSvc.Encrypt(plain)
	if err != nil {
		return "", "", apperror.ErrEncryptionFailure(err)
	}
	return plain, encrypted, nil
}

// normalizeEvents rejects unknown event types and drops duplicates.
func normalizeEvents(events []domain.EventType) ([]domain.EventType, error) {
	if len(events) == 0 {
		return nil, apperror.Validation("at least one event type is required")
	}
	seen := make(map[domain.EventType]bool, len(events))
	out := make([]domain.EventType, 0, len(events))
	for _, e := range events {
		if !domain.IsKnownEvent(e) {
			return nil, apperror.Validation(fmt.Sprintf("unknown event type: %s", e))
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out, nil
}
