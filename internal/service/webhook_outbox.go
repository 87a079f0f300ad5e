package service

import (
	"context"
	"fmt"
	"time"

	"stablecoin-gateway/internal/core/domain"
	"stablecoin-gateway/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type webhookOutbox struct {
	endpoints  ports.WebhookEndpointRepository
	deliveries ports.WebhookDeliveryRepository
	publisher  ports.EventPublisher
	log        zerolog.Logger
	now        func() time.Time
}

// NewWebhookOutbox creates the outbox. publisher may be nil when no broker
// is configured.
func NewWebhookOutbox(
	endpoints ports.WebhookEndpointRepository,
	deliveries ports.WebhookDeliveryRepository,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) ports.WebhookOutbox {
	return &webhookOutbox{
		endpoints:  endpoints,
		deliveries: deliveries,
		publisher:  publisher,
		log:        log,
		now:        time.Now,
	}
}

func (o *webhookOutbox) Enqueue(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, payload domain.WebhookPayload) (int, error) {
	endpoints, err := o.endpoints.ListSubscribed(ctx, tx, ownerID, payload.Type)
	if err != nil {
		return 0, fmt.Errorf("list subscribed endpoints: %w", err)
	}

	now := o.now()
	for i := range endpoints {
		delivery := &domain.WebhookDelivery{
			ID:         uuid.New(),
			EndpointID: endpoints[i].ID,
			EventType:  payload.Type,
			Payload:    payload,
			Status:     domain.DeliveryStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := o.deliveries.Create(ctx, tx, delivery); err != nil {
			return i, fmt.Errorf("create delivery for endpoint %s: %w", endpoints[i].ID, err)
		}
	}

	if len(endpoints) > 0 {
		o.log.Debug().
			Str("event_type", string(payload.Type)).
			Str("event_id", payload.ID.String()).
			Int("deliveries", len(endpoints)).
			Msg("webhook deliveries enqueued")
	}
	return len(endpoints), nil
}

func (o *webhookOutbox) Announce(ctx context.Context, ownerID uuid.UUID, payload domain.WebhookPayload) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(ctx, ownerID, payload); err != nil {
		o.log.Warn().Err(err).
			Str("event_type", string(payload.Type)).
			Str("event_id", payload.ID.String()).
			Msg("failed to publish domain event")
	}
}
