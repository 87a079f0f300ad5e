package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"time"

	"stablecoin-gateway/internal/core/domain"
	"stablecoin-gateway/internal/core/ports"
	"stablecoin-gateway/internal/telemetry"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Headers sent with every webhook request.
const (
	HeaderWebhookSignature = "X-Webhook-Signature"
	HeaderWebhookTimestamp = "X-Webhook-Timestamp"
	HeaderWebhookID        = "X-Webhook-ID"
)

// maxResponseDrain bounds how much of a receiver's response body is read.
const maxResponseDrain = 64 << 10

// DefaultRetrySchedule is the delay before attempt n+1 after attempt n fails.
var DefaultRetrySchedule = []time.Duration{
	60 * time.Second,
	5 * time.Minute,
	15 * time.Minute,
	1 * time.Hour,
	2 * time.Hour,
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DeliveryOutcome is the result of one Deliver call.
type DeliveryOutcome string

const (
	OutcomeCircuitOpen    DeliveryOutcome = "circuit_open"
	OutcomeNotClaimed     DeliveryOutcome = "not_claimed"
	OutcomeSucceeded      DeliveryOutcome = "succeeded"
	OutcomeRetryScheduled DeliveryOutcome = "retry_scheduled"
	OutcomeFailed         DeliveryOutcome = "failed"
	OutcomeRejectedURL    DeliveryOutcome = "rejected_url"
)

// WebhookExecutorConfig tunes delivery attempts.
type WebhookExecutorConfig struct {
	Timeout       time.Duration
	MaxAttempts   int
	RetrySchedule []time.Duration
	Jitter        float64 // upper bound of the extra delay, as a fraction of the base delay
}

// DefaultWebhookExecutorConfig returns the production delivery policy.
func DefaultWebhookExecutorConfig() WebhookExecutorConfig {
	return WebhookExecutorConfig{
		Timeout:       30 * time.Second,
		MaxAttempts:   5,
		RetrySchedule: DefaultRetrySchedule,
		Jitter:        0.1,
	}
}

// WebhookExecutor performs single delivery attempts and records their outcome.
type WebhookExecutor struct {
	deliveries ports.WebhookDeliveryRepository
	encSvc     ports.EncryptionService
	breaker    *CircuitBreaker
	secrets    *SecretCache
	guard      *URLGuard
	httpClient HTTPClient
	metrics    *telemetry.Metrics
	cfg        WebhookExecutorConfig
	log        zerolog.Logger
	now        func() time.Time
	jitter     func() float64 // uniform in [0, 1)
}

// NewWebhookExecutor creates an executor. metrics may be nil.
func NewWebhookExecutor(
	deliveries ports.WebhookDeliveryRepository,
	encSvc ports.EncryptionService,
	breaker *CircuitBreaker,
	secrets *SecretCache,
	guard *URLGuard,
	httpClient HTTPClient,
	metrics *telemetry.Metrics,
	cfg WebhookExecutorConfig,
	log zerolog.Logger,
) *WebhookExecutor {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if len(cfg.RetrySchedule) == 0 {
		cfg.RetrySchedule = DefaultRetrySchedule
	}
	return &WebhookExecutor{
		deliveries: deliveries,
		encSvc:     encSvc,
		breaker:    breaker,
		secrets:    secrets,
		guard:      guard,
		httpClient: httpClient,
		metrics:    metrics,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
		jitter:     rand.Float64,
	}
}

// NewWebhookHTTPClient builds the client used for deliveries. Redirects are
// not followed and every dialled address passes through the guard.
func NewWebhookHTTPClient(guard *URLGuard, timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   guard.DialControl,
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Deliver attempts d once. Failures are recorded on the delivery and never
// returned; the outcome says what happened.
func (e *WebhookExecutor) Deliver(ctx context.Context, d *domain.WebhookDelivery) DeliveryOutcome {
	ctx, span := telemetry.Tracer().Start(ctx, "webhook.deliver", trace.WithAttributes(
		attribute.String("delivery.id", d.ID.String()),
		attribute.String("endpoint.id", d.EndpointID.String()),
		attribute.String("event.type", string(d.EventType)),
	))
	defer span.End()

	outcome := e.deliver(ctx, d)
	span.SetAttributes(attribute.String("delivery.outcome", string(outcome)))
	if outcome != OutcomeSucceeded && outcome != OutcomeCircuitOpen && outcome != OutcomeNotClaimed {
		span.SetStatus(codes.Error, string(outcome))
	}
	e.metrics.RecordDelivery(string(outcome))
	return outcome
}

func (e *WebhookExecutor) deliver(ctx context.Context, d *domain.WebhookDelivery) DeliveryOutcome {
	log := e.log.With().
		Str("delivery_id", d.ID.String()).
		Str("endpoint_id", d.EndpointID.String()).
		Str("event_type", string(d.EventType)).
		Logger()

	if d.Endpoint == nil {
		log.Error().Msg("delivery has no endpoint attached")
		return OutcomeNotClaimed
	}

	if !e.breaker.Allow(d.EndpointID) {
		log.Debug().Msg("circuit open, skipping delivery")
		return OutcomeCircuitOpen
	}

	attempts, ok, err := e.deliveries.Claim(ctx, d.ID, e.now())
	if err != nil {
		e.breaker.Release(d.EndpointID)
		log.Error().Err(err).Msg("failed to claim delivery")
		return OutcomeNotClaimed
	}
	if !ok {
		e.breaker.Release(d.EndpointID)
		log.Debug().Msg("delivery claimed elsewhere")
		return OutcomeNotClaimed
	}
	d.Attempts = attempts
	d.Status = domain.DeliveryStatusDelivering
	log = log.With().Int("attempt", attempts).Logger()

	// State writes below must land even if the caller is shutting down.
	persistCtx := context.WithoutCancel(ctx)

	if err := e.guard.Validate(ctx, d.Endpoint.URL); err != nil {
		if errors.Is(err, ErrUnsafeURL) {
			return e.reject(persistCtx, d, err, log)
		}
		return e.fail(persistCtx, d, nil, err, log)
	}

	secret, err := e.signingSecret(d.Endpoint.SecretEnc)
	if err != nil {
		return e.fail(persistCtx, d, nil, fmt.Errorf("decrypt signing secret: %w", err), log)
	}

	body, err := json.Marshal(d.Payload)
	if err != nil {
		return e.fail(persistCtx, d, nil, fmt.Errorf("marshal payload: %w", err), log)
	}

	start := time.Now()
	code, err := e.post(ctx, d, body, secret)
	e.metrics.ObserveWebhookLatency(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, ErrUnsafeURL) {
			return e.reject(persistCtx, d, err, log)
		}
		var codePtr *int
		if code != 0 {
			codePtr = &code
		}
		return e.fail(persistCtx, d, codePtr, err, log)
	}

	e.breaker.RecordSuccess(d.EndpointID)
	if err := e.deliveries.MarkSucceeded(persistCtx, d.ID, code); err != nil {
		log.Error().Err(err).Msg("failed to mark delivery succeeded")
	}
	d.Status = domain.DeliveryStatusSucceeded
	d.ResponseCode = &code
	d.NextAttemptAt = nil
	log.Info().Int("status_code", code).Msg("webhook delivered")
	return OutcomeSucceeded
}

// post sends the signed request. A non-2xx answer is an error carrying the
// status code; transport errors return code 0.
func (e *WebhookExecutor) post(ctx context.Context, d *domain.WebhookDelivery, body []byte, secret string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint.URL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	ts := e.now().Unix()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "stablecoin-gateway-webhooks/1.0")
	req.Header.Set(HeaderWebhookSignature, SignWebhook(body, ts, secret))
	req.Header.Set(HeaderWebhookTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(HeaderWebhookID, d.ID.String())

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseDrain))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

func (e *WebhookExecutor) signingSecret(encrypted string) (string, error) {
	if secret, ok := e.secrets.Get(encrypted); ok {
		e.metrics.RecordSecretLookup(true)
		return secret, nil
	}
	e.metrics.RecordSecretLookup(false)

	secret, err := e.encSvc.Decrypt(encrypted)
	if err != nil {
		return "", err
	}
	e.secrets.Set(encrypted, secret)
	return secret, nil
}

// reject terminally fails a delivery whose target is not allowed. It does not
// count against the endpoint's circuit.
func (e *WebhookExecutor) reject(ctx context.Context, d *domain.WebhookDelivery, cause error, log zerolog.Logger) DeliveryOutcome {
	e.breaker.Release(d.EndpointID)
	msg := "url rejected: " + cause.Error()
	if err := e.deliveries.MarkFailed(ctx, d.ID, nil, msg, nil); err != nil {
		log.Error().Err(err).Msg("failed to mark delivery rejected")
	}
	d.Status = domain.DeliveryStatusFailed
	d.LastError = &msg
	d.NextAttemptAt = nil
	log.Warn().Err(cause).Msg("webhook url rejected")
	return OutcomeRejectedURL
}

// fail records a failed attempt, scheduling a retry while attempts remain.
func (e *WebhookExecutor) fail(ctx context.Context, d *domain.WebhookDelivery, code *int, cause error, log zerolog.Logger) DeliveryOutcome {
	e.breaker.RecordFailure(d.EndpointID)

	d.Status = domain.DeliveryStatusFailed
	d.ResponseCode = code

	if d.Attempts < e.cfg.MaxAttempts {
		next := e.now().Add(e.retryDelay(d.Attempts))
		msg := cause.Error()
		if err := e.deliveries.MarkFailed(ctx, d.ID, code, msg, &next); err != nil {
			log.Error().Err(err).Msg("failed to schedule webhook retry")
		}
		d.LastError = &msg
		d.NextAttemptAt = &next
		log.Warn().Err(cause).Time("next_attempt_at", next).Msg("webhook attempt failed, retry scheduled")
		return OutcomeRetryScheduled
	}

	msg := "max retries exceeded: " + cause.Error()
	if err := e.deliveries.MarkFailed(ctx, d.ID, code, msg, nil); err != nil {
		log.Error().Err(err).Msg("failed to mark delivery failed")
	}
	d.LastError = &msg
	d.NextAttemptAt = nil
	log.Error().Err(cause).Msg("webhook delivery failed permanently")
	return OutcomeFailed
}

// retryDelay returns the wait after the given failed attempt: the schedule
// entry for that attempt (the last entry once exhausted) plus up to
// cfg.Jitter of it.
func (e *WebhookExecutor) retryDelay(attempt int) time.Duration {
	idx := attempt - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(e.cfg.RetrySchedule) {
		idx = len(e.cfg.RetrySchedule) - 1
	}
	base := e.cfg.RetrySchedule[idx]
	return base + time.Duration(float64(base)*e.cfg.Jitter*e.jitter())
}
