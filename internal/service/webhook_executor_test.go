package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"stablecoin-gateway/internal/core/domain"
	"stablecoin-gateway/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type executorDeps struct {
	deliveries *mocks.MockWebhookDeliveryRepository
	encSvc     *mocks.MockEncryptionService
	breaker    *CircuitBreaker
	secrets    *SecretCache
	clock      *fakeClock
	exec       *WebhookExecutor
}

func setupExecutor(t *testing.T, client HTTPClient, guard *URLGuard, threshold int) *executorDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	clock := newFakeClock()
	breaker := NewCircuitBreaker(threshold, time.Minute)
	breaker.now = clock.Now
	secrets := NewSecretCache(5*time.Minute, 100)
	secrets.now = clock.Now

	d := &executorDeps{
		deliveries: mocks.NewMockWebhookDeliveryRepository(ctrl),
		encSvc:     mocks.NewMockEncryptionService(ctrl),
		breaker:    breaker,
		secrets:    secrets,
		clock:      clock,
	}
	d.exec = NewWebhookExecutor(d.deliveries, d.encSvc, breaker, secrets, guard, client, nil,
		DefaultWebhookExecutorConfig(), newTestLogger())
	d.exec.now = clock.Now
	d.exec.jitter = func() float64 { return 0 }
	return d
}

func newTestDelivery(url string) *domain.WebhookDelivery {
	endpointID := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.WebhookDelivery{
		ID:         uuid.New(),
		EndpointID: endpointID,
		EventType:  domain.EventPaymentCompleted,
		Payload: domain.WebhookPayload{
			ID:        uuid.New(),
			Type:      domain.EventPaymentCompleted,
			CreatedAt: now,
		},
		Status:    domain.DeliveryStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		Endpoint: &domain.WebhookEndpoint{
			ID:        endpointID,
			OwnerID:   uuid.New(),
			URL:       url,
			SecretEnc: "enc-secret",
			Events:    []domain.EventType{domain.EventPaymentCompleted},
			Active:    true,
		},
	}
}

func failingClient(t *testing.T) HTTPClient {
	return &mockHTTPClient{doFunc: func(*http.Request) (*http.Response, error) {
		t.Error("unexpected HTTP request")
		return nil, errors.New("unexpected")
	}}
}

func statusServer(t *testing.T, status int) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWebhookExecutor_Deliver_Success(t *testing.T) {
	type received struct {
		body      []byte
		signature string
		timestamp string
		id        string
		ctype     string
	}
	got := make(chan received, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- received{
			body:      body,
			signature: r.Header.Get(HeaderWebhookSignature),
			timestamp: r.Header.Get(HeaderWebhookTimestamp),
			id:        r.Header.Get(HeaderWebhookID),
			ctype:     r.Header.Get("Content-Type"),
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := setupExecutor(t, srv.Client(), NewURLGuard(nil, true), 5)
	delivery := newTestDelivery(srv.URL + "/hooks")

	d.deliveries.EXPECT().Claim(gomock.Any(), delivery.ID, d.clock.Now()).Return(1, true, nil)
	d.encSvc.EXPECT().Decrypt("enc-secret").Return("whsec_test", nil)
	d.deliveries.EXPECT().MarkSucceeded(gomock.Any(), delivery.ID, http.StatusNoContent).Return(nil)

	outcome := d.exec.Deliver(context.Background(), delivery)
	assert.Equal(t, OutcomeSucceeded, outcome)
	assert.Equal(t, domain.DeliveryStatusSucceeded, delivery.Status)
	require.NotNil(t, delivery.ResponseCode)
	assert.Equal(t, http.StatusNoContent, *delivery.ResponseCode)

	r := <-got
	ts, err := strconv.ParseInt(r.timestamp, 10, 64)
	require.NoError(t, err)
	assert.Equal(t, d.clock.Now().Unix(), ts)
	assert.Equal(t, delivery.ID.String(), r.id)
	assert.Equal(t, "application/json", r.ctype)
	assert.True(t, VerifyWebhookSignature(r.body, ts, "whsec_test", r.signature))

	var payload domain.WebhookPayload
	require.NoError(t, json.Unmarshal(r.body, &payload))
	assert.Equal(t, delivery.Payload.ID, payload.ID)
}

func TestWebhookExecutor_Deliver_CircuitOpenSkipsWithoutMutation(t *testing.T) {
	d := setupExecutor(t, failingClient(t), NewURLGuard(nil, true), 1)
	delivery := newTestDelivery("https://hooks.merchant.com/x")
	d.breaker.RecordFailure(delivery.EndpointID)

	// No repository expectations: any call fails the test.
	outcome := d.exec.Deliver(context.Background(), delivery)
	assert.Equal(t, OutcomeCircuitOpen, outcome)
	assert.Equal(t, domain.DeliveryStatusPending, delivery.Status)
	assert.Equal(t, 0, delivery.Attempts)
}

func TestWebhookExecutor_Deliver_LostClaimReleasesTrial(t *testing.T) {
	d := setupExecutor(t, failingClient(t), NewURLGuard(nil, true), 1)
	delivery := newTestDelivery("https://hooks.merchant.com/x")
	d.breaker.RecordFailure(delivery.EndpointID)
	d.clock.Advance(2 * time.Minute)

	d.deliveries.EXPECT().Claim(gomock.Any(), delivery.ID, gomock.Any()).Return(0, false, nil)

	outcome := d.exec.Deliver(context.Background(), delivery)
	assert.Equal(t, OutcomeNotClaimed, outcome)
	assert.True(t, d.breaker.Allow(delivery.EndpointID), "half-open trial must be available again")
}

func TestWebhookExecutor_Deliver_ClaimError(t *testing.T) {
	d := setupExecutor(t, failingClient(t), NewURLGuard(nil, true), 5)
	delivery := newTestDelivery("https://hooks.merchant.com/x")

	d.deliveries.EXPECT().Claim(gomock.Any(), delivery.ID, gomock.Any()).Return(0, false, errors.New("db down"))

	assert.Equal(t, OutcomeNotClaimed, d.exec.Deliver(context.Background(), delivery))
	assert.Equal(t, domain.CircuitClosed, d.breaker.State(delivery.EndpointID))
}

func TestWebhookExecutor_Deliver_UnsafeURLIsTerminal(t *testing.T) {
	d := setupExecutor(t, failingClient(t), NewURLGuard(staticResolver{}, false), 1)
	delivery := newTestDelivery("http://127.0.0.1:9/hooks")

	d.deliveries.EXPECT().Claim(gomock.Any(), delivery.ID, gomock.Any()).Return(1, true, nil)
	d.deliveries.EXPECT().
		MarkFailed(gomock.Any(), delivery.ID, gomock.Nil(), gomock.Any(), gomock.Nil()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, _ *int, msg string, _ *time.Time) error {
			assert.Contains(t, msg, "url rejected")
			return nil
		})

	outcome := d.exec.Deliver(context.Background(), delivery)
	assert.Equal(t, OutcomeRejectedURL, outcome)
	assert.True(t, delivery.IsTerminal())
	assert.Equal(t, domain.CircuitClosed, d.breaker.State(delivery.EndpointID), "rejections are not breaker failures")
}

func TestWebhookExecutor_Deliver_DialRejectionIsTerminal(t *testing.T) {
	client := &mockHTTPClient{doFunc: func(*http.Request) (*http.Response, error) {
		return nil, fmt.Errorf("dial tcp: %w", ErrUnsafeURL)
	}}
	d := setupExecutor(t, client, NewURLGuard(nil, true), 5)
	delivery := newTestDelivery("https://hooks.merchant.com/x")

	d.deliveries.EXPECT().Claim(gomock.Any(), delivery.ID, gomock.Any()).Return(1, true, nil)
	d.encSvc.EXPECT().Decrypt("enc-secret").Return("whsec_test", nil)
	d.deliveries.EXPECT().MarkFailed(gomock.Any(), delivery.ID, gomock.Nil(), gomock.Any(), gomock.Nil()).Return(nil)

	assert.Equal(t, OutcomeRejectedURL, d.exec.Deliver(context.Background(), delivery))
}

func TestWebhookExecutor_Deliver_ServerErrorSchedulesRetry(t *testing.T) {
	srv := statusServer(t, http.StatusInternalServerError)
	d := setupExecutor(t, srv.Client(), NewURLGuard(nil, true), 5)
	delivery := newTestDelivery(srv.URL)

	d.deliveries.EXPECT().Claim(gomock.Any(), delivery.ID, gomock.Any()).Return(1, true, nil)
	d.encSvc.EXPECT().Decrypt("enc-secret").Return("whsec_test", nil)
	d.deliveries.EXPECT().
		MarkFailed(gomock.Any(), delivery.ID, gomock.Any(), "HTTP 500", gomock.Not(gomock.Nil())).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, code *int, _ string, next *time.Time) error {
			require.NotNil(t, code)
			assert.Equal(t, http.StatusInternalServerError, *code)
			assert.Equal(t, d.clock.Now().Add(60*time.Second), *next)
			return nil
		})

	outcome := d.exec.Deliver(context.Background(), delivery)
	assert.Equal(t, OutcomeRetryScheduled, outcome)
	assert.False(t, delivery.IsTerminal())
}

func TestWebhookExecutor_Deliver_TransportErrorHasNoCode(t *testing.T) {
	client := &mockHTTPClient{doFunc: func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}}
	d := setupExecutor(t, client, NewURLGuard(nil, true), 5)
	delivery := newTestDelivery("https://hooks.merchant.com/x")

	d.deliveries.EXPECT().Claim(gomock.Any(), delivery.ID, gomock.Any()).Return(2, true, nil)
	d.encSvc.EXPECT().Decrypt("enc-secret").Return("whsec_test", nil)
	d.deliveries.EXPECT().
		MarkFailed(gomock.Any(), delivery.ID, gomock.Nil(), "connection refused", gomock.Not(gomock.Nil())).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, _ *int, _ string, next *time.Time) error {
			assert.Equal(t, d.clock.Now().Add(5*time.Minute), *next)
			return nil
		})

	assert.Equal(t, OutcomeRetryScheduled, d.exec.Deliver(context.Background(), delivery))
}

func TestWebhookExecutor_Deliver_LastAttemptIsTerminal(t *testing.T) {
	srv := statusServer(t, http.StatusBadGateway)
	d := setupExecutor(t, srv.Client(), NewURLGuard(nil, true), 10)
	delivery := newTestDelivery(srv.URL)

	d.deliveries.EXPECT().Claim(gomock.Any(), delivery.ID, gomock.Any()).Return(5, true, nil)
	d.encSvc.EXPECT().Decrypt("enc-secret").Return("whsec_test", nil)
	d.deliveries.EXPECT().
		MarkFailed(gomock.Any(), delivery.ID, gomock.Any(), "max retries exceeded: HTTP 502", gomock.Nil()).
		Return(nil)

	outcome := d.exec.Deliver(context.Background(), delivery)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.True(t, delivery.IsTerminal())
	require.NotNil(t, delivery.LastError)
	assert.Equal(t, "max retries exceeded: HTTP 502", *delivery.LastError)
}

func TestWebhookExecutor_Deliver_DecryptFailureIsRetried(t *testing.T) {
	d := setupExecutor(t, failingClient(t), NewURLGuard(nil, true), 1)
	delivery := newTestDelivery("https://hooks.merchant.com/x")

	d.deliveries.EXPECT().Claim(gomock.Any(), delivery.ID, gomock.Any()).Return(1, true, nil)
	d.encSvc.EXPECT().Decrypt("enc-secret").Return("", errors.New("cipher: message authentication failed"))
	d.deliveries.EXPECT().
		MarkFailed(gomock.Any(), delivery.ID, gomock.Nil(), gomock.Any(), gomock.Not(gomock.Nil())).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, _ *int, msg string, _ *time.Time) error {
			assert.Contains(t, msg, "decrypt signing secret")
			return nil
		})

	assert.Equal(t, OutcomeRetryScheduled, d.exec.Deliver(context.Background(), delivery))
	assert.Equal(t, domain.CircuitOpen, d.breaker.State(delivery.EndpointID))
}

func TestWebhookExecutor_Deliver_UsesSecretCache(t *testing.T) {
	srv := statusServer(t, http.StatusOK)
	d := setupExecutor(t, srv.Client(), NewURLGuard(nil, true), 5)
	first := newTestDelivery(srv.URL)
	second := newTestDelivery(srv.URL)

	d.deliveries.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Return(1, true, nil).Times(2)
	d.encSvc.EXPECT().Decrypt("enc-secret").Return("whsec_test", nil).Times(1)
	d.deliveries.EXPECT().MarkSucceeded(gomock.Any(), gomock.Any(), http.StatusOK).Return(nil).Times(2)

	assert.Equal(t, OutcomeSucceeded, d.exec.Deliver(context.Background(), first))
	assert.Equal(t, OutcomeSucceeded, d.exec.Deliver(context.Background(), second))
	assert.Equal(t, 1, d.secrets.Len())
}

func TestWebhookExecutor_Deliver_FailuresOpenCircuit(t *testing.T) {
	srv := statusServer(t, http.StatusServiceUnavailable)
	d := setupExecutor(t, srv.Client(), NewURLGuard(nil, true), 2)
	delivery := newTestDelivery(srv.URL)

	d.deliveries.EXPECT().Claim(gomock.Any(), delivery.ID, gomock.Any()).Return(1, true, nil).Times(2)
	d.encSvc.EXPECT().Decrypt("enc-secret").Return("whsec_test", nil)
	d.deliveries.EXPECT().MarkFailed(gomock.Any(), delivery.ID, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	assert.Equal(t, OutcomeRetryScheduled, d.exec.Deliver(context.Background(), delivery))
	assert.Equal(t, OutcomeRetryScheduled, d.exec.Deliver(context.Background(), delivery))
	assert.Equal(t, OutcomeCircuitOpen, d.exec.Deliver(context.Background(), delivery))
}

func TestWebhookExecutor_RetryDelay(t *testing.T) {
	d := setupExecutor(t, failingClient(t), NewURLGuard(nil, true), 5)

	tests := []struct {
		attempt int
		base    time.Duration
	}{
		{1, 60 * time.Second},
		{2, 5 * time.Minute},
		{3, 15 * time.Minute},
		{4, time.Hour},
		{5, 2 * time.Hour},
		{9, 2 * time.Hour},
	}

	var prev time.Duration
	for _, tt := range tests {
		d.exec.jitter = func() float64 { return 0 }
		assert.Equal(t, tt.base, d.exec.retryDelay(tt.attempt), "attempt %d", tt.attempt)

		d.exec.jitter = func() float64 { return 0.999 }
		got := d.exec.retryDelay(tt.attempt)
		assert.GreaterOrEqual(t, got, tt.base)
		assert.Less(t, got, tt.base+tt.base/10+time.Nanosecond)
		assert.GreaterOrEqual(t, got, prev, "delays never shrink")
		prev = got
	}
}

func TestNewWebhookHTTPClient_DoesNotFollowRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://169.254.169.254/latest/meta-data", http.StatusFound)
	}))
	defer srv.Close()

	client := NewWebhookHTTPClient(NewURLGuard(nil, true), 5*time.Second)
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestNewWebhookHTTPClient_DialGuard(t *testing.T) {
	srv := statusServer(t, http.StatusOK)

	client := NewWebhookHTTPClient(NewURLGuard(nil, false), 5*time.Second)
	_, err := client.Get(srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsafeURL)
}
