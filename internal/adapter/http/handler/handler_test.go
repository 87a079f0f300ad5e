package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stablecoin-gateway/internal/adapter/http/middleware"
	"stablecoin-gateway/internal/core/domain"
	"stablecoin-gateway/internal/core/ports"
	"stablecoin-gateway/internal/core/ports/mocks"
	"stablecoin-gateway/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	testBaseURL = "https://pay.example.com"
	testTxHash  = "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func withOwner(c *gin.Context, ownerID uuid.UUID) {
	c.Set(middleware.CtxOwnerID, ownerID)
}

func withID(c *gin.Context, id string) {
	c.Params = gin.Params{{Key: "id", Value: id}}
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code, _ := resp["error_code"].(string)
	return code
}

func testLink(ownerID uuid.UUID) *domain.PaymentLink {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.PaymentLink{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		ShortCode:       "aB3dE5gH",
		Title:           "Coffee",
		Amount:          decimal.NewNullDecimal(decimal.RequireFromString("12.50")),
		Currency:        "USD",
		Network:         domain.NetworkPolygon,
		Token:           "USDC",
		MerchantAddress: "0x52908400098527886E0F7030069857D2E4169EE7",
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func testSession(ownerID uuid.UUID, status domain.PaymentStatus) *domain.PaymentSession {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.PaymentSession{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Amount:    decimal.RequireFromString("12.50"),
		Currency:  "USD",
		Network:   domain.NetworkPolygon,
		Token:     "USDC",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testRefund(ownerID uuid.UUID, status domain.RefundStatus) *domain.Refund {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Refund{
		ID:               uuid.New(),
		PaymentSessionID: uuid.New(),
		OwnerID:          ownerID,
		Amount:           decimal.RequireFromString("5"),
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// --- Payment Link Handler Tests ---

func TestPaymentLinkHandler_Create_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLinks := mocks.NewMockPaymentLinkService(ctrl)
	h := NewPaymentLinkHandler(mockLinks, testBaseURL)

	ownerID := uuid.New()
	link := testLink(ownerID)
	mockLinks.EXPECT().CreatePaymentLink(gomock.Any(), ownerID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, req ports.CreatePaymentLinkRequest) (*domain.PaymentLink, error) {
			require.NotNil(t, req.Amount)
			assert.True(t, req.Amount.Equal(decimal.RequireFromString("12.5")))
			assert.Equal(t, "polygon", req.Network)
			assert.Equal(t, "Coffee", req.Title)
			return link, nil
		})

	amount := "12.50"
	c, w := newTestContext(http.MethodPost, "/api/v1/payment-links", map[string]interface{}{
		"title":            "  Coffee ",
		"amount":           amount,
		"currency":         "USD",
		"network":          "polygon",
		"token":            "USDC",
		"merchant_address": link.MerchantAddress,
	})
	withOwner(c, ownerID)

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, link.ID.String(), data["id"])
	assert.Equal(t, testBaseURL+"/pay/aB3dE5gH", data["url"])
	assert.Equal(t, "12.5", data["amount"])
}

func TestPaymentLinkHandler_Create_MissingOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewPaymentLinkHandler(mocks.NewMockPaymentLinkService(ctrl), testBaseURL)

	c, w := newTestContext(http.MethodPost, "/api/v1/payment-links", map[string]string{"title": "x"})
	h.Create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_003", errorCode(t, w))
}

func TestPaymentLinkHandler_Create_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewPaymentLinkHandler(mocks.NewMockPaymentLinkService(ctrl), testBaseURL)

	c, w := newTestContext(http.MethodPost, "/api/v1/payment-links", map[string]interface{}{
		"title":            "Coffee",
		"currency":         "USD",
		"network":          "dogechain",
		"token":            "USDC",
		"merchant_address": "0x52908400098527886E0F7030069857D2E4169EE7",
	})
	withOwner(c, uuid.New())

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "PAY_002", errorCode(t, w))
}

func TestPaymentLinkHandler_List_ClampsPagination(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLinks := mocks.NewMockPaymentLinkService(ctrl)
	h := NewPaymentLinkHandler(mockLinks, testBaseURL)

	ownerID := uuid.New()
	mockLinks.EXPECT().ListPaymentLinks(gomock.Any(), ownerID, defaultPageSize, 0).
		Return([]domain.PaymentLink{*testLink(ownerID), *testLink(ownerID)}, nil)

	c, w := newTestContext(http.MethodGet, "/api/v1/payment-links?limit=500&offset=-3", nil)
	withOwner(c, ownerID)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Len(t, data["items"], 2)
}

func TestPaymentLinkHandler_Get_InvalidID(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewPaymentLinkHandler(mocks.NewMockPaymentLinkService(ctrl), testBaseURL)

	c, w := newTestContext(http.MethodGet, "/api/v1/payment-links/not-a-uuid", nil)
	withOwner(c, uuid.New())
	withID(c, "not-a-uuid")

	h.Get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentLinkHandler_Deactivate_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLinks := mocks.NewMockPaymentLinkService(ctrl)
	h := NewPaymentLinkHandler(mockLinks, testBaseURL)

	ownerID, id := uuid.New(), uuid.New()
	mockLinks.EXPECT().DeactivatePaymentLink(gomock.Any(), id, ownerID).Return(nil, apperror.ErrNotFound("Payment link"))

	c, w := newTestContext(http.MethodPost, "/", nil)
	withOwner(c, ownerID)
	withID(c, id.String())

	h.Deactivate(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PAY_004", errorCode(t, w))
}

func TestPaymentLinkHandler_Resolve(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLinks := mocks.NewMockPaymentLinkService(ctrl)
	h := NewPaymentLinkHandler(mockLinks, testBaseURL)

	link := testLink(uuid.New())
	mockLinks.EXPECT().GetPaymentLinkByShortCode(gomock.Any(), "aB3dE5gH").Return(link, nil)
	mockLinks.EXPECT().GetPaymentLinkByShortCode(gomock.Any(), "expired1").Return(nil, apperror.ErrLinkExpired())

	c, w := newTestContext(http.MethodGet, "/api/v1/pay/aB3dE5gH", nil)
	c.Params = gin.Params{{Key: "code", Value: "aB3dE5gH"}}
	h.Resolve(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "Coffee", data["title"])
	_, leaksOwner := data["id"]
	assert.False(t, leaksOwner)

	c, w = newTestContext(http.MethodGet, "/api/v1/pay/expired1", nil)
	c.Params = gin.Params{{Key: "code", Value: "expired1"}}
	h.Resolve(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "LINK_002", errorCode(t, w))
}

func TestPaymentLinkHandler_Redeem_OpenAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLinks := mocks.NewMockPaymentLinkService(ctrl)
	h := NewPaymentLinkHandler(mockLinks, testBaseURL)

	session := testSession(uuid.New(), domain.PaymentStatusPending)
	mockLinks.EXPECT().RedeemPaymentLink(gomock.Any(), "open0001", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, req ports.RedeemRequest) (*domain.PaymentSession, error) {
			require.NotNil(t, req.Amount)
			assert.Equal(t, "7.25", req.Amount.String())
			require.NotNil(t, req.PayerEmail)
			assert.Equal(t, "payer@example.com", *req.PayerEmail)
			return session, nil
		})

	c, w := newTestContext(http.MethodPost, "/api/v1/pay/open0001/redeem", map[string]string{
		"amount":      "7.25",
		"payer_email": "payer@example.com",
	})
	c.Params = gin.Params{{Key: "code", Value: "open0001"}}

	h.Redeem(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "PENDING", data["status"])
}

func TestPaymentLinkHandler_Redeem_UsageExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLinks := mocks.NewMockPaymentLinkService(ctrl)
	h := NewPaymentLinkHandler(mockLinks, testBaseURL)

	mockLinks.EXPECT().RedeemPaymentLink(gomock.Any(), "full0001", gomock.Any()).Return(nil, apperror.ErrLinkMaxUsageReached())

	c, w := newTestContext(http.MethodPost, "/api/v1/pay/full0001/redeem", map[string]string{})
	c.Params = gin.Params{{Key: "code", Value: "full0001"}}

	h.Redeem(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "LINK_003", errorCode(t, w))
}

// --- Payment Handler Tests ---

func TestPaymentHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockSessions := mocks.NewMockPaymentSessionService(ctrl)
	h := NewPaymentHandler(mockSessions)

	ownerID := uuid.New()
	session := testSession(ownerID, domain.PaymentStatusCompleted)
	mockSessions.EXPECT().GetPaymentSession(gomock.Any(), session.ID, ownerID).Return(session, nil)

	c, w := newTestContext(http.MethodGet, "/", nil)
	withOwner(c, ownerID)
	withID(c, session.ID.String())

	h.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "COMPLETED", data["status"])
	assert.Equal(t, "12.5", data["amount"])
}

// --- Refund Handler Tests ---

func TestRefundHandler_Create_ForwardsIdempotencyKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRefunds := mocks.NewMockRefundService(ctrl)
	h := NewRefundHandler(mockRefunds)

	ownerID, sessionID := uuid.New(), uuid.New()
	refund := testRefund(ownerID, domain.RefundStatusPending)
	mockRefunds.EXPECT().RequestRefund(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.RequestRefundRequest) (*domain.Refund, error) {
			assert.Equal(t, ownerID, req.OwnerID)
			assert.Equal(t, sessionID, req.PaymentSessionID)
			assert.Equal(t, "order-42-refund", req.IdempotencyKey)
			assert.True(t, req.Amount.Equal(decimal.RequireFromString("5")))
			return refund, nil
		})

	c, w := newTestContext(http.MethodPost, "/", map[string]string{"amount": "5.00", "reason": "damaged"})
	c.Request.Header.Set(HeaderIdempotencyKey, "order-42-refund")
	withOwner(c, ownerID)
	withID(c, sessionID.String())

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, refund.ID.String(), data["id"])
}

func TestRefundHandler_Create_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		body   map[string]string
		status int
	}{
		{"key too long", strings.Repeat("k", maxIdempotencyKeyLen+1), map[string]string{"amount": "1"}, http.StatusBadRequest},
		{"zero amount", "", map[string]string{"amount": "0"}, http.StatusBadRequest},
		{"non numeric amount", "", map[string]string{"amount": "ten"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			h := NewRefundHandler(mocks.NewMockRefundService(ctrl))

			c, w := newTestContext(http.MethodPost, "/", tt.body)
			if tt.key != "" {
				c.Request.Header.Set(HeaderIdempotencyKey, tt.key)
			}
			withOwner(c, uuid.New())
			withID(c, uuid.New().String())

			h.Create(c)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRefundHandler_Create_ExceedsPayment(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRefunds := mocks.NewMockRefundService(ctrl)
	h := NewRefundHandler(mockRefunds)

	mockRefunds.EXPECT().RequestRefund(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrRefundAmountExceedsPayment())

	c, w := newTestContext(http.MethodPost, "/", map[string]string{"amount": "100"})
	withOwner(c, uuid.New())
	withID(c, uuid.New().String())

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "REF_003", errorCode(t, w))
}

func TestRefundHandler_Complete_PassesOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRefunds := mocks.NewMockRefundService(ctrl)
	h := NewRefundHandler(mockRefunds)

	ownerID := uuid.New()
	refund := testRefund(ownerID, domain.RefundStatusCompleted)
	block := int64(1234)
	mockRefunds.EXPECT().CompleteRefund(gomock.Any(), ports.CompleteRefundRequest{
		ID:          refund.ID,
		TxHash:      testTxHash,
		BlockNumber: &block,
		OwnerID:     &ownerID,
	}).Return(refund, nil)

	c, w := newTestContext(http.MethodPost, "/", map[string]interface{}{"tx_hash": testTxHash, "block_number": 1234})
	withOwner(c, ownerID)
	withID(c, refund.ID.String())

	h.Complete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "COMPLETED", decodeData(t, w)["status"])
}

func TestRefundHandler_Complete_AlreadyCompleted(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRefunds := mocks.NewMockRefundService(ctrl)
	h := NewRefundHandler(mockRefunds)

	mockRefunds.EXPECT().CompleteRefund(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrRefundAlreadyCompleted())

	c, w := newTestContext(http.MethodPost, "/", map[string]string{"tx_hash": testTxHash})
	withOwner(c, uuid.New())
	withID(c, uuid.New().String())

	h.Complete(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "REF_002", errorCode(t, w))
}

func TestRefundHandler_MarkProcessing_BadHash(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewRefundHandler(mocks.NewMockRefundService(ctrl))

	c, w := newTestContext(http.MethodPost, "/", map[string]string{"tx_hash": "0x1234"})
	withOwner(c, uuid.New())
	withID(c, uuid.New().String())

	h.MarkProcessing(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefundHandler_Fail(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRefunds := mocks.NewMockRefundService(ctrl)
	h := NewRefundHandler(mockRefunds)

	ownerID := uuid.New()
	refund := testRefund(ownerID, domain.RefundStatusFailed)
	mockRefunds.EXPECT().FailRefund(gomock.Any(), refund.ID, "wallet rejected", &ownerID).Return(refund, nil)

	c, w := newTestContext(http.MethodPost, "/", map[string]string{"reason": " wallet rejected "})
	withOwner(c, ownerID)
	withID(c, refund.ID.String())

	h.Fail(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefundHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRefunds := mocks.NewMockRefundService(ctrl)
	h := NewRefundHandler(mockRefunds)

	ownerID, sessionID := uuid.New(), uuid.New()
	mockRefunds.EXPECT().ListRefunds(gomock.Any(), sessionID, ownerID).
		Return([]domain.Refund{*testRefund(ownerID, domain.RefundStatusPending)}, nil)

	c, w := newTestContext(http.MethodGet, "/", nil)
	withOwner(c, ownerID)
	withID(c, sessionID.String())

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData(t, w)["items"], 1)
}

// --- Webhook Handler Tests ---

func TestWebhookHandler_Register_ReturnsSecretOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockHooks := mocks.NewMockWebhookEndpointService(ctrl)
	h := NewWebhookHandler(mockHooks)

	ownerID := uuid.New()
	endpoint := &domain.WebhookEndpoint{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		URL:       "https://merchant.example.com/hooks?a=1&b=2",
		Events:    []domain.EventType{domain.EventPaymentCompleted},
		Active:    true,
		CreatedAt: time.Now(),
	}
	mockHooks.EXPECT().RegisterEndpoint(gomock.Any(), ownerID, endpoint.URL, []domain.EventType{domain.EventPaymentCompleted}).
		Return(&ports.RegisteredEndpoint{Endpoint: endpoint, Secret: "whsec_abc"}, nil)
	mockHooks.EXPECT().ListEndpoints(gomock.Any(), ownerID).Return([]domain.WebhookEndpoint{*endpoint}, nil)

	c, w := newTestContext(http.MethodPost, "/api/v1/webhooks", map[string]interface{}{
		"url":    endpoint.URL,
		"events": []string{"payment.completed"},
	})
	withOwner(c, ownerID)
	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "whsec_abc", data["secret"])
	assert.Equal(t, endpoint.URL, data["url"])

	c, w = newTestContext(http.MethodGet, "/api/v1/webhooks", nil)
	withOwner(c, ownerID)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "whsec_abc")
}

func TestWebhookHandler_Register_UnknownEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewWebhookHandler(mocks.NewMockWebhookEndpointService(ctrl))

	c, w := newTestContext(http.MethodPost, "/api/v1/webhooks", map[string]interface{}{
		"url":    "https://merchant.example.com/hooks",
		"events": []string{"payment.exploded"},
	})
	withOwner(c, uuid.New())
	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookHandler_Register_GuardRejects(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockHooks := mocks.NewMockWebhookEndpointService(ctrl)
	h := NewWebhookHandler(mockHooks)

	mockHooks.EXPECT().RegisterEndpoint(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrInvalidWebhookURL("private address"))

	c, w := newTestContext(http.MethodPost, "/api/v1/webhooks", map[string]interface{}{
		"url":    "http://10.0.0.5/hooks",
		"events": []string{"refund.completed"},
	})
	withOwner(c, uuid.New())
	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "HOOK_001", errorCode(t, w))
}

func TestWebhookHandler_Deactivate(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockHooks := mocks.NewMockWebhookEndpointService(ctrl)
	h := NewWebhookHandler(mockHooks)

	ownerID, id := uuid.New(), uuid.New()
	mockHooks.EXPECT().DeactivateEndpoint(gomock.Any(), id, ownerID).Return(nil)

	c, _ := newTestContext(http.MethodDelete, "/", nil)
	withOwner(c, ownerID)
	withID(c, id.String())

	h.Deactivate(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
}

func TestWebhookHandler_RotateSecret(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockHooks := mocks.NewMockWebhookEndpointService(ctrl)
	h := NewWebhookHandler(mockHooks)

	ownerID := uuid.New()
	endpoint := &domain.WebhookEndpoint{ID: uuid.New(), OwnerID: ownerID, URL: "https://m.example.com/h", Active: true}
	mockHooks.EXPECT().RotateSecret(gomock.Any(), endpoint.ID, ownerID).
		Return(&ports.RegisteredEndpoint{Endpoint: endpoint, Secret: "whsec_new"}, nil)

	c, w := newTestContext(http.MethodPost, "/", nil)
	withOwner(c, ownerID)
	withID(c, endpoint.ID.String())

	h.RotateSecret(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "whsec_new", decodeData(t, w)["secret"])
}

func TestWebhookHandler_ListDeliveries(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockHooks := mocks.NewMockWebhookEndpointService(ctrl)
	h := NewWebhookHandler(mockHooks)

	ownerID, id := uuid.New(), uuid.New()
	code := 503
	lastErr := "HTTP 503"
	mockHooks.EXPECT().ListDeliveries(gomock.Any(), id, ownerID, 5).Return([]domain.WebhookDelivery{{
		ID:           uuid.New(),
		EndpointID:   id,
		EventType:    domain.EventRefundCompleted,
		Status:       domain.DeliveryStatusFailed,
		Attempts:     2,
		ResponseCode: &code,
		LastError:    &lastErr,
	}}, nil)

	c, w := newTestContext(http.MethodGet, "/?limit=5", nil)
	withOwner(c, ownerID)
	withID(c, id.String())

	h.ListDeliveries(c)

	assert.Equal(t, http.StatusOK, w.Code)
	items := decodeData(t, w)["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "FAILED", items[0].(map[string]interface{})["status"])
}

// --- Monitor Handler Tests ---

func TestMonitorHandler_PaymentStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockSessions := mocks.NewMockPaymentSessionService(ctrl)
	h := NewMonitorHandler(mockSessions, mocks.NewMockRefundService(ctrl))

	session := testSession(uuid.New(), domain.PaymentStatusCompleted)
	hash := testTxHash
	mockSessions.EXPECT().TransitionPaymentSession(gomock.Any(), session.ID, domain.PaymentStatusCompleted, &hash).Return(session, nil)

	c, w := newTestContext(http.MethodPost, "/", map[string]string{"status": "COMPLETED", "tx_hash": testTxHash})
	withID(c, session.ID.String())

	h.PaymentStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMonitorHandler_PaymentStatus_RejectsRefunded(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewMonitorHandler(mocks.NewMockPaymentSessionService(ctrl), mocks.NewMockRefundService(ctrl))

	c, w := newTestContext(http.MethodPost, "/", map[string]string{"status": "REFUNDED"})
	withID(c, uuid.New().String())

	h.PaymentStatus(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMonitorHandler_RefundFinality(t *testing.T) {
	tests := []struct {
		name   string
		result *domain.FinalityResult
		status int
	}{
		{
			name:   "pending",
			result: &domain.FinalityResult{Status: domain.FinalityPending, Current: 3, Required: 128},
			status: http.StatusAccepted,
		},
		{
			name:   "confirmed",
			result: &domain.FinalityResult{Status: domain.FinalityConfirmed, Current: 130, Required: 128, Refund: testRefund(uuid.New(), domain.RefundStatusCompleted)},
			status: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockRefunds := mocks.NewMockRefundService(ctrl)
			h := NewMonitorHandler(mocks.NewMockPaymentSessionService(ctrl), mockRefunds)

			id := uuid.New()
			mockRefunds.EXPECT().ConfirmRefundFinality(gomock.Any(), id, testTxHash, "polygon").Return(tt.result, nil)

			c, w := newTestContext(http.MethodPost, "/", map[string]string{"tx_hash": testTxHash, "network": "polygon"})
			withID(c, id.String())

			h.RefundFinality(c)

			assert.Equal(t, tt.status, w.Code)
			data := decodeData(t, w)
			assert.Equal(t, string(tt.result.Status), data["status"])
			assert.EqualValues(t, tt.result.Required, data["required_confirmations"])
		})
	}
}

func TestMonitorHandler_RefundFinality_OracleDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRefunds := mocks.NewMockRefundService(ctrl)
	h := NewMonitorHandler(mocks.NewMockPaymentSessionService(ctrl), mockRefunds)

	mockRefunds.EXPECT().ConfirmRefundFinality(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrOracleUnavailable(errors.New("dial tcp: i/o timeout")))

	c, w := newTestContext(http.MethodPost, "/", map[string]string{"tx_hash": testTxHash, "network": "ethereum"})
	withID(c, uuid.New().String())

	h.RefundFinality(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "CHAIN_002", errorCode(t, w))
}

func TestMonitorHandler_RefundFail_SystemCaller(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRefunds := mocks.NewMockRefundService(ctrl)
	h := NewMonitorHandler(mocks.NewMockPaymentSessionService(ctrl), mockRefunds)

	refund := testRefund(uuid.New(), domain.RefundStatusFailed)
	mockRefunds.EXPECT().FailRefund(gomock.Any(), refund.ID, "transaction reverted", gomock.Nil()).Return(refund, nil)

	c, w := newTestContext(http.MethodPost, "/", map[string]string{"reason": "transaction reverted"})
	withID(c, refund.ID.String())

	h.RefundFail(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

// --- Health Check Test ---

func TestHealthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck()(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	ctrl := gomock.NewController(t)
	pg := mocks.NewMockHealthChecker(ctrl)
	rdb := mocks.NewMockHealthChecker(ctrl)
	pg.EXPECT().Ping(gomock.Any()).Return(nil)
	pg.EXPECT().Name().Return("postgres").AnyTimes()
	rdb.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))
	rdb.EXPECT().Name().Return("redis").AnyTimes()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(pg, rdb)(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
	deps := resp["dependencies"].(map[string]interface{})
	assert.Equal(t, "healthy", deps["postgres"].(map[string]interface{})["status"])
	assert.Equal(t, "unhealthy", deps["redis"].(map[string]interface{})["status"])
}

func TestSwaggerUI(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/swagger", nil)

	SwaggerUI(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "swagger-ui")
	assert.Contains(t, w.Body.String(), "/swagger/spec")
}

func TestSwaggerSpec_Loaded(t *testing.T) {
	SetSwaggerSpec([]byte("openapi: '3.0.0'\ninfo:\n  title: Test"))
	defer SetSwaggerSpec(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/swagger/spec", nil)

	SwaggerSpec(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi")
}

func TestSwaggerSpec_NotLoaded(t *testing.T) {
	SetSwaggerSpec(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/swagger/spec", nil)

	SwaggerSpec(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
