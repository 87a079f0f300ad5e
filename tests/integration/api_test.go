package integration

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"stablecoin-gateway/internal/adapter/chain"
	httpHandler "stablecoin-gateway/internal/adapter/http/handler"
	"stablecoin-gateway/internal/adapter/http/middleware"
	redisStorage "stablecoin-gateway/internal/adapter/storage/redis"
	"stablecoin-gateway/internal/core/domain"
	"stablecoin-gateway/internal/core/ports"
	"stablecoin-gateway/internal/service"
	"stablecoin-gateway/internal/telemetry"
	"stablecoin-gateway/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMonitorSecret   = "monitor-secret-for-integration"
	testMerchantAddress = "0x52908400098527886e0f7030069857d2e4169ee7"
	testRefundTxHash    = "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"
	testPaymentTxHash   = "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b"
	refundMinedBlock    = 100
	testConfirmations   = 3
)

// testApp builds the full application stack over in-memory repositories and
// miniredis. It exercises the real HTTP layer, middleware, handlers, services,
// Redis stores, webhook pipeline and chain oracle end-to-end.
type testApp struct {
	server     *httptest.Server
	redis      *miniredis.Miniredis
	node       *fakeNode
	links      *inMemoryPaymentLinkRepo
	sessions   *inMemoryPaymentSessionRepo
	refunds    *inMemoryRefundRepo
	dispatcher *service.WebhookDispatcher
	ownerID    uuid.UUID
	token      string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	// Start miniredis
	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	// Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb, "idem:refund:")
	nonceStore := redisStorage.NewNonceStore(rdb)

	// Core services with real implementations
	encSvc, err := service.NewAESEncryptionService("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	sigSvc := service.NewHMACSignatureService()
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", 24*time.Hour, "test-issuer")

	// In-memory repos
	linkRepo := newInMemoryPaymentLinkRepo()
	sessionRepo := newInMemoryPaymentSessionRepo()
	refundRepo := newInMemoryRefundRepo()
	endpointRepo := newInMemoryWebhookEndpointRepo()
	deliveryRepo := newInMemoryWebhookDeliveryRepo(endpointRepo)
	transactor := newInMemoryTransactor()

	log := logger.New("warn", false)
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)

	// Webhook pipeline; test receivers listen on loopback
	guard := service.NewURLGuard(nil, true)
	secrets := service.NewSecretCache(time.Minute, 100)
	breaker := service.NewCircuitBreaker(5, time.Minute)
	outbox := service.NewWebhookOutbox(endpointRepo, deliveryRepo, nil, log)
	executor := service.NewWebhookExecutor(deliveryRepo, encSvc, breaker, secrets, guard,
		service.NewWebhookHTTPClient(guard, 5*time.Second), metrics,
		service.WebhookExecutorConfig{Timeout: 5 * time.Second, MaxAttempts: 3, RetrySchedule: []time.Duration{time.Second}},
		log)
	dispatcher := service.NewWebhookDispatcher(deliveryRepo, executor, service.DispatcherConfig{
		PollInterval: time.Hour,
		BatchSize:    10,
		Workers:      2,
		StaleAfter:   time.Minute,
		MaxAttempts:  3,
	}, log)

	node := newFakeNode(t)
	oracle := chain.NewEVMOracle(map[string]string{"ethereum": node.server.URL}, nil, 5*time.Second, log)

	// Business services
	linkSvc := service.NewPaymentLinkService(linkRepo, sessionRepo, outbox, transactor, metrics, 0, log)
	sessionSvc := service.NewPaymentSessionService(sessionRepo, outbox, transactor, 0, log)
	refundSvc := service.NewRefundService(refundRepo, sessionRepo, outbox, transactor, oracle, idempotencyCache, metrics,
		service.RefundServiceConfig{Finality: domain.NewFinalityPolicy(map[string]int{"ethereum": testConfirmations})}, log)
	webhookSvc := service.NewWebhookEndpointService(endpointRepo, deliveryRepo, encSvc, guard, secrets, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		LinkSvc:        linkSvc,
		SessionSvc:     sessionSvc,
		RefundSvc:      refundSvc,
		WebhookSvc:     webhookSvc,
		SigSvc:         sigSvc,
		NonceStore:     nonceStore,
		TokenSvc:       tokenSvc,
		HealthCheckers: []ports.HealthChecker{redisStorage.NewHealthCheck(rdb)},
		AuditSvc:       service.NewAuditService(nil, log),
		Metrics:        metrics,
		Gatherer:       reg,
		Monitor:        middleware.MonitorAuthConfig{Secret: testMonitorSecret},
		PublicBaseURL:  "https://pay.example.com",
		Logger:         log,
	})

	ownerID := uuid.New()
	token, _, err := tokenSvc.Generate(ownerID)
	require.NoError(t, err)

	return &testApp{
		server:     httptest.NewServer(router),
		redis:      mr,
		node:       node,
		links:      linkRepo,
		sessions:   sessionRepo,
		refunds:    refundRepo,
		dispatcher: dispatcher,
		ownerID:    ownerID,
		token:      token,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.node.server.Close()
	a.redis.Close()
}

// --- Request helpers ---

type envelope struct {
	Data      json.RawMessage `json:"data"`
	ErrorCode string          `json:"error_code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
}

func (a *testApp) request(t *testing.T, method, path, body string, headers map[string]string) (int, envelope) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, a.server.URL+path, rdr)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (a *testApp) owner(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	return a.request(t, method, path, body, map[string]string{"Authorization": "Bearer " + a.token})
}

// monitor sends a callback signed the way the chain monitor signs it.
func (a *testApp) monitor(t *testing.T, path, body string) (int, envelope) {
	t.Helper()
	return a.request(t, http.MethodPost, path, body, monitorHeaders(path, body, uuid.NewString()))
}

func monitorHeaders(path, body, nonce string) map[string]string {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	canonical := fmt.Sprintf("POST|%s|%s|%s|%s", path, timestamp, nonce, body)
	mac := hmac.New(sha256.New, []byte(testMonitorSecret))
	mac.Write([]byte(canonical))
	return map[string]string{
		middleware.HeaderSignature: hex.EncodeToString(mac.Sum(nil)),
		middleware.HeaderTimestamp: timestamp,
		middleware.HeaderNonce:     nonce,
	}
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

type linkBody struct {
	ID         string `json:"id"`
	ShortCode  string `json:"short_code"`
	URL        string `json:"url"`
	Amount     string `json:"amount"`
	Active     bool   `json:"active"`
	UsageCount int    `json:"usage_count"`
}

type sessionBody struct {
	ID            string `json:"id"`
	PaymentLinkID string `json:"payment_link_id"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
	TxHash        string `json:"tx_hash"`
}

type refundBody struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	TxHash      string `json:"tx_hash"`
	BlockNumber *int64 `json:"block_number"`
}

func createLink(t *testing.T, app *testApp, amount string, maxUsages int) linkBody {
	t.Helper()
	body := fmt.Sprintf(`{"title":"Conference ticket","currency":"USD","network":"ethereum","token":"usdc","merchant_address":"%s"`, testMerchantAddress)
	if amount != "" {
		body += fmt.Sprintf(`,"amount":"%s"`, amount)
	}
	if maxUsages > 0 {
		body += fmt.Sprintf(`,"max_usages":%d`, maxUsages)
	}
	body += "}"

	code, env := app.owner(t, http.MethodPost, "/api/v1/payment-links", body)
	require.Equal(t, http.StatusCreated, code, env.Message)
	return decode[linkBody](t, env)
}

func redeem(t *testing.T, app *testApp, shortCode, body string) (int, envelope) {
	t.Helper()
	return app.request(t, http.MethodPost, "/api/v1/pay/"+shortCode+"/redeem", body, nil)
}

// completedPayment redeems a fresh fixed-amount link and has the monitor
// confirm the payment.
func completedPayment(t *testing.T, app *testApp, amount string) sessionBody {
	t.Helper()
	link := createLink(t, app, amount, 0)
	code, env := redeem(t, app, link.ShortCode, `{}`)
	require.Equal(t, http.StatusCreated, code, env.Message)
	session := decode[sessionBody](t, env)

	path := "/internal/v1/payments/" + session.ID + "/status"
	code, env = app.monitor(t, path, fmt.Sprintf(`{"status":"COMPLETED","tx_hash":"%s"}`, testPaymentTxHash))
	require.Equal(t, http.StatusOK, code, env.Message)
	return decode[sessionBody](t, env)
}

// --- Fake JSON-RPC node ---

type fakeNode struct {
	server *httptest.Server
	head   atomic.Uint64
}

func newFakeNode(t *testing.T) *fakeNode {
	n := &fakeNode{}
	n.head.Store(refundMinedBlock)
	n.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int64  `json:"id"`
			Method string `json:"method"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		var result any
		switch req.Method {
		case "eth_getTransactionReceipt":
			result = map[string]string{"blockNumber": fmt.Sprintf("0x%x", refundMinedBlock), "status": "0x1"}
		case "eth_blockNumber":
			result = fmt.Sprintf("0x%x", n.head.Load())
		default:
			t.Errorf("unexpected rpc method %s", req.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
	}))
	return n
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_HealthCheck_RedisDown(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.redis.Close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "degraded", body["status"])
}

func TestIntegration_PaymentLinkLifecycle(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	link := createLink(t, app, "25.50", 0)
	assert.Len(t, link.ShortCode, 8)
	assert.Equal(t, "https://pay.example.com/pay/"+link.ShortCode, link.URL)
	assert.Equal(t, "25.5", link.Amount)

	// Public resolve needs no credentials.
	code, env := app.request(t, http.MethodGet, "/api/v1/pay/"+link.ShortCode, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(env.Data), link.ID)

	code, env = redeem(t, app, link.ShortCode, `{"payer_email":"payer@example.com"}`)
	require.Equal(t, http.StatusCreated, code, env.Message)
	session := decode[sessionBody](t, env)
	assert.Equal(t, "PENDING", session.Status)
	assert.Equal(t, "25.5", session.Amount)
	assert.Equal(t, link.ID, session.PaymentLinkID)

	code, env = app.owner(t, http.MethodGet, "/api/v1/payment-links/"+link.ID, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, decode[linkBody](t, env).UsageCount)

	code, env = app.owner(t, http.MethodGet, "/api/v1/payments/"+session.ID, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "PENDING", decode[sessionBody](t, env).Status)

	code, _ = app.owner(t, http.MethodPost, "/api/v1/payment-links/"+link.ID+"/deactivate", "")
	require.Equal(t, http.StatusOK, code)

	code, env = app.request(t, http.MethodGet, "/api/v1/pay/"+link.ShortCode, "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "LINK_001", env.ErrorCode)

	code, env = redeem(t, app, link.ShortCode, `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "LINK_001", env.ErrorCode)
}

func TestIntegration_OpenAmountLinkRequiresAmount(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	link := createLink(t, app, "", 0)

	code, env := redeem(t, app, link.ShortCode, `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "PAY_002", env.ErrorCode)

	code, env = redeem(t, app, link.ShortCode, `{"amount":"7.25"}`)
	require.Equal(t, http.StatusCreated, code, env.Message)
	assert.Equal(t, "7.25", decode[sessionBody](t, env).Amount)
}

func TestIntegration_LinkUsageLimit(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	link := createLink(t, app, "10", 2)

	for i := 0; i < 2; i++ {
		code, env := redeem(t, app, link.ShortCode, `{}`)
		require.Equal(t, http.StatusCreated, code, env.Message)
	}

	code, env := redeem(t, app, link.ShortCode, `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "LINK_003", env.ErrorCode)
}

func TestIntegration_OwnerRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	code, env := app.request(t, http.MethodGet, "/api/v1/payment-links", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AUTH_003", env.ErrorCode)

	code, env = app.request(t, http.MethodGet, "/api/v1/payment-links", "", map[string]string{"Authorization": "Bearer not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AUTH_003", env.ErrorCode)
}

func TestIntegration_OwnerIsolation(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	link := createLink(t, app, "10", 0)

	other := newTestApp(t)
	defer other.close()
	// Same secret, different owner: the other app's token is valid here.
	code, env := app.request(t, http.MethodGet, "/api/v1/payment-links/"+link.ID, "",
		map[string]string{"Authorization": "Bearer " + other.token})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "PAY_004", env.ErrorCode)
}

func TestIntegration_MonitorCallbacks(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	link := createLink(t, app, "40", 0)
	_, env := redeem(t, app, link.ShortCode, `{}`)
	session := decode[sessionBody](t, env)
	path := "/internal/v1/payments/" + session.ID + "/status"

	t.Run("unsigned request is rejected", func(t *testing.T) {
		code, env := app.request(t, http.MethodPost, path, `{"status":"CONFIRMING"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "SEC_002", env.ErrorCode)
	})

	t.Run("tampered body is rejected", func(t *testing.T) {
		headers := monitorHeaders(path, `{"status":"CONFIRMING"}`, uuid.NewString())
		code, env := app.request(t, http.MethodPost, path, `{"status":"COMPLETED"}`, headers)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "SEC_002", env.ErrorCode)
	})

	t.Run("signed transitions apply", func(t *testing.T) {
		code, env := app.monitor(t, path, `{"status":"CONFIRMING"}`)
		require.Equal(t, http.StatusOK, code, env.Message)
		assert.Equal(t, "CONFIRMING", decode[sessionBody](t, env).Status)

		body := fmt.Sprintf(`{"status":"COMPLETED","tx_hash":"%s"}`, testPaymentTxHash)
		code, env = app.monitor(t, path, body)
		require.Equal(t, http.StatusOK, code, env.Message)
		completed := decode[sessionBody](t, env)
		assert.Equal(t, "COMPLETED", completed.Status)
		assert.Equal(t, testPaymentTxHash, completed.TxHash)
	})

	t.Run("terminal session cannot fail", func(t *testing.T) {
		code, env := app.monitor(t, path, `{"status":"FAILED"}`)
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "PAY_008", env.ErrorCode)
	})

	t.Run("replayed nonce is rejected", func(t *testing.T) {
		nonce := uuid.NewString()
		body := fmt.Sprintf(`{"status":"COMPLETED","tx_hash":"%s"}`, testPaymentTxHash)
		code, _ := app.request(t, http.MethodPost, path, body, monitorHeaders(path, body, nonce))
		require.Equal(t, http.StatusOK, code)

		code, env := app.request(t, http.MethodPost, path, body, monitorHeaders(path, body, nonce))
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "SEC_004", env.ErrorCode)
	})
}

func TestIntegration_RefundLifecycle(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	session := completedPayment(t, app, "100")
	refundsPath := "/api/v1/payments/" + session.ID + "/refunds"

	code, env := app.owner(t, http.MethodPost, refundsPath, `{"amount":"150"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "REF_003", env.ErrorCode)

	code, env = app.owner(t, http.MethodPost, refundsPath, `{"amount":"100","reason":"order cancelled"}`)
	require.Equal(t, http.StatusCreated, code, env.Message)
	refund := decode[refundBody](t, env)
	assert.Equal(t, "PENDING", refund.Status)

	code, env = app.owner(t, http.MethodPost, "/api/v1/refunds/"+refund.ID+"/processing",
		fmt.Sprintf(`{"tx_hash":"%s"}`, testRefundTxHash))
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "PROCESSING", decode[refundBody](t, env).Status)

	// Two blocks deep: not final on ethereum yet.
	app.node.head.Store(refundMinedBlock + 1)
	finalityPath := "/internal/v1/refunds/" + refund.ID + "/finality"
	finalityBody := fmt.Sprintf(`{"tx_hash":"%s","network":"ethereum"}`, testRefundTxHash)

	code, env = app.monitor(t, finalityPath, finalityBody)
	require.Equal(t, http.StatusAccepted, code, env.Message)
	pending := decode[struct {
		Status   string `json:"status"`
		Current  int    `json:"current_confirmations"`
		Required int    `json:"required_confirmations"`
	}](t, env)
	assert.Equal(t, "pending", pending.Status)
	assert.Equal(t, 2, pending.Current)
	assert.Equal(t, testConfirmations, pending.Required)

	app.node.head.Store(refundMinedBlock + testConfirmations)

	// A final transaction other than the broadcast one cannot settle the refund.
	code, env = app.monitor(t, finalityPath,
		fmt.Sprintf(`{"tx_hash":"%s","network":"ethereum"}`, testPaymentTxHash))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "REF_005", env.ErrorCode)

	code, env = app.monitor(t, finalityPath, finalityBody)
	require.Equal(t, http.StatusOK, code, env.Message)
	confirmed := decode[struct {
		Status string     `json:"status"`
		Refund refundBody `json:"refund"`
	}](t, env)
	assert.Equal(t, "confirmed", confirmed.Status)
	assert.Equal(t, "COMPLETED", confirmed.Refund.Status)
	assert.Equal(t, testRefundTxHash, confirmed.Refund.TxHash)
	require.NotNil(t, confirmed.Refund.BlockNumber)
	assert.Equal(t, int64(refundMinedBlock), *confirmed.Refund.BlockNumber)

	// The refund covered the whole payment.
	code, env = app.owner(t, http.MethodGet, "/api/v1/payments/"+session.ID, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "REFUNDED", decode[sessionBody](t, env).Status)

	// Completed refunds are immutable.
	code, env = app.monitor(t, "/internal/v1/refunds/"+refund.ID+"/fail", `{"reason":"late failure"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "REF_002", env.ErrorCode)
}

func TestIntegration_FailedRefundReleasesAmount(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	session := completedPayment(t, app, "50")
	refundsPath := "/api/v1/payments/" + session.ID + "/refunds"

	code, env := app.owner(t, http.MethodPost, refundsPath, `{"amount":"50"}`)
	require.Equal(t, http.StatusCreated, code, env.Message)
	refund := decode[refundBody](t, env)

	code, env = app.owner(t, http.MethodPost, refundsPath, `{"amount":"1"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "REF_003", env.ErrorCode)

	code, env = app.owner(t, http.MethodPost, "/api/v1/refunds/"+refund.ID+"/fail", `{"reason":"payer wallet rejected"}`)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "FAILED", decode[refundBody](t, env).Status)

	code, env = app.owner(t, http.MethodPost, refundsPath, `{"amount":"50"}`)
	assert.Equal(t, http.StatusCreated, code, env.Message)

	code, env = app.owner(t, http.MethodGet, refundsPath, "")
	require.Equal(t, http.StatusOK, code)
	list := decode[struct {
		Items []refundBody `json:"items"`
	}](t, env)
	assert.Len(t, list.Items, 2)
}

func TestIntegration_RefundIdempotencyKey(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	session := completedPayment(t, app, "30")
	refundsPath := "/api/v1/payments/" + session.ID + "/refunds"
	headers := map[string]string{
		"Authorization":   "Bearer " + app.token,
		"Idempotency-Key": "refund-" + session.ID,
	}

	code, env := app.request(t, http.MethodPost, refundsPath, `{"amount":"10"}`, headers)
	require.Equal(t, http.StatusCreated, code, env.Message)
	first := decode[refundBody](t, env)

	code, env = app.request(t, http.MethodPost, refundsPath, `{"amount":"10"}`, headers)
	require.Equal(t, http.StatusCreated, code, env.Message)
	assert.Equal(t, first.ID, decode[refundBody](t, env).ID)

	list, err := app.refunds.ListBySession(t.Context(), uuid.MustParse(session.ID), app.ownerID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestIntegration_WebhookDelivery(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	type received struct {
		body      []byte
		signature string
		timestamp string
	}
	var mu sync.Mutex
	var got []received
	receiver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, received{
			body:      body,
			signature: r.Header.Get(service.HeaderWebhookSignature),
			timestamp: r.Header.Get(service.HeaderWebhookTimestamp),
		})
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer receiver.Close()

	code, env := app.owner(t, http.MethodPost, "/api/v1/webhooks",
		fmt.Sprintf(`{"url":"%s/hooks","events":["payment.created"]}`, receiver.URL))
	require.Equal(t, http.StatusCreated, code, env.Message)
	endpoint := decode[struct {
		ID     string `json:"id"`
		Secret string `json:"secret"`
	}](t, env)
	require.NotEmpty(t, endpoint.Secret)

	link := createLink(t, app, "12", 0)
	code, env = redeem(t, app, link.ShortCode, `{}`)
	require.Equal(t, http.StatusCreated, code, env.Message)
	session := decode[sessionBody](t, env)

	n, err := app.dispatcher.DispatchOnce(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	mu.Lock()
	require.Len(t, got, 1)
	delivery := got[0]
	mu.Unlock()

	ts, err := strconv.ParseInt(delivery.timestamp, 10, 64)
	require.NoError(t, err)
	assert.Equal(t, service.SignWebhook(delivery.body, ts, endpoint.Secret), delivery.signature)

	var payload struct {
		Type    string `json:"type"`
		Payment struct {
			PaymentID string `json:"payment_id"`
		} `json:"payment"`
	}
	require.NoError(t, json.Unmarshal(delivery.body, &payload))
	assert.Equal(t, "payment.created", payload.Type)
	assert.Equal(t, session.ID, payload.Payment.PaymentID)

	code, env = app.owner(t, http.MethodGet, "/api/v1/webhooks/"+endpoint.ID+"/deliveries", "")
	require.Equal(t, http.StatusOK, code)
	deliveries := decode[struct {
		Items []struct {
			Status   string `json:"status"`
			Attempts int    `json:"attempts"`
		} `json:"items"`
	}](t, env)
	require.Len(t, deliveries.Items, 1)
	assert.Equal(t, "SUCCEEDED", deliveries.Items[0].Status)
	assert.Equal(t, 1, deliveries.Items[0].Attempts)

	// Nothing is left to deliver.
	n, err = app.dispatcher.DispatchOnce(t.Context())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIntegration_Metrics(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, _ = app.request(t, http.MethodGet, "/api/v1/pay/NOTFOUND", "", nil)

	resp, err := http.Get(app.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `http_requests_total{endpoint="/api/v1/pay/:code",method="GET",status="404"} 1`)
}
