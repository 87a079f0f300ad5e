package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHMACSignatureService_KnownVector(t *testing.T) {
	svc := NewHMACSignatureService()
	assert.Equal(t,
		"f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8",
		svc.Sign("key", "The quick brown fox jumps over the lazy dog"))
}

func TestHMACSignatureService_Verify(t *testing.T) {
	svc := NewHMACSignatureService()
	payload := svc.BuildCanonicalString("POST", "/internal/v1/payments/abc/status", 1708092000, "n-1", `{"status":"COMPLETED"}`)
	sig := svc.Sign("monitor-secret", payload)

	assert.Regexp(t, `^[0-9a-f]{64}$`, sig)
	assert.True(t, svc.Verify("monitor-secret", payload, sig))
	assert.False(t, svc.Verify("other-secret", payload, sig))
	assert.False(t, svc.Verify("monitor-secret", payload+"x", sig))
	assert.False(t, svc.Verify("monitor-secret", payload, "deadbeef"))
}

func TestHMACSignatureService_BuildCanonicalString(t *testing.T) {
	svc := NewHMACSignatureService()
	got := svc.BuildCanonicalString("POST", "/internal/v1/refunds/1/finality", 1708092000, "abc", `{"x":1}`)
	assert.Equal(t, `POST|/internal/v1/refunds/1/finality|1708092000|abc|{"x":1}`, got)
}

func TestSignWebhook(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"refund.completed"}`)

	sig := SignWebhook(payload, 1708092000, "whsec_abc")
	assert.Equal(t, NewHMACSignatureService().Sign("whsec_abc", string(payload)+"|1708092000"), sig)

	assert.True(t, VerifyWebhookSignature(payload, 1708092000, "whsec_abc", sig))
	assert.False(t, VerifyWebhookSignature(payload, 1708092001, "whsec_abc", sig), "timestamp is covered")
	assert.False(t, VerifyWebhookSignature([]byte(`{}`), 1708092000, "whsec_abc", sig), "body is covered")
	assert.False(t, VerifyWebhookSignature(payload, 1708092000, "whsec_other", sig))
}
