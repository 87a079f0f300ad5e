package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// HMACSignatureService implements ports.SignatureService using HMAC-SHA256.
type HMACSignatureService struct{}

// NewHMACSignatureService creates a new HMAC-SHA256 signature service.
func NewHMACSignatureService() *HMACSignatureService {
	return &HMACSignatureService{}
}

// Sign returns lowercase hex HMAC-SHA256 of payload under secretKey.
func (s *HMACSignatureService) Sign(secretKey string, payload string) string {
	return signHex(secretKey, payload)
}

// Verify compares in constant time.
func (s *HMACSignatureService) Verify(secretKey string, payload string, signature string) bool {
	return hmac.Equal([]byte(signHex(secretKey, payload)), []byte(signature))
}

// BuildCanonicalString constructs the canonical payload for signing
// monitor callbacks. Format: METHOD|PATH|TIMESTAMP|NONCE|BODY
func (s *HMACSignatureService) BuildCanonicalString(method, path string, timestamp int64, nonce string, body string) string {
	return fmt.Sprintf("%s|%s|%d|%s|%s", method, path, timestamp, nonce, body)
}

// SignWebhook signs a webhook body as receivers verify it:
// hex(HMAC-SHA256(secret, payload + "|" + timestamp)).
func SignWebhook(payload []byte, timestamp int64, secret string) string {
	return signHex(secret, webhookMessage(payload, timestamp))
}

// VerifyWebhookSignature reports whether signature matches SignWebhook.
func VerifyWebhookSignature(payload []byte, timestamp int64, secret, signature string) bool {
	return hmac.Equal([]byte(SignWebhook(payload, timestamp, secret)), []byte(signature))
}

func webhookMessage(payload []byte, timestamp int64) string {
	return string(payload) + "|" + strconv.FormatInt(timestamp, 10)
}

func signHex(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}
