package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("LINK_001", "Payment link is inactive", http.StatusBadRequest),
			expected: "[LINK_001] Payment link is inactive",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("redeem: %w", ErrLinkExpired())

	assert.True(t, errors.Is(err, ErrLinkExpired()))
	assert.False(t, errors.Is(err, ErrLinkInactive()))
	assert.Equal(t, "LINK_002", CodeOf(err))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
}

func TestDomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"NotFound", ErrNotFound("Refund"), "PAY_004", 404},
		{"LinkInactive", ErrLinkInactive(), "LINK_001", 400},
		{"LinkExpired", ErrLinkExpired(), "LINK_002", 400},
		{"LinkMaxUsage", ErrLinkMaxUsageReached(), "LINK_003", 400},
		{"ShortCode", ErrShortCodeGenerationFailed(nil), "LINK_004", 500},
		{"InvalidRefundStatus", ErrInvalidRefundStatus("PENDING"), "REF_001", 400},
		{"RefundAlreadyCompleted", ErrRefundAlreadyCompleted(), "REF_002", 409},
		{"RefundExceeds", ErrRefundAmountExceedsPayment(), "REF_003", 400},
		{"PaymentNotRefundable", ErrPaymentNotRefundable(), "REF_004", 400},
		{"RefundTxHashMismatch", ErrRefundTxHashMismatch(), "REF_005", 400},
		{"UnsupportedNetwork", ErrUnsupportedNetwork("dogecoin"), "CHAIN_001", 400},
		{"AlreadyAMember", ErrAlreadyAMember(), "TEAM_001", 409},
		{"IdempotencyInProgress", ErrIdempotencyInProgress(), "IDEM_001", 409},
		{"LockTimeout", ErrLockTimeout(nil), "SYS_002", 503},
		{"PayloadTooLarge", ErrPayloadTooLarge(), "SYS_004", 413},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestErrNotFound_Message(t *testing.T) {
	assert.Equal(t, "Payment link not found", ErrNotFound("Payment link").Message)
}
