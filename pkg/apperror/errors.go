package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another *AppError by code so callers can write
// errors.Is(err, apperror.ErrLinkExpired()).
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// CodeOf returns the error code of err, or "" if err is not an AppError.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// ---- Security & Authentication (SEC) ----

func ErrInvalidSignature() *AppError {
	return New("SEC_002", "Invalid signature", http.StatusUnauthorized)
}

func ErrTimestampExpired() *AppError {
	return New("SEC_003", "Request timestamp expired", http.StatusForbidden)
}

func ErrNonceUsed() *AppError {
	return New("SEC_004", "Nonce has already been used", http.StatusForbidden)
}

// ---- Payments (PAY) ----

func ErrInvalidAmount() *AppError {
	return New("PAY_002", "Invalid amount", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("PAY_004", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrInvalidSessionTransition(from, to string) *AppError {
	return New("PAY_008", fmt.Sprintf("Payment cannot move from %s to %s", from, to), http.StatusConflict)
}

// ---- Payment links (LINK) ----

func ErrLinkInactive() *AppError {
	return New("LINK_001", "Payment link is inactive", http.StatusBadRequest)
}

func ErrLinkExpired() *AppError {
	return New("LINK_002", "Payment link has expired", http.StatusBadRequest)
}

func ErrLinkMaxUsageReached() *AppError {
	return New("LINK_003", "Payment link has reached its usage limit", http.StatusBadRequest)
}

func ErrShortCodeGenerationFailed(err error) *AppError {
	return Wrap("LINK_004", "Could not allocate a unique short code", http.StatusInternalServerError, err)
}

// ---- Refunds (REF) ----

func ErrInvalidRefundStatus(status string) *AppError {
	return New("REF_001", fmt.Sprintf("Refund in status %s cannot be changed this way", status), http.StatusBadRequest)
}

func ErrRefundAlreadyCompleted() *AppError {
	return New("REF_002", "Refund is already completed", http.StatusConflict)
}

func ErrRefundAmountExceedsPayment() *AppError {
	return New("REF_003", "Refund amount exceeds the refundable balance of the payment", http.StatusBadRequest)
}

func ErrPaymentNotRefundable() *AppError {
	return New("REF_004", "Payment is not in a refundable state", http.StatusBadRequest)
}

func ErrRefundTxHashMismatch() *AppError {
	return New("REF_005", "Transaction hash does not match the broadcast refund transaction", http.StatusBadRequest)
}

// ---- Blockchain (CHAIN) ----

func ErrUnsupportedNetwork(network string) *AppError {
	return New("CHAIN_001", fmt.Sprintf("Unsupported network: %s", network), http.StatusBadRequest)
}

func ErrOracleUnavailable(err error) *AppError {
	return Wrap("CHAIN_002", "Confirmation oracle unavailable", http.StatusBadGateway, err)
}

// ---- Teams (TEAM) ----

func ErrAlreadyAMember() *AppError {
	return New("TEAM_001", "User is already a member", http.StatusConflict)
}

// ---- Webhooks (HOOK) ----

func ErrInvalidWebhookURL(reason string) *AppError {
	return New("HOOK_001", fmt.Sprintf("Webhook URL rejected: %s", reason), http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Idempotency (IDEM) ----

func ErrIdempotencyInProgress() *AppError {
	return New("IDEM_001", "A request with this idempotency key is still being processed", http.StatusConflict)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_002", "Lock acquisition timeout", http.StatusServiceUnavailable, err)
}

func ErrPayloadTooLarge() *AppError {
	return New("SYS_004", "Request body too large", http.StatusRequestEntityTooLarge)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a PAY_002-style validation error.
func Validation(message string) *AppError {
	return New("PAY_002", message, http.StatusBadRequest)
}
