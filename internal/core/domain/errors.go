package domain

import "errors"

// Sentinel errors raised by storage adapters and translated by services.
var (
	// ErrShortCodeTaken signals a unique violation on payment_links.short_code.
	ErrShortCodeTaken = errors.New("short code already taken")
	// ErrLockTimeout signals that a row lock or statement exceeded its time budget.
	ErrLockTimeout = errors.New("lock wait timed out")
	// ErrNotFound signals that a conditional write matched no row.
	ErrNotFound = errors.New("record not found")
)
