// Package handlers defines HTTP-layer error codes used across all API
// endpoints.
//
// This file centralizes symbolic error code constants that are mapped to
// HTTP responses (via the `fail()` helper in this package). These codes
// provide clients with a stable, machine-readable error taxonomy that
// supplements human-readable messages.
//
// Note that authenticity verdicts are not errors: an unregistered or
// suspicious code is a 200 response whose body carries the verdict. The
// codes below cover only infrastructure-level failures.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeNotFound     = "not_found"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeVerifyFailed     = "verify_failed"
	ErrCodeHistoryFailed    = "history_failed"
	ErrCodeInvalidQR        = "invalid_qr_payload"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
