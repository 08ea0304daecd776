// Package services defines the business logic of the verification core:
// state classification, risk assessment, trust decisions, usage tracking,
// incident recording, and advisory generation. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

var (
	// ErrEmptyCode is returned when a verification request contains a code
	// that is empty after trimming. It is the only input error that is fatal
	// to the verification pipeline.
	ErrEmptyCode = errors.New("verification code is empty")

	// ErrInvalidQRPayload is returned when a scanned QR payload cannot be
	// reduced to a code value by any of the supported encodings.
	ErrInvalidQRPayload = errors.New("qr payload does not contain a verification code")
)
