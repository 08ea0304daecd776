// Package services – state classifier.
//
// This file implements the base authenticity classification: a pure function
// from a code record (or its absence) and batch metadata to a
// VerificationState. It performs no I/O; the caller supplies the looked-up
// record and the evaluation time, which keeps the classifier deterministic
// given store contents at call time.
package services

import (
	"strings"
	"time"

	"github.com/truescan/go-verify-backend/internal/domain"
)

// NormalizeCode trims surrounding whitespace and upper-cases a submitted
// code value. All lookups and audit rows use the normalized form; an empty
// result must be rejected by the caller before the pipeline starts.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ClassifyState maps a looked-up code record to its base authenticity state.
// Evaluation order is significant, first match wins:
//
//  1. no record                          -> UNREGISTERED_PRODUCT
//  2. record already used               -> CODE_ALREADY_USED
//  3. unused, batch expired before now  -> PRODUCT_EXPIRED
//  4. otherwise                          -> GENUINE
//
// A zero batch expiration date (batch not preloaded or not set) is treated
// as non-expiring rather than expired.
func ClassifyState(rec *domain.VerificationCode, now time.Time) domain.VerificationState {
	switch {
	case rec == nil:
		return domain.StateUnregisteredProduct
	case rec.IsUsed:
		return domain.StateCodeAlreadyUsed
	case !rec.Batch.ExpirationDate.IsZero() && rec.Batch.ExpirationDate.Before(now):
		return domain.StateProductExpired
	default:
		return domain.StateGenuine
	}
}
