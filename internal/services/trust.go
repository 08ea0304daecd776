// Package services – trust decision engine.
//
// This file implements the pure (state, riskScore) -> TrustDecision mapping
// as an ordered rule list, plus the display-level risk bucket.
//
// Scale contract: every risk score inside this service operates on a single
// 0-100 scale. The risk assessor boundary clamps scores into that range
// (ClampRiskScore), and the decision thresholds below live on the same scale
// as the RiskLevel display buckets. A test guards against the two drifting
// apart.
package services

import "github.com/truescan/go-verify-backend/internal/domain"

// Decision thresholds on the 0-100 risk scale.
const (
	// TrustRiskUnsafe is the score at or above which an unregistered
	// product is condemned outright instead of referred to a pharmacist.
	TrustRiskUnsafe = 60.0

	// TrustRiskSafe is the score below which a genuine code is declared
	// safe to use; at or above it the holder is referred to a pharmacist.
	TrustRiskSafe = 30.0
)

// Display bucket boundaries on the same 0-100 scale.
const (
	RiskBucketVeryHigh = 70.0
	RiskBucketHigh     = 50.0
	RiskBucketMedium   = 30.0
)

// ClampRiskScore bounds a risk score into [0, 100]. It is applied at the
// risk assessor boundary so that no other component ever sees an
// out-of-range or differently-scaled value.
func ClampRiskScore(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}

// DecideTrust maps an authenticity state and a 0-100 risk score to a
// recommendation. Rules are evaluated in order, first match wins, and the
// order is load-bearing: a suspicious pattern pre-empts everything else
// even at risk score zero.
//
//  1. SUSPICIOUS_PATTERN                 -> REPORT_TO_NAFDAC
//  2. CODE_ALREADY_USED                  -> DO_NOT_USE
//  3. UNREGISTERED_PRODUCT, score >= 60  -> DO_NOT_USE
//     UNREGISTERED_PRODUCT, score <  60  -> VERIFY_WITH_PHARMACIST
//  4. INVALID_CODE                       -> DO_NOT_USE
//  5. GENUINE, score < 30                -> SAFE_TO_USE
//  6. fallback (GENUINE at elevated risk, PRODUCT_EXPIRED, anything else)
//     -> VERIFY_WITH_PHARMACIST
func DecideTrust(state domain.VerificationState, riskScore float64) domain.TrustDecision {
	switch {
	case state == domain.StateSuspiciousPattern:
		return domain.DecisionReportToNAFDAC
	case state == domain.StateCodeAlreadyUsed:
		return domain.DecisionDoNotUse
	case state == domain.StateUnregisteredProduct && riskScore >= TrustRiskUnsafe:
		return domain.DecisionDoNotUse
	case state == domain.StateUnregisteredProduct:
		return domain.DecisionVerifyWithPharmacist
	case state == domain.StateInvalidCode:
		return domain.DecisionDoNotUse
	case state == domain.StateGenuine && riskScore < TrustRiskSafe:
		return domain.DecisionSafeToUse
	default:
		return domain.DecisionVerifyWithPharmacist
	}
}

// ShouldOpenIncident reports whether a verification outcome warrants an
// investigative incident. The trust decision is the single authoritative
// predicate: condemned outcomes (DO_NOT_USE) and regulator referrals
// (REPORT_TO_NAFDAC) open incidents, nothing else does.
func ShouldOpenIncident(decision domain.TrustDecision) bool {
	return decision == domain.DecisionReportToNAFDAC || decision == domain.DecisionDoNotUse
}

// RiskLevelFor buckets a 0-100 risk score for display:
// >=70 VERY HIGH, >=50 HIGH, >=30 MEDIUM, else LOW.
func RiskLevelFor(score float64) domain.RiskLevel {
	switch {
	case score >= RiskBucketVeryHigh:
		return domain.RiskLevelVeryHigh
	case score >= RiskBucketHigh:
		return domain.RiskLevelHigh
	case score >= RiskBucketMedium:
		return domain.RiskLevelMedium
	default:
		return domain.RiskLevelLow
	}
}
