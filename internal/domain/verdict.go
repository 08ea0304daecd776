// Verdict enumerations shared across the verification pipeline.
//
// All enumerations are string-typed so they serialize naturally in JSON
// responses and persist as readable values in SQLite.
package domain

// VerificationState is the authenticity classification of a submitted code.
// The base state is derived purely from store data; the risk assessor may
// escalate it to StateSuspiciousPattern.
type VerificationState string

const (
	StateGenuine             VerificationState = "GENUINE"
	StateCodeAlreadyUsed     VerificationState = "CODE_ALREADY_USED"
	StateProductExpired      VerificationState = "PRODUCT_EXPIRED"
	StateUnregisteredProduct VerificationState = "UNREGISTERED_PRODUCT"
	StateSuspiciousPattern   VerificationState = "SUSPICIOUS_PATTERN"
	StateInvalidCode         VerificationState = "INVALID_CODE"
)

// TrustDecision is the four-way recommendation derived from state and risk
// score by the trust engine. It is computed per request, never stored on the
// code record itself (incidents snapshot it).
type TrustDecision string

const (
	DecisionSafeToUse            TrustDecision = "SAFE_TO_USE"
	DecisionVerifyWithPharmacist TrustDecision = "VERIFY_WITH_PHARMACIST"
	DecisionDoNotUse             TrustDecision = "DO_NOT_USE"
	DecisionReportToNAFDAC       TrustDecision = "REPORT_TO_NAFDAC"
)

// RiskLevel is a display bucket derived from the 0-100 risk score. It is
// presentation-only and carries no decision weight.
type RiskLevel string

const (
	RiskLevelVeryHigh RiskLevel = "VERY HIGH"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelLow      RiskLevel = "LOW"
)

// IncidentStatus is the lifecycle state of an investigative incident.
// This core only ever creates incidents in StatusOpen.
type IncidentStatus string

const (
	StatusOpen     IncidentStatus = "OPEN"
	StatusResolved IncidentStatus = "RESOLVED"
)
