// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Incident
// model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/truescan/go-verify-backend/internal/domain"
)

// CreateIncident opens a new investigative incident in StatusOpen,
// snapshotting the state, risk score, and trust decision of the triggering
// verification. The incident ID is a randomly generated UUID, and CreatedAt
// is set to UTC.
//
// On success, it returns the persisted Incident. On failure, it returns a
// DB error; the call site treats that as non-fatal bookkeeping failure.
func CreateIncident(ctx context.Context, db *gorm.DB, codeValue string, state domain.VerificationState, riskScore float64, decision domain.TrustDecision) (*domain.Incident, error) {
	inc := &domain.Incident{
		ID:            uuid.NewString(),
		CodeValue:     codeValue,
		State:         state,
		RiskScore:     riskScore,
		TrustDecision: decision,
		Status:        domain.StatusOpen,
		CreatedAt:     time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(inc).Error; err != nil {
		return nil, err
	}
	return inc, nil
}

// CountOpenIncidents returns the number of OPEN incidents recorded for a
// code value. Used by the heuristic risk assessor and by tests; the
// regulator-facing incident workflow lives elsewhere.
func CountOpenIncidents(ctx context.Context, db *gorm.DB, codeValue string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Incident{}).
		Where("code_value = ? AND status = ?", codeValue, domain.StatusOpen).
		Count(&total).Error
	return total, err
}
