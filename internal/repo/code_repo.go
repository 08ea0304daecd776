// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// VerificationCode model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Concurrency note: the usage mutations in this file are the single place
// where the at-most-once marking guarantee is enforced. MarkCodeUsed and
// IncrementUsedCount are each one conditional UPDATE statement, never a
// read-then-write sequence, so two concurrent verifications of the same
// code value cannot both observe "unused". Callers learn the outcome from
// the reported row count and must reload the row for post-mutation truth.
//
// Error semantics:
//   - When a code is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/truescan/go-verify-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GetCodeByValue fetches a verification code by its normalized value with
// batch, product, and manufacturer associations preloaded. If the record
// does not exist, it returns ErrNotFound.
func GetCodeByValue(ctx context.Context, db *gorm.DB, codeValue string) (*domain.VerificationCode, error) {
	var rec domain.VerificationCode
	err := db.WithContext(ctx).
		Preload("Batch").
		Preload("Batch.Product").
		Preload("Batch.Product.Manufacturer").
		Preload("Manufacturer").
		Where("code_value = ?", codeValue).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetCodeByID fetches a verification code row by primary key without
// preloads. Used to reload post-mutation usage figures so responses carry
// what the store actually persisted rather than a client-derived guess.
func GetCodeByID(ctx context.Context, db *gorm.DB, id string) (*domain.VerificationCode, error) {
	var rec domain.VerificationCode
	if err := db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// MarkCodeUsed performs the at-most-once used transition as a single atomic
// conditional UPDATE:
//
//	UPDATE verification_codes
//	   SET is_used = true, used_at = now, used_count = used_count + 1,
//	       first_verified_at = COALESCE(first_verified_at, now)
//	 WHERE id = ? AND is_used = false
//
// It returns (true, nil) when this call won the transition and (false, nil)
// when the code was already used — including the case where a concurrent
// verification won the race between lookup and update.
func MarkCodeUsed(ctx context.Context, db *gorm.DB, id string, now time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.VerificationCode{}).
		Where("id = ? AND is_used = ?", id, false).
		Updates(map[string]any{
			"is_used":           true,
			"used_at":           now,
			"used_count":        gorm.Expr("used_count + 1"),
			"first_verified_at": gorm.Expr("COALESCE(first_verified_at, ?)", now),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// IncrementUsedCount bumps used_count on an already-used code, tracking
// repeat-scan pressure on a compromised code. The guard on is_used keeps the
// statement a no-op if the row was somehow reset, so is_used, used_at, and
// first_verified_at are never touched here. Returns whether a row changed.
func IncrementUsedCount(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.VerificationCode{}).
		Where("id = ? AND is_used = ?", id, true).
		Update("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
