// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// append-only VerificationLog model.
//
// Functions:
//
//   - CreateVerificationLog(ctx, db, entry) -> error
//     Inserts one audit row. Callers treat failures as non-fatal.
//
//   - CountLogs(ctx, db, userID) -> (int64, error)
//     Returns the total number of verification attempts by the user.
//
//   - ListLogsPage(ctx, db, userID, offset, limit) -> []domain.VerificationLog, error
//     Returns a paginated slice of the user's verification history,
//     most recent first.
//
// Logs are never updated or deleted by this core.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/truescan/go-verify-backend/internal/domain"
)

// CreateVerificationLog inserts one verification attempt record. The entry's
// ID and CreatedAt are assigned here (UUID, UTC). The write is expected to be
// fire-and-forget at the call site: an error is returned for logging, but
// must never abort the verification result.
func CreateVerificationLog(ctx context.Context, db *gorm.DB, entry *domain.VerificationLog) error {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(entry).Error
}

// CountLogs returns the total number of verification attempts recorded for
// userID. On DB error, it returns the error.
func CountLogs(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.VerificationLog{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListLogsPage returns a paginated slice of verification attempts for
// userID, ordered by creation time descending. Use CountLogs to obtain the
// total for pagination metadata.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListLogsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.VerificationLog, error) {
	var out []domain.VerificationLog
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
