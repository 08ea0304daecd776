// Package services – HistoryService.
//
// This file implements the read side of the verification log: a paginated
// view of a user's own verification attempts. It never exposes other users'
// rows and applies the same pagination defaults as the rest of the API.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/truescan/go-verify-backend/internal/domain"
)

// HistoryStore defines the repository contract required by HistoryService.
type HistoryStore interface {
	// CountLogs returns the total number of attempts for pagination.
	CountLogs(ctx context.Context, db *gorm.DB, userID string) (int64, error)

	// ListLogsPage returns a page of the user's verification attempts.
	ListLogsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.VerificationLog, error)
}

// HistoryService serves a consumer's own verification history.
type HistoryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Store is the log repository used by this service.
	Store HistoryStore
}

// NewHistoryService constructs a HistoryService.
func NewHistoryService(db *gorm.DB, store HistoryStore) *HistoryService {
	return &HistoryService{DB: db, Store: store}
}

// ListPage returns a page of the user's verification attempts, most recent
// first. It applies defaults for invalid page/pageSize and returns the
// total count.
func (s *HistoryService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.VerificationLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Store.CountLogs(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.VerificationLog{}, 0, nil
	}

	items, err := s.Store.ListLogsPage(ctx, s.DB, userID, offset, pageSize)
	return items, total, err
}
