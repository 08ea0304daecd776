package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/truescan/go-verify-backend/internal/domain"
)

func newVerifyRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("verify_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

// seedCatalog inserts one manufacturer -> product -> batch chain plus a code
// row, returning the code.
func seedCatalog(t *testing.T, db *gorm.DB, codeValue string, isUsed bool, expiry time.Time) *domain.VerificationCode {
	t.Helper()

	mf := domain.Manufacturer{ID: "mf1", Name: "Lumora Pharma", Country: "NG"}
	if err := db.FirstOrCreate(&mf, "id = ?", mf.ID).Error; err != nil {
		t.Fatalf("seed manufacturer: %v", err)
	}
	pr := domain.Product{ID: "pr1", ManufacturerID: mf.ID, Name: "Lumorex 500mg", Category: "Pharmaceutical", Description: "Antimalarial tablets"}
	if err := db.FirstOrCreate(&pr, "id = ?", pr.ID).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	ba := domain.Batch{ID: "ba1", ProductID: pr.ID, BatchNumber: "B-2025-01", ExpirationDate: expiry, Quantity: 1000}
	if err := db.FirstOrCreate(&ba, "id = ?", ba.ID).Error; err != nil {
		t.Fatalf("seed batch: %v", err)
	}
	code := domain.VerificationCode{
		ID:             "code-" + codeValue,
		CodeValue:      codeValue,
		BatchID:        ba.ID,
		ManufacturerID: mf.ID,
		IsUsed:         isUsed,
	}
	if isUsed {
		now := time.Now().UTC()
		code.UsedCount = 1
		code.UsedAt = &now
		code.FirstVerifiedAt = &now
	}
	if err := db.Create(&code).Error; err != nil {
		t.Fatalf("seed code: %v", err)
	}
	return &code
}

func allVerifyModels() []any {
	return []any{
		&domain.Manufacturer{}, &domain.Product{}, &domain.Batch{},
		&domain.VerificationCode{}, &domain.VerificationLog{}, &domain.Incident{},
	}
}

func TestGetCodeByValue_NotFound(t *testing.T) {
	db := newVerifyRepoDB(t, allVerifyModels()...)

	_, err := GetCodeByValue(context.Background(), db, "NOPE")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetCodeByValue_PreloadsCatalogChain(t *testing.T) {
	db := newVerifyRepoDB(t, allVerifyModels()...)
	seedCatalog(t, db, "LUM-AAA1", false, time.Now().Add(365*24*time.Hour))

	rec, err := GetCodeByValue(context.Background(), db, "LUM-AAA1")
	if err != nil {
		t.Fatalf("GetCodeByValue: %v", err)
	}
	if rec.CodeValue != "LUM-AAA1" || rec.IsUsed {
		t.Fatalf("unexpected code row: %+v", rec)
	}
	if rec.Batch.BatchNumber != "B-2025-01" {
		t.Fatalf("batch not preloaded: %+v", rec.Batch)
	}
	if rec.Batch.Product.Name != "Lumorex 500mg" {
		t.Fatalf("product not preloaded: %+v", rec.Batch.Product)
	}
	if rec.Batch.Product.Manufacturer.Name != "Lumora Pharma" {
		t.Fatalf("manufacturer not preloaded: %+v", rec.Batch.Product.Manufacturer)
	}
}

func TestGetCodeByID_FoundAndNotFound(t *testing.T) {
	db := newVerifyRepoDB(t, allVerifyModels()...)
	code := seedCatalog(t, db, "LUM-AAA2", false, time.Now().Add(time.Hour))

	got, err := GetCodeByID(context.Background(), db, code.ID)
	if err != nil {
		t.Fatalf("GetCodeByID: %v", err)
	}
	if got.CodeValue != "LUM-AAA2" {
		t.Fatalf("unexpected row: %+v", got)
	}

	if _, err := GetCodeByID(context.Background(), db, "missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestMarkCodeUsed_WinsOnce_ThenReportsLoss(t *testing.T) {
	db := newVerifyRepoDB(t, allVerifyModels()...)
	code := seedCatalog(t, db, "LUM-AAA3", false, time.Now().Add(time.Hour))

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	won, err := MarkCodeUsed(context.Background(), db, code.ID, now)
	if err != nil {
		t.Fatalf("MarkCodeUsed: %v", err)
	}
	if !won {
		t.Fatalf("first transition should win")
	}

	var got domain.VerificationCode
	if err := db.First(&got, "id = ?", code.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !got.IsUsed || got.UsedCount != 1 {
		t.Fatalf("unexpected usage fields after win: %+v", got)
	}
	if got.UsedAt == nil || !got.UsedAt.Equal(now) {
		t.Fatalf("used_at not set to winning time: %v", got.UsedAt)
	}
	if got.FirstVerifiedAt == nil || !got.FirstVerifiedAt.Equal(now) {
		t.Fatalf("first_verified_at not set to winning time: %v", got.FirstVerifiedAt)
	}

	// Second attempt must lose without mutating the row.
	later := now.Add(time.Minute)
	won2, err := MarkCodeUsed(context.Background(), db, code.ID, later)
	if err != nil {
		t.Fatalf("MarkCodeUsed (second): %v", err)
	}
	if won2 {
		t.Fatalf("second transition must lose")
	}
	var again domain.VerificationCode
	if err := db.First(&again, "id = ?", code.ID).Error; err != nil {
		t.Fatalf("reload after loss: %v", err)
	}
	if again.UsedCount != 1 || !again.UsedAt.Equal(now) || !again.FirstVerifiedAt.Equal(now) {
		t.Fatalf("losing attempt mutated the row: %+v", again)
	}
}

func TestMarkCodeUsed_FirstVerifiedAtIsNeverOverwritten(t *testing.T) {
	db := newVerifyRepoDB(t, allVerifyModels()...)
	code := seedCatalog(t, db, "LUM-AAA4", false, time.Now().Add(time.Hour))

	first := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	preset := first.Add(-24 * time.Hour)

	// Pre-existing first_verified_at (e.g. a non-genuine earlier scan path)
	// must survive COALESCE.
	if err := db.Model(&domain.VerificationCode{}).
		Where("id = ?", code.ID).
		Update("first_verified_at", preset).Error; err != nil {
		t.Fatalf("preset first_verified_at: %v", err)
	}

	if _, err := MarkCodeUsed(context.Background(), db, code.ID, first); err != nil {
		t.Fatalf("MarkCodeUsed: %v", err)
	}

	var got domain.VerificationCode
	if err := db.First(&got, "id = ?", code.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.FirstVerifiedAt == nil || !got.FirstVerifiedAt.Equal(preset) {
		t.Fatalf("first_verified_at overwritten: want %v got %v", preset, got.FirstVerifiedAt)
	}
}

func TestIncrementUsedCount_OnlyTouchesUsedRows(t *testing.T) {
	db := newVerifyRepoDB(t, allVerifyModels()...)
	used := seedCatalog(t, db, "LUM-USED", true, time.Now().Add(time.Hour))

	bumped, err := IncrementUsedCount(context.Background(), db, used.ID)
	if err != nil {
		t.Fatalf("IncrementUsedCount: %v", err)
	}
	if !bumped {
		t.Fatalf("expected a row change on used code")
	}
	var got domain.VerificationCode
	if err := db.First(&got, "id = ?", used.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.UsedCount != 2 {
		t.Fatalf("expected used_count=2, got %d", got.UsedCount)
	}

	// Unused rows are guarded out.
	fresh := domain.VerificationCode{ID: "fresh", CodeValue: "LUM-FRESH", BatchID: "ba1", ManufacturerID: "mf1"}
	if err := db.Create(&fresh).Error; err != nil {
		t.Fatalf("seed fresh: %v", err)
	}
	bumped, err = IncrementUsedCount(context.Background(), db, fresh.ID)
	if err != nil {
		t.Fatalf("IncrementUsedCount (unused): %v", err)
	}
	if bumped {
		t.Fatalf("increment must be a no-op on unused code")
	}
}

func TestMarkCodeUsed_Error_NoTable(t *testing.T) {
	db := newVerifyRepoDB(t /* no migrations */)
	if _, err := MarkCodeUsed(context.Background(), db, "x", time.Now()); err == nil {
		t.Fatalf("expected error when table missing")
	}
}
