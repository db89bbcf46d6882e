// Package repo – transcript ingest receipts.
//
// The widget pushes transcript batches periodically and resends overlapping
// batches after transient failures. A receipt per (session_id, batch_key)
// tuple lets the ingest endpoint detect replays and skip re-appending.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/domain"
)

// ErrDuplicate indicates a receipt already exists for the
// (session_id, batch_key) tuple.
var ErrDuplicate = errors.New("duplicate")

// GetIngestReceipt returns a non-expired receipt or ErrNotFound.
func GetIngestReceipt(ctx context.Context, db *gorm.DB, sessionID, batchKey string, now time.Time) (*domain.IngestReceipt, error) {
	if strings.TrimSpace(batchKey) == "" {
		return nil, ErrNotFound
	}
	var rec domain.IngestReceipt
	err := db.WithContext(ctx).
		Where("session_id = ? AND batch_key = ? AND expires_at > ?", sessionID, batchKey, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, err
}

// CreateIngestReceipt inserts a receipt and returns ErrDuplicate on unique
// violation, which is how a concurrent replay of the same batch loses.
func CreateIngestReceipt(ctx context.Context, db *gorm.DB, sessionID, batchKey string, turnCount int, ttl time.Duration) (*domain.IngestReceipt, error) {
	now := time.Now().UTC()
	rec := &domain.IngestReceipt{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		BatchKey:  batchKey,
		TurnCount: turnCount,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// PurgeExpiredReceipts deletes receipts past their TTL and returns how many
// rows were removed. Run from the janitor.
func PurgeExpiredReceipts(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.IngestReceipt{})
	return res.RowsAffected, res.Error
}
