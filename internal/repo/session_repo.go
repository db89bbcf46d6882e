// Package repo – session persistence.
//
// Two distinct concerns live here. SessionState is the resume snapshot: an
// opaque serialized blob upserted last-writer-wins by session token.
// ChatSession is the analytics row describing one conversation run. The
// snapshot requires no parent row (upsert-by-natural-key); analytics rows
// are created explicitly and addressed by their generated id.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/honeychat/honey-backend/internal/domain"
)

// SaveState upserts the serialized conversation snapshot for sessionID.
// Last writer wins: there is no version token, so concurrent saves from two
// tabs sharing a session silently clobber each other (documented limitation).
func SaveState(ctx context.Context, db *gorm.DB, sessionID, blob string, lastActivity time.Time) error {
	row := &domain.SessionState{
		SessionID:    sessionID,
		State:        blob,
		LastActivity: lastActivity.UTC(),
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"chat_state", "last_activity", "updated_at"}),
	}).Create(row).Error
}

// LoadState returns the most recently saved snapshot verbatim, or
// ErrNotFound. Validation of the embedded step is the caller's concern.
func LoadState(ctx context.Context, db *gorm.DB, sessionID string) (*domain.SessionState, error) {
	var s domain.SessionState
	err := db.WithContext(ctx).Where("session_id = ?", sessionID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteState removes the snapshot for sessionID (explicit cleanup only).
func DeleteState(ctx context.Context, db *gorm.DB, sessionID string) error {
	res := db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&domain.SessionState{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountStaleStates counts snapshots whose last activity predates cutoff.
// Staleness is a reporting figure; snapshots are never evicted by age.
func CountStaleStates(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.SessionState{}).
		Where("last_activity < ?", cutoff.UTC()).
		Count(&n).Error
	return n, err
}

// CreateChatSession inserts one analytics row for a conversation run.
func CreateChatSession(ctx context.Context, db *gorm.DB, row *domain.ChatSession) (*domain.ChatSession, error) {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.StartTime.IsZero() {
		row.StartTime = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// ListChatSessions returns all runs for sessionID, newest first.
func ListChatSessions(ctx context.Context, db *gorm.DB, sessionID string) ([]domain.ChatSession, error) {
	var out []domain.ChatSession
	err := db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// UpdateChatSessionsBySession applies updates to every run recorded for
// sessionID and returns the affected count; zero rows is ErrNotFound,
// matching lookup semantics elsewhere.
func UpdateChatSessionsBySession(ctx context.Context, db *gorm.DB, sessionID string, updates map[string]any) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.ChatSession{}).
		Where("session_id = ?", sessionID).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return res.RowsAffected, nil
}
