package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/honeychat/honey-backend/internal/domain"
)

// RecordFpmInteraction upserts the (session, method) interaction row,
// deepening the action and detail in place. Keyed by the session token, so
// it never fails on a fresh session.
func RecordFpmInteraction(ctx context.Context, db *gorm.DB, sessionID, method, action string, detail *string) (*domain.FpmInteraction, error) {
	row := &domain.FpmInteraction{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Method:    method,
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "method"}},
			DoUpdates: clause.AssignmentColumns([]string{"action", "detail", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	var out domain.FpmInteraction
	if err := db.WithContext(ctx).
		Where("session_id = ? AND method = ?", sessionID, method).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// ListFpmInteractions returns a session's method interactions, oldest first.
func ListFpmInteractions(ctx context.Context, db *gorm.DB, sessionID string) ([]domain.FpmInteraction, error) {
	var out []domain.FpmInteraction
	err := db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// MethodEngagement is one row of the per-method engagement rollup.
type MethodEngagement struct {
	Method string `json:"method"`
	Count  int64  `json:"count"`
}

// CountFpmByMethod aggregates interactions per method across all sessions,
// most engaged method first.
func CountFpmByMethod(ctx context.Context, db *gorm.DB) ([]MethodEngagement, error) {
	var out []MethodEngagement
	err := db.WithContext(ctx).
		Model(&domain.FpmInteraction{}).
		Select("method, COUNT(*) AS count").
		Group("method").
		Order("count DESC, method ASC").
		Scan(&out).Error
	return out, err
}
