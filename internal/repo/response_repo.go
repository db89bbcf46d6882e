// Package repo – the response log.
//
// Responses are the append-only transcript. Inserts never fail on
// duplicates by design (no uniqueness constraint on the natural fields:
// re-prompts and resent batches legitimately repeat turns); queries return
// rows in creation order ascending so the transcript replays correctly.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/domain"
)

// AppendResponse inserts one transcript row. Pure insert: no upsert, no
// dedup.
func AppendResponse(ctx context.Context, db *gorm.DB, row *domain.Response) (*domain.Response, error) {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// ListResponses returns the full transcript for sessionID, oldest first.
func ListResponses(ctx context.Context, db *gorm.DB, sessionID string) ([]domain.Response, error) {
	var out []domain.Response
	err := db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// LatestResponse returns the most recent transcript row for sessionID, or
// ErrNotFound when the session has no turns yet.
func LatestResponse(ctx context.Context, db *gorm.DB, sessionID string) (*domain.Response, error) {
	var r domain.Response
	err := db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at desc").
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ResponseFilter narrows the admin listing. Zero values mean "no filter".
type ResponseFilter struct {
	SessionID string
	StepKey   string
	Category  string
	Widget    string
	IsInitial *bool
	SortDesc  bool
}

// apply composes the filter onto q.
func (f ResponseFilter) apply(q *gorm.DB) *gorm.DB {
	if f.SessionID != "" {
		q = q.Where("session_id = ?", f.SessionID)
	}
	if f.StepKey != "" {
		q = q.Where("step_key = ?", f.StepKey)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Widget != "" {
		q = q.Where("widget = ?", f.Widget)
	}
	if f.IsInitial != nil {
		q = q.Where("is_initial = ?", *f.IsInitial)
	}
	return q
}

// CountResponses returns the number of rows matching the filter.
func CountResponses(ctx context.Context, db *gorm.DB, f ResponseFilter) (int64, error) {
	var n int64
	err := f.apply(db.WithContext(ctx).Model(&domain.Response{})).Count(&n).Error
	return n, err
}

// ListResponsesPage returns one page of filtered rows for the admin view.
func ListResponsesPage(ctx context.Context, db *gorm.DB, f ResponseFilter, offset, limit int) ([]domain.Response, error) {
	order := "created_at asc"
	if f.SortDesc {
		order = "created_at desc"
	}
	var out []domain.Response
	err := f.apply(db.WithContext(ctx)).
		Order(order).
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
