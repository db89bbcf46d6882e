// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Profile
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Policy: profiles are keyed by the client-held session token and follow
// upsert semantics throughout. The chatbot may send a profile write before
// any other row for the session exists, so nothing here requires a
// pre-existing parent.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/honeychat/honey-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// UpsertProfile inserts or updates the profile for sessionID, applying only
// the non-nil columns of patch. Later answers replace earlier ones for the
// same field; untouched fields keep their value.
func UpsertProfile(ctx context.Context, db *gorm.DB, sessionID string, patch map[string]any) (*domain.Profile, error) {
	if len(patch) > 0 {
		cols := make([]string, 0, len(patch))
		for k := range patch {
			cols = append(cols, k)
		}
		row := &domain.Profile{ID: uuid.NewString(), SessionID: sessionID, CreatedAt: time.Now().UTC()}
		applyPatch(row, patch)
		err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns(cols),
		}).Create(row).Error
		if err != nil {
			return nil, err
		}
	} else {
		// Bare touch: make sure the row exists.
		row := &domain.Profile{ID: uuid.NewString(), SessionID: sessionID, CreatedAt: time.Now().UTC()}
		err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoNothing: true,
		}).Create(row).Error
		if err != nil {
			return nil, err
		}
	}
	return GetProfile(ctx, db, sessionID)
}

// applyPatch copies the recognized patch columns onto row. Unknown keys are
// ignored; the service layer owns validation.
func applyPatch(row *domain.Profile, patch map[string]any) {
	strp := func(k string) *string {
		if v, ok := patch[k].(string); ok && v != "" {
			return &v
		}
		return nil
	}
	if v := strp("language"); v != nil {
		row.Language = v
	}
	if v := strp("gender"); v != nil {
		row.Gender = v
	}
	if v := strp("state"); v != nil {
		row.State = v
	}
	if v := strp("lga"); v != nil {
		row.LGA = v
	}
	if v := strp("age_group"); v != nil {
		row.AgeGroup = v
	}
	if v := strp("marital_status"); v != nil {
		row.MaritalStatus = v
	}
	if v := strp("current_fpm"); v != nil {
		row.CurrentFPM = v
	}
	if v := strp("concern_type"); v != nil {
		row.ConcernType = v
	}
	if v := strp("intent"); v != nil {
		row.Intent = v
	}
	if v, ok := patch["current_step"].(string); ok {
		row.CurrentStep = v
	}
}

// GetProfile fetches the profile for sessionID, or ErrNotFound.
func GetProfile(ctx context.Context, db *gorm.DB, sessionID string) (*domain.Profile, error) {
	var p domain.Profile
	err := db.WithContext(ctx).Where("session_id = ?", sessionID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProfiles returns all profiles ordered by creation time descending.
func ListProfiles(ctx context.Context, db *gorm.DB) ([]domain.Profile, error) {
	var out []domain.Profile
	err := db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

// DeleteProfile soft-deletes the profile for sessionID. Missing rows return
// ErrNotFound.
func DeleteProfile(ctx context.Context, db *gorm.DB, sessionID string) error {
	res := db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&domain.Profile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
