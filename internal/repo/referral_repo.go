package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/domain"
)

// CreateReferral inserts a referral after verifying the clinic exists.
// A missing clinic surfaces as ErrNotFound; referrals never create their
// parent implicitly.
func CreateReferral(ctx context.Context, db *gorm.DB, sessionID, clinicID string, method, notes *string) (*domain.Referral, error) {
	if _, err := GetClinic(ctx, db, clinicID); err != nil {
		return nil, err
	}
	r := &domain.Referral{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		ClinicID:  clinicID,
		Method:    method,
		Status:    "SENT",
		Notes:     notes,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// GetReferral fetches one referral with its clinic preloaded.
func GetReferral(ctx context.Context, db *gorm.DB, id string) (*domain.Referral, error) {
	var r domain.Referral
	if err := db.WithContext(ctx).Preload("Clinic").Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReferralsBySession returns a session's referrals, newest first.
func ListReferralsBySession(ctx context.Context, db *gorm.DB, sessionID string) ([]domain.Referral, error) {
	var out []domain.Referral
	err := db.WithContext(ctx).
		Preload("Clinic").
		Where("session_id = ?", sessionID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// SetReferralStatus moves a referral to a new status (SENT, VISITED,
// EXPIRED). Zero affected rows reports ErrNotFound.
func SetReferralStatus(ctx context.Context, db *gorm.DB, id, status string) error {
	res := db.WithContext(ctx).
		Model(&domain.Referral{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ExpireReferrals moves SENT referrals older than cutoff to EXPIRED and
// returns how many rows changed. Run from the janitor.
func ExpireReferrals(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Referral{}).
		Where("status = ? AND created_at < ?", "SENT", cutoff).
		Update("status", "EXPIRED")
	return res.RowsAffected, res.Error
}
