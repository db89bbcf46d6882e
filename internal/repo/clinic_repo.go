package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/domain"
)

// CreateClinic inserts a clinic location.
func CreateClinic(ctx context.Context, db *gorm.DB, c *domain.ClinicLocation) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(c).Error
}

// GetClinic fetches one clinic by id, or ErrNotFound.
func GetClinic(ctx context.Context, db *gorm.DB, id string) (*domain.ClinicLocation, error) {
	var c domain.ClinicLocation
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListClinics returns clinics filtered by state and optionally LGA, both
// matched case-insensitively, ordered by name.
func ListClinics(ctx context.Context, db *gorm.DB, state, lga string, limit int) ([]domain.ClinicLocation, error) {
	q := db.WithContext(ctx).Model(&domain.ClinicLocation{})
	if state != "" {
		q = q.Where("LOWER(state) = LOWER(?)", state)
	}
	if lga != "" {
		q = q.Where("LOWER(lga) = LOWER(?)", lga)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.ClinicLocation
	err := q.Order("name asc").Find(&out).Error
	return out, err
}

// UpdateClinic applies a partial update to a clinic.
func UpdateClinic(ctx context.Context, db *gorm.DB, id string, patch map[string]any) (*domain.ClinicLocation, error) {
	if len(patch) > 0 {
		res := db.WithContext(ctx).
			Model(&domain.ClinicLocation{}).
			Where("id = ?", id).
			Updates(patch)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return GetClinic(ctx, db, id)
}

// DeleteClinic soft-deletes a clinic.
func DeleteClinic(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.ClinicLocation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
