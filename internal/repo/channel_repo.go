package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/domain"
)

// CreateChannel inserts a channel. Names are unique; a duplicate surfaces
// as the driver's constraint error.
func CreateChannel(ctx context.Context, db *gorm.DB, name, kind string) (*domain.Channel, error) {
	c := &domain.Channel{
		ID:        uuid.NewString(),
		Name:      name,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetChannelByName fetches one channel by its unique name, or ErrNotFound.
func GetChannelByName(ctx context.Context, db *gorm.DB, name string) (*domain.Channel, error) {
	var c domain.Channel
	if err := db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChannels returns all channels ordered by name.
func ListChannels(ctx context.Context, db *gorm.DB) ([]domain.Channel, error) {
	var out []domain.Channel
	err := db.WithContext(ctx).Order("name asc").Find(&out).Error
	return out, err
}

// DeleteChannel soft-deletes a channel.
func DeleteChannel(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Channel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
