// Package services – ProfileService
//
// Profiles are keyed by the client-held session token and follow upsert
// semantics: partial writes merge into the existing row, and a write for an
// unseen token creates the row. Later answers replace earlier ones for the
// same field.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/domain"
)

// ProfileRepo defines the repository contract required by ProfileService.
type ProfileRepo interface {
	UpsertProfile(ctx context.Context, db *gorm.DB, sessionID string, patch map[string]any) (*domain.Profile, error)
	GetProfile(ctx context.Context, db *gorm.DB, sessionID string) (*domain.Profile, error)
	ListProfiles(ctx context.Context, db *gorm.DB) ([]domain.Profile, error)
	DeleteProfile(ctx context.Context, db *gorm.DB, sessionID string) error
}

// ProfileService manages visitor profiles.
type ProfileService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the profile repository used by this service.
	Repo ProfileRepo
}

// NewProfileService constructs a ProfileService.
func NewProfileService(db *gorm.DB, r ProfileRepo) *ProfileService {
	return &ProfileService{DB: db, Repo: r}
}

// profileFields is the closed set of patchable profile columns.
var profileFields = map[string]struct{}{
	"language": {}, "gender": {}, "state": {}, "lga": {}, "age_group": {},
	"marital_status": {}, "current_fpm": {}, "concern_type": {}, "intent": {},
	"current_step": {},
}

// Upsert merges a partial profile write for sessionID. Unknown keys are
// dropped so the endpoint tolerates newer clients.
func (s *ProfileService) Upsert(ctx context.Context, sessionID string, patch map[string]any) (*domain.Profile, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionNotFound
	}
	filtered := make(map[string]any, len(patch))
	for k, v := range patch {
		if _, ok := profileFields[k]; ok {
			filtered[k] = v
		}
	}
	return s.Repo.UpsertProfile(ctx, s.DB, sessionID, filtered)
}

// Get returns the profile for a session token, or ErrProfileNotFound.
func (s *ProfileService) Get(ctx context.Context, sessionID string) (*domain.Profile, error) {
	p, err := s.Repo.GetProfile(ctx, s.DB, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

// List returns all profiles, newest first.
func (s *ProfileService) List(ctx context.Context) ([]domain.Profile, error) {
	return s.Repo.ListProfiles(ctx, s.DB)
}

// Delete removes the profile for a session token.
func (s *ProfileService) Delete(ctx context.Context, sessionID string) error {
	err := s.Repo.DeleteProfile(ctx, s.DB, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProfileNotFound
	}
	return err
}
