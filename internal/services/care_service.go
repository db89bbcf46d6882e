// Package services – CareService
//
// This file implements the CareService: clinic locations, referrals, and
// per-method engagement records. Clinic lookups are filtered by the state
// and LGA collected earlier in the flow.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/domain"
)

// CareRepo defines the repository contract required by CareService.
type CareRepo interface {
	CreateClinic(ctx context.Context, db *gorm.DB, c *domain.ClinicLocation) error
	GetClinic(ctx context.Context, db *gorm.DB, id string) (*domain.ClinicLocation, error)
	ListClinics(ctx context.Context, db *gorm.DB, state, lga string, limit int) ([]domain.ClinicLocation, error)
	UpdateClinic(ctx context.Context, db *gorm.DB, id string, patch map[string]any) (*domain.ClinicLocation, error)
	DeleteClinic(ctx context.Context, db *gorm.DB, id string) error

	CreateReferral(ctx context.Context, db *gorm.DB, sessionID, clinicID string, method, notes *string) (*domain.Referral, error)
	GetReferral(ctx context.Context, db *gorm.DB, id string) (*domain.Referral, error)
	ListReferralsBySession(ctx context.Context, db *gorm.DB, sessionID string) ([]domain.Referral, error)
	SetReferralStatus(ctx context.Context, db *gorm.DB, id, status string) error

	RecordFpmInteraction(ctx context.Context, db *gorm.DB, sessionID, method, action string, detail *string) (*domain.FpmInteraction, error)
	ListFpmInteractions(ctx context.Context, db *gorm.DB, sessionID string) ([]domain.FpmInteraction, error)
}

// CareService manages clinics, referrals, and method engagement.
type CareService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the care repository used by this service.
	Repo CareRepo

	// ClinicListLimit caps the clinics returned per lookup.
	ClinicListLimit int
}

// NewCareService constructs a CareService with a sane list cap.
func NewCareService(db *gorm.DB, r CareRepo) *CareService {
	return &CareService{DB: db, Repo: r, ClinicListLimit: 25}
}

// fpmActions is the closed set of recognized interaction kinds.
var fpmActions = map[string]struct{}{
	"viewed": {}, "concern": {}, "selected": {}, "switched": {}, "stopped": {},
}

// CreateClinic registers a clinic location.
func (s *CareService) CreateClinic(ctx context.Context, c *domain.ClinicLocation) error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.State) == "" {
		return ErrClinicNotFound
	}
	return s.Repo.CreateClinic(ctx, s.DB, c)
}

// GetClinic returns one clinic, or ErrClinicNotFound.
func (s *CareService) GetClinic(ctx context.Context, id string) (*domain.ClinicLocation, error) {
	c, err := s.Repo.GetClinic(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClinicNotFound
	}
	return c, err
}

// FindClinics returns the clinics in a state, optionally narrowed to an LGA.
func (s *CareService) FindClinics(ctx context.Context, state, lga string) ([]domain.ClinicLocation, error) {
	return s.Repo.ListClinics(ctx, s.DB, strings.TrimSpace(state), strings.TrimSpace(lga), s.ClinicListLimit)
}

// UpdateClinic applies a partial clinic update.
func (s *CareService) UpdateClinic(ctx context.Context, id string, patch map[string]any) (*domain.ClinicLocation, error) {
	c, err := s.Repo.UpdateClinic(ctx, s.DB, id, patch)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClinicNotFound
	}
	return c, err
}

// DeleteClinic removes a clinic.
func (s *CareService) DeleteClinic(ctx context.Context, id string) error {
	err := s.Repo.DeleteClinic(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrClinicNotFound
	}
	return err
}

// Refer creates a referral from a session to an existing clinic. A missing
// clinic reports ErrClinicNotFound; referrals never create their parent.
func (s *CareService) Refer(ctx context.Context, sessionID, clinicID string, method, notes *string) (*domain.Referral, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionNotFound
	}
	r, err := s.Repo.CreateReferral(ctx, s.DB, sessionID, clinicID, method, notes)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClinicNotFound
	}
	return r, err
}

// GetReferral returns one referral, or ErrReferralNotFound.
func (s *CareService) GetReferral(ctx context.Context, id string) (*domain.Referral, error) {
	r, err := s.Repo.GetReferral(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReferralNotFound
	}
	return r, err
}

// Referrals returns a session's referrals, newest first.
func (s *CareService) Referrals(ctx context.Context, sessionID string) ([]domain.Referral, error) {
	return s.Repo.ListReferralsBySession(ctx, s.DB, sessionID)
}

// MarkReferral moves a referral to VISITED or EXPIRED.
func (s *CareService) MarkReferral(ctx context.Context, id, status string) error {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status != "SENT" && status != "VISITED" && status != "EXPIRED" {
		return ErrReferralNotFound
	}
	err := s.Repo.SetReferralStatus(ctx, s.DB, id, status)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrReferralNotFound
	}
	return err
}

// RecordMethod upserts a session's engagement with one family planning
// method. Unknown actions are dropped silently so new client verbs do not
// break old servers.
func (s *CareService) RecordMethod(ctx context.Context, sessionID, method, action string, detail *string) (*domain.FpmInteraction, error) {
	if strings.TrimSpace(sessionID) == "" || strings.TrimSpace(method) == "" {
		return nil, ErrSessionNotFound
	}
	action = strings.ToLower(strings.TrimSpace(action))
	if _, ok := fpmActions[action]; !ok {
		action = "viewed"
	}
	return s.Repo.RecordFpmInteraction(ctx, s.DB, sessionID, method, action, detail)
}

// MethodHistory returns a session's method interactions, oldest first.
func (s *CareService) MethodHistory(ctx context.Context, sessionID string) ([]domain.FpmInteraction, error) {
	return s.Repo.ListFpmInteractions(ctx, s.DB, sessionID)
}
