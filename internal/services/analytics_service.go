// Package services – AnalyticsService
//
// Read-only rollups for the admin dashboard: session summaries, the per-step
// drop-off funnel, method engagement, and the escalation pipeline.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/repo"
)

// AnalyticsRepo defines the repository contract required by
// AnalyticsService.
type AnalyticsRepo interface {
	SummarizeSessions(ctx context.Context, db *gorm.DB, since time.Time) (*repo.SessionSummary, error)
	StepFunnel(ctx context.Context, db *gorm.DB) ([]repo.FunnelRow, error)
	CountFpmByMethod(ctx context.Context, db *gorm.DB) ([]repo.MethodEngagement, error)
	SummarizeEscalations(ctx context.Context, db *gorm.DB) (*repo.EscalationStats, error)
	CountStaleStates(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error)
}

// AnalyticsService serves dashboard rollups.
type AnalyticsService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the analytics repository used by this service.
	Repo AnalyticsRepo
	// StaleAfter is the idle age past which a saved session state counts as
	// stale on the dashboard. Zero disables the figure.
	StaleAfter time.Duration
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(db *gorm.DB, r AnalyticsRepo) *AnalyticsService {
	return &AnalyticsService{DB: db, Repo: r}
}

// Overview bundles the dashboard's headline numbers.
type Overview struct {
	Sessions    *repo.SessionSummary    `json:"sessions"`
	Escalations *repo.EscalationStats   `json:"escalations"`
	Funnel      []repo.FunnelRow        `json:"funnel"`
	Methods     []repo.MethodEngagement `json:"methods"`
	// StaleSessions counts saved states idle longer than the configured
	// threshold.
	StaleSessions int64 `json:"stale_sessions"`
}

// Summary aggregates sessions recorded since the given time; zero means all
// time.
func (s *AnalyticsService) Summary(ctx context.Context, since time.Time) (*repo.SessionSummary, error) {
	return s.Repo.SummarizeSessions(ctx, s.DB, since)
}

// Funnel returns distinct sessions per step, busiest first.
func (s *AnalyticsService) Funnel(ctx context.Context) ([]repo.FunnelRow, error) {
	return s.Repo.StepFunnel(ctx, s.DB)
}

// Dashboard assembles the full overview in one call.
func (s *AnalyticsService) Dashboard(ctx context.Context, since time.Time) (*Overview, error) {
	sessions, err := s.Repo.SummarizeSessions(ctx, s.DB, since)
	if err != nil {
		return nil, err
	}
	escalations, err := s.Repo.SummarizeEscalations(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	funnel, err := s.Repo.StepFunnel(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	methods, err := s.Repo.CountFpmByMethod(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	var stale int64
	if s.StaleAfter > 0 {
		stale, err = s.Repo.CountStaleStates(ctx, s.DB, time.Now().UTC().Add(-s.StaleAfter))
		if err != nil {
			return nil, err
		}
	}
	return &Overview{
		Sessions:      sessions,
		Escalations:   escalations,
		Funnel:        funnel,
		Methods:       methods,
		StaleSessions: stale,
	}, nil
}
