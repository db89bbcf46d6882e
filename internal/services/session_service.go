// Package services – SessionService
//
// This file implements the SessionService, which owns the durable session
// snapshot (the serialized conversation state the widget saves and restores
// across page reloads) and the analytics rows recorded per chat session.
//
// Saves are last-writer-wins: concurrent saves for the same token are not
// serialized and the newest write replaces the snapshot wholesale. Loads of
// a token with no snapshot return ErrSessionNotFound so callers can start a
// fresh conversation instead.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/domain"
)

// SessionRepo defines the repository contract required by SessionService.
type SessionRepo interface {
	// SaveState upserts the session snapshot (last writer wins).
	SaveState(ctx context.Context, db *gorm.DB, sessionID, blob string, lastActivity time.Time) error

	// LoadState returns the stored snapshot or gorm.ErrRecordNotFound.
	LoadState(ctx context.Context, db *gorm.DB, sessionID string) (*domain.SessionState, error)

	// DeleteState removes the snapshot for a session token.
	DeleteState(ctx context.Context, db *gorm.DB, sessionID string) error

	// CreateChatSession inserts one analytics row.
	CreateChatSession(ctx context.Context, db *gorm.DB, row *domain.ChatSession) (*domain.ChatSession, error)

	// ListChatSessions returns the analytics rows for a session token.
	ListChatSessions(ctx context.Context, db *gorm.DB, sessionID string) ([]domain.ChatSession, error)

	// UpdateChatSessionsBySession applies updates to a token's analytics rows.
	UpdateChatSessionsBySession(ctx context.Context, db *gorm.DB, sessionID string, updates map[string]any) (int64, error)
}

// SessionService manages session snapshots and per-session analytics.
type SessionService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the session repository used by this service.
	Repo SessionRepo

	// MaxBlobBytes caps the stored snapshot size.
	MaxBlobBytes int
}

// NewSessionService constructs a SessionService with a sane snapshot cap.
func NewSessionService(db *gorm.DB, r SessionRepo) *SessionService {
	return &SessionService{DB: db, Repo: r, MaxBlobBytes: 64 << 10}
}

// ErrBlobTooLarge is returned when a snapshot exceeds the configured cap.
var ErrBlobTooLarge = errors.New("session state too large")

// Save stores the snapshot for sessionID. The client may supply its own
// last-activity timestamp; a zero value stamps server time. Empty session
// tokens are rejected as not-found rather than creating anonymous rows.
func (s *SessionService) Save(ctx context.Context, sessionID, blob string, lastActivity time.Time) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrSessionNotFound
	}
	if s.MaxBlobBytes > 0 && len(blob) > s.MaxBlobBytes {
		return ErrBlobTooLarge
	}
	if lastActivity.IsZero() {
		lastActivity = time.Now().UTC()
	}
	return s.Repo.SaveState(ctx, s.DB, sessionID, blob, lastActivity.UTC())
}

// Load returns the stored snapshot, or ErrSessionNotFound.
func (s *SessionService) Load(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	st, err := s.Repo.LoadState(ctx, s.DB, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	return st, err
}

// Reset removes the snapshot so the next turn starts a fresh conversation.
// Resetting a token that has no snapshot is a no-op.
func (s *SessionService) Reset(ctx context.Context, sessionID string) error {
	err := s.Repo.DeleteState(ctx, s.DB, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// RecordSession inserts one analytics row describing a finished or ongoing
// chat session (duration, message count, outcome).
func (s *SessionService) RecordSession(ctx context.Context, row *domain.ChatSession) (*domain.ChatSession, error) {
	if strings.TrimSpace(row.SessionID) == "" {
		return nil, ErrSessionNotFound
	}
	return s.Repo.CreateChatSession(ctx, s.DB, row)
}

// History returns the analytics rows recorded for a session token.
func (s *SessionService) History(ctx context.Context, sessionID string) ([]domain.ChatSession, error) {
	return s.Repo.ListChatSessions(ctx, s.DB, sessionID)
}

// Complete marks a token's analytics rows completed with the given outcome
// and final step. Zero matched rows reports ErrSessionNotFound.
func (s *SessionService) Complete(ctx context.Context, sessionID, outcome, finalStep string) error {
	n, err := s.Repo.UpdateChatSessionsBySession(ctx, s.DB, sessionID, map[string]any{
		"completed":  true,
		"outcome":    outcome,
		"final_step": finalStep,
		"end_time":   time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
