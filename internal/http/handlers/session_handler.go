// Session and profile HTTP handlers.
//
// This file exposes the session store the client widget saves/restores
// conversation state through, plus the profile CRUD surface:
//   - PUT    /sessions/{id}/state     (save snapshot, last writer wins)
//   - GET    /sessions/{id}/state     (load snapshot)
//   - DELETE /sessions/{id}/state     (reset)
//   - POST   /sessions/{id}/history   (record analytics row)
//   - GET    /sessions/{id}/history
//   - GET    /profiles                (admin list)
//   - GET    /profiles/{session_id}
//   - PUT    /profiles/{session_id}   (partial upsert)
//   - DELETE /profiles/{session_id}
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/honeychat/honey-backend/internal/domain"
	"github.com/honeychat/honey-backend/internal/services"
)

// SessionService defines the session snapshot operations consumed by HTTP
// handlers.
type SessionService interface {
	// Save upserts the snapshot for a session token (last writer wins).
	// A zero lastActivity stamps server time.
	Save(ctx context.Context, sessionID, blob string, lastActivity time.Time) error
	// Load returns the stored snapshot.
	Load(ctx context.Context, sessionID string) (*domain.SessionState, error)
	// Reset removes the snapshot.
	Reset(ctx context.Context, sessionID string) error
	// RecordSession inserts one analytics row for the session.
	RecordSession(ctx context.Context, row *domain.ChatSession) (*domain.ChatSession, error)
	// History returns the session's analytics rows.
	History(ctx context.Context, sessionID string) ([]domain.ChatSession, error)
	// Complete marks the session's analytics rows completed.
	Complete(ctx context.Context, sessionID, outcome, finalStep string) error
}

// ProfileService defines the profile operations consumed by HTTP handlers.
type ProfileService interface {
	// Upsert merges a partial profile write keyed by session token.
	Upsert(ctx context.Context, sessionID string, patch map[string]any) (*domain.Profile, error)
	// Get returns the profile for a session token.
	Get(ctx context.Context, sessionID string) (*domain.Profile, error)
	// List returns all profiles.
	List(ctx context.Context) ([]domain.Profile, error)
	// Delete removes a profile.
	Delete(ctx context.Context, sessionID string) error
}

// SaveStateRequest is the JSON payload for saving a session snapshot.
type SaveStateRequest struct {
	// State is the serialized conversation state blob owned by the widget.
	State string `json:"chat_state" binding:"required" example:"{\"current_step\":\"gender\"}"`
	// LastActivity is the client-side activity timestamp; omitted means
	// server time.
	LastActivity *time.Time `json:"last_activity,omitempty" example:"2026-08-21T14:03:00Z"`
}

// SaveState godoc
// @ID          saveSessionState
// @Summary     Save session state
// @Description Upserts the conversation snapshot for a session token. Concurrent saves are last-writer-wins.
// @Tags        Sessions
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                     true  "Session token"
// @Param       body  body  handlers.SaveStateRequest  true  "Snapshot payload"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     413  {object}  handlers.ErrorResponse  "Snapshot too large"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sessions/{id}/state [put]
func (h *Handlers) SaveState(c *gin.Context) {
	var req SaveStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	var lastActivity time.Time
	if req.LastActivity != nil {
		lastActivity = *req.LastActivity
	}
	err := h.sessionSvc.Save(c.Request.Context(), c.Param("id"), req.State, lastActivity)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session id is required")
		case errors.Is(err, services.ErrBlobTooLarge):
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "session state too large")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}

// LoadState godoc
// @ID          loadSessionState
// @Summary     Load session state
// @Description Returns the stored conversation snapshot for a session token.
// @Tags        Sessions
// @Produce     json
//
// @Param       id  path  string  true  "Session token"
//
// @Success     200  {object}  domain.SessionState
// @Failure     404  {object}  handlers.ErrorResponse  "No snapshot"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sessions/{id}/state [get]
func (h *Handlers) LoadState(c *gin.Context) {
	st, err := h.sessionSvc.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no state for session")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, st)
}

// ResetState godoc
// @ID          resetSessionState
// @Summary     Reset session state
// @Description Removes the snapshot so the next turn starts a fresh conversation. Idempotent.
// @Tags        Sessions
// @Produce     json
//
// @Param       id  path  string  true  "Session token"
//
// @Success     204  {string}  string  "No Content"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sessions/{id}/state [delete]
func (h *Handlers) ResetState(c *gin.Context) {
	if err := h.sessionSvc.Reset(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// RecordSessionRequest is the JSON payload for recording an analytics row.
type RecordSessionRequest struct {
	MessageCount    int     `json:"message_count"`
	DurationMinutes float64 `json:"duration_minutes"`
	Completed       bool    `json:"completed"`
	Outcome         string  `json:"outcome" example:"completed"`
	FinalStep       string  `json:"final_step" example:"goodbye"`
	DeviceType      string  `json:"device_type" example:"mobile"`
}

// RecordSession godoc
// @ID          recordSession
// @Summary     Record a chat session
// @Description Inserts one analytics row (duration, message count, outcome) for a session token.
// @Tags        Sessions
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                          true  "Session token"
// @Param       body  body  handlers.RecordSessionRequest  true  "Session analytics payload"
//
// @Success     201  {object}  domain.ChatSession
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sessions/{id}/history [post]
func (h *Handlers) RecordSession(c *gin.Context) {
	var req RecordSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	row := &domain.ChatSession{
		SessionID:    c.Param("id"),
		MessageCount: req.MessageCount,
		Completed:    req.Completed,
		Outcome:      optString(req.Outcome),
		FinalStep:    optString(req.FinalStep),
		DeviceType:   optString(req.DeviceType),
		UserAgent:    optString(c.Request.UserAgent()),
		IPAddress:    optString(c.ClientIP()),
	}
	if req.DurationMinutes > 0 {
		row.DurationMinutes = &req.DurationMinutes
	}
	created, err := h.sessionSvc.RecordSession(c.Request.Context(), row)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session id is required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, created)
}

// optString returns nil for blank strings so empty fields stay NULL.
func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// SessionHistory godoc
// @ID          sessionHistory
// @Summary     List a session's recorded chats
// @Tags        Sessions
// @Produce     json
//
// @Param       id  path  string  true  "Session token"
//
// @Success     200  {array}   domain.ChatSession
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sessions/{id}/history [get]
func (h *Handlers) SessionHistory(c *gin.Context) {
	rows, err := h.sessionSvc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, rows)
}

// CompleteSessionRequest is the JSON payload for closing a session.
type CompleteSessionRequest struct {
	Outcome   string `json:"outcome" example:"completed"`
	FinalStep string `json:"final_step" example:"goodbye"`
}

// CompleteSession godoc
// @ID          completeSession
// @Summary     Mark a session completed
// @Description Stamps the session's recorded chats as completed with an outcome and final step.
// @Tags        Sessions
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                           true  "Session token"
// @Param       body  body  handlers.CompleteSessionRequest  true  "Completion payload"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "No recorded chats for session"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sessions/{id}/complete [post]
func (h *Handlers) CompleteSession(c *gin.Context) {
	var req CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	err := h.sessionSvc.Complete(c.Request.Context(), c.Param("id"), req.Outcome, req.FinalStep)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no recorded chats for session")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// UpsertProfile godoc
// @ID          upsertProfile
// @Summary     Upsert a profile
// @Description Merges a partial profile write keyed by session token; unknown fields are ignored.
// @Tags        Profiles
// @Accept      json
// @Produce     json
//
// @Param       session_id  path  string          true  "Session token"
// @Param       body        body  map[string]any  true  "Profile fields"
//
// @Success     200  {object}  domain.Profile
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /profiles/{session_id} [put]
func (h *Handlers) UpsertProfile(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	p, err := h.profileSvc.Upsert(c.Request.Context(), strings.TrimSpace(c.Param("session_id")), patch)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session id is required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}

// GetProfile godoc
// @ID          getProfile
// @Summary     Get a profile
// @Tags        Profiles
// @Produce     json
//
// @Param       session_id  path  string  true  "Session token"
//
// @Success     200  {object}  domain.Profile
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /profiles/{session_id} [get]
func (h *Handlers) GetProfile(c *gin.Context) {
	p, err := h.profileSvc.Get(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "profile not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}

// ListProfiles godoc
// @ID          listProfiles
// @Summary     List profiles
// @Tags        Profiles
// @Produce     json
//
// @Success     200  {array}   domain.Profile
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /profiles [get]
func (h *Handlers) ListProfiles(c *gin.Context) {
	rows, err := h.profileSvc.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, rows)
}

// DeleteProfile godoc
// @ID          deleteProfile
// @Summary     Delete a profile
// @Tags        Profiles
// @Produce     json
//
// @Param       session_id  path  string  true  "Session token"
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /profiles/{session_id} [delete]
func (h *Handlers) DeleteProfile(c *gin.Context) {
	err := h.profileSvc.Delete(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "profile not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
