// Care content HTTP handlers.
//
// This file exposes clinic locations, referrals, and method engagement:
//   - GET    /clinics                     (filter by state/lga, public)
//   - POST   /clinics                     (admin)
//   - GET    /clinics/{id}
//   - PATCH  /clinics/{id}                (admin)
//   - DELETE /clinics/{id}                (admin)
//   - POST   /referrals                   (public)
//   - GET    /referrals/{id}
//   - PUT    /referrals/{id}/status       (agents)
//   - GET    /sessions/{id}/referrals
//   - POST   /sessions/{id}/methods      (record method engagement)
//   - GET    /sessions/{id}/methods
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/honeychat/honey-backend/internal/domain"
	"github.com/honeychat/honey-backend/internal/services"
)

// CareService defines the care-content operations consumed by HTTP handlers.
type CareService interface {
	CreateClinic(ctx context.Context, c *domain.ClinicLocation) error
	GetClinic(ctx context.Context, id string) (*domain.ClinicLocation, error)
	FindClinics(ctx context.Context, state, lga string) ([]domain.ClinicLocation, error)
	UpdateClinic(ctx context.Context, id string, patch map[string]any) (*domain.ClinicLocation, error)
	DeleteClinic(ctx context.Context, id string) error

	Refer(ctx context.Context, sessionID, clinicID string, method, notes *string) (*domain.Referral, error)
	GetReferral(ctx context.Context, id string) (*domain.Referral, error)
	Referrals(ctx context.Context, sessionID string) ([]domain.Referral, error)
	MarkReferral(ctx context.Context, id, status string) error

	RecordMethod(ctx context.Context, sessionID, method, action string, detail *string) (*domain.FpmInteraction, error)
	MethodHistory(ctx context.Context, sessionID string) ([]domain.FpmInteraction, error)
}

// CreateReferralRequest is the JSON payload for creating a referral.
type CreateReferralRequest struct {
	SessionID string  `json:"session_id" binding:"required,min=1,max=64"`
	ClinicID  string  `json:"clinic_id" binding:"required"`
	Method    *string `json:"method,omitempty" example:"implant"`
	Notes     *string `json:"notes,omitempty"`
}

// ReferralStatusRequest is the JSON payload for a referral status change.
type ReferralStatusRequest struct {
	Status string `json:"status" binding:"required" example:"VISITED"`
}

// RecordMethodRequest is the JSON payload for one method interaction.
type RecordMethodRequest struct {
	Method string  `json:"method" binding:"required,min=1,max=64" example:"implant"`
	Action string  `json:"action" example:"viewed"`
	Detail *string `json:"detail,omitempty"`
}

// FindClinics godoc
// @ID          findClinics
// @Summary     Find clinics
// @Description Lists clinics in a state, optionally narrowed to an LGA. Matching is case-insensitive.
// @Tags        Clinics
// @Produce     json
//
// @Param       state  query  string  false  "State name"  example(Lagos)
// @Param       lga    query  string  false  "LGA name"    example(Ikorodu)
//
// @Success     200  {array}   domain.ClinicLocation
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /clinics [get]
func (h *Handlers) FindClinics(c *gin.Context) {
	rows, err := h.careSvc.FindClinics(c.Request.Context(), c.Query("state"), c.Query("lga"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, rows)
}

// CreateClinic godoc
// @ID          createClinic
// @Summary     Register a clinic
// @Tags        Clinics
// @Accept      json
// @Produce     json
//
// @Param       body  body  domain.ClinicLocation  true  "Clinic payload"
//
// @Success     201  {object}  domain.ClinicLocation
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /clinics [post]
func (h *Handlers) CreateClinic(c *gin.Context) {
	var clinic domain.ClinicLocation
	if err := c.ShouldBindJSON(&clinic); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := h.careSvc.CreateClinic(c.Request.Context(), &clinic); err != nil {
		if errors.Is(err, services.ErrClinicNotFound) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name and state are required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, clinic)
}

// GetClinic godoc
// @ID          getClinic
// @Summary     Get a clinic
// @Tags        Clinics
// @Produce     json
//
// @Param       id  path  string  true  "Clinic ID"
//
// @Success     200  {object}  domain.ClinicLocation
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /clinics/{id} [get]
func (h *Handlers) GetClinic(c *gin.Context) {
	clinic, err := h.careSvc.GetClinic(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrClinicNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "clinic not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, clinic)
}

// UpdateClinic godoc
// @ID          updateClinic
// @Summary     Update a clinic
// @Tags        Clinics
// @Accept      json
// @Produce     json
//
// @Param       id    path  string          true  "Clinic ID"
// @Param       body  body  map[string]any  true  "Fields to update"
//
// @Success     200  {object}  domain.ClinicLocation
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /clinics/{id} [patch]
func (h *Handlers) UpdateClinic(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	clinic, err := h.careSvc.UpdateClinic(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		if errors.Is(err, services.ErrClinicNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "clinic not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, clinic)
}

// DeleteClinic godoc
// @ID          deleteClinic
// @Summary     Delete a clinic
// @Tags        Clinics
// @Produce     json
//
// @Param       id  path  string  true  "Clinic ID"
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /clinics/{id} [delete]
func (h *Handlers) DeleteClinic(c *gin.Context) {
	err := h.careSvc.DeleteClinic(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrClinicNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "clinic not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// CreateReferral godoc
// @ID          createReferral
// @Summary     Refer a session to a clinic
// @Description Creates a referral; the clinic must already exist.
// @Tags        Referrals
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreateReferralRequest  true  "Referral payload"
//
// @Success     201  {object}  domain.Referral
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Clinic not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /referrals [post]
func (h *Handlers) CreateReferral(c *gin.Context) {
	var req CreateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	ref, err := h.careSvc.Refer(c.Request.Context(), req.SessionID, req.ClinicID, req.Method, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrClinicNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "clinic not found")
		case errors.Is(err, services.ErrSessionNotFound):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session_id is required")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, ref)
}

// GetReferral godoc
// @ID          getReferral
// @Summary     Get a referral
// @Tags        Referrals
// @Produce     json
//
// @Param       id  path  string  true  "Referral ID"
//
// @Success     200  {object}  domain.Referral
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /referrals/{id} [get]
func (h *Handlers) GetReferral(c *gin.Context) {
	ref, err := h.careSvc.GetReferral(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrReferralNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "referral not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ref)
}

// SetReferralStatus godoc
// @ID          setReferralStatus
// @Summary     Update a referral's status
// @Tags        Referrals
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                         true  "Referral ID"
// @Param       body  body  handlers.ReferralStatusRequest  true  "Status payload"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid status"
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /referrals/{id}/status [put]
func (h *Handlers) SetReferralStatus(c *gin.Context) {
	var req ReferralStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	err := h.careSvc.MarkReferral(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		if errors.Is(err, services.ErrReferralNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "referral not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// SessionReferrals godoc
// @ID          sessionReferrals
// @Summary     List a session's referrals
// @Tags        Referrals
// @Produce     json
//
// @Param       id  path  string  true  "Session token"
//
// @Success     200  {array}   domain.Referral
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sessions/{id}/referrals [get]
func (h *Handlers) SessionReferrals(c *gin.Context) {
	rows, err := h.careSvc.Referrals(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, rows)
}

// RecordMethod godoc
// @ID          recordMethod
// @Summary     Record a method interaction
// @Description Upserts the session's engagement with one family planning method; one row per (session, method).
// @Tags        Methods
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                       true  "Session token"
// @Param       body  body  handlers.RecordMethodRequest  true  "Interaction payload"
//
// @Success     200  {object}  domain.FpmInteraction
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sessions/{id}/methods [post]
func (h *Handlers) RecordMethod(c *gin.Context) {
	var req RecordMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	row, err := h.careSvc.RecordMethod(c.Request.Context(), c.Param("id"), req.Method, req.Action, req.Detail)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session id and method are required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, row)
}

// MethodHistory godoc
// @ID          methodHistory
// @Summary     List a session's method interactions
// @Tags        Methods
// @Produce     json
//
// @Param       id  path  string  true  "Session token"
//
// @Success     200  {array}   domain.FpmInteraction
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sessions/{id}/methods [get]
func (h *Handlers) MethodHistory(c *gin.Context) {
	rows, err := h.careSvc.MethodHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, rows)
}
