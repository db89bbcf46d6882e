// Agent account HTTP handlers.
//
// This file exposes the agent/admin surface:
//   - POST   /agents/login          (public)
//   - POST   /agents                (admin)
//   - GET    /agents                (agents)
//   - GET    /analytics/agents      (live loads, agents)
//   - GET    /agents/{id}
//   - PATCH  /agents/{id}           (admin)
//   - DELETE /agents/{id}           (admin)
//   - PUT    /agents/{id}/status    (self or admin)
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/honeychat/honey-backend/internal/auth"
	"github.com/honeychat/honey-backend/internal/domain"
	"github.com/honeychat/honey-backend/internal/repo"
	"github.com/honeychat/honey-backend/internal/services"
)

// AgentService defines the agent account operations consumed by HTTP
// handlers.
type AgentService interface {
	// Register creates an agent account.
	Register(ctx context.Context, name, email, password, role string, maxChats, priority int) (*domain.Agent, error)
	// Login verifies credentials and mints a session token.
	Login(ctx context.Context, email, password string) (*domain.Agent, string, error)
	// Get returns one agent.
	Get(ctx context.Context, id string) (*domain.Agent, error)
	// List returns all agents.
	List(ctx context.Context) ([]domain.Agent, error)
	// SetStatus updates an agent's presence.
	SetStatus(ctx context.Context, id, status string) error
	// Update applies a partial account update.
	Update(ctx context.Context, id string, patch map[string]any) (*domain.Agent, error)
	// Remove soft-deletes an agent account.
	Remove(ctx context.Context, id string) error
	// Loads returns every agent with its live assigned count.
	Loads(ctx context.Context) ([]repo.AgentLoadRow, error)
}

// LoginRequest is the JSON payload for agent login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"ada@clinic.example"`
	Password string `json:"password" binding:"required,min=8" example:"correct horse battery"`
}

// LoginResponse carries the minted token and the agent's public fields.
type LoginResponse struct {
	Token string        `json:"token"`
	Agent *domain.Agent `json:"agent"`
}

// CreateAgentRequest is the JSON payload for registering an agent.
type CreateAgentRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=128" example:"Ada"`
	Email    string `json:"email" binding:"required,email" example:"ada@clinic.example"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" example:"agent"`
	MaxChats int    `json:"max_chats" example:"5"`
	Priority int    `json:"priority" example:"100"`
}

// SetStatusRequest is the JSON payload for a presence update.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required" example:"ONLINE"`
}

// AgentLogin godoc
// @ID          agentLogin
// @Summary     Agent login
// @Description Verifies credentials and returns a bearer token for the agent surface.
// @Tags        Agents
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
//
// @Success     200  {object}  handlers.LoginResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Bad credentials"
// @Router      /agents/login [post]
func (h *Handlers) AgentLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	agent, token, err := h.agentSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid email or password")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, LoginResponse{Token: token, Agent: agent})
}

// CreateAgent godoc
// @ID          createAgent
// @Summary     Register an agent
// @Tags        Agents
// @Accept      json
// @Produce     json
//
// @Param       Authorization  header  string                      true  "Bearer token (admin)"
// @Param       body           body    handlers.CreateAgentRequest  true  "Agent payload"
//
// @Success     201  {object}  domain.Agent
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Email taken"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /agents [post]
func (h *Handlers) CreateAgent(c *gin.Context) {
	var req CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	agent, err := h.agentSvc.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role, req.MaxChats, req.Priority)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			fail(c, http.StatusConflict, ErrCodeConflict, "email already registered")
		case errors.Is(err, auth.ErrBadCredentials):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password are required")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, agent)
}

// ListAgents godoc
// @ID          listAgents
// @Summary     List agents
// @Tags        Agents
// @Produce     json
//
// @Success     200  {array}   domain.Agent
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /agents [get]
func (h *Handlers) ListAgents(c *gin.Context) {
	rows, err := h.agentSvc.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, rows)
}

// AgentLoads godoc
// @ID          agentLoads
// @Summary     List agents with live load
// @Description Returns every agent with its live count of assigned conversations, least loaded first. Counts are derived from live rows, never cached.
// @Tags        Agents
// @Produce     json
//
// @Success     200  {array}   repo.AgentLoadRow
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /analytics/agents [get]
func (h *Handlers) AgentLoads(c *gin.Context) {
	rows, err := h.agentSvc.Loads(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, rows)
}

// GetAgent godoc
// @ID          getAgent
// @Summary     Get an agent
// @Tags        Agents
// @Produce     json
//
// @Param       id  path  string  true  "Agent ID"
//
// @Success     200  {object}  domain.Agent
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /agents/{id} [get]
func (h *Handlers) GetAgent(c *gin.Context) {
	agent, err := h.agentSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrAgentNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "agent not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, agent)
}

// UpdateAgent godoc
// @ID          updateAgent
// @Summary     Update an agent
// @Description Applies a partial update (name, max_chats, priority, role). Unknown fields are ignored.
// @Tags        Agents
// @Accept      json
// @Produce     json
//
// @Param       id    path  string          true  "Agent ID"
// @Param       body  body  map[string]any  true  "Fields to update"
//
// @Success     200  {object}  domain.Agent
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /agents/{id} [patch]
func (h *Handlers) UpdateAgent(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	agent, err := h.agentSvc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		if errors.Is(err, services.ErrAgentNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "agent not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, agent)
}

// DeleteAgent godoc
// @ID          deleteAgent
// @Summary     Remove an agent
// @Description Soft-deletes the account; past assignments keep their attribution.
// @Tags        Agents
// @Produce     json
//
// @Param       id  path  string  true  "Agent ID"
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /agents/{id} [delete]
func (h *Handlers) DeleteAgent(c *gin.Context) {
	err := h.agentSvc.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrAgentNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "agent not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// SetAgentStatus godoc
// @ID          setAgentStatus
// @Summary     Update agent presence
// @Description Sets ONLINE/OFFLINE/AWAY/BUSY. Going offline does not release assigned conversations.
// @Tags        Agents
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                     true  "Agent ID"
// @Param       body  body  handlers.SetStatusRequest  true  "Presence payload"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid status"
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /agents/{id}/status [put]
func (h *Handlers) SetAgentStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	err := h.agentSvc.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status must be one of ONLINE, OFFLINE, AWAY, BUSY")
		case errors.Is(err, services.ErrAgentNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "agent not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}
