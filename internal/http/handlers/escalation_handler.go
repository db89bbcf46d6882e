// Escalation HTTP handlers.
//
// This file exposes the bot-to-agent handoff:
//   - POST /escalations                          (request handoff, public)
//   - GET  /escalations                          (pending queue, agents)
//   - POST /escalations/{id}/assign              (auto-assign, agents)
//   - POST /escalations/{id}/assign/{agent_id}   (manual assign, agents)
//   - POST /escalations/{id}/resolve             (close, agents)
//   - GET  /escalations/{id}                     (inspect)
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/honeychat/honey-backend/internal/domain"
	"github.com/honeychat/honey-backend/internal/services"
)

// EscalationService defines the handoff operations consumed by HTTP
// handlers.
type EscalationService interface {
	// RequestEscalation moves a session's conversation to PENDING.
	RequestEscalation(ctx context.Context, sessionID, reason string) (*domain.Conversation, error)
	// Assign hands a PENDING conversation to the least-loaded online agent.
	Assign(ctx context.Context, conversationID string) (*domain.Conversation, *domain.Agent, error)
	// AssignTo hands a PENDING conversation to a named agent.
	AssignTo(ctx context.Context, conversationID, agentID string) (*domain.Conversation, error)
	// Resolve closes an ASSIGNED conversation.
	Resolve(ctx context.Context, conversationID string) error
	// Get returns one conversation.
	Get(ctx context.Context, conversationID string) (*domain.Conversation, error)
	// Queue returns PENDING conversations, oldest first.
	Queue(ctx context.Context) ([]domain.Conversation, error)
	// Workload returns the conversations assigned to an agent.
	Workload(ctx context.Context, agentID string) ([]domain.Conversation, error)
	// Channels returns the registered delivery channels.
	Channels(ctx context.Context) ([]domain.Channel, error)
	// AddChannel registers a delivery channel.
	AddChannel(ctx context.Context, name, kind string) (*domain.Channel, error)
	// RemoveChannel soft-deletes a channel.
	RemoveChannel(ctx context.Context, id string) error
}

// EscalateRequest is the JSON payload for requesting a handoff.
type EscalateRequest struct {
	// SessionID is the client-held session token.
	SessionID string `json:"session_id" binding:"required,min=1,max=64" example:"sess-8f14e45f"`
	// Reason is an optional short tag recorded on the conversation.
	Reason string `json:"reason" example:"user_requested"`
}

// AssignmentResponse pairs the assigned conversation with its agent.
type AssignmentResponse struct {
	Conversation *domain.Conversation `json:"conversation"`
	Agent        *domain.Agent        `json:"agent,omitempty"`
}

// Escalate godoc
// @ID          escalate
// @Summary     Request a human agent
// @Description Moves the session's conversation to PENDING (creating it if needed) and tries to assign an agent. Repeated requests are idempotent.
// @Tags        Escalations
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.EscalateRequest  true  "Escalation payload"
//
// @Success     202  {object}  domain.Conversation
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /escalations [post]
func (h *Handlers) Escalate(c *gin.Context) {
	var req EscalateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "user_requested"
	}
	conv, err := h.escalationSvc.RequestEscalation(c.Request.Context(), strings.TrimSpace(req.SessionID), reason)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusAccepted, conv)
}

// EscalationQueue godoc
// @ID          escalationQueue
// @Summary     List pending escalations
// @Description Returns conversations waiting for an agent, oldest escalation first.
// @Tags        Escalations
// @Produce     json
//
// @Success     200  {array}   domain.Conversation
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /escalations [get]
func (h *Handlers) EscalationQueue(c *gin.Context) {
	rows, err := h.escalationSvc.Queue(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, rows)
}

// GetEscalation godoc
// @ID          getEscalation
// @Summary     Get a conversation
// @Tags        Escalations
// @Produce     json
//
// @Param       id  path  string  true  "Conversation ID"
//
// @Success     200  {object}  domain.Conversation
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /escalations/{id} [get]
func (h *Handlers) GetEscalation(c *gin.Context) {
	conv, err := h.escalationSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrConversationNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "conversation not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, conv)
}

// AssignEscalation godoc
// @ID          assignEscalation
// @Summary     Assign a pending conversation
// @Description Hands the conversation to the least-loaded online agent with free capacity; ties break by priority then id.
// @Tags        Escalations
// @Produce     json
//
// @Param       id  path  string  true  "Conversation ID"
//
// @Success     200  {object}  handlers.AssignmentResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Not pending"
// @Failure     503  {object}  handlers.ErrorResponse  "No agent available"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /escalations/{id}/assign [post]
func (h *Handlers) AssignEscalation(c *gin.Context) {
	conv, agent, err := h.escalationSvc.Assign(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.failAssignment(c, err)
		return
	}
	ok(c, http.StatusOK, AssignmentResponse{Conversation: conv, Agent: agent})
}

// AssignEscalationTo godoc
// @ID          assignEscalationTo
// @Summary     Assign a pending conversation to a named agent
// @Description Manual assignment; the agent must be online and below its concurrent-chat cap.
// @Tags        Escalations
// @Produce     json
//
// @Param       id        path  string  true  "Conversation ID"
// @Param       agent_id  path  string  true  "Agent ID"
//
// @Success     200  {object}  handlers.AssignmentResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Not pending"
// @Failure     503  {object}  handlers.ErrorResponse  "Agent unavailable"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /escalations/{id}/assign/{agent_id} [post]
func (h *Handlers) AssignEscalationTo(c *gin.Context) {
	conv, err := h.escalationSvc.AssignTo(c.Request.Context(), c.Param("id"), c.Param("agent_id"))
	if err != nil {
		h.failAssignment(c, err)
		return
	}
	ok(c, http.StatusOK, AssignmentResponse{Conversation: conv})
}

// ResolveEscalation godoc
// @ID          resolveEscalation
// @Summary     Resolve an assigned conversation
// @Description Closes the conversation and frees the agent's capacity slot.
// @Tags        Escalations
// @Produce     json
//
// @Param       id  path  string  true  "Conversation ID"
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Not assigned"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /escalations/{id}/resolve [post]
func (h *Handlers) ResolveEscalation(c *gin.Context) {
	err := h.escalationSvc.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrConversationNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "conversation not found")
		case errors.Is(err, services.ErrInvalidTransition):
			fail(c, http.StatusConflict, ErrCodeConflict, "conversation is not assigned")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}

// AgentWorkload godoc
// @ID          agentWorkload
// @Summary     List an agent's assigned conversations
// @Tags        Escalations
// @Produce     json
//
// @Param       id  path  string  true  "Agent ID"
//
// @Success     200  {array}   domain.Conversation
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /agents/{id}/conversations [get]
func (h *Handlers) AgentWorkload(c *gin.Context) {
	rows, err := h.escalationSvc.Workload(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, rows)
}

// failAssignment maps assignment errors to HTTP results.
func (h *Handlers) failAssignment(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNoAgentAvailable):
		fail(c, http.StatusServiceUnavailable, ErrCodeNoAgent, "no agent available; conversation stays pending")
	case errors.Is(err, services.ErrConversationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "conversation not found")
	case errors.Is(err, services.ErrInvalidTransition):
		fail(c, http.StatusConflict, ErrCodeConflict, "conversation is not pending")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
