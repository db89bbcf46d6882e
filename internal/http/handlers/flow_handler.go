// Conversation flow HTTP handlers.
//
// This file exposes the public chatbot surface:
//   - POST /chat/start            (begin or resume a conversation)
//   - POST /chat/advance          (consume one user turn)
//   - GET  /locations/states      (ranked state search)
//   - GET  /locations/lgas        (ranked LGA search)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/honeychat/honey-backend/internal/services"
)

// FlowService defines the conversation flow operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type FlowService interface {
	// Start begins or resumes a conversation and returns the node to render.
	Start(ctx context.Context, sessionID string) (*services.AdvanceResult, error)
	// Advance consumes one user turn and returns the next node.
	Advance(ctx context.Context, sessionID, input string) (*services.AdvanceResult, error)
}

// LocationIndex performs ranked, capped location search.
type LocationIndex interface {
	// Search returns matches ranked exact-prefix-first plus the count of
	// matches beyond the cap.
	Search(q string, limit int) ([]string, int)
}

// StartChatRequest is the JSON payload for starting a conversation.
type StartChatRequest struct {
	// SessionID is the client-held session token.
	SessionID string `json:"session_id" binding:"required,min=1,max=64" example:"sess-8f14e45f"`
}

// AdvanceRequest is the JSON payload for one user turn.
type AdvanceRequest struct {
	// SessionID is the client-held session token.
	SessionID string `json:"session_id" binding:"required,min=1,max=64" example:"sess-8f14e45f"`
	// Input is the raw user input for the current step.
	Input string `json:"input" example:"English"`
}

// LocationSearchResponse wraps ranked search results, mirroring the client
// widget's "Showing N of M results" display.
type LocationSearchResponse struct {
	Results   []string `json:"results"`
	Remaining int      `json:"remaining"`
}

// StartChat godoc
// @ID          startChat
// @Summary     Start or resume a conversation
// @Description Creates a fresh conversation for new session tokens and re-renders the current step for returning ones.
// @Tags        Chat
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.StartChatRequest  true  "Start payload"
//
// @Success     200  {object}  services.AdvanceResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chat/start [post]
func (h *Handlers) StartChat(c *gin.Context) {
	var req StartChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	res, err := h.flowSvc.Start(c.Request.Context(), strings.TrimSpace(req.SessionID))
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session_id is required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, res)
}

// AdvanceChat godoc
// @ID          advanceChat
// @Summary     Consume one user turn
// @Description Records the turn, applies profile effects, and returns the next question (or a clarify re-prompt).
// @Tags        Chat
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.AdvanceRequest  true  "Advance payload"
//
// @Success     200  {object}  services.AdvanceResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Conversation already finished"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chat/advance [post]
func (h *Handlers) AdvanceChat(c *gin.Context) {
	var req AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	res, err := h.flowSvc.Advance(c.Request.Context(), strings.TrimSpace(req.SessionID), req.Input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrConversationDone):
			fail(c, http.StatusConflict, ErrCodeConversationDone, "conversation already finished")
		case errors.Is(err, services.ErrEmptyInput):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "input must not be empty")
		case errors.Is(err, services.ErrSessionNotFound):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session_id is required")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeAdvanceFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, res)
}

// SearchStates godoc
// @ID          searchStates
// @Summary     Search states
// @Description Ranked state search: exact-prefix matches first, then substring matches, capped at 10 with a remaining count.
// @Tags        Locations
// @Produce     json
//
// @Param       q  query  string  true  "Search text"  example(lag)
//
// @Success     200  {object}  handlers.LocationSearchResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /locations/states [get]
func (h *Handlers) SearchStates(c *gin.Context) {
	h.searchLocations(c, h.states)
}

// SearchLGAs godoc
// @ID          searchLGAs
// @Summary     Search local government areas
// @Description Ranked LGA search with the same cap and ordering as state search.
// @Tags        Locations
// @Produce     json
//
// @Param       q  query  string  true  "Search text"  example(iko)
//
// @Success     200  {object}  handlers.LocationSearchResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /locations/lgas [get]
func (h *Handlers) SearchLGAs(c *gin.Context) {
	h.searchLocations(c, h.lgas)
}

// searchLocations runs one ranked lookup against idx.
func (h *Handlers) searchLocations(c *gin.Context, idx LocationIndex) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "q is required")
		return
	}
	results, remaining := idx.Search(q, searchResultCap)
	ok(c, http.StatusOK, LocationSearchResponse{Results: results, Remaining: remaining})
}

// searchResultCap mirrors the widget's result list size.
const searchResultCap = 10
