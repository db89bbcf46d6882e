// Delivery channel HTTP handlers.
//
// This file exposes the channel registry:
//   - GET    /channels        (agents)
//   - POST   /channels        (admin)
//   - DELETE /channels/{id}   (admin)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/honeychat/honey-backend/internal/services"
)

// CreateChannelRequest is the JSON payload for registering a channel.
type CreateChannelRequest struct {
	Name string `json:"name" binding:"required,min=1,max=64" example:"whatsapp"`
	Kind string `json:"kind" example:"messaging"`
}

// ListChannels godoc
// @ID          listChannels
// @Summary     List delivery channels
// @Tags        Channels
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
//
// @Success     200  {array}   domain.Channel
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /channels [get]
func (h *Handlers) ListChannels(c *gin.Context) {
	channels, err := h.escalationSvc.Channels(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, channels)
}

// CreateChannel godoc
// @ID          createChannel
// @Summary     Register a delivery channel
// @Tags        Channels
// @Accept      json
// @Produce     json
//
// @Param       Authorization  header  string                         true  "Bearer token (admin)"
// @Param       body           body    handlers.CreateChannelRequest  true  "Channel payload"
//
// @Success     201  {object}  domain.Channel
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Name taken"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /channels [post]
func (h *Handlers) CreateChannel(c *gin.Context) {
	var req CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	ch, err := h.escalationSvc.AddChannel(c.Request.Context(), req.Name, req.Kind)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChannelTaken):
			fail(c, http.StatusConflict, ErrCodeConflict, "channel name already registered")
		case errors.Is(err, services.ErrChannelNotFound):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name is required")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, ch)
}

// DeleteChannel godoc
// @ID          deleteChannel
// @Summary     Remove a delivery channel
// @Description Soft-deletes the channel; conversations keep their attribution.
// @Tags        Channels
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token (admin)"
// @Param       id             path    string  true  "Channel ID"
//
// @Success     204  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /channels/{id} [delete]
func (h *Handlers) DeleteChannel(c *gin.Context) {
	err := h.escalationSvc.RemoveChannel(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrChannelNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "channel not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
