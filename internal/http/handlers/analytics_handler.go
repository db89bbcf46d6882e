// Analytics HTTP handlers.
//
// Read-only rollups for the admin dashboard:
//   - GET /analytics/dashboard
//   - GET /analytics/sessions
//   - GET /analytics/funnel
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/honeychat/honey-backend/internal/repo"
	"github.com/honeychat/honey-backend/internal/services"
	"github.com/honeychat/honey-backend/internal/utils"
)

// AnalyticsService defines the rollup operations consumed by HTTP handlers.
type AnalyticsService interface {
	// Summary aggregates session analytics since the given time.
	Summary(ctx context.Context, since time.Time) (*repo.SessionSummary, error)
	// Funnel returns distinct sessions per step, busiest first.
	Funnel(ctx context.Context) ([]repo.FunnelRow, error)
	// Dashboard assembles the full overview.
	Dashboard(ctx context.Context, since time.Time) (*services.Overview, error)
}

// sinceParam parses the optional days query parameter into a cutoff time;
// absent or invalid means all time.
func sinceParam(c *gin.Context) time.Time {
	days := utils.AtoiDefault(c.Query("days"), 0)
	if days <= 0 {
		return time.Time{}
	}
	return time.Now().UTC().AddDate(0, 0, -days)
}

// Dashboard godoc
// @ID          analyticsDashboard
// @Summary     Dashboard overview
// @Description Headline numbers: sessions, escalation pipeline, step funnel, and method engagement.
// @Tags        Analytics
// @Produce     json
//
// @Param       days  query  int  false  "Limit session rollup to the last N days"
//
// @Success     200  {object}  services.Overview
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /analytics/dashboard [get]
func (h *Handlers) Dashboard(c *gin.Context) {
	out, err := h.analyticsSvc.Dashboard(c.Request.Context(), sinceParam(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, out)
}

// SessionSummary godoc
// @ID          analyticsSessions
// @Summary     Session rollup
// @Tags        Analytics
// @Produce     json
//
// @Param       days  query  int  false  "Limit to the last N days"
//
// @Success     200  {object}  repo.SessionSummary
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /analytics/sessions [get]
func (h *Handlers) SessionSummary(c *gin.Context) {
	out, err := h.analyticsSvc.Summary(c.Request.Context(), sinceParam(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, out)
}

// Funnel godoc
// @ID          analyticsFunnel
// @Summary     Step drop-off funnel
// @Tags        Analytics
// @Produce     json
//
// @Success     200  {array}   repo.FunnelRow
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /analytics/funnel [get]
func (h *Handlers) Funnel(c *gin.Context) {
	out, err := h.analyticsSvc.Funnel(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, out)
}
