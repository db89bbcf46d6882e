// Transcript HTTP handlers.
//
// This file exposes the append-only response log:
//   - GET  /responses                     (filtered, paginated, ETag support)
//   - GET  /sessions/{id}/responses      (one session's transcript)
//   - GET  /sessions/{id}/responses/latest (most recent turn)
//   - POST /sessions/{id}/responses:batch (widget transcript push, replay-safe)
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/domain"
	"github.com/honeychat/honey-backend/internal/repo"
	"github.com/honeychat/honey-backend/internal/services"
)

// TranscriptService defines the response-log operations consumed by HTTP
// handlers.
type TranscriptService interface {
	// Ingest applies one pushed transcript batch, deduplicated by batch key.
	Ingest(ctx context.Context, sessionID, batchKey string, turns []services.IngestTurn) (*services.IngestOutcome, error)
	// List returns a session's full transcript in order.
	List(ctx context.Context, sessionID string) ([]domain.Response, error)
	// Latest returns the most recent recorded turn for a session.
	Latest(ctx context.Context, sessionID string) (*domain.Response, error)
	// ListPage returns a filtered page of the log and the total match count.
	ListPage(ctx context.Context, f repo.ResponseFilter, page, pageSize int) ([]domain.Response, int64, error)
}

// IngestRequest is the JSON payload of one transcript push.
type IngestRequest struct {
	// BatchKey deduplicates retried pushes; empty disables deduplication.
	BatchKey string `json:"batch_key" example:"sess-8f14e45f:17"`
	// Turns are the transcript rows, oldest first.
	Turns []services.IngestTurn `json:"turns" binding:"required"`
}

// ListResponsesResponse wraps a page of transcript rows.
type ListResponsesResponse struct {
	Responses  []domain.Response `json:"responses"`
	Pagination Pagination        `json:"pagination"`
}

// ListSessionResponses godoc
// @ID          listSessionResponses
// @Summary     Get a session's transcript
// @Description Returns every recorded turn for a session in chronological order.
// @Tags        Responses
// @Produce     json
//
// @Param       id  path  string  true  "Session token"
//
// @Success     200  {array}   domain.Response
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sessions/{id}/responses [get]
func (h *Handlers) ListSessionResponses(c *gin.Context) {
	rows, err := h.transcriptSvc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, rows)
}

// LatestSessionResponse godoc
// @ID          latestSessionResponse
// @Summary     Get a session's latest turn
// @Description Returns the most recent recorded turn for a session.
// @Tags        Responses
// @Produce     json
//
// @Param       id  path  string  true  "Session token"
//
// @Success     200  {object}  domain.Response
// @Failure     404  {object}  handlers.ErrorResponse  "No turns recorded"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sessions/{id}/responses/latest [get]
func (h *Handlers) LatestSessionResponse(c *gin.Context) {
	row, err := h.transcriptSvc.Latest(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no responses recorded for session")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, row)
}

// ListResponses godoc
// @ID          listResponses
// @Summary     List responses (filtered, paginated)
// @Description Filter the response log by session, step, category, or widget. Supports weak ETag via If-None-Match when scoped to one session.
// @Tags        Responses
// @Produce     json
//
// @Param       session_id  query  string  false  "Session token"
// @Param       step_key    query  string  false  "Step key"
// @Param       category    query  string  false  "Response category"
// @Param       widget      query  string  false  "Widget kind"
// @Param       page        query  int     false  "Page number"    minimum(1) default(1)
// @Param       page_size   query  int     false  "Items per page" minimum(1) maximum(200) default(50)
//
// @Success     200  {object}  handlers.ListResponsesResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /responses [get]
func (h *Handlers) ListResponses(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)
	f := repo.ResponseFilter{
		SessionID: c.Query("session_id"),
		StepKey:   c.Query("step_key"),
		Category:  c.Query("category"),
		Widget:    c.Query("widget"),
	}

	// ETag pre-check (best effort, single-session scope only).
	if f.SessionID != "" {
		var db *gorm.DB
		if svc, okc := h.transcriptSvc.(*services.TranscriptService); okc {
			db = svc.DB
		}
		if db != nil {
			count, maxTS, err := repo.ResponsesStats(ctx, db, f.SessionID)
			if err == nil {
				var ts int64
				if maxTS != nil {
					ts = maxTS.Unix()
				}
				etag := fmt.Sprintf(`W/"responses:%s:%d:%d"`, f.SessionID, count, ts)
				c.Header("ETag", etag)
				if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
					c.Status(http.StatusNotModified)
					return
				}
			}
		}
	}

	items, total, err := h.transcriptSvc.ListPage(ctx, f, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListResponsesResponse{
		Responses:  items,
		Pagination: paginate(page, pageSize, total),
	})
}

// IngestBatch godoc
// @ID          ingestBatch
// @Summary     Push a transcript batch
// @Description Appends a batch of turns to the response log. Batches carrying a batch_key are applied at most once; replays return 200 with replay=true.
// @Tags        Responses
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                  true  "Session token"
// @Param       body  body  handlers.IngestRequest  true  "Transcript batch"
//
// @Success     200  {object}  services.IngestOutcome
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     413  {object}  handlers.ErrorResponse  "Batch too large"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sessions/{id}/responses/batch [post]
func (h *Handlers) IngestBatch(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	out, err := h.transcriptSvc.Ingest(c.Request.Context(), c.Param("id"), req.BatchKey, req.Turns)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session id is required")
		case errors.Is(err, services.ErrEmptyBatch):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "batch must contain at least one turn")
		case errors.Is(err, services.ErrBatchTooLarge):
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "batch too large")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, out)
}
