// Handler wiring.
//
// Handlers groups every HTTP endpoint behind one struct bound to abstract
// service interfaces, keeping transport concerns separate from business
// logic. Each resource's interface lives next to its handlers.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/honeychat/honey-backend/internal/utils"
)

// Handlers groups HTTP endpoints for the chatbot surface, the session and
// transcript stores, the care content, and the agent dashboard.
type Handlers struct {
	flowSvc       FlowService
	sessionSvc    SessionService
	profileSvc    ProfileService
	transcriptSvc TranscriptService
	escalationSvc EscalationService
	agentSvc      AgentService
	careSvc       CareService
	analyticsSvc  AnalyticsService

	states LocationIndex
	lgas   LocationIndex
}

// Deps bundles the constructor dependencies for Handlers.
type Deps struct {
	Flow       FlowService
	Session    SessionService
	Profile    ProfileService
	Transcript TranscriptService
	Escalation EscalationService
	Agents     AgentService
	Care       CareService
	Analytics  AnalyticsService
	States     LocationIndex
	LGAs       LocationIndex
}

// New constructs and returns a Handlers instance bound to the given services.
func New(d Deps) *Handlers {
	return &Handlers{
		flowSvc:       d.Flow,
		sessionSvc:    d.Session,
		profileSvc:    d.Profile,
		transcriptSvc: d.Transcript,
		escalationSvc: d.Escalation,
		agentSvc:      d.Agents,
		careSvc:       d.Care,
		analyticsSvc:  d.Analytics,
		states:        d.States,
		lgas:          d.LGAs,
	}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 50
		maxPageSize     = 200
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// paginate assembles the Pagination block for a page of total rows.
func paginate(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}
