// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/docs"
	"github.com/honeychat/honey-backend/internal/auth"
	"github.com/honeychat/honey-backend/internal/config"
	"github.com/honeychat/honey-backend/internal/domain"
	"github.com/honeychat/honey-backend/internal/flow"
	"github.com/honeychat/honey-backend/internal/http/handlers"
	"github.com/honeychat/honey-backend/internal/http/middleware"
	"github.com/honeychat/honey-backend/internal/repo"
	"github.com/honeychat/honey-backend/internal/search"
	"github.com/honeychat/honey-backend/internal/services"
)

// flowRepoShim adapts the repository free functions to the services.FlowRepo
// interface expected by the FlowService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type flowRepoShim struct{}

// LoadState proxies repo.LoadState.
func (flowRepoShim) LoadState(ctx context.Context, db *gorm.DB, sessionID string) (*domain.SessionState, error) {
	return repo.LoadState(ctx, db, sessionID)
}

// SaveState proxies repo.SaveState.
func (flowRepoShim) SaveState(ctx context.Context, db *gorm.DB, sessionID, blob string, lastActivity time.Time) error {
	return repo.SaveState(ctx, db, sessionID, blob, lastActivity)
}

// AppendResponse proxies repo.AppendResponse.
func (flowRepoShim) AppendResponse(ctx context.Context, db *gorm.DB, row *domain.Response) (*domain.Response, error) {
	return repo.AppendResponse(ctx, db, row)
}

// UpsertProfile proxies repo.UpsertProfile.
func (flowRepoShim) UpsertProfile(ctx context.Context, db *gorm.DB, sessionID string, patch map[string]any) (*domain.Profile, error) {
	return repo.UpsertProfile(ctx, db, sessionID, patch)
}

// sessionRepoShim adapts the repo free functions to services.SessionRepo.
// It embeds flowRepoShim for the state methods the two interfaces share.
type sessionRepoShim struct{ flowRepoShim }

func (sessionRepoShim) DeleteState(ctx context.Context, db *gorm.DB, sessionID string) error {
	return repo.DeleteState(ctx, db, sessionID)
}

func (sessionRepoShim) CreateChatSession(ctx context.Context, db *gorm.DB, row *domain.ChatSession) (*domain.ChatSession, error) {
	return repo.CreateChatSession(ctx, db, row)
}

func (sessionRepoShim) ListChatSessions(ctx context.Context, db *gorm.DB, sessionID string) ([]domain.ChatSession, error) {
	return repo.ListChatSessions(ctx, db, sessionID)
}

func (sessionRepoShim) UpdateChatSessionsBySession(ctx context.Context, db *gorm.DB, sessionID string, updates map[string]any) (int64, error) {
	return repo.UpdateChatSessionsBySession(ctx, db, sessionID, updates)
}

// profileRepoShim adapts the repo free functions to services.ProfileRepo.
type profileRepoShim struct{}

func (profileRepoShim) UpsertProfile(ctx context.Context, db *gorm.DB, sessionID string, patch map[string]any) (*domain.Profile, error) {
	return repo.UpsertProfile(ctx, db, sessionID, patch)
}

func (profileRepoShim) GetProfile(ctx context.Context, db *gorm.DB, sessionID string) (*domain.Profile, error) {
	return repo.GetProfile(ctx, db, sessionID)
}

func (profileRepoShim) ListProfiles(ctx context.Context, db *gorm.DB) ([]domain.Profile, error) {
	return repo.ListProfiles(ctx, db)
}

func (profileRepoShim) DeleteProfile(ctx context.Context, db *gorm.DB, sessionID string) error {
	return repo.DeleteProfile(ctx, db, sessionID)
}

// transcriptRepoShim adapts the repo free functions to services.TranscriptRepo.
type transcriptRepoShim struct{}

func (transcriptRepoShim) AppendResponse(ctx context.Context, db *gorm.DB, row *domain.Response) (*domain.Response, error) {
	return repo.AppendResponse(ctx, db, row)
}

func (transcriptRepoShim) ListResponses(ctx context.Context, db *gorm.DB, sessionID string) ([]domain.Response, error) {
	return repo.ListResponses(ctx, db, sessionID)
}

func (transcriptRepoShim) LatestResponse(ctx context.Context, db *gorm.DB, sessionID string) (*domain.Response, error) {
	return repo.LatestResponse(ctx, db, sessionID)
}

func (transcriptRepoShim) CountResponses(ctx context.Context, db *gorm.DB, f repo.ResponseFilter) (int64, error) {
	return repo.CountResponses(ctx, db, f)
}

func (transcriptRepoShim) ListResponsesPage(ctx context.Context, db *gorm.DB, f repo.ResponseFilter, offset, limit int) ([]domain.Response, error) {
	return repo.ListResponsesPage(ctx, db, f, offset, limit)
}

func (transcriptRepoShim) GetIngestReceipt(ctx context.Context, db *gorm.DB, sessionID, batchKey string, now time.Time) (*domain.IngestReceipt, error) {
	return repo.GetIngestReceipt(ctx, db, sessionID, batchKey, now)
}

func (transcriptRepoShim) CreateIngestReceipt(ctx context.Context, db *gorm.DB, sessionID, batchKey string, turnCount int, ttl time.Duration) (*domain.IngestReceipt, error) {
	return repo.CreateIngestReceipt(ctx, db, sessionID, batchKey, turnCount, ttl)
}

func (transcriptRepoShim) Transact(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// escalationRepoShim adapts the repo free functions to services.EscalationRepo.
type escalationRepoShim struct{}

func (escalationRepoShim) GetConversation(ctx context.Context, db *gorm.DB, id string) (*domain.Conversation, error) {
	return repo.GetConversation(ctx, db, id)
}

func (escalationRepoShim) GetConversationBySession(ctx context.Context, db *gorm.DB, sessionID string) (*domain.Conversation, error) {
	return repo.GetConversationBySession(ctx, db, sessionID)
}

func (escalationRepoShim) CreateConversation(ctx context.Context, db *gorm.DB, sessionID, channelID string) (*domain.Conversation, error) {
	return repo.CreateConversation(ctx, db, sessionID, channelID)
}

func (escalationRepoShim) MarkPending(ctx context.Context, db *gorm.DB, id, reason string) (bool, error) {
	return repo.MarkPending(ctx, db, id, reason)
}

func (escalationRepoShim) AssignAgent(ctx context.Context, db *gorm.DB, conversationID string) (*domain.Conversation, *domain.Agent, error) {
	return repo.AssignAgent(ctx, db, conversationID)
}

func (escalationRepoShim) AssignTo(ctx context.Context, db *gorm.DB, conversationID, agentID string) (*domain.Conversation, error) {
	return repo.AssignTo(ctx, db, conversationID, agentID)
}

func (escalationRepoShim) Resolve(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	return repo.Resolve(ctx, db, id)
}

func (escalationRepoShim) ListPendingConversations(ctx context.Context, db *gorm.DB) ([]domain.Conversation, error) {
	return repo.ListPendingConversations(ctx, db)
}

func (escalationRepoShim) ListAssignedConversations(ctx context.Context, db *gorm.DB, agentID string) ([]domain.Conversation, error) {
	return repo.ListAssignedConversations(ctx, db, agentID)
}

func (escalationRepoShim) DefaultChannelID(ctx context.Context, db *gorm.DB) (string, error) {
	return repo.DefaultChannelID(ctx, db)
}

func (escalationRepoShim) CreateChannel(ctx context.Context, db *gorm.DB, name, kind string) (*domain.Channel, error) {
	return repo.CreateChannel(ctx, db, name, kind)
}

func (escalationRepoShim) GetChannelByName(ctx context.Context, db *gorm.DB, name string) (*domain.Channel, error) {
	return repo.GetChannelByName(ctx, db, name)
}

func (escalationRepoShim) ListChannels(ctx context.Context, db *gorm.DB) ([]domain.Channel, error) {
	return repo.ListChannels(ctx, db)
}

func (escalationRepoShim) DeleteChannel(ctx context.Context, db *gorm.DB, id string) error {
	return repo.DeleteChannel(ctx, db, id)
}

// agentRepoShim adapts the repo free functions to services.AgentRepo.
type agentRepoShim struct{}

func (agentRepoShim) CreateAgent(ctx context.Context, db *gorm.DB, name, email, passwordHash, role string, maxChats, priority int) (*domain.Agent, error) {
	return repo.CreateAgent(ctx, db, name, email, passwordHash, role, maxChats, priority)
}

func (agentRepoShim) GetAgent(ctx context.Context, db *gorm.DB, id string) (*domain.Agent, error) {
	return repo.GetAgent(ctx, db, id)
}

func (agentRepoShim) GetAgentByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Agent, error) {
	return repo.GetAgentByEmail(ctx, db, email)
}

func (agentRepoShim) ListAgents(ctx context.Context, db *gorm.DB) ([]domain.Agent, error) {
	return repo.ListAgents(ctx, db)
}

func (agentRepoShim) SetAgentStatus(ctx context.Context, db *gorm.DB, id, status string) error {
	return repo.SetAgentStatus(ctx, db, id, status)
}

func (agentRepoShim) UpdateAgent(ctx context.Context, db *gorm.DB, id string, patch map[string]any) (*domain.Agent, error) {
	return repo.UpdateAgent(ctx, db, id, patch)
}

func (agentRepoShim) DeleteAgent(ctx context.Context, db *gorm.DB, id string) error {
	return repo.DeleteAgent(ctx, db, id)
}

func (agentRepoShim) ListAgentLoads(ctx context.Context, db *gorm.DB) ([]repo.AgentLoadRow, error) {
	return repo.ListAgentLoads(ctx, db)
}

// careRepoShim adapts the repo free functions to services.CareRepo.
type careRepoShim struct{}

func (careRepoShim) CreateClinic(ctx context.Context, db *gorm.DB, c *domain.ClinicLocation) error {
	return repo.CreateClinic(ctx, db, c)
}

func (careRepoShim) GetClinic(ctx context.Context, db *gorm.DB, id string) (*domain.ClinicLocation, error) {
	return repo.GetClinic(ctx, db, id)
}

func (careRepoShim) ListClinics(ctx context.Context, db *gorm.DB, state, lga string, limit int) ([]domain.ClinicLocation, error) {
	return repo.ListClinics(ctx, db, state, lga, limit)
}

func (careRepoShim) UpdateClinic(ctx context.Context, db *gorm.DB, id string, patch map[string]any) (*domain.ClinicLocation, error) {
	return repo.UpdateClinic(ctx, db, id, patch)
}

func (careRepoShim) DeleteClinic(ctx context.Context, db *gorm.DB, id string) error {
	return repo.DeleteClinic(ctx, db, id)
}

func (careRepoShim) CreateReferral(ctx context.Context, db *gorm.DB, sessionID, clinicID string, method, notes *string) (*domain.Referral, error) {
	return repo.CreateReferral(ctx, db, sessionID, clinicID, method, notes)
}

func (careRepoShim) GetReferral(ctx context.Context, db *gorm.DB, id string) (*domain.Referral, error) {
	return repo.GetReferral(ctx, db, id)
}

func (careRepoShim) ListReferralsBySession(ctx context.Context, db *gorm.DB, sessionID string) ([]domain.Referral, error) {
	return repo.ListReferralsBySession(ctx, db, sessionID)
}

func (careRepoShim) SetReferralStatus(ctx context.Context, db *gorm.DB, id, status string) error {
	return repo.SetReferralStatus(ctx, db, id, status)
}

func (careRepoShim) RecordFpmInteraction(ctx context.Context, db *gorm.DB, sessionID, method, action string, detail *string) (*domain.FpmInteraction, error) {
	return repo.RecordFpmInteraction(ctx, db, sessionID, method, action, detail)
}

func (careRepoShim) ListFpmInteractions(ctx context.Context, db *gorm.DB, sessionID string) ([]domain.FpmInteraction, error) {
	return repo.ListFpmInteractions(ctx, db, sessionID)
}

// analyticsRepoShim adapts the repo free functions to services.AnalyticsRepo.
type analyticsRepoShim struct{}

func (analyticsRepoShim) SummarizeSessions(ctx context.Context, db *gorm.DB, since time.Time) (*repo.SessionSummary, error) {
	return repo.SummarizeSessions(ctx, db, since)
}

func (analyticsRepoShim) StepFunnel(ctx context.Context, db *gorm.DB) ([]repo.FunnelRow, error) {
	return repo.StepFunnel(ctx, db)
}

func (analyticsRepoShim) CountFpmByMethod(ctx context.Context, db *gorm.DB) ([]repo.MethodEngagement, error) {
	return repo.CountFpmByMethod(ctx, db)
}

func (analyticsRepoShim) SummarizeEscalations(ctx context.Context, db *gorm.DB) (*repo.EscalationStats, error) {
	return repo.SummarizeEscalations(ctx, db)
}

func (analyticsRepoShim) CountStaleStates(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	return repo.CountStaleStates(ctx, db, cutoff)
}

// Indexes bundles the location search indexes injected into the router.
type Indexes struct {
	States *search.Index
	LGAs   *search.Index
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per agent/IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, graph *flow.Graph, idx Indexes, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key",
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Compress list-heavy responses (transcripts, analytics)
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, sessionID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIngestReceipt(ctx, db, sessionID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per agent/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyBySessionOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/graph/index
	signer := auth.NewSigner(cfg.JWTSecret, cfg.JWTTTL)

	escalationSvc := services.NewEscalationService(db, escalationRepoShim{})
	flowSvc := services.NewFlowService(db, flowRepoShim{}, graph, escalationSvc)
	sessionSvc := services.NewSessionService(db, sessionRepoShim{})
	profileSvc := services.NewProfileService(db, profileRepoShim{})
	transcriptSvc := services.NewTranscriptService(db, transcriptRepoShim{})
	transcriptSvc.ReceiptTTL = cfg.IdempotencyTTL
	agentSvc := services.NewAgentService(db, agentRepoShim{}, signer)
	careSvc := services.NewCareService(db, careRepoShim{})
	analyticsSvc := services.NewAnalyticsService(db, analyticsRepoShim{})
	analyticsSvc.StaleAfter = cfg.SessionStaleAfter

	h := handlers.New(handlers.Deps{
		Flow:       flowSvc,
		Session:    sessionSvc,
		Profile:    profileSvc,
		Transcript: transcriptSvc,
		Escalation: escalationSvc,
		Agents:     agentSvc,
		Care:       careSvc,
		Analytics:  analyticsSvc,
		States:     idx.States,
		LGAs:       idx.LGAs,
	})

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Conversation flow
		api.POST("/chat/start", h.StartChat)
		api.POST("/chat/advance", h.AdvanceChat)

		// Location search
		api.GET("/locations/states", h.SearchStates)
		api.GET("/locations/lgas", h.SearchLGAs)

		// Session snapshots, history, and per-session sub-resources
		api.PUT("/sessions/:id/state", h.SaveState)
		api.GET("/sessions/:id/state", h.LoadState)
		api.DELETE("/sessions/:id/state", h.ResetState)
		api.POST("/sessions/:id/history", h.RecordSession)
		api.POST("/sessions/:id/complete", h.CompleteSession)
		api.GET("/sessions/:id/history", h.SessionHistory)
		api.GET("/sessions/:id/responses", h.ListSessionResponses)
		api.GET("/sessions/:id/responses/latest", h.LatestSessionResponse)
		api.POST("/sessions/:id/responses/batch", h.IngestBatch)
		api.GET("/sessions/:id/referrals", h.SessionReferrals)
		api.POST("/sessions/:id/methods", h.RecordMethod)
		api.GET("/sessions/:id/methods", h.MethodHistory)

		// Profiles (token-keyed; list and delete are admin-only, below)
		api.PUT("/profiles/:session_id", h.UpsertProfile)
		api.GET("/profiles/:session_id", h.GetProfile)

		// Handoff request from the widget
		api.POST("/escalations", h.Escalate)

		// Clinic directory and referrals
		api.GET("/clinics", h.FindClinics)
		api.GET("/clinics/:id", h.GetClinic)
		api.POST("/referrals", h.CreateReferral)
		api.GET("/referrals/:id", h.GetReferral)

		// Agent login
		api.POST("/agents/login", h.AgentLogin)
	}

	// Agent surface (bearer token)
	agents := api.Group("", middleware.RequireAuth(signer))
	{
		agents.GET("/escalations", h.EscalationQueue)
		agents.GET("/escalations/:id", h.GetEscalation)
		agents.POST("/escalations/:id/assign", h.AssignEscalation)
		agents.POST("/escalations/:id/assign/:agent_id", h.AssignEscalationTo)
		agents.POST("/escalations/:id/resolve", h.ResolveEscalation)

		agents.GET("/agents", h.ListAgents)
		agents.GET("/agents/:id", h.GetAgent)
		agents.GET("/agents/:id/conversations", h.AgentWorkload)
		agents.PUT("/agents/:id/status", h.SetAgentStatus)

		agents.PUT("/referrals/:id/status", h.SetReferralStatus)

		agents.GET("/responses", h.ListResponses)

		agents.GET("/channels", h.ListChannels)

		agents.GET("/analytics/dashboard", h.Dashboard)
		agents.GET("/analytics/sessions", h.SessionSummary)
		agents.GET("/analytics/funnel", h.Funnel)
		agents.GET("/analytics/agents", h.AgentLoads)
	}

	// Admin surface (bearer token + admin role)
	admin := api.Group("", middleware.RequireAuth(signer), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/agents", h.CreateAgent)
		admin.PATCH("/agents/:id", h.UpdateAgent)
		admin.DELETE("/agents/:id", h.DeleteAgent)

		admin.POST("/clinics", h.CreateClinic)
		admin.PATCH("/clinics/:id", h.UpdateClinic)
		admin.DELETE("/clinics/:id", h.DeleteClinic)

		admin.POST("/channels", h.CreateChannel)
		admin.DELETE("/channels/:id", h.DeleteChannel)

		admin.GET("/profiles", h.ListProfiles)
		admin.DELETE("/profiles/:session_id", h.DeleteProfile)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
