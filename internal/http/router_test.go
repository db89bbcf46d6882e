package httpapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/honeychat/honey-backend/internal/config"
	"github.com/honeychat/honey-backend/internal/domain"
	"github.com/honeychat/honey-backend/internal/flow"
	"github.com/honeychat/honey-backend/internal/http/middleware"
	"github.com/honeychat/honey-backend/internal/repo"
	"github.com/honeychat/honey-backend/internal/search"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if err := repo.Seed(context.Background(), db, 1000); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func testGraph(t *testing.T) *flow.Graph {
	t.Helper()
	g, err := flow.HoneyGraph(search.NewStateIndex(), flow.AcceptAny())
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return g
}

func testIndexes() Indexes {
	return Indexes{States: search.NewStateIndex(), LGAs: search.NewIndex(nil)}
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     100,
		RateBurst:   10,
		JWTSecret:   "test-secret",
		JWTTTL:      time.Hour,
		CORS:        config.CORSConfig{AllowedOrigins: nil}, // triggers AllowAllOrigins branch
		Security:    config.SecurityConfig{EnableHSTS: false, HSTSMaxAge: 0},
		OTEL:        config.OTELConfig{ServiceName: "test-svc"},
	}
	db := newTestDB(t, "routerdb")

	RegisterRoutes(r, db, testGraph(t), testIndexes(), cfg)

	// /health works
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	// CORS (AllowAllOrigins) → header "*"
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	// /metrics is wired
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || len(w.Body.Bytes()) == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// NoRoute → 404
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}

	// NoMethod → 405 (POST /health)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := config.Config{
		APIBasePath: "/api/v2",
		RateRPS:     50,
		RateBurst:   5,
		JWTSecret:   "test-secret",
		JWTTTL:      time.Hour,
		CORS:        config.CORSConfig{AllowedOrigins: []string{"http://example.com"}},
		Security:    config.SecurityConfig{EnableHSTS: false, HSTSMaxAge: 0},
		OTEL:        config.OTELConfig{ServiceName: "test-svc"},
	}
	db := newTestDB(t, "routerdb_cors")

	RegisterRoutes(r, db, testGraph(t), testIndexes(), cfg)

	// Any request runs through CORS middleware; header should reflect origin.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
}

func TestRegisterRoutes_AuthGuards(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     100,
		RateBurst:   10,
		JWTSecret:   "test-secret",
		JWTTTL:      time.Hour,
		CORS:        config.CORSConfig{},
		OTEL:        config.OTELConfig{ServiceName: "test-svc"},
	}
	db := newTestDB(t, "routerdb_auth")
	RegisterRoutes(r, db, testGraph(t), testIndexes(), cfg)

	// Agent surface rejects anonymous callers.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/escalations", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("GET /escalations without token = %d, want 401", w.Code)
	}

	// Admin surface too.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/agents", bytes.NewBufferString("{}"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("POST /agents without token = %d, want 401", w.Code)
	}

	// Public chat surface stays open.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/chat/start", bytes.NewBufferString(`{"session_id":"s-router-1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /chat/start = %d body=%s", w.Code, w.Body.String())
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// tiny cap to trigger MaxBytesReader
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")) // 12 bytes
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// "/" and "" should mount at root
	root1 := groupWithPrefix(r, "/")
	root1.GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	root2 := groupWithPrefix(r, "")
	root2.GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })

	// non-root prefix
	api := groupWithPrefix(r, "/api")
	api.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	// Hit all three
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/one", nil)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "one" {
		t.Fatalf("GET /one got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/two", nil)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "two" {
		t.Fatalf("GET /two got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
		t.Fatalf("GET /api/ping got %d %q", rec.Code, rec.Body.String())
	}
}

// Smoke test that a request traverses idempotency + ratelimit + otel + security headers pipeline.
func TestPipeline_Smoke(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     100,
		RateBurst:   10,
		JWTSecret:   "test-secret",
		JWTTTL:      time.Hour,
		CORS:        config.CORSConfig{},                                            // allow-all branch
		Security:    config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: time.Hour}, // enabled (but only set on https)
		OTEL:        config.OTELConfig{ServiceName: "svc"},
	}
	db := newTestDB(t, "routerdb_smoke")
	RegisterRoutes(r, db, testGraph(t), testIndexes(), cfg)

	// Any request goes through the middleware stack
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	// simulate https so HSTS could be eligible if middleware checks scheme
	req.URL.Scheme = "https"
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("pipeline GET /health = %d", w.Code)
	}
	// RequestID header should be present (from RequestID middleware)
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
}

func Test_escalationRepoShim_Proxies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t, "routerdb_shim")

	shim := escalationRepoShim{}
	ctx := context.Background()

	chID, err := shim.DefaultChannelID(ctx, db)
	if err != nil || chID == "" {
		t.Fatalf("DefaultChannelID: id=%q err=%v", chID, err)
	}

	conv, err := shim.CreateConversation(ctx, db, "s-shim-1", chID)
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	if conv.ID == "" || conv.Status != domain.EscalationNone {
		t.Fatalf("CreateConversation returned bad row: %+v", conv)
	}

	moved, err := shim.MarkPending(ctx, db, conv.ID, "user_requested")
	if err != nil || !moved {
		t.Fatalf("MarkPending: moved=%v err=%v", moved, err)
	}

	got, err := shim.GetConversationBySession(ctx, db, "s-shim-1")
	if err != nil {
		t.Fatalf("GetConversationBySession: %v", err)
	}
	if got.ID != conv.ID || got.Status != domain.EscalationPending {
		t.Fatalf("unexpected conversation: %+v", got)
	}

	pending, err := shim.ListPendingConversations(ctx, db)
	if err != nil {
		t.Fatalf("ListPendingConversations: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending conversation, got %d", len(pending))
	}

	// Seeded overflow agent is always eligible, so auto-assign succeeds.
	assigned, agent, err := shim.AssignAgent(ctx, db, conv.ID)
	if err != nil {
		t.Fatalf("AssignAgent: %v", err)
	}
	if assigned.Status != domain.EscalationAssigned || agent == nil || !agent.System {
		t.Fatalf("expected overflow assignment, got conv=%+v agent=%+v", assigned, agent)
	}

	done, err := shim.Resolve(ctx, db, conv.ID)
	if err != nil || !done {
		t.Fatalf("Resolve: done=%v err=%v", done, err)
	}
}

func TestRegisterRoutes_IdempotencyCallback_MissAndHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := config.Config{
		APIBasePath: "/api/vX",
		RateRPS:     100,
		RateBurst:   10,
		JWTSecret:   "test-secret",
		JWTTTL:      time.Hour,
		CORS:        config.CORSConfig{}, // allow-all branch
		Security:    config.SecurityConfig{EnableHSTS: false},
		OTEL:        config.OTELConfig{ServiceName: "svc"},
	}
	db := newTestDB(t, "routerdb_idem")
	RegisterRoutes(r, db, testGraph(t), testIndexes(), cfg)

	const key = "key-hit"

	// --- MISS: record does not exist (executes 'rec == nil' branch) ---
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/health", bytes.NewBufferString("{}"))
	req.Header.Set(middleware.HeaderIdempotencyKey, key)
	r.ServeHTTP(w, req)
	// NoMethod is expected for POST /health, but middleware ran.

	// --- seed a receipt so the callback returns non-nil ---
	if _, err := repo.CreateIngestReceipt(context.Background(), db, "", key, 3, time.Hour); err != nil {
		t.Fatalf("seed receipt: %v", err)
	}

	// --- HIT: record exists (executes 'return true, nil' branch) ---
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/health", bytes.NewBufferString("{}"))
	req.Header.Set(middleware.HeaderIdempotencyKey, key)
	r.ServeHTTP(w, req)
	// again, 405 is fine; goal is to drive the middleware branch.
}

func TestRegisterRoutes_IdempotencyCallback_ErrorBranch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     100,
		RateBurst:   10,
		JWTSecret:   "test-secret",
		JWTTTL:      time.Hour,
		CORS:        config.CORSConfig{}, // allow-all branch
		Security:    config.SecurityConfig{EnableHSTS: false},
		OTEL:        config.OTELConfig{ServiceName: "svc"},
	}

	db := newTestDB(t, "routerdb_err")

	// Wire routes first...
	RegisterRoutes(r, db, testGraph(t), testIndexes(), cfg)

	// ...then force queries to fail by closing the underlying connection.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	_ = sqlDB.Close()

	// Now any repo.GetIngestReceipt call should error → drives (err != nil) branch.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/health", bytes.NewBufferString("{}"))
	req.Header.Set(middleware.HeaderIdempotencyKey, "force-error")
	r.ServeHTTP(w, req)

	// 405 is expected for POST /health; goal is to exercise the middleware branch.
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}
