package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters_InflightAndPathFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())

	r.GET("/flow/start", func(c *gin.Context) {
		c.String(http.StatusOK, "hello")
	})
	// 204 leaves the writer size at -1, which skips the size histogram.
	r.GET("/reset", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	// Baselines first; the registry is shared across tests.
	baseOK := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/flow/start", "200"))
	base404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/nope", "404"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/flow/start", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /flow/start -> %d", w.Code)
	}

	// Unrouted request: the path label falls back to the raw URL.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope -> %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reset", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("GET /reset -> %d", w.Code)
	}

	gotOK := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/flow/start", "200"))
	if gotOK != baseOK+1 {
		t.Fatalf("counter /flow/start 200 = %v; want %v", gotOK, baseOK+1)
	}
	got404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/nope", "404"))
	if got404 != base404+1 {
		t.Fatalf("counter 404 fallback = %v; want %v", got404, base404+1)
	}

	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("httpInflight = %v; want 0", inFlight)
	}
}
