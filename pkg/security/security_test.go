package security

import (
	"course_advisor_backend/internal/config"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw)
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return router
}

func doRequest(router *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/ping", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_KeyedByCredential(t *testing.T) {
	router := newRouter(RateLimiter(1, time.Minute))

	// 同一IP下不同凭证各有独立配额
	if w := doRequest(router, map[string]string{"Authorization": "Bearer token-a"}); w.Code != http.StatusOK {
		t.Fatalf("first request token-a = %d, want 200", w.Code)
	}
	if w := doRequest(router, map[string]string{"Authorization": "Bearer token-a"}); w.Code != http.StatusTooManyRequests {
		t.Errorf("second request token-a = %d, want 429", w.Code)
	}
	if w := doRequest(router, map[string]string{"Authorization": "Bearer token-b"}); w.Code != http.StatusOK {
		t.Errorf("first request token-b = %d, want 200 (separate quota)", w.Code)
	}
}

func TestRateLimiter_AnonymousFallsBackToIP(t *testing.T) {
	router := newRouter(RateLimiter(1, time.Minute))

	if w := doRequest(router, nil); w.Code != http.StatusOK {
		t.Fatalf("first anonymous request = %d, want 200", w.Code)
	}
	if w := doRequest(router, nil); w.Code != http.StatusTooManyRequests {
		t.Errorf("second anonymous request = %d, want 429", w.Code)
	}
}

func TestCORS_OriginWhitelistAndConfiguredMethods(t *testing.T) {
	router := newRouter(CORS(config.CORSConfig{
		AllowedOrigins: []string{"http://localhost:5173"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	w := doRequest(router, map[string]string{"Origin": "http://localhost:5173"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q, want whitelisted origin echoed", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Errorf("Allow-Methods = %q, want configured set", got)
	}

	w = doRequest(router, map[string]string{"Origin": "http://evil.example.com"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin for unlisted origin = %q, want empty", got)
	}
}

func TestCORS_DefaultHeaderSet(t *testing.T) {
	router := newRouter(CORS(config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}))

	w := doRequest(router, map[string]string{"Origin": "http://localhost:3000"})
	if got := w.Header().Get("Access-Control-Allow-Headers"); got == "" {
		t.Error("Allow-Headers must fall back to the default set")
	}
}
