package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func get(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID_Generated(t *testing.T) {
	r := newRouter(RequestID())
	w := get(r, nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected a generated request id")
	}
}

func TestRequestID_Propagated(t *testing.T) {
	r := newRouter(RequestID())
	w := get(r, map[string]string{"X-Request-ID": "rid-123"})
	if got := w.Header().Get("X-Request-ID"); got != "rid-123" {
		t.Fatalf("expected the incoming id echoed, got %q", got)
	}
}

func TestRecovery_PanicTo500(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, "internal_error") {
		t.Fatalf("expected a JSON error body, got %q", body)
	}
}

func TestRateLimiter_Exhausted(t *testing.T) {
	// rps 0 with burst 2: the first two requests pass, the third is rejected.
	rl := NewRateLimiter(0, 2, KeyByIP())
	r := newRouter(rl.Handler())

	for i := 0; i < 2; i++ {
		if w := get(r, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, w.Code)
		}
	}
	w := get(r, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after the burst, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected a Retry-After header")
	}
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	r := newRouter(SecurityHeaders(SecurityOptions{EnablePolicy: true, NoStore: true}))
	w := get(r, nil)

	checks := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
		"Cache-Control":          "no-store",
	}
	for k, want := range checks {
		if got := w.Header().Get(k); got != want {
			t.Fatalf("%s = %q, want %q", k, got, want)
		}
	}
	if w.Header().Get("Permissions-Policy") == "" {
		t.Fatalf("expected a Permissions-Policy header")
	}
}

func TestSecurityHeaders_HSTSOnlyOverHTTPS(t *testing.T) {
	r := newRouter(SecurityHeaders(SecurityOptions{EnableHSTS: true, HSTSMaxAge: 24 * time.Hour}))

	if w := get(r, nil); w.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must not be emitted for plain HTTP")
	}
	w := get(r, map[string]string{"X-Forwarded-Proto": "https"})
	if got := w.Header().Get("Strict-Transport-Security"); !strings.Contains(got, "max-age=86400") {
		t.Fatalf("expected HSTS for forwarded HTTPS, got %q", got)
	}
}

func TestLoggerFrom_Fallback(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if lg := LoggerFrom(c); lg == nil {
		t.Fatalf("expected a fallback logger, got nil")
	}
}
