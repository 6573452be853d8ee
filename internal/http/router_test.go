package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-birthday-bot/internal/cache"
	"github.com/tbourn/go-birthday-bot/internal/config"
	"github.com/tbourn/go-birthday-bot/internal/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dataDir := t.TempDir()
	aliasSvc := services.NewAliasService(dataDir)
	promptSvc := services.NewPromptService(dataDir)
	birthdaySvc := &services.BirthdayService{
		Aliases: aliasSvc,
	}

	cfg := config.Config{
		APIBasePath: "/api",
		RateRPS:     100,
		RateBurst:   100,
		Security:    config.SecurityConfig{HSTSMaxAge: 180 * 24 * time.Hour},
	}

	r := gin.New()
	RegisterRoutes(r, Deps{
		Birthdays: birthdaySvc,
		Aliases:   aliasSvc,
		Prompts:   promptSvc,
		Events:    cache.New(),
	}, cfg)
	return r
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected a request id on every response")
	}
}

func TestRouter_PromptTemplateEndToEnd(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/prompt-template", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "{employee_name}") {
		t.Fatalf("expected the default template served, got %s", w.Body.String())
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not_found") {
		t.Fatalf("expected the JSON error envelope, got %s", w.Body.String())
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
