// Birthday dashboard HTTP handlers.
//
// This file exposes the read side of the API:
//   - GET /birthdays  (cached upcoming events, or one live-assembled date)
//   - GET /status     (configuration flags and cache freshness)
//   - GET /health     (liveness, uptime)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-birthday-bot/internal/cache"
	"github.com/tbourn/go-birthday-bot/internal/domain"
)

//
// Service contracts (context-aware)
//

// BirthdayService defines the pipeline operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type BirthdayService interface {
	// EventsForDate assembles the birthday events for one date.
	EventsForDate(ctx context.Context, day time.Time) []domain.BirthdayEvent
	// Regenerate discards and regenerates the stored message for (name, date).
	Regenerate(ctx context.Context, name string, date time.Time) (*domain.GeneratedMessage, error)
	// UpdateMessage applies a manual edit to the stored message for (name, date).
	UpdateMessage(name string, date time.Time, text string) error
	// ClearSent removes the sent record for (name, date).
	ClearSent(name string, date time.Time) error
	// Status reports which collaborators are configured.
	Status() domain.ServiceStatus
}

// AliasService defines alias table operations consumed by HTTP handlers.
type AliasService interface {
	// GetAll returns a copy of the whole alias table.
	GetAll() map[string]domain.Alias
	// Get returns the alias for calendarName, or nil when absent.
	Get(calendarName string) *domain.Alias
	// Register creates a new alias for calendarName.
	Register(calendarName, displayName, notes string) (*domain.Alias, error)
	// Update changes the display name (and derived uid) of an existing alias.
	Update(calendarName, displayName string, notes *string) (*domain.Alias, error)
	// Remove deletes the alias for calendarName, reporting whether it existed.
	Remove(calendarName string) bool
}

// PromptService defines prompt template operations consumed by HTTP handlers.
type PromptService interface {
	// Current returns the active template text.
	Current() string
	// Update replaces the active template, validating placeholders.
	Update(newTemplate, description string) error
	// History returns the active template followed by the stored records.
	History() []domain.PromptHistoryEntry
	// Activate promotes a history entry to the current template.
	Activate(id string) bool
}

// EventSource is the read side of the upcoming-events cache.
type EventSource interface {
	Days() map[string]cache.DayEvents
	Size() int
	UpdatedAt() time.Time
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for birthdays, messages, prompt
// templates, and aliases. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	birthdaySvc BirthdayService
	aliasSvc    AliasService
	promptSvc   PromptService
	events      EventSource
	startedAt   time.Time
}

// New constructs and returns a Handlers instance bound to the given services.
func New(birthdaySvc BirthdayService, aliasSvc AliasService, promptSvc PromptService, events EventSource) *Handlers {
	return &Handlers{
		birthdaySvc: birthdaySvc,
		aliasSvc:    aliasSvc,
		promptSvc:   promptSvc,
		events:      events,
		startedAt:   time.Now(),
	}
}

//
// DTOs
//

// BirthdaysResponse wraps the upcoming birthday events keyed by date.
type BirthdaysResponse struct {
	Birthdays map[string]cache.DayEvents `json:"birthdays"`
	TotalDays int                        `json:"total_days"`
	UpdatedAt *time.Time                 `json:"updated_at,omitempty"`
}

// StatusResponse reports configuration and cache freshness for the dashboard.
type StatusResponse struct {
	Status         string               `json:"status" example:"ok"`
	Configuration  domain.ServiceStatus `json:"configuration"`
	CachedDays     int                  `json:"cached_days"`
	CacheUpdatedAt *time.Time           `json:"cache_updated_at,omitempty"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Uptime string `json:"uptime" example:"1h2m3s"`
}

//
// Helpers
//

// parseDate parses a YYYY-MM-DD value, failing the request with a 400 when
// invalid. The boolean reports success.
func parseDate(c *gin.Context, value string) (time.Time, bool) {
	d, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}

//
// Handlers
//

// ListBirthdays godoc
// @ID          listBirthdays
// @Summary     List upcoming birthdays
// @Description Returns the cached upcoming birthday events keyed by date. When
// @Description the optional date query parameter is given, the events for that
// @Description single date are assembled live instead (reflecting edits that
// @Description the cache has not picked up yet).
// @Tags        Birthdays
// @Produce     json
//
// @Param       date  query  string  false "Assemble events live for this date"  format(date) example(2026-03-15)
//
// @Success     200  {object}  handlers.BirthdaysResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /birthdays [get]
func (h *Handlers) ListBirthdays(c *gin.Context) {
	if raw := c.Query("date"); raw != "" {
		day, okDate := parseDate(c, raw)
		if !okDate {
			return
		}
		events := h.birthdaySvc.EventsForDate(c.Request.Context(), day)
		key := day.Format(domain.DateLayout)
		days := map[string]cache.DayEvents{}
		if len(events) > 0 {
			days[key] = cache.DayEvents{
				Date:      key,
				DayOfWeek: day.Weekday().String(),
				Events:    events,
			}
		}
		ok(c, http.StatusOK, BirthdaysResponse{Birthdays: days, TotalDays: len(days)})
		return
	}

	days := h.events.Days()
	resp := BirthdaysResponse{
		Birthdays: days,
		TotalDays: len(days),
	}
	if ts := h.events.UpdatedAt(); !ts.IsZero() {
		resp.UpdatedAt = &ts
	}
	ok(c, http.StatusOK, resp)
}

// GetStatus godoc
// @ID          getStatus
// @Summary     Service status
// @Description Reports which collaborators are configured and how fresh the
// @Description event cache is.
// @Tags        Status
// @Produce     json
//
// @Success     200  {object}  handlers.StatusResponse
// @Router      /status [get]
func (h *Handlers) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		Status:        "ok",
		Configuration: h.birthdaySvc.Status(),
		CachedDays:    h.events.Size(),
	}
	if ts := h.events.UpdatedAt(); !ts.IsZero() {
		resp.CacheUpdatedAt = &ts
	}
	ok(c, http.StatusOK, resp)
}

// GetHealth godoc
// @ID          getHealth
// @Summary     Liveness check
// @Tags        Status
// @Produce     json
//
// @Success     200  {object}  handlers.HealthResponse
// @Router      /health [get]
func (h *Handlers) GetHealth(c *gin.Context) {
	ok(c, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(h.startedAt).Round(time.Second).String(),
	})
}
