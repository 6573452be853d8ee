// Package cache holds the precomputed birthday events for the rolling
// look-ahead window served by the dashboard. The cache is an explicit
// snapshot: Refresh builds a complete replacement map and swaps it in under
// the write lock, readers get copies. One writer at a time (the scheduler);
// concurrent readers are always consistent.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-birthday-bot/internal/domain"
	"github.com/tbourn/go-birthday-bot/internal/observability"
)

// EventLister produces the assembled events for one date.
type EventLister interface {
	EventsForDate(ctx context.Context, day time.Time) []domain.BirthdayEvent
}

// DayEvents groups the cached events of a single date for the dashboard.
type DayEvents struct {
	Date      string                 `json:"date"`
	DayOfWeek string                 `json:"day_of_week"`
	Events    []domain.BirthdayEvent `json:"events"`
}

// EventCache is the shared snapshot of upcoming birthday events.
// Safe for concurrent use.
type EventCache struct {
	mu        sync.RWMutex
	days      map[string]DayEvents
	updatedAt time.Time
}

// New returns an empty cache.
func New() *EventCache {
	return &EventCache{days: map[string]DayEvents{}}
}

// Refresh recomputes the snapshot for [from, from+lookAheadDays] and swaps it
// in. Dates without events are omitted. Each date's computation only reads
// shared tables and writes distinct message keys, so a refresh may safely
// overlap an interactive regeneration.
func (c *EventCache) Refresh(ctx context.Context, svc EventLister, from time.Time, lookAheadDays int) {
	start := time.Now()
	next := make(map[string]DayEvents)
	for i := 0; i <= lookAheadDays; i++ {
		day := from.AddDate(0, 0, i)
		events := svc.EventsForDate(ctx, day)
		if len(events) == 0 {
			continue
		}
		key := day.Format(domain.DateLayout)
		next[key] = DayEvents{
			Date:      key,
			DayOfWeek: day.Weekday().String(),
			Events:    events,
		}
	}

	c.mu.Lock()
	c.days = next
	c.updatedAt = time.Now().UTC()
	c.mu.Unlock()

	observability.CacheRefreshDuration.Observe(time.Since(start).Seconds())
	log.Info().
		Int("days_with_events", len(next)).
		Int("look_ahead_days", lookAheadDays).
		Dur("took", time.Since(start)).
		Msg("birthday cache updated")
}

// Days returns a copy of the snapshot keyed by date.
func (c *EventCache) Days() map[string]DayEvents {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]DayEvents, len(c.days))
	for k, v := range c.days {
		out[k] = v
	}
	return out
}

// Size returns the number of dates with cached events.
func (c *EventCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.days)
}

// UpdatedAt returns the time of the last completed refresh (zero before the
// first one).
func (c *EventCache) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}
