// Package calendar fetches the shared birthday calendar and extracts the
// entries relevant to a single date. A birthday entry is an event starting on
// the target date whose summary carries a hyphen separating the person's name
// from the descriptive suffix ("John Doe - Birthday"); summaries without a
// hyphen are not birthdays and are skipped silently.
package calendar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-birthday-bot/internal/domain"
)

// maxFeedBytes caps how much of the feed body is read.
const maxFeedBytes = 10 << 20

// Feed downloads and parses the ICS calendar at URL.
type Feed struct {
	URL    string
	Client *http.Client
}

// NewFeed returns a Feed with a bounded-timeout HTTP client.
func NewFeed(url string) *Feed {
	return &Feed{
		URL:    url,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch downloads the raw ICS bytes, rejecting responses that are not
// text/calendar.
func (f *Feed) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar fetch returned status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/calendar") {
		return nil, fmt.Errorf("calendar fetch returned content-type %q, want text/calendar", ct)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
}

// BirthdayEntries downloads the feed and extracts the birthday entries whose
// start date equals day.
func (f *Feed) BirthdayEntries(ctx context.Context, day time.Time) ([]domain.CalendarEntry, error) {
	data, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return ExtractEntries(data, day)
}

// ExtractEntries parses raw ICS bytes and returns the birthday entries
// starting on day. Malformed feed content is a parse error; callers treat it
// as "no events for this date" and log.
func ExtractEntries(data []byte, day time.Time) ([]domain.CalendarEntry, error) {
	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	var entries []domain.CalendarEntry
	for _, ev := range cal.Events() {
		start, err := eventStart(ev)
		if err != nil {
			log.Debug().Err(err).Msg("skipping event without usable start date")
			continue
		}
		if !sameDate(start, day) {
			continue
		}

		summaryProp := ev.GetProperty(ics.ComponentPropertySummary)
		if summaryProp == nil {
			continue
		}
		summary := summaryProp.Value
		if !strings.Contains(summary, "-") {
			// Not a birthday entry.
			continue
		}
		name := strings.TrimSpace(strings.SplitN(summary, "-", 2)[0])
		if name == "" {
			continue
		}
		entries = append(entries, domain.CalendarEntry{Name: name, Summary: summary})
	}
	return entries, nil
}

// eventStart resolves DTSTART for timed and all-day events alike.
func eventStart(ev *ics.VEvent) (time.Time, error) {
	if t, err := ev.GetStartAt(); err == nil {
		return t, nil
	}
	return ev.GetAllDayStartAt()
}

// sameDate compares calendar dates, ignoring time of day and zone offset.
func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
