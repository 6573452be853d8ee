// Package scheduler drives the recurring jobs: the daily send pass at a fixed
// local hour and the periodic cache refresh. Jobs run in the configured
// timezone so "today" matches the team's calendar day, not the container's.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-birthday-bot/internal/cache"
)

// Pipeline is the slice of the birthday service the scheduler needs.
type Pipeline interface {
	cache.EventLister
	SendForDate(ctx context.Context, day time.Time) []string
}

// Options configures the schedule.
type Options struct {
	// Location is the timezone for the daily send (and "today").
	Location *time.Location
	// SendHour is the local hour (0-23) of the daily send pass.
	SendHour int
	// RefreshEveryHours is the cache refresh cadence.
	RefreshEveryHours int
	// LookAheadDays is the rolling window rebuilt on each refresh.
	LookAheadDays int
	// JobTimeout bounds one scheduled run end to end.
	JobTimeout time.Duration
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron *cron.Cron
}

// Start registers the jobs and starts the runner. The daily job refreshes the
// cache first so the send pass works from the latest messages, matching the
// interactive flow.
func Start(svc Pipeline, events *cache.EventCache, opts Options) (*Scheduler, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	timeout := opts.JobTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	c := cron.New(cron.WithLocation(loc))

	refresh := func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		events.Refresh(ctx, svc, time.Now().In(loc), opts.LookAheadDays)
	}

	daily := func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		today := time.Now().In(loc)
		log.Info().Str("date", today.Format("2006-01-02")).Msg("running daily birthday check")
		events.Refresh(ctx, svc, today, opts.LookAheadDays)
		svc.SendForDate(ctx, today)
	}

	if _, err := c.AddFunc(fmt.Sprintf("0 %d * * *", opts.SendHour), daily); err != nil {
		return nil, fmt.Errorf("schedule daily send: %w", err)
	}
	if _, err := c.AddFunc(fmt.Sprintf("0 */%d * * *", opts.RefreshEveryHours), refresh); err != nil {
		return nil, fmt.Errorf("schedule cache refresh: %w", err)
	}

	c.Start()
	log.Info().
		Int("send_hour", opts.SendHour).
		Str("timezone", loc.String()).
		Int("refresh_every_hours", opts.RefreshEveryHours).
		Msg("scheduler started")
	return &Scheduler{cron: c}, nil
}

// Stop halts the runner and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("scheduler stopped")
}
