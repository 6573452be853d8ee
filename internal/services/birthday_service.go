// Package services – BirthdayService
//
// This file implements the event assembly pipeline: for a given date it
// extracts raw birthday entries from the calendar feed, resolves each name
// through the alias table, validates the person against the directory, and
// attaches the stored (or freshly generated) message. The send path walks the
// assembled events and delivers eligible, not-yet-sent messages to the chat
// channel, marking each successful delivery.
//
// Error policy: collaborator failures never abort a batch. A feed failure
// yields an empty event list, a directory failure yields validity false, and
// a delivery failure for one recipient is logged and skipped while the rest
// proceed.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-birthday-bot/internal/domain"
)

// CalendarFeed extracts raw birthday entries for one date.
type CalendarFeed interface {
	// BirthdayEntries returns the feed entries whose start date equals day.
	BirthdayEntries(ctx context.Context, day time.Time) ([]domain.CalendarEntry, error)
}

// DirectoryClient answers whether a uid belongs to an active, known member.
// Implementations must fail closed: any lookup problem reports false.
type DirectoryClient interface {
	IsValidMember(ctx context.Context, uid string) bool
}

// Notifier delivers a message to the team chat channel.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// IdentityResolver maps raw calendar names to display names and uids.
type IdentityResolver interface {
	ResolveDisplayName(calendarName string) string
	ResolveUID(calendarName string) string
}

// StatusFlags captures which collaborators were configured at startup.
type StatusFlags struct {
	ICSConfigured        bool
	WebhookConfigured    bool
	LDAPConfigured       bool
	SearchBaseConfigured bool
}

// BirthdayService orchestrates the pipeline. Messages may be nil when no
// generative backend is configured; valid recipients then get a fixed
// non-personalized greeting instead of a stored message.
type BirthdayService struct {
	Aliases   IdentityResolver
	Messages  *MessageService
	Calendar  CalendarFeed
	Directory DirectoryClient
	Notifier  Notifier
	Flags     StatusFlags
}

// EventsForDate assembles the birthday events for day. A feed error is logged
// and treated as "no events"; an empty feed is an empty list, not an error.
func (s *BirthdayService) EventsForDate(ctx context.Context, day time.Time) []domain.BirthdayEvent {
	entries, err := s.Calendar.BirthdayEntries(ctx, day)
	if err != nil {
		log.Error().Err(err).Str("date", day.Format(domain.DateLayout)).Msg("calendar extraction failed")
		return nil
	}

	events := make([]domain.BirthdayEvent, 0, len(entries))
	for _, e := range entries {
		name := s.Aliases.ResolveDisplayName(e.Name)
		uid := s.Aliases.ResolveUID(e.Name)
		valid := s.Directory.IsValidMember(ctx, uid)

		var message *string
		var record *domain.GeneratedMessage
		if valid {
			if s.Messages != nil {
				rec := s.Messages.GetOrCreate(ctx, name, day, false)
				record = &rec
				message = &rec.Message
			} else {
				text := fmt.Sprintf(":birthday: Happy Birthday %s! :tada:", name)
				message = &text
			}
		}

		events = append(events, domain.BirthdayEvent{
			Name:        name,
			Summary:     e.Summary,
			Date:        day.Format(domain.DateLayout),
			LDAPValid:   valid,
			WillSend:    valid,
			Message:     message,
			MessageData: record,
		})
	}

	log.Info().
		Str("date", day.Format(domain.DateLayout)).
		Int("events", len(events)).
		Msg("assembled birthday events")
	return events
}

// SendForDate delivers the eligible messages for day and returns the texts
// actually sent. A recipient already sent within the suppression window is
// skipped; a delivery failure is logged, not marked sent, and does not stop
// the remaining recipients.
func (s *BirthdayService) SendForDate(ctx context.Context, day time.Time) []string {
	events := s.EventsForDate(ctx, day)

	var sent []string
	for _, ev := range events {
		if !ev.WillSend || ev.Message == nil {
			continue
		}
		if s.Messages != nil && s.Messages.WasSentToday(ev.Name, day) {
			log.Info().Str("name", ev.Name).Msg("skipping, message already sent today")
			continue
		}
		if err := s.Notifier.Send(ctx, *ev.Message); err != nil {
			log.Error().Err(err).Str("name", ev.Name).Msg("failed to send birthday message")
			continue
		}
		sent = append(sent, *ev.Message)
		if s.Messages != nil {
			s.Messages.MarkSent(ev.Name, day, *ev.Message)
		}
		log.Info().Str("name", ev.Name).Msg("sent birthday message")
	}

	log.Info().
		Str("date", day.Format(domain.DateLayout)).
		Int("sent", len(sent)).
		Msg("send pass completed")
	return sent
}

// Regenerate deletes any stored message for (name, date) and generates a new
// one. Returns ErrGeneratorDisabled when no backend is configured.
func (s *BirthdayService) Regenerate(ctx context.Context, name string, date time.Time) (*domain.GeneratedMessage, error) {
	if s.Messages == nil {
		return nil, ErrGeneratorDisabled
	}
	s.Messages.Delete(name, date)
	rec := s.Messages.GetOrCreate(ctx, name, date, true)
	return &rec, nil
}

// UpdateMessage applies a manual edit to the stored message for (name, date).
func (s *BirthdayService) UpdateMessage(name string, date time.Time, text string) error {
	if s.Messages == nil {
		return ErrGeneratorDisabled
	}
	if !s.Messages.Update(name, date, text) {
		return ErrMessageNotFound
	}
	return nil
}

// ClearSent removes the sent record for (name, date) so the next send pass
// may deliver again.
func (s *BirthdayService) ClearSent(name string, date time.Time) error {
	if s.Messages == nil {
		return ErrGeneratorDisabled
	}
	s.Messages.ClearSent(name, date)
	return nil
}

// Status reports which collaborators are configured.
func (s *BirthdayService) Status() domain.ServiceStatus {
	return domain.ServiceStatus{
		ICSConfigured:        s.Flags.ICSConfigured,
		WebhookConfigured:    s.Flags.WebhookConfigured,
		LDAPConfigured:       s.Flags.LDAPConfigured,
		SearchBaseConfigured: s.Flags.SearchBaseConfigured,
		OpenAIConfigured:     s.Messages != nil,
	}
}
