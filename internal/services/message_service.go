// Package services – MessageService
//
// This file implements the message store: the idempotent, versioned cache of
// generated birthday messages keyed by (canonical name, date). Invariants:
//
//   - At most one record per key. GetOrCreate with regenerate=false returns
//     an existing record unchanged, manual edits included; only an explicit
//     regenerate or manual update replaces it.
//   - A generation failure stores a fixed celebratory fallback flagged
//     fallback=true with the error attached. The fallback is "the" message
//     for that key until explicitly regenerated.
//   - Historical facts extracted from generated text are accumulated per
//     person and fed back into future prompts as an exclusion list, so the
//     backend does not repeat itself year over year.
//   - A SentRecord within the last 24 hours suppresses re-delivery for the
//     same key until cleared.
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-birthday-bot/internal/domain"
	"github.com/tbourn/go-birthday-bot/internal/observability"
	"github.com/tbourn/go-birthday-bot/internal/repo"
)

// Generator is the opaque generative backend: prompt in, text out. The core
// gives it no retries; callers bound it with a context timeout.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PromptSource supplies the active prompt template.
type PromptSource interface {
	Current() string
}

// factMarker splits a generated message into historical fact and birthday
// wish. It matches the closing phrase the default template asks for; if an
// operator rewords the template the split simply finds nothing and the fact
// is not recorded (extraction is best-effort, never required for delivery).
const factMarker = "and also"

// factPrefixes are boilerplate lead-ins stripped from extracted facts.
var factPrefixes = []string{
	"On this day in history,",
	"On this day,",
}

// sentWindow is the suppression window after a successful delivery.
const sentWindow = 24 * time.Hour

// humanDateLayout renders dates inside prompts, e.g. "March 15".
const humanDateLayout = "January 2"

// MessageService owns the generated-message, sent-record, and fact-history
// tables. All methods are safe for concurrent use; the store is guarded by a
// single coarse lock, which is the intended granularity (last-write-wins per
// key when a cache refresh races an interactive regenerate).
type MessageService struct {
	mu        sync.Mutex
	msgsPath  string
	sentPath  string
	factsPath string

	generator Generator
	prompts   PromptSource

	messages map[string]domain.GeneratedMessage
	sent     map[string]domain.SentRecord
	facts    map[string][]string

	now func() time.Time // test seam
}

// NewMessageService loads the message tables from dataDir. Unreadable tables
// start empty and are rewritten on the first mutation.
func NewMessageService(dataDir string, prompts PromptSource, gen Generator) *MessageService {
	s := &MessageService{
		msgsPath:  repo.MessagesPath(dataDir),
		sentPath:  repo.SentPath(dataDir),
		factsPath: repo.FactHistoryPath(dataDir),
		generator: gen,
		prompts:   prompts,
		now:       func() time.Time { return time.Now().UTC() },
	}

	var err error
	if s.messages, err = repo.LoadMessages(s.msgsPath); err != nil {
		log.Error().Err(err).Str("path", s.msgsPath).Msg("failed to load messages, starting fresh")
		s.messages = map[string]domain.GeneratedMessage{}
	}
	if s.sent, err = repo.LoadSent(s.sentPath); err != nil {
		log.Error().Err(err).Str("path", s.sentPath).Msg("failed to load sent records, starting fresh")
		s.sent = map[string]domain.SentRecord{}
	}
	if s.facts, err = repo.LoadFactHistory(s.factsPath); err != nil {
		log.Error().Err(err).Str("path", s.factsPath).Msg("failed to load fact history, starting fresh")
		s.facts = map[string][]string{}
	}
	return s
}

// GetOrCreate returns the message for (name, date), generating one when none
// exists or when regenerate is true. An existing record is returned unchanged
// regardless of manual-edit status: manual edits always win over cache
// staleness, and only an explicit regenerate replaces them.
//
// The generative call happens under the store lock; this is the "whole store"
// locking granularity the design asks for, and callers are expected to bound
// the backend with a context timeout.
func (s *MessageService) GetOrCreate(ctx context.Context, name string, date time.Time, regenerate bool) domain.GeneratedMessage {
	key := domain.MessageKey(name, date)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !regenerate {
		if m, ok := s.messages[key]; ok {
			log.Debug().Str("key", key).Msg("using cached message")
			return m
		}
	}

	prompt := s.buildPromptLocked(name, date)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("message generation failed, storing fallback")
		rec := domain.GeneratedMessage{
			Message:      fmt.Sprintf("🎉 Happy Birthday %s! 🎂 Wishing you a fantastic day filled with joy and celebration!", name),
			GeneratedAt:  s.now(),
			EmployeeName: name,
			BirthdayDate: date.Format(domain.DateLayout),
			Regenerated:  regenerate,
			Fallback:     true,
			Error:        err.Error(),
		}
		s.messages[key] = rec
		s.persistMessagesLocked()
		observability.MessagesGenerated.WithLabelValues("fallback").Inc()
		return rec
	}

	fact := ExtractHistoricalFact(text)
	rec := domain.GeneratedMessage{
		Message:        text,
		HistoricalFact: fact,
		GeneratedAt:    s.now(),
		EmployeeName:   name,
		BirthdayDate:   date.Format(domain.DateLayout),
		Regenerated:    regenerate,
	}
	s.messages[key] = rec
	s.persistMessagesLocked()

	if fact != "" {
		s.recordFactLocked(name, fact)
	}

	observability.MessagesGenerated.WithLabelValues("generated").Inc()
	log.Info().Str("name", name).Str("key", key).Msg("generated birthday message")
	return rec
}

// Update overwrites the message text for an existing (name, date) record,
// marking it manually edited. Historical-fact and fallback fields are left
// untouched. Returns false when no record exists yet.
func (s *MessageService) Update(name string, date time.Time, newText string) bool {
	key := domain.MessageKey(name, date)

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[key]
	if !ok {
		return false
	}
	now := s.now()
	m.Message = newText
	m.ManuallyEdited = true
	m.EditedAt = &now
	s.messages[key] = m
	s.persistMessagesLocked()

	log.Info().Str("key", key).Msg("message manually updated")
	return true
}

// Get returns a copy of the stored message for (name, date), or nil.
func (s *MessageService) Get(name string, date time.Time) *domain.GeneratedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.messages[domain.MessageKey(name, date)]; ok {
		cp := m
		return &cp
	}
	return nil
}

// GetAll returns a copy of the whole message table.
func (s *MessageService) GetAll() map[string]domain.GeneratedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.GeneratedMessage, len(s.messages))
	for k, v := range s.messages {
		out[k] = v
	}
	return out
}

// Delete removes the stored message for (name, date), forcing the next
// GetOrCreate to regenerate.
func (s *MessageService) Delete(name string, date time.Time) {
	key := domain.MessageKey(name, date)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[key]; !ok {
		return
	}
	delete(s.messages, key)
	s.persistMessagesLocked()
	log.Info().Str("key", key).Msg("message deleted")
}

// MarkSent records a successful delivery for (name, date).
func (s *MessageService) MarkSent(name string, date time.Time, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sent[domain.SentKey(name, date)] = domain.SentRecord{
		Message: text,
		SentAt:  s.now(),
	}
	if err := repo.SaveSent(s.sentPath, s.sent); err != nil {
		log.Error().Err(err).Str("path", s.sentPath).Msg("failed to save sent records")
	}
}

// WasSentToday reports whether a delivery for (name, date) happened within
// the last 24 hours (strict window: exactly 24h ago no longer suppresses).
func (s *MessageService) WasSentToday(name string, date time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sent[domain.SentKey(name, date)]
	if !ok {
		return false
	}
	return s.now().Sub(rec.SentAt) < sentWindow
}

// ClearSent removes the sent record for (name, date), re-enabling delivery.
func (s *MessageService) ClearSent(name string, date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.SentKey(name, date)
	if _, ok := s.sent[key]; !ok {
		return
	}
	delete(s.sent, key)
	if err := repo.SaveSent(s.sentPath, s.sent); err != nil {
		log.Error().Err(err).Str("path", s.sentPath).Msg("failed to save sent records")
	}
	log.Info().Str("key", key).Msg("sent tracking cleared")
}

// FactsFor returns a copy of the historical facts already used for name.
func (s *MessageService) FactsFor(name string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.facts[name]...)
}

// generate invokes the backend, treating a missing backend as a failure so
// the fallback path applies uniformly.
func (s *MessageService) generate(ctx context.Context, prompt string) (string, error) {
	if s.generator == nil {
		return "", ErrGeneratorDisabled
	}
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// buildPromptLocked renders the active template for (name, date) and appends
// the numbered exclusion list of previously used facts. Callers must hold
// s.mu (it reads the fact history).
func (s *MessageService) buildPromptLocked(name string, date time.Time) string {
	prompt := strings.NewReplacer(
		PlaceholderName, name,
		PlaceholderDate, date.Format(humanDateLayout),
	).Replace(s.prompts.Current())

	previous := s.facts[name]
	if len(previous) == 0 {
		return prompt
	}

	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nDO NOT use these historical facts that were used in previous years:\n")
	for i, fact := range previous {
		fmt.Fprintf(&b, "%d. %s\n", i+1, fact)
	}
	b.WriteString("\nInstead, find a different positive historical fact from that date.")
	return b.String()
}

// recordFactLocked appends fact to name's history when novel. Callers must
// hold s.mu.
func (s *MessageService) recordFactLocked(name, fact string) {
	for _, f := range s.facts[name] {
		if f == fact {
			return
		}
	}
	s.facts[name] = append(s.facts[name], fact)
	if err := repo.SaveFactHistory(s.factsPath, s.facts); err != nil {
		log.Error().Err(err).Str("path", s.factsPath).Msg("failed to save fact history")
	}
}

// persistMessagesLocked writes the message table. Callers must hold s.mu.
func (s *MessageService) persistMessagesLocked() {
	if err := repo.SaveMessages(s.msgsPath, s.messages); err != nil {
		log.Error().Err(err).Str("path", s.msgsPath).Msg("failed to save messages")
	}
}

// ExtractHistoricalFact pulls the historical fact out of a generated message:
// the text before the first occurrence of the "and also" marker phrase
// (case-insensitive), with known boilerplate lead-ins removed. Returns ""
// when the marker is absent.
func ExtractHistoricalFact(message string) string {
	idx := strings.Index(strings.ToLower(message), factMarker)
	if idx < 0 {
		return ""
	}
	fact := strings.TrimSpace(message[:idx])
	for _, p := range factPrefixes {
		fact = strings.TrimSpace(strings.ReplaceAll(fact, p, ""))
	}
	return fact
}
