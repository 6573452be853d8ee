// Package services – PromptService
//
// This file implements prompt template versioning. Exactly one template is
// current at a time; every change pushes the previous current text into an
// append-only history before overwriting, and history entries can be
// reactivated (which again pushes the template they replace). Templates are
// validated on every update: both {employee_name} and {birthday_date} must be
// present or the update is rejected with state unchanged.
package services

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-birthday-bot/internal/domain"
	"github.com/tbourn/go-birthday-bot/internal/repo"
)

// Placeholders every template must contain.
const (
	PlaceholderName = "{employee_name}"
	PlaceholderDate = "{birthday_date}"
)

// CurrentPromptID is the synthetic history id representing the active template.
const CurrentPromptID = "current"

// DefaultPromptTemplate is written on first start when no template file exists.
const DefaultPromptTemplate = `It looks like {employee_name} has a birthday coming up on {birthday_date}. Write a witty POSITIVE slack message that mentions something POSITIVE or HAPPY that happened on their birthday in history, and end it with "and also {employee_name} was born. Happy Birthday {employee_name}!"

Make sure the historical fact is:
- Genuinely positive and uplifting
- Interesting and engaging
- Appropriate for a workplace setting
- Not controversial or sensitive

The message should be:
- Warm and celebratory
- Professional but fun
- About 2-3 sentences total
- Ready to post directly to Slack`

// PromptService owns the current template and its history.
// Safe for concurrent use.
type PromptService struct {
	mu          sync.Mutex
	tmplPath    string
	historyPath string
	current     string
	history     []domain.PromptRecord
}

// NewPromptService loads the template and history from dataDir. When no
// template file exists the default template is written and used.
func NewPromptService(dataDir string) *PromptService {
	s := &PromptService{
		tmplPath:    repo.PromptPath(dataDir),
		historyPath: repo.PromptHistoryPath(dataDir),
	}

	tmpl, ok, err := repo.LoadPromptTemplate(s.tmplPath)
	if err != nil {
		log.Error().Err(err).Str("path", s.tmplPath).Msg("failed to load prompt template, using default")
	}
	if !ok || tmpl == "" {
		tmpl = DefaultPromptTemplate
		if err := repo.SavePromptTemplate(s.tmplPath, tmpl); err != nil {
			log.Error().Err(err).Str("path", s.tmplPath).Msg("failed to save default prompt template")
		}
	}
	s.current = tmpl

	history, err := repo.LoadPromptHistory(s.historyPath)
	if err != nil {
		log.Error().Err(err).Str("path", s.historyPath).Msg("failed to load prompt history, starting fresh")
		history = nil
	}
	s.history = history

	return s
}

// Current returns the active template text.
func (s *PromptService) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update replaces the active template. The new text must contain both
// required placeholders or ErrMissingPlaceholder is returned and nothing
// changes (the rejected text never enters history). When the new text differs
// from the current one, the previous current is appended to history with the
// given description before being overwritten.
func (s *PromptService) Update(newTemplate, description string) error {
	if !strings.Contains(newTemplate, PlaceholderName) || !strings.Contains(newTemplate, PlaceholderDate) {
		return ErrMissingPlaceholder
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if newTemplate != s.current {
		s.pushHistoryLocked(s.current, description)
	}
	s.current = newTemplate
	if err := repo.SavePromptTemplate(s.tmplPath, s.current); err != nil {
		log.Error().Err(err).Str("path", s.tmplPath).Msg("failed to save prompt template")
	}

	log.Info().Msg("prompt template updated")
	return nil
}

// History returns the template history: a synthetic first entry for the
// active template (id "current", active true) followed by the stored records
// in append order (oldest first). Callers wanting newest-first must reverse.
func (s *PromptService) History() []domain.PromptHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.PromptHistoryEntry, 0, len(s.history)+1)
	out = append(out, domain.PromptHistoryEntry{
		ID:          CurrentPromptID,
		Template:    s.current,
		Description: "Currently active prompt",
		CreatedAt:   time.Now().UTC(),
		Active:      true,
	})
	for _, rec := range s.history {
		out = append(out, domain.PromptHistoryEntry{
			ID:          strconv.Itoa(rec.ID),
			Template:    rec.Template,
			Description: rec.Description,
			CreatedAt:   rec.CreatedAt,
			Active:      rec.Active,
		})
	}
	return out
}

// Activate promotes the history entry with the given id to the current
// template, pushing the replaced template into history first. The id
// "current" is a no-op success. Returns false when no entry matches.
func (s *PromptService) Activate(id string) bool {
	if id == CurrentPromptID {
		return true
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.history {
		if rec.ID != n {
			continue
		}
		if rec.Template != s.current {
			s.pushHistoryLocked(s.current, fmt.Sprintf("Replaced by reactivating prompt %d", n))
		}
		s.current = rec.Template
		if err := repo.SavePromptTemplate(s.tmplPath, s.current); err != nil {
			log.Error().Err(err).Str("path", s.tmplPath).Msg("failed to save prompt template")
		}
		log.Info().Int("prompt_id", n).Msg("prompt template reactivated from history")
		return true
	}
	return false
}

// pushHistoryLocked appends template to history with the next integer id.
// Callers must hold s.mu.
func (s *PromptService) pushHistoryLocked(template, description string) {
	next := 1
	for _, rec := range s.history {
		if rec.ID >= next {
			next = rec.ID + 1
		}
	}
	s.history = append(s.history, domain.PromptRecord{
		ID:          next,
		Template:    template,
		Description: description,
		CreatedAt:   time.Now().UTC(),
		Active:      false,
	})
	if err := repo.SavePromptHistory(s.historyPath, s.history); err != nil {
		log.Error().Err(err).Str("path", s.historyPath).Msg("failed to save prompt history")
	}
}
