// Package services – AliasService
//
// This file implements the identity resolver: the mapping from raw calendar
// names to canonical display names and LDAP uids. Resolution never performs
// I/O beyond the alias table itself; unregistered names resolve to themselves
// with a deterministic uid derived from the name (trim, lowercase, spaces to
// dots). Aliases are only ever created by explicit registration, never as a
// side effect of a lookup.
package services

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-birthday-bot/internal/domain"
	"github.com/tbourn/go-birthday-bot/internal/repo"
)

// lowercaser folds names to lowercase for uid derivation. Und keeps the fold
// locale-independent so the same name always derives the same uid.
var lowercaser = cases.Lower(language.Und)

// DeriveUID converts a display name to LDAP uid form: surrounding whitespace
// trimmed, internal spaces replaced with dots, lowercased.
// Example: "John Doe" -> "john.doe". Pure and deterministic.
func DeriveUID(name string) string {
	return lowercaser.String(strings.ReplaceAll(strings.TrimSpace(name), " ", "."))
}

// AliasService owns the alias table. All methods are safe for concurrent use;
// reads return copies so callers cannot mutate internal state.
type AliasService struct {
	mu      sync.Mutex
	path    string
	aliases map[string]domain.Alias
}

// NewAliasService loads the alias table from dataDir. A missing or unreadable
// table starts empty (the table is rewritten on the first mutation).
func NewAliasService(dataDir string) *AliasService {
	path := repo.AliasesPath(dataDir)
	aliases, err := repo.LoadAliases(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to load aliases, starting fresh")
		aliases = map[string]domain.Alias{}
	}
	return &AliasService{path: path, aliases: aliases}
}

// ResolveDisplayName returns the registered display name for calendarName, or
// calendarName unchanged when no alias exists (unresolved names are treated
// as already canonical).
func (s *AliasService) ResolveDisplayName(calendarName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.aliases[calendarName]; ok && a.DisplayName != "" {
		return a.DisplayName
	}
	return calendarName
}

// ResolveUID returns the stored LDAP uid for calendarName, or derives one
// from the calendar name when no alias exists.
func (s *AliasService) ResolveUID(calendarName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.aliases[calendarName]; ok && a.LDAPUID != "" {
		return a.LDAPUID
	}
	return DeriveUID(calendarName)
}

// Has reports whether an alias is registered for calendarName.
func (s *AliasService) Has(calendarName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.aliases[calendarName]
	return ok
}

// Get returns a copy of the alias for calendarName, or nil when absent.
func (s *AliasService) Get(calendarName string) *domain.Alias {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.aliases[calendarName]; ok {
		cp := a
		return &cp
	}
	return nil
}

// GetAll returns a copy of the whole alias table.
func (s *AliasService) GetAll() map[string]domain.Alias {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.Alias, len(s.aliases))
	for k, v := range s.aliases {
		out[k] = v
	}
	return out
}

// Register creates a new alias for calendarName. The uid is computed from
// displayName with DeriveUID. Returns ErrAliasExists when calendarName is
// already registered; the existing alias is untouched.
func (s *AliasService) Register(calendarName, displayName, notes string) (*domain.Alias, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.aliases[calendarName]; ok {
		return nil, ErrAliasExists
	}

	a := domain.Alias{
		DisplayName: displayName,
		LDAPUID:     DeriveUID(displayName),
		CreatedAt:   time.Now().UTC(),
		Notes:       notes,
	}
	s.aliases[calendarName] = a
	s.persistLocked()

	log.Info().
		Str("calendar_name", calendarName).
		Str("display_name", displayName).
		Str("ldap_uid", a.LDAPUID).
		Msg("alias registered")
	cp := a
	return &cp, nil
}

// Update changes the display name (and recomputes the uid) of an existing
// alias. A nil notes pointer keeps the stored notes; a non-nil pointer
// replaces them, empty string included. Returns ErrAliasNotFound when no
// alias exists for calendarName.
func (s *AliasService) Update(calendarName, displayName string, notes *string) (*domain.Alias, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.aliases[calendarName]
	if !ok {
		return nil, ErrAliasNotFound
	}

	a.DisplayName = displayName
	a.LDAPUID = DeriveUID(displayName)
	if notes != nil {
		a.Notes = *notes
	}
	s.aliases[calendarName] = a
	s.persistLocked()

	log.Info().
		Str("calendar_name", calendarName).
		Str("display_name", displayName).
		Str("ldap_uid", a.LDAPUID).
		Msg("alias updated")
	cp := a
	return &cp, nil
}

// Remove deletes the alias for calendarName. Returns false when absent.
func (s *AliasService) Remove(calendarName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.aliases[calendarName]; !ok {
		return false
	}
	delete(s.aliases, calendarName)
	s.persistLocked()

	log.Info().Str("calendar_name", calendarName).Msg("alias removed")
	return true
}

// persistLocked writes the table to disk. Callers must hold s.mu. Save
// failures are logged, not propagated: in-memory state is authoritative for
// the life of the process and the next successful save catches up.
func (s *AliasService) persistLocked() {
	if err := repo.SaveAliases(s.path, s.aliases); err != nil {
		log.Error().Err(err).Str("path", s.path).Msg("failed to save aliases")
	}
}
