package services

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validTemplate = "Write a wish for {employee_name} born on {birthday_date}."

func newTestPromptService(t *testing.T) (*PromptService, string) {
	t.Helper()
	dir := t.TempDir()
	return NewPromptService(dir), dir
}

func TestPrompt_DefaultWrittenOnFirstStart(t *testing.T) {
	svc, dir := newTestPromptService(t)

	if svc.Current() != DefaultPromptTemplate {
		t.Fatalf("expected default template on first start")
	}
	data, err := os.ReadFile(filepath.Join(dir, "birthday_prompt.txt"))
	if err != nil {
		t.Fatalf("expected template file to be written: %v", err)
	}
	if !strings.Contains(string(data), PlaceholderName) {
		t.Fatalf("written template lacks the name placeholder")
	}
}

func TestPrompt_Update_MissingPlaceholder(t *testing.T) {
	svc, _ := newTestPromptService(t)
	before := svc.Current()

	cases := []string{
		"no placeholders at all",
		"only {employee_name}",
		"only {birthday_date}",
	}
	for _, tmpl := range cases {
		if err := svc.Update(tmpl, "bad"); !errors.Is(err, ErrMissingPlaceholder) {
			t.Fatalf("Update(%q): expected ErrMissingPlaceholder, got %v", tmpl, err)
		}
	}

	if svc.Current() != before {
		t.Fatalf("rejected update must leave the template unchanged")
	}
	if n := len(svc.History()); n != 1 {
		t.Fatalf("rejected update must not touch history, got %d entries", n)
	}
}

func TestPrompt_Update_ArchivesPrevious(t *testing.T) {
	svc, _ := newTestPromptService(t)

	if err := svc.Update(validTemplate, "shorter"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if svc.Current() != validTemplate {
		t.Fatalf("expected new template to be active")
	}

	hist := svc.History()
	if len(hist) != 2 {
		t.Fatalf("expected current + 1 archived entry, got %d", len(hist))
	}
	if hist[0].ID != CurrentPromptID || !hist[0].Active {
		t.Fatalf("expected first entry to be the active template, got %+v", hist[0])
	}
	if hist[1].Template != DefaultPromptTemplate {
		t.Fatalf("expected the replaced default template in history")
	}
	if hist[1].Description != "shorter" {
		t.Fatalf("expected history description %q, got %q", "shorter", hist[1].Description)
	}
	if hist[1].Active {
		t.Fatalf("archived entries must not be active")
	}
}

func TestPrompt_Update_SameTextNoHistory(t *testing.T) {
	svc, _ := newTestPromptService(t)

	if err := svc.Update(DefaultPromptTemplate, "noop"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if n := len(svc.History()); n != 1 {
		t.Fatalf("re-saving the active template must not grow history, got %d", n)
	}
}

func TestPrompt_Activate(t *testing.T) {
	svc, _ := newTestPromptService(t)
	if err := svc.Update(validTemplate, "v2"); err != nil {
		t.Fatalf("update: %v", err)
	}
	// History entry 1 now holds the default template.

	if !svc.Activate("1") {
		t.Fatalf("expected activation of entry 1 to succeed")
	}
	if svc.Current() != DefaultPromptTemplate {
		t.Fatalf("expected the archived default to be active again")
	}

	// The replaced template was archived with a reactivation description.
	hist := svc.History()
	last := hist[len(hist)-1]
	if last.Template != validTemplate {
		t.Fatalf("expected the replaced template at the end of history")
	}
	if !strings.Contains(last.Description, "reactivating prompt 1") {
		t.Fatalf("unexpected description %q", last.Description)
	}
}

func TestPrompt_Activate_CurrentIsNoop(t *testing.T) {
	svc, _ := newTestPromptService(t)
	if !svc.Activate(CurrentPromptID) {
		t.Fatalf("activating %q must succeed", CurrentPromptID)
	}
	if n := len(svc.History()); n != 1 {
		t.Fatalf("activating the current template must not grow history, got %d", n)
	}
}

func TestPrompt_Activate_UnknownID(t *testing.T) {
	svc, _ := newTestPromptService(t)
	if svc.Activate("42") {
		t.Fatalf("expected activation of unknown id to fail")
	}
	if svc.Activate("not-a-number") {
		t.Fatalf("expected activation of malformed id to fail")
	}
}

func TestPrompt_PersistenceAcrossRestart(t *testing.T) {
	svc, dir := newTestPromptService(t)
	if err := svc.Update(validTemplate, "v2"); err != nil {
		t.Fatalf("update: %v", err)
	}

	reloaded := NewPromptService(dir)
	if reloaded.Current() != validTemplate {
		t.Fatalf("expected active template to survive a reload")
	}
	if n := len(reloaded.History()); n != 2 {
		t.Fatalf("expected history to survive a reload, got %d entries", n)
	}
}
