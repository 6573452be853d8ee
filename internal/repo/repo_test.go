package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/go-birthday-bot/internal/domain"
)

func TestReadJSON_MissingFile(t *testing.T) {
	var v map[string]string
	ok, err := readJSON(filepath.Join(t.TempDir(), "absent.json"), &v)
	if err != nil {
		t.Fatalf("missing file must not be an error, got %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for a missing file")
	}
}

func TestReadJSON_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var v map[string]string
	if _, err := readJSON(path, &v); err == nil {
		t.Fatalf("expected an error for corrupt JSON")
	}
}

func TestWriteJSON_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "table.json")
	if err := writeJSON(path, map[string]int{"a": 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected the file written: %v", err)
	}
}

func TestAliases_RoundTrip(t *testing.T) {
	path := AliasesPath(t.TempDir())

	in := map[string]domain.Alias{
		"Johnny D": {
			DisplayName: "John Doe",
			LDAPUID:     "john.doe",
			CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			Notes:       "nickname",
		},
	}
	if err := SaveAliases(path, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := LoadAliases(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got, ok := out["Johnny D"]
	if !ok {
		t.Fatalf("expected the alias back, got %v", out)
	}
	if got.DisplayName != "John Doe" || got.LDAPUID != "john.doe" || got.Notes != "nickname" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	// The on-disk envelope carries a last_modified stamp.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if !strings.Contains(string(raw), `"last_modified"`) {
		t.Fatalf("expected a last_modified field in the envelope")
	}
}

func TestAliases_MissingFileIsEmptyTable(t *testing.T) {
	out, err := LoadAliases(AliasesPath(t.TempDir()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected an empty non-nil table, got %v", out)
	}
}

func TestMessages_RoundTrip(t *testing.T) {
	path := MessagesPath(t.TempDir())
	edited := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)

	in := map[string]domain.GeneratedMessage{
		"John Doe_2026-03-15": {
			Message:        "Happy birthday!",
			HistoricalFact: "a fact",
			GeneratedAt:    time.Date(2026, 3, 15, 7, 0, 0, 0, time.UTC),
			EmployeeName:   "John Doe",
			BirthdayDate:   "2026-03-15",
			ManuallyEdited: true,
			EditedAt:       &edited,
		},
	}
	if err := SaveMessages(path, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := LoadMessages(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := out["John Doe_2026-03-15"]
	if got.Message != "Happy birthday!" || !got.ManuallyEdited || got.EditedAt == nil {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestFactHistory_RoundTrip(t *testing.T) {
	path := FactHistoryPath(t.TempDir())
	in := map[string][]string{"John Doe": {"fact one", "fact two"}}

	if err := SaveFactHistory(path, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := LoadFactHistory(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out["John Doe"]) != 2 || out["John Doe"][1] != "fact two" {
		t.Fatalf("round trip mismatch: %v", out)
	}
}

func TestPromptTemplate_RoundTrip(t *testing.T) {
	path := PromptPath(t.TempDir())

	tmpl, ok, err := LoadPromptTemplate(path)
	if err != nil || ok || tmpl != "" {
		t.Fatalf("expected (\"\", false, nil) for a missing template, got (%q, %v, %v)", tmpl, ok, err)
	}

	if err := SavePromptTemplate(path, "  hello {employee_name}  \n"); err != nil {
		t.Fatalf("save: %v", err)
	}
	tmpl, ok, err = LoadPromptTemplate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true after save")
	}
	if tmpl != "hello {employee_name}" {
		t.Fatalf("expected trimmed template, got %q", tmpl)
	}
}

func TestPromptHistory_RoundTrip(t *testing.T) {
	path := PromptHistoryPath(t.TempDir())

	in := []domain.PromptRecord{
		{ID: 1, Template: "v1", Description: "first", CreatedAt: time.Now().UTC()},
		{ID: 2, Template: "v2", Description: "second", CreatedAt: time.Now().UTC()},
	}
	if err := SavePromptHistory(path, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := LoadPromptHistory(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 2 || out[0].ID != 1 || out[1].Template != "v2" {
		t.Fatalf("expected append order preserved, got %+v", out)
	}
}
