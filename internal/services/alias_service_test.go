package services

import (
	"errors"
	"testing"
)

func newTestAliasService(t *testing.T) (*AliasService, string) {
	t.Helper()
	dir := t.TempDir()
	return NewAliasService(dir), dir
}

func TestDeriveUID(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"John Doe", "john.doe"},
		{"  John Doe  ", "john.doe"},
		{"ALICE", "alice"},
		{"Mary Jane Watson", "mary.jane.watson"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := DeriveUID(tc.in); got != tc.want {
			t.Fatalf("DeriveUID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAlias_ResolveUnregistered(t *testing.T) {
	svc, _ := newTestAliasService(t)

	if got := svc.ResolveDisplayName("Johnny D"); got != "Johnny D" {
		t.Fatalf("expected unresolved name to pass through, got %q", got)
	}
	if got := svc.ResolveUID("Johnny D"); got != "johnny.d" {
		t.Fatalf("expected derived uid johnny.d, got %q", got)
	}
	if svc.Has("Johnny D") {
		t.Fatalf("lookup must not create an alias")
	}
}

func TestAlias_RegisterAndResolve(t *testing.T) {
	svc, _ := newTestAliasService(t)

	a, err := svc.Register("Johnny D", "John Doe", "calendar nickname")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if a.LDAPUID != "john.doe" {
		t.Fatalf("expected uid derived from display name, got %q", a.LDAPUID)
	}
	if a.CreatedAt.IsZero() {
		t.Fatalf("expected CreatedAt to be stamped")
	}

	if got := svc.ResolveDisplayName("Johnny D"); got != "John Doe" {
		t.Fatalf("expected display name John Doe, got %q", got)
	}
	if got := svc.ResolveUID("Johnny D"); got != "john.doe" {
		t.Fatalf("expected uid john.doe, got %q", got)
	}
}

func TestAlias_Register_Duplicate(t *testing.T) {
	svc, _ := newTestAliasService(t)

	if _, err := svc.Register("Johnny D", "John Doe", ""); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register("Johnny D", "Someone Else", "")
	if !errors.Is(err, ErrAliasExists) {
		t.Fatalf("expected ErrAliasExists, got %v", err)
	}
	// The original mapping must be untouched.
	if got := svc.ResolveDisplayName("Johnny D"); got != "John Doe" {
		t.Fatalf("duplicate register must not modify the alias, got %q", got)
	}
}

func TestAlias_Update_NotesPointer(t *testing.T) {
	svc, _ := newTestAliasService(t)
	if _, err := svc.Register("Johnny D", "John Doe", "original notes"); err != nil {
		t.Fatalf("register: %v", err)
	}

	// nil notes keeps the stored notes.
	a, err := svc.Update("Johnny D", "Jonathan Doe", nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if a.Notes != "original notes" {
		t.Fatalf("nil notes must keep existing notes, got %q", a.Notes)
	}
	if a.LDAPUID != "jonathan.doe" {
		t.Fatalf("expected rederived uid jonathan.doe, got %q", a.LDAPUID)
	}

	// Non-nil empty notes replaces them.
	empty := ""
	a, err = svc.Update("Johnny D", "Jonathan Doe", &empty)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if a.Notes != "" {
		t.Fatalf("expected notes cleared, got %q", a.Notes)
	}
}

func TestAlias_Update_NotFound(t *testing.T) {
	svc, _ := newTestAliasService(t)
	if _, err := svc.Update("Nobody", "Someone", nil); !errors.Is(err, ErrAliasNotFound) {
		t.Fatalf("expected ErrAliasNotFound, got %v", err)
	}
}

func TestAlias_Remove(t *testing.T) {
	svc, _ := newTestAliasService(t)
	if _, err := svc.Register("Johnny D", "John Doe", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	if !svc.Remove("Johnny D") {
		t.Fatalf("expected remove to report true")
	}
	if svc.Remove("Johnny D") {
		t.Fatalf("expected second remove to report false")
	}
	if got := svc.ResolveUID("Johnny D"); got != "johnny.d" {
		t.Fatalf("expected derived uid after removal, got %q", got)
	}
}

func TestAlias_PersistenceAcrossRestart(t *testing.T) {
	svc, dir := newTestAliasService(t)
	if _, err := svc.Register("Johnny D", "John Doe", "survives restarts"); err != nil {
		t.Fatalf("register: %v", err)
	}

	reloaded := NewAliasService(dir)
	a := reloaded.Get("Johnny D")
	if a == nil {
		t.Fatalf("expected alias to survive a reload")
	}
	if a.DisplayName != "John Doe" || a.Notes != "survives restarts" {
		t.Fatalf("unexpected reloaded alias: %+v", a)
	}
}

func TestAlias_GetAllIsACopy(t *testing.T) {
	svc, _ := newTestAliasService(t)
	if _, err := svc.Register("Johnny D", "John Doe", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	all := svc.GetAll()
	delete(all, "Johnny D")
	if !svc.Has("Johnny D") {
		t.Fatalf("mutating the returned map must not affect the service")
	}
}
