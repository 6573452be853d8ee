package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-birthday-bot/internal/domain"
)

// fakeFeed replays canned calendar entries or an error.
type fakeFeed struct {
	entries []domain.CalendarEntry
	err     error
}

func (f *fakeFeed) BirthdayEntries(context.Context, time.Time) ([]domain.CalendarEntry, error) {
	return f.entries, f.err
}

// fakeDirectory validates uids against a fixed allowlist.
type fakeDirectory struct {
	valid map[string]bool
}

func (d *fakeDirectory) IsValidMember(_ context.Context, uid string) bool {
	return d.valid[uid]
}

// fakeNotifier records delivered texts and can simulate failures.
type fakeNotifier struct {
	sent []string
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, text string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, text)
	return nil
}

func newTestBirthdayService(t *testing.T, feed *fakeFeed, dir *fakeDirectory, notifier *fakeNotifier, gen Generator) *BirthdayService {
	t.Helper()
	dataDir := t.TempDir()
	var msgSvc *MessageService
	if gen != nil {
		msgSvc = NewMessageService(dataDir, staticPrompts("Wish {employee_name} a happy {birthday_date}."), gen)
	}
	return &BirthdayService{
		Aliases:   NewAliasService(dataDir),
		Messages:  msgSvc,
		Calendar:  feed,
		Directory: dir,
		Notifier:  notifier,
	}
}

func TestBirthday_EventsForDate(t *testing.T) {
	feed := &fakeFeed{entries: []domain.CalendarEntry{
		{Name: "John Doe", Summary: "John Doe - Birthday"},
		{Name: "Jane Smith", Summary: "Jane Smith - Birthday"},
	}}
	dir := &fakeDirectory{valid: map[string]bool{"john.doe": true}}
	gen := &fakeGenerator{reply: "Happy birthday!"}
	svc := newTestBirthdayService(t, feed, dir, &fakeNotifier{}, gen)

	events := svc.EventsForDate(context.Background(), testDate)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	john, jane := events[0], events[1]
	if !john.LDAPValid || !john.WillSend {
		t.Fatalf("expected John to be valid and sendable: %+v", john)
	}
	if john.Message == nil || *john.Message != "Happy birthday!" {
		t.Fatalf("expected a generated message for John")
	}
	if john.MessageData == nil || john.MessageData.EmployeeName != "John Doe" {
		t.Fatalf("expected the full record attached for John")
	}

	if jane.LDAPValid || jane.WillSend {
		t.Fatalf("expected Jane to fail validation: %+v", jane)
	}
	if jane.Message != nil || jane.MessageData != nil {
		t.Fatalf("invalid recipients must not get a message")
	}
	if gen.calls != 1 {
		t.Fatalf("expected generation only for the valid recipient, got %d calls", gen.calls)
	}
}

func TestBirthday_EventsForDate_AliasResolution(t *testing.T) {
	feed := &fakeFeed{entries: []domain.CalendarEntry{
		{Name: "Johnny D", Summary: "Johnny D - Birthday"},
	}}
	dir := &fakeDirectory{valid: map[string]bool{"john.doe": true}}
	svc := newTestBirthdayService(t, feed, dir, &fakeNotifier{}, &fakeGenerator{reply: "hi"})

	if _, err := svc.Aliases.(*AliasService).Register("Johnny D", "John Doe", ""); err != nil {
		t.Fatalf("register alias: %v", err)
	}

	events := svc.EventsForDate(context.Background(), testDate)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Name != "John Doe" {
		t.Fatalf("expected the resolved display name, got %q", events[0].Name)
	}
	if !events[0].LDAPValid {
		t.Fatalf("expected validation against the alias uid to pass")
	}
}

func TestBirthday_EventsForDate_FeedError(t *testing.T) {
	feed := &fakeFeed{err: errors.New("boom")}
	svc := newTestBirthdayService(t, feed, &fakeDirectory{}, &fakeNotifier{}, &fakeGenerator{reply: "x"})

	if events := svc.EventsForDate(context.Background(), testDate); len(events) != 0 {
		t.Fatalf("expected no events on feed failure, got %d", len(events))
	}
}

func TestBirthday_SendForDate_Suppression(t *testing.T) {
	feed := &fakeFeed{entries: []domain.CalendarEntry{
		{Name: "John Doe", Summary: "John Doe - Birthday"},
		{Name: "Jane Smith", Summary: "Jane Smith - Birthday"},
	}}
	dir := &fakeDirectory{valid: map[string]bool{"john.doe": true}}
	notifier := &fakeNotifier{}
	svc := newTestBirthdayService(t, feed, dir, notifier, &fakeGenerator{reply: "Happy birthday John!"})

	sent := svc.SendForDate(context.Background(), testDate)
	if len(sent) != 1 || sent[0] != "Happy birthday John!" {
		t.Fatalf("expected one delivery for the valid recipient, got %v", sent)
	}

	// A second pass the same day is fully suppressed.
	if again := svc.SendForDate(context.Background(), testDate); len(again) != 0 {
		t.Fatalf("expected suppression on the second pass, got %v", again)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected exactly one webhook post, got %d", len(notifier.sent))
	}

	// Clearing the sent marker re-enables delivery.
	svc.Messages.ClearSent("John Doe", testDate)
	if reenabled := svc.SendForDate(context.Background(), testDate); len(reenabled) != 1 {
		t.Fatalf("expected delivery after clear-sent, got %v", reenabled)
	}
}

func TestBirthday_SendForDate_DeliveryFailure(t *testing.T) {
	feed := &fakeFeed{entries: []domain.CalendarEntry{
		{Name: "John Doe", Summary: "John Doe - Birthday"},
	}}
	dir := &fakeDirectory{valid: map[string]bool{"john.doe": true}}
	notifier := &fakeNotifier{err: errors.New("webhook down")}
	svc := newTestBirthdayService(t, feed, dir, notifier, &fakeGenerator{reply: "hi"})

	if sent := svc.SendForDate(context.Background(), testDate); len(sent) != 0 {
		t.Fatalf("expected no deliveries on notifier failure, got %v", sent)
	}
	// The failed delivery must not be marked sent.
	if svc.Messages.WasSentToday("John Doe", testDate) {
		t.Fatalf("failed delivery must not suppress a retry")
	}
}

func TestBirthday_NoGenerator_SimpleGreeting(t *testing.T) {
	feed := &fakeFeed{entries: []domain.CalendarEntry{
		{Name: "John Doe", Summary: "John Doe - Birthday"},
	}}
	dir := &fakeDirectory{valid: map[string]bool{"john.doe": true}}
	notifier := &fakeNotifier{}
	svc := newTestBirthdayService(t, feed, dir, notifier, nil)

	events := svc.EventsForDate(context.Background(), testDate)
	if len(events) != 1 || events[0].Message == nil {
		t.Fatalf("expected a simple greeting without a backend")
	}
	want := ":birthday: Happy Birthday John Doe! :tada:"
	if *events[0].Message != want {
		t.Fatalf("greeting = %q, want %q", *events[0].Message, want)
	}
	if events[0].MessageData != nil {
		t.Fatalf("no stored record exists without a message store")
	}

	if sent := svc.SendForDate(context.Background(), testDate); len(sent) != 1 || sent[0] != want {
		t.Fatalf("expected the simple greeting delivered, got %v", sent)
	}
}

func TestBirthday_Regenerate(t *testing.T) {
	feed := &fakeFeed{entries: nil}
	gen := &fakeGenerator{reply: "first"}
	svc := newTestBirthdayService(t, feed, &fakeDirectory{}, &fakeNotifier{}, gen)

	svc.Messages.GetOrCreate(context.Background(), "John Doe", testDate, false)
	gen.reply = "second"

	rec, err := svc.Regenerate(context.Background(), "John Doe", testDate)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if rec.Message != "second" {
		t.Fatalf("expected a fresh message, got %q", rec.Message)
	}
}

func TestBirthday_Regenerate_NoBackend(t *testing.T) {
	svc := newTestBirthdayService(t, &fakeFeed{}, &fakeDirectory{}, &fakeNotifier{}, nil)
	if _, err := svc.Regenerate(context.Background(), "John Doe", testDate); !errors.Is(err, ErrGeneratorDisabled) {
		t.Fatalf("expected ErrGeneratorDisabled, got %v", err)
	}
}

func TestBirthday_UpdateMessage_NotFound(t *testing.T) {
	svc := newTestBirthdayService(t, &fakeFeed{}, &fakeDirectory{}, &fakeNotifier{}, &fakeGenerator{reply: "x"})
	if err := svc.UpdateMessage("Nobody", testDate, "text"); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
}

func TestBirthday_Status(t *testing.T) {
	svc := newTestBirthdayService(t, &fakeFeed{}, &fakeDirectory{}, &fakeNotifier{}, &fakeGenerator{reply: "x"})
	svc.Flags = StatusFlags{ICSConfigured: true, WebhookConfigured: true}

	st := svc.Status()
	if !st.ICSConfigured || !st.WebhookConfigured {
		t.Fatalf("expected configured flags to pass through: %+v", st)
	}
	if st.LDAPConfigured || st.SearchBaseConfigured {
		t.Fatalf("expected unconfigured flags to stay false: %+v", st)
	}
	if !st.OpenAIConfigured {
		t.Fatalf("expected OpenAIConfigured true when a message store exists")
	}
}
