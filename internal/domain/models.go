// Package domain defines the persisted and computed models for the birthday
// notification service: calendar-name aliases, generated birthday messages,
// sent-tracking records, prompt template history, and the per-date birthday
// event projection served to the dashboard.
package domain

import (
	"time"
)

// DateLayout is the canonical wire/storage format for birthday dates.
const DateLayout = "2006-01-02"

// Alias maps a raw calendar-feed name to a canonical display identity and the
// LDAP uid used for directory validation. The alias table is the single source
// of truth for identity overrides; unaliased names fall back to a deterministic
// transform of the calendar name itself.
//
// Fields:
//   - DisplayName: human-facing canonical name for the person.
//   - LDAPUID: directory lookup key; recomputed from DisplayName on every change.
//   - CreatedAt: creation timestamp (UTC).
//   - Notes: free-text operator notes (why the override exists, etc.).
type Alias struct {
	DisplayName string    `json:"display_name"`
	LDAPUID     string    `json:"ldap_uid"`
	CreatedAt   time.Time `json:"created_at"`
	Notes       string    `json:"notes"`
}

// GeneratedMessage is one generated (or manually edited) birthday message,
// keyed by MessageKey(name, date). At most one record exists per key; a
// manually edited record is only ever replaced by an explicit regeneration
// or another manual edit, never by an implicit refresh.
//
// Fields:
//   - Message: the full text delivered to the chat channel.
//   - HistoricalFact: best-effort extract of the fact used in the message;
//     empty when extraction found no marker (never required for delivery).
//   - GeneratedAt: generation timestamp (UTC).
//   - EmployeeName / BirthdayDate: denormalized key components for the UI.
//   - Regenerated: set when the record was produced by an explicit regenerate.
//   - ManuallyEdited / EditedAt: manual-edit flag and time of the last edit.
//   - Fallback / Error: set when the generative backend failed and the fixed
//     celebratory fallback was stored instead.
type GeneratedMessage struct {
	Message        string     `json:"message"`
	HistoricalFact string     `json:"historical_fact,omitempty"`
	GeneratedAt    time.Time  `json:"generated_at"`
	EmployeeName   string     `json:"employee_name"`
	BirthdayDate   string     `json:"birthday_date"`
	Regenerated    bool       `json:"regenerated,omitempty"`
	ManuallyEdited bool       `json:"manually_edited,omitempty"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
	Fallback       bool       `json:"fallback,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// SentRecord marks a delivered message, keyed by SentKey(name, date).
// A send for the same key is suppressed while SentAt is within the last
// 24 hours; clearing the record re-enables delivery.
type SentRecord struct {
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// PromptRecord is one immutable entry in the prompt template history.
// History is append-only: updating or reactivating a template pushes the
// previously current text as a new record, it never rewrites old ones.
type PromptRecord struct {
	ID          int       `json:"id"`
	Template    string    `json:"template"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Active      bool      `json:"active"`
}

// PromptHistoryEntry is the API projection of prompt history. The first entry
// is synthetic and represents the currently active template (ID "current",
// Active true); the remainder are stored records in append order with their
// integer ids rendered as strings.
type PromptHistoryEntry struct {
	ID          string    `json:"id"`
	Template    string    `json:"template"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Active      bool      `json:"active"`
}

// CalendarEntry is a raw birthday entry extracted from the calendar feed for
// one date: the name token before the first hyphen and the full summary text.
type CalendarEntry struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// BirthdayEvent is the per-(person, date) projection assembled from the alias
// table, the directory check, and the message store. It is computed fresh on
// every resolution pass and never persisted.
//
// Message is nil when the person failed directory validation (no message is
// generated or stored for invalid recipients). MessageData carries the full
// stored record when the message store produced the text.
type BirthdayEvent struct {
	Name        string            `json:"name"`
	Summary     string            `json:"summary"`
	Date        string            `json:"date"`
	LDAPValid   bool              `json:"ldap_valid"`
	WillSend    bool              `json:"will_send"`
	Message     *string           `json:"message"`
	MessageData *GeneratedMessage `json:"message_data,omitempty"`
}

// ServiceStatus reports which external collaborators are configured. These are
// configuration booleans only; they say nothing about reachability.
type ServiceStatus struct {
	ICSConfigured        bool `json:"ics_url_configured"`
	WebhookConfigured    bool `json:"webhook_url_configured"`
	LDAPConfigured       bool `json:"ldap_server_configured"`
	SearchBaseConfigured bool `json:"search_base_configured"`
	OpenAIConfigured     bool `json:"openai_configured"`
}

// MessageKey builds the composite message-store key for a person and date,
// e.g. "John Doe_2024-03-15".
func MessageKey(name string, date time.Time) string {
	return name + "_" + date.Format(DateLayout)
}

// SentKey builds the sent-tracking key for a person and date,
// e.g. "John Doe_2024-03-15_sent".
func SentKey(name string, date time.Time) string {
	return MessageKey(name, date) + "_sent"
}
