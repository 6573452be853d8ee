// Package repo implements the data persistence layer for the birthday service.
// This file persists the message store tables: generated messages, sent
// records, and the per-person historical-fact history.
package repo

import (
	"path/filepath"

	"github.com/tbourn/go-birthday-bot/internal/domain"
)

// Message store filenames inside the data directory.
const (
	MessagesFile    = "generated_messages.json"
	SentFile        = "sent_messages.json"
	FactHistoryFile = "birthday_history.json"
)

// MessagesPath returns the generated-messages table path for a data directory.
func MessagesPath(dataDir string) string {
	return filepath.Join(dataDir, MessagesFile)
}

// SentPath returns the sent-records table path for a data directory.
func SentPath(dataDir string) string {
	return filepath.Join(dataDir, SentFile)
}

// FactHistoryPath returns the fact-history table path for a data directory.
func FactHistoryPath(dataDir string) string {
	return filepath.Join(dataDir, FactHistoryFile)
}

// LoadMessages reads the generated-messages table keyed by "name_date".
func LoadMessages(path string) (map[string]domain.GeneratedMessage, error) {
	out := map[string]domain.GeneratedMessage{}
	if _, err := readJSON(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveMessages writes the generated-messages table.
func SaveMessages(path string, messages map[string]domain.GeneratedMessage) error {
	return writeJSON(path, messages)
}

// LoadSent reads the sent-records table keyed by "name_date_sent".
func LoadSent(path string) (map[string]domain.SentRecord, error) {
	out := map[string]domain.SentRecord{}
	if _, err := readJSON(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveSent writes the sent-records table.
func SaveSent(path string, sent map[string]domain.SentRecord) error {
	return writeJSON(path, sent)
}

// LoadFactHistory reads the fact history keyed by canonical name.
func LoadFactHistory(path string) (map[string][]string, error) {
	out := map[string][]string{}
	if _, err := readJSON(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveFactHistory writes the fact history.
func SaveFactHistory(path string, history map[string][]string) error {
	return writeJSON(path, history)
}
