// Package repo implements the data persistence layer for the birthday service.
// This file persists the prompt template: the current text as a plain file
// (easy to inspect and hand-edit) and the append-only history as JSON.
package repo

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tbourn/go-birthday-bot/internal/domain"
)

// Prompt store filenames inside the data directory.
const (
	PromptFile        = "birthday_prompt.txt"
	PromptHistoryFile = "prompt_history.json"
)

// PromptPath returns the current-template path for a data directory.
func PromptPath(dataDir string) string {
	return filepath.Join(dataDir, PromptFile)
}

// PromptHistoryPath returns the history table path for a data directory.
func PromptHistoryPath(dataDir string) string {
	return filepath.Join(dataDir, PromptHistoryFile)
}

// LoadPromptTemplate reads the current template text. ok is false when no
// template file exists yet.
func LoadPromptTemplate(path string) (template string, ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(string(data)), true, nil
}

// SavePromptTemplate atomically writes the current template text.
func SavePromptTemplate(path, template string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), PromptFile+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(template); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// LoadPromptHistory reads the history table in stored (append) order.
func LoadPromptHistory(path string) ([]domain.PromptRecord, error) {
	var out []domain.PromptRecord
	if _, err := readJSON(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SavePromptHistory writes the history table.
func SavePromptHistory(path string, history []domain.PromptRecord) error {
	return writeJSON(path, history)
}
