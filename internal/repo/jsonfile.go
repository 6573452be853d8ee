// Package repo implements the data persistence layer for the birthday service.
// Every table is a flat JSON file under the data directory; files round-trip
// through encoding/json and are replaced atomically (write temp, then rename)
// so a crash mid-write never leaves a truncated table behind.
//
// The repo layer is deliberately dumb: load the whole table, save the whole
// table. Tables are small (one entry per person-date) and the services above
// hold them in memory behind a coarse lock, mirroring the single-owner model
// the design calls for.
package repo

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// readJSON decodes the JSON file at path into v. A missing file is not an
// error; v is left untouched and ok is false so callers can start fresh.
func readJSON(path string, v any) (ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

// writeJSON atomically replaces the file at path with the indented JSON
// encoding of v. The parent directory is created if needed.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
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
