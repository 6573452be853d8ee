// Package repo implements the data persistence layer for the birthday service.
// This file persists the alias table (calendar name → display identity).
package repo

import (
	"path/filepath"
	"time"

	"github.com/tbourn/go-birthday-bot/internal/domain"
)

// AliasesFile is the alias table filename inside the data directory.
const AliasesFile = "aliases.json"

// aliasTable is the on-disk envelope for the alias table.
type aliasTable struct {
	Aliases      map[string]domain.Alias `json:"aliases"`
	LastModified time.Time               `json:"last_modified"`
}

// AliasesPath returns the alias table path for a data directory.
func AliasesPath(dataDir string) string {
	return filepath.Join(dataDir, AliasesFile)
}

// LoadAliases reads the alias table. A missing file yields an empty table.
func LoadAliases(path string) (map[string]domain.Alias, error) {
	var tbl aliasTable
	ok, err := readJSON(path, &tbl)
	if err != nil {
		return nil, err
	}
	if !ok || tbl.Aliases == nil {
		return map[string]domain.Alias{}, nil
	}
	return tbl.Aliases, nil
}

// SaveAliases writes the alias table, stamping last_modified with the current
// UTC time.
func SaveAliases(path string, aliases map[string]domain.Alias) error {
	return writeJSON(path, aliasTable{
		Aliases:      aliases,
		LastModified: time.Now().UTC(),
	})
}
