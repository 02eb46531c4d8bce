package store

import (
	"fmt"
	"strings"

	"github.com/norvik-labs/promptctl/internal/config"
)

// Storage types accepted in the config's storage.type field.
const (
	TypeSQLite = "sqlite"
	TypeMemory = "memory"
)

// DefaultSQLitePath is where run history lands when storage.path is unset.
const DefaultSQLitePath = "data/promptctl.db"

// Open builds the run-history store described by the config's storage
// section. An empty type means sqlite on disk; memory keeps history for
// the life of the process only.
func Open(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store: missing config")
	}

	switch t := strings.ToLower(strings.TrimSpace(cfg.Storage.Type)); t {
	case "", TypeSQLite:
		return NewSQLiteStore(sqlitePath(cfg.Storage))
	case TypeMemory:
		return NewSQLiteStore(":memory:")
	default:
		return nil, fmt.Errorf("store: unsupported storage type %q (want %s or %s)", t, TypeSQLite, TypeMemory)
	}
}

func sqlitePath(sc config.StorageConfig) string {
	if p := strings.TrimSpace(sc.Path); p != "" {
		return p
	}
	return DefaultSQLitePath
}
