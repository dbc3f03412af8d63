package store

import (
	"fmt"
	"path/filepath"

	"medtrack/internal/config"
	"medtrack/internal/medtrack"
)

// NewStoreFromConfig creates a Store implementation based on the database
// config type. The profile id names the database file so multiple profiles
// can share a data directory.
func NewStoreFromConfig(cfg config.DatabaseConfig, profileID string) (medtrack.Store, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		dbPath := filepath.Join(cfg.DataDir, profileID+".db")
		return NewSQLiteStore(dbPath)
	case "memory":
		return NewSQLiteStore(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
