package storage

import (
	"fmt"

	"shopping-lists/internal/config"
	"shopping-lists/internal/database"
)

// Open returns the store selected by cfg. With the sqlite backend the
// database is returned as well so it can be shared with the metrics store;
// it is nil for the file backend. Callers close it.
func Open(cfg *config.Config) (Store, *database.DB, error) {
	switch cfg.StorageBackend {
	case config.BackendFile:
		s, err := NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case config.BackendSQLite:
		db, err := database.NewDB(cfg.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return NewSQLStore(db.SQL), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
