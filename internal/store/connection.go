package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/caselaw/casestrainer/internal/common"
)

// Open creates (or reopens) the BadgerDB-backed badgerhold store at
// config.Path, grounded on internal/storage/badger/connection.go's
// NewBadgerDB. reset_on_startup wipes any existing database first, for
// clean test runs.
func Open(logger arbor.ILogger, config common.BadgerConfig) (*badgerhold.Store, error) {
	if config.ResetOnStartup {
		if _, err := os.Stat(config.Path); err == nil {
			logger.Debug().Str("path", config.Path).Msg("Deleting existing database (reset_on_startup=true)")
			if err := os.RemoveAll(config.Path); err != nil {
				logger.Warn().Err(err).Str("path", config.Path).Msg("Failed to delete database directory")
			}
		}
	}

	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("store: creating database directory: %w", err)
	}

	logger.Debug().Str("path", config.Path).Msg("Opening Badger database connection")

	options := badgerhold.DefaultOptions
	options.Dir = config.Path
	options.ValueDir = config.Path
	options.Logger = nil // arbor handles logging instead

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("store: opening badger database: %w", err)
	}

	logger.Debug().Str("path", config.Path).Msg("Badger database initialized")
	return db, nil
}
