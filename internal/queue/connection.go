package queue

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	_ "modernc.org/sqlite"
)

// OpenDB opens (creating if necessary) the SQLite database that backs
// the goqite queue, grounded on Quaero's internal/storage/sqlite
// connection opener. modernc.org/sqlite registers its driver as
// "sqlite", not "sqlite3".
func OpenDB(logger arbor.ILogger, path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("queue: creating database directory: %w", err)
	}

	logger.Debug().Str("path", path).Msg("Opening queue database connection")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("queue: opening database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids SQLITE_BUSY
	// errors under concurrent worker access.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return db, nil
}
