package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mokshchadha/invoice-ocr/internal/config"
)

// schema bootstraps the analyses table for commands that run without
// migrations (the batch analyzer creates the table on first use).
const schema = `CREATE TABLE IF NOT EXISTS analyses (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	file_name     TEXT NOT NULL UNIQUE,
	document_type TEXT NOT NULL DEFAULT 'generic',
	model_used    TEXT NOT NULL DEFAULT '',
	analysis_json TEXT NOT NULL,
	processed_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// NewDB opens the SQLite database file.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to sqlite: %w", err)
	}
	// SQLite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY churn under the write-once workload.
	maxOpen := cfg.MaxOpen
	if maxOpen <= 0 {
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	return db, nil
}

// EnsureSchema creates the analyses table if it does not exist.
func EnsureSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating analyses table: %w", err)
	}
	return nil
}
