package db

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS dictionary_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    word TEXT NOT NULL,
    language TEXT NOT NULL,
    definition TEXT NOT NULL,
    part_of_speech TEXT NOT NULL DEFAULT '',
    examples TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    UNIQUE (word, language)
);
CREATE INDEX IF NOT EXISTS idx_dictionary_entries_created_at ON dictionary_entries(created_at);
`

const sqliteMemory = "file::memory:?cache=shared"

// NewDatabase opens a SQLite database file and initializes the schema
func NewDatabase(dbPath string) (*Database, error) {
	return openSQLite(dbPath, 25, 5)
}

func openSQLite(dbPath string, maxOpen, maxIdle int) (*Database, error) {
	// For in-memory databases, use shared cache mode for concurrent access
	memory := dbPath == ":memory:"
	if memory {
		dbPath = sqliteMemory
	}

	conn, err := sqlx.Open("sqlite3", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if maxOpen > 0 {
		conn.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		conn.SetMaxIdleConns(maxIdle)
	}

	if !memory {
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := conn.Exec(sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return newDatabase(conn), nil
}

// sqliteDSN appends the connection options every pooled connection needs.
// Write transactions take the lock up front so concurrent cache misses
// wait on the busy timeout instead of failing on lock upgrade.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_busy_timeout=5000&_txlock=immediate"
}
