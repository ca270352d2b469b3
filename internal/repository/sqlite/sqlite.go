// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// The link journal is a small, append-only audit trail owned by one process.
// SQLite keeps it in a single file next to the binary with no server to run,
// and ":memory:" gives every test its own throwaway database.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, so you need a C compiler and cross-compilation
// becomes painful. modernc.org/sqlite is a pure Go translation of SQLite.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides repository methods.
// It implements repository.LinkEventRepository (see link_event.go).
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/link.db"  → file-based journal (persistent)
//   - ":memory:"      → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// ONE WRITER:
	// SQLite serialises writes anyway, and every ":memory:" connection is its
	// own private database. A single pooled connection means migrations and
	// queries always see the same data, and concurrent requests queue on the
	// pool instead of failing with SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while the journal is being appended to.
	// In-memory databases silently keep their own journal mode.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate runs all database migrations.
//
// CREATE ... IF NOT EXISTS is idempotent, so this runs on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS link_events (
			id         TEXT PRIMARY KEY,
			discord_id TEXT NOT NULL DEFAULT '',
			phase      TEXT NOT NULL,
			outcome    TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_link_events_discord_id ON link_events(discord_id);
		CREATE INDEX IF NOT EXISTS idx_link_events_created_at ON link_events(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating link_events table: %w", err)
	}

	return nil
}
