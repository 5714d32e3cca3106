// Package sqlite implements the repository interfaces using SQLite as
// the storage backend.
//
// modernc.org/sqlite is a pure Go translation of SQLite: no CGo, no C
// compiler, cross-compiles anywhere Go does. For tests, ":memory:"
// gives a throwaway database per connection.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql at init time.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository
// methods. It implements repository.UserRepository.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs
// migrations. Use ":memory:" for an in-memory database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// A single pooled connection keeps every statement on the same
	// database handle. With ":memory:" each new connection would be a
	// separate empty database, and SQLite allows one writer anyway.
	conn.SetMaxOpenConns(1)

	// Force an immediate connection so a bad path surfaces here, not
	// on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight; one writer at
	// a time is plenty for this workload, but readers shouldn't block.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// saved_books references users(id); keep the FK enforced.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Callers should defer this
// right after New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe
// to run on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// UNIQUE(user_id, book_id) is what makes the duplicate-save no-op
	// safe: INSERT OR IGNORE lands on this constraint.
	// rowid preserves insertion order for the profile listing.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS saved_books (
			user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			book_id     TEXT NOT NULL,
			title       TEXT NOT NULL,
			authors     TEXT NOT NULL DEFAULT '[]',
			description TEXT NOT NULL DEFAULT '',
			image       TEXT NOT NULL DEFAULT '',
			link        TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, book_id)
		);
		CREATE INDEX IF NOT EXISTS idx_saved_books_user_id ON saved_books(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating saved_books table: %w", err)
	}

	return nil
}
