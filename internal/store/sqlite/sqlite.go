// Package sqlite persists admitted alert records. It follows the
// repository layout used elsewhere in the system: one DB wrapper guarding
// the connection, one repository type per table.
package sqlite

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite connection with a lock. SQLite serializes writers
// anyway; the lock keeps error semantics deterministic under concurrent
// stage alerts.
type DB struct {
	sync.RWMutex
	conn *sql.DB
}

// Open opens (and creates if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			types TEXT NOT NULL,
			sub_type TEXT,
			person_name TEXT,
			confidence REAL,
			people_count INTEGER,
			violence_detected INTEGER NOT NULL DEFAULT 0,
			location TEXT NOT NULL,
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON alerts(created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Conn exposes the raw connection to repositories.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
