// Package db persists the durable session state that outlives a single
// process: stub lifecycles, their revisit audit trail, and the session
// index. The argument graph itself lives in a JSON checkpoint next to the
// database, not in it.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	conn *sql.DB
	Path string
}

// OpenDB opens a SQLite database with WAL mode and foreign keys enabled,
// creating the schema on first open.
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn, Path: path}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS sessions (
	name TEXT PRIMARY KEY,
	passage TEXT NOT NULL,
	graph_path TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS stubs (
	stub_id TEXT PRIMARY KEY,
	session_name TEXT NOT NULL,
	question TEXT NOT NULL,
	parent_node_id TEXT NOT NULL,
	flagged_at_turn INTEGER NOT NULL,
	observer_name TEXT NOT NULL,
	urgency REAL NOT NULL,
	status TEXT NOT NULL DEFAULT 'stub',
	rationale TEXT NOT NULL DEFAULT '',
	context_excerpt TEXT NOT NULL DEFAULT '',
	explored_node_id TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stubs_session_status ON stubs(session_name, status);

CREATE TABLE IF NOT EXISTS revisit_checks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	stub_id TEXT NOT NULL REFERENCES stubs(stub_id) ON DELETE CASCADE,
	checked_at TEXT NOT NULL,
	action TEXT NOT NULL,
	relevance_score REAL,
	should_explore INTEGER,
	reason TEXT NOT NULL DEFAULT '',
	graph_size INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_revisit_checks_stub ON revisit_checks(stub_id);
`
	if _, err := d.conn.Exec(schema); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// Conn returns the underlying sql.DB for custom queries
func (d *DB) Conn() *sql.DB {
	return d.conn
}
