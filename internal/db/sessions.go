package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SessionRecord indexes a debate session: its passage and where its graph
// checkpoint lives.
type SessionRecord struct {
	Name      string
	Passage   string
	GraphPath string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpsertSession inserts or refreshes a session's index entry.
func (d *DB) UpsertSession(s *SessionRecord) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	_, err := d.conn.Exec(`INSERT INTO sessions (name, passage, graph_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			passage = excluded.passage,
			graph_path = excluded.graph_path,
			updated_at = excluded.updated_at`,
		s.Name, s.Passage, s.GraphPath,
		s.CreatedAt.Format(time.RFC3339), s.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upserting session %s: %w", s.Name, err)
	}
	return nil
}

// GetSession loads one session by name.
func (d *DB) GetSession(name string) (*SessionRecord, error) {
	row := d.conn.QueryRow(`SELECT name, passage, graph_path, created_at, updated_at
		FROM sessions WHERE name = ?`, name)
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", name, err)
	}
	return s, nil
}

// ListSessions returns all sessions, most recently updated first.
func (d *DB) ListSessions() ([]*SessionRecord, error) {
	rows, err := d.conn.Query(`SELECT name, passage, graph_path, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*SessionRecord
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanSession(row rowScanner) (*SessionRecord, error) {
	var s SessionRecord
	var createdAt, updatedAt string
	if err := row.Scan(&s.Name, &s.Passage, &s.GraphPath, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if s.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &s, nil
}
