package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Stub lifecycle states. A stub moves from StatusStub to exactly one of
// the terminal states.
const (
	StatusStub       = "stub"
	StatusExplored   = "explored"
	StatusSuperseded = "superseded"
)

// Stub is a flagged tension that was not selected for immediate
// exploration, preserved so it can be revisited when context changes.
type Stub struct {
	ID             string
	SessionName    string
	Question       string
	ParentNodeID   string
	FlaggedAtTurn  int
	ObserverName   string
	Urgency        float64
	Status         string
	Rationale      string
	ContextExcerpt string
	ExploredNodeID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RevisitCheck is one entry in a stub's audit trail: a relevance
// evaluation, a parse failure, or a status transition.
type RevisitCheck struct {
	ID             int64
	StubID         string
	CheckedAt      time.Time
	Action         string
	RelevanceScore sql.NullFloat64
	ShouldExplore  sql.NullBool
	Reason         string
	GraphSize      int
}

// Revisit check actions.
const (
	ActionEvaluated  = "evaluated"
	ActionError      = "error"
	ActionExplored   = "explored"
	ActionSuperseded = "superseded"
)

const stubColumns = `stub_id, session_name, question, parent_node_id, flagged_at_turn,
	observer_name, urgency, status, rationale, context_excerpt, explored_node_id,
	created_at, updated_at`

// InsertStub stores a new stub in status "stub".
func (d *DB) InsertStub(s *Stub) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = StatusStub
	}

	_, err := d.conn.Exec(`INSERT INTO stubs (`+stubColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.SessionName, s.Question, s.ParentNodeID, s.FlaggedAtTurn,
		s.ObserverName, s.Urgency, s.Status, s.Rationale, s.ContextExcerpt,
		s.ExploredNodeID, s.CreatedAt.Format(time.RFC3339), s.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting stub %s: %w", s.ID, err)
	}
	return nil
}

// GetStub loads one stub by id.
func (d *DB) GetStub(id string) (*Stub, error) {
	row := d.conn.QueryRow(`SELECT `+stubColumns+` FROM stubs WHERE stub_id = ?`, id)
	s, err := scanStub(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("stub %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading stub %s: %w", id, err)
	}
	return s, nil
}

// ListStubs returns a session's stubs, optionally filtered by status.
// Empty status means all. Results are in creation order.
func (d *DB) ListStubs(sessionName, status string) ([]*Stub, error) {
	query := `SELECT ` + stubColumns + ` FROM stubs WHERE session_name = ?`
	args := []any{sessionName}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at, stub_id`

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing stubs: %w", err)
	}
	defer rows.Close()

	var stubs []*Stub
	for rows.Next() {
		s, err := scanStub(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning stub: %w", err)
		}
		stubs = append(stubs, s)
	}
	return stubs, rows.Err()
}

// UpdateStubStatus transitions a stub and records the exploring node when
// there is one.
func (d *DB) UpdateStubStatus(id, status, exploredNodeID string) error {
	res, err := d.conn.Exec(`UPDATE stubs SET status = ?, explored_node_id = ?, updated_at = ?
		WHERE stub_id = ?`,
		status, exploredNodeID, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating stub %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating stub %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("stub %s not found", id)
	}
	return nil
}

// AppendRevisitCheck adds an audit trail entry for a stub.
func (d *DB) AppendRevisitCheck(c *RevisitCheck) error {
	if c.CheckedAt.IsZero() {
		c.CheckedAt = time.Now().UTC()
	}
	res, err := d.conn.Exec(`INSERT INTO revisit_checks
		(stub_id, checked_at, action, relevance_score, should_explore, reason, graph_size)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.StubID, c.CheckedAt.Format(time.RFC3339), c.Action,
		c.RelevanceScore, c.ShouldExplore, c.Reason, c.GraphSize)
	if err != nil {
		return fmt.Errorf("recording revisit check for %s: %w", c.StubID, err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("recording revisit check for %s: %w", c.StubID, err)
	}
	return nil
}

// ListRevisitChecks returns a stub's audit trail, oldest first.
func (d *DB) ListRevisitChecks(stubID string) ([]*RevisitCheck, error) {
	rows, err := d.conn.Query(`SELECT id, stub_id, checked_at, action, relevance_score,
		should_explore, reason, graph_size
		FROM revisit_checks WHERE stub_id = ? ORDER BY id`, stubID)
	if err != nil {
		return nil, fmt.Errorf("listing revisit checks: %w", err)
	}
	defer rows.Close()

	var checks []*RevisitCheck
	for rows.Next() {
		var c RevisitCheck
		var checkedAt string
		if err := rows.Scan(&c.ID, &c.StubID, &checkedAt, &c.Action,
			&c.RelevanceScore, &c.ShouldExplore, &c.Reason, &c.GraphSize); err != nil {
			return nil, fmt.Errorf("scanning revisit check: %w", err)
		}
		c.CheckedAt, err = time.Parse(time.RFC3339, checkedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing check time: %w", err)
		}
		checks = append(checks, &c)
	}
	return checks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStub(row rowScanner) (*Stub, error) {
	var s Stub
	var createdAt, updatedAt string
	err := row.Scan(&s.ID, &s.SessionName, &s.Question, &s.ParentNodeID, &s.FlaggedAtTurn,
		&s.ObserverName, &s.Urgency, &s.Status, &s.Rationale, &s.ContextExcerpt,
		&s.ExploredNodeID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if s.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &s, nil
}
