// Package journal keeps a local SQLite record of capture sessions and the
// composites produced from them.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNoCapture is returned when no captured session exists yet.
var ErrNoCapture = errors.New("journal: no captured image yet")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id           TEXT PRIMARY KEY,
	started_at   TEXT NOT NULL,
	ended_at     TEXT NOT NULL,
	state        TEXT NOT NULL,
	frames       INTEGER NOT NULL DEFAULT 0,
	capture_path TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS composites (
	id            TEXT PRIMARY KEY,
	session_id    TEXT REFERENCES sessions(id) ON DELETE SET NULL,
	template_path TEXT NOT NULL,
	capture_path  TEXT NOT NULL,
	output_path   TEXT NOT NULL,
	markers       INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);
CREATE INDEX IF NOT EXISTS idx_composites_created ON composites(created_at);
`

// Session is one run of the capture loop.
type Session struct {
	ID          string
	StartedAt   time.Time
	EndedAt     time.Time
	State       string
	Frames      int
	CapturePath string
}

// Composite is one merged image written to disk.
type Composite struct {
	ID           string
	SessionID    string
	TemplatePath string
	CapturePath  string
	OutputPath   string
	Markers      int
	CreatedAt    time.Time
}

// Journal wraps the SQLite database connection.
type Journal struct {
	conn *sql.DB
	path string
}

// Open opens or creates the journal at path and applies the schema.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}

	// SQLite works best with a single connection
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply journal schema: %w", err)
	}
	return &Journal{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.conn != nil {
		return j.conn.Close()
	}
	return nil
}

// Path returns the database file path.
func (j *Journal) Path() string {
	return j.path
}

// RecordSession stores s, assigning an ID if it has none. The stored
// record is returned.
func (j *Journal) RecordSession(ctx context.Context, s Session) (Session, error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	_, err := j.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, ended_at, state, frames, capture_path) VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, formatTime(s.StartedAt), formatTime(s.EndedAt), s.State, s.Frames, s.CapturePath)
	if err != nil {
		return s, fmt.Errorf("record session: %w", err)
	}
	return s, nil
}

// RecordComposite stores c, assigning an ID and timestamp if missing.
func (j *Journal) RecordComposite(ctx context.Context, c Composite) (Composite, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	var sessionID interface{}
	if c.SessionID != "" {
		sessionID = c.SessionID
	}
	_, err := j.conn.ExecContext(ctx,
		`INSERT INTO composites (id, session_id, template_path, capture_path, output_path, markers, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, sessionID, c.TemplatePath, c.CapturePath, c.OutputPath, c.Markers, formatTime(c.CreatedAt))
	if err != nil {
		return c, fmt.Errorf("record composite: %w", err)
	}
	return c, nil
}

// LatestCapture returns the most recent session that saved a capture.
func (j *Journal) LatestCapture(ctx context.Context) (Session, error) {
	row := j.conn.QueryRowContext(ctx,
		`SELECT id, started_at, ended_at, state, frames, capture_path FROM sessions
		 WHERE capture_path != '' ORDER BY ended_at DESC, rowid DESC LIMIT 1`)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNoCapture
	}
	if err != nil {
		return Session{}, fmt.Errorf("latest capture: %w", err)
	}
	return s, nil
}

// Sessions lists sessions newest first. A non-positive limit returns all.
func (j *Journal) Sessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.conn.QueryContext(ctx,
		`SELECT id, started_at, ended_at, state, frames, capture_path FROM sessions
		 ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Composites lists composites newest first. A non-positive limit returns all.
func (j *Journal) Composites(ctx context.Context, limit int) ([]Composite, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.conn.QueryContext(ctx,
		`SELECT id, COALESCE(session_id, ''), template_path, capture_path, output_path, markers, created_at
		 FROM composites ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list composites: %w", err)
	}
	defer rows.Close()

	var out []Composite
	for rows.Next() {
		var c Composite
		var created string
		if err := rows.Scan(&c.ID, &c.SessionID, &c.TemplatePath, &c.CapturePath, &c.OutputPath, &c.Markers, &created); err != nil {
			return nil, fmt.Errorf("list composites: %w", err)
		}
		c.CreatedAt = parseTime(created)
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(sc scanner) (Session, error) {
	var s Session
	var started, ended string
	if err := sc.Scan(&s.ID, &started, &ended, &s.State, &s.Frames, &s.CapturePath); err != nil {
		return Session{}, err
	}
	s.StartedAt = parseTime(started)
	s.EndedAt = parseTime(ended)
	return s, nil
}

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
