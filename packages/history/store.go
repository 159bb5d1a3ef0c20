package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/testini/testini/packages/core/runner"
)

// DefaultFilename is where session history is kept, next to the session
// configuration file.
const DefaultFilename = ".testini_history.db"

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	started_at  TIMESTAMP NOT NULL,
	duration_ms INTEGER NOT NULL,
	passed      INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	skipped     INTEGER NOT NULL,
	deselected  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS case_results (
	session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	case_id     TEXT NOT NULL,
	status      TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	error       TEXT
);
CREATE INDEX IF NOT EXISTS idx_case_results_session ON case_results(session_id);
CREATE INDEX IF NOT EXISTS idx_case_results_case ON case_results(case_id);
`

// Store keeps past session results in a SQLite database.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Session is one recorded run.
type Session struct {
	ID         string
	StartedAt  time.Time
	Duration   time.Duration
	Passed     int
	Failed     int
	Skipped    int
	Deselected int
}

// CaseRecord is one case outcome within a recorded session.
type CaseRecord struct {
	CaseID   string
	Status   runner.Status
	Duration time.Duration
	Error    string
}

// Record stores a finished run and returns the new session id. The
// session start is derived from the run duration so listed times are
// when the run began, not when it was recorded.
func (s *Store) Record(result *runner.RunResult) (string, error) {
	id := uuid.NewString()
	startedAt := time.Now().UTC().Add(-result.Duration)

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT INTO sessions (id, started_at, duration_ms, passed, failed, skipped, deselected)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, startedAt, result.Duration.Milliseconds(),
		result.Passed, result.Failed, result.Skipped, result.Deselected,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record session: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO case_results (session_id, case_id, status, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, cr := range result.Results {
		errMsg := ""
		if cr.Err != nil {
			errMsg = cr.Err.Error()
		}
		if _, err := stmt.Exec(id, cr.ID, string(cr.Status), cr.Duration.Milliseconds(), errMsg); err != nil {
			return "", fmt.Errorf("failed to record case %s: %w", cr.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// List returns the most recent sessions, newest first.
func (s *Store) List(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, started_at, duration_ms, passed, failed, skipped, deselected
		 FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var sess Session
		var durationMs int64
		if err := rows.Scan(&sess.ID, &sess.StartedAt, &durationMs,
			&sess.Passed, &sess.Failed, &sess.Skipped, &sess.Deselected); err != nil {
			return nil, err
		}
		sess.Duration = time.Duration(durationMs) * time.Millisecond
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}

// Session returns one session by id, or an error when unknown.
func (s *Store) Session(id string) (*Session, error) {
	var sess Session
	var durationMs int64
	err := s.db.QueryRow(
		`SELECT id, started_at, duration_ms, passed, failed, skipped, deselected
		 FROM sessions WHERE id = ?`, id).
		Scan(&sess.ID, &sess.StartedAt, &durationMs,
			&sess.Passed, &sess.Failed, &sess.Skipped, &sess.Deselected)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("unknown session %q", id)
	}
	if err != nil {
		return nil, err
	}
	sess.Duration = time.Duration(durationMs) * time.Millisecond
	return &sess, nil
}

// Cases returns the case outcomes of one session, in recorded order.
func (s *Store) Cases(sessionID string) ([]*CaseRecord, error) {
	rows, err := s.db.Query(
		`SELECT case_id, status, duration_ms, error
		 FROM case_results WHERE session_id = ? ORDER BY rowid`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*CaseRecord
	for rows.Next() {
		var rec CaseRecord
		var status string
		var durationMs int64
		if err := rows.Scan(&rec.CaseID, &status, &durationMs, &rec.Error); err != nil {
			return nil, err
		}
		rec.Status = runner.Status(status)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// Clear drops all recorded sessions.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM case_results`); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM sessions`)
	return err
}
