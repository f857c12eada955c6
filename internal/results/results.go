// Package results records completed play sessions for reporting: who
// played which experience, the outcome, the final score and how long it
// took. The hosting product reads these for analytics and creator
// dashboards.
package results

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Outcome values stored per session.
const (
	OutcomeWon    = "won"
	OutcomeFailed = "failed"
)

// Result is one completed play session.
type Result struct {
	SessionID   uuid.UUID     `json:"session_id"`
	Experience  string        `json:"experience"`
	Outcome     string        `json:"outcome"`
	Score       int           `json:"score"`
	Elapsed     time.Duration `json:"elapsed"`
	CompletedAt time.Time     `json:"completed_at"`
}

// Recorder persists play-session results.
type Recorder interface {
	Record(ctx context.Context, res Result) error
	Recent(ctx context.Context, limit int) ([]Result, error)
	Close() error
}

const schema = `
CREATE TABLE IF NOT EXISTS play_sessions (
	session_id   TEXT PRIMARY KEY,
	experience   TEXT NOT NULL,
	outcome      TEXT NOT NULL,
	score        INTEGER NOT NULL,
	elapsed_ms   INTEGER NOT NULL,
	completed_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_play_sessions_experience ON play_sessions (experience);
`

// SQLiteRecorder implements Recorder on a local SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ Recorder = (*SQLiteRecorder)(nil)

// OpenSQLite opens (creating if needed) the results database at path.
// Pass ":memory:" for an ephemeral database in tests.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize results schema: %w", err)
	}
	return &SQLiteRecorder{db: db, logger: logger}, nil
}

func (r *SQLiteRecorder) Record(ctx context.Context, res Result) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO play_sessions
		 (session_id, experience, outcome, score, elapsed_ms, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		res.SessionID.String(), res.Experience, res.Outcome, res.Score,
		res.Elapsed.Milliseconds(), res.CompletedAt.UTC())
	if err != nil {
		r.logger.Error("Failed to record play session", "session", res.SessionID, "error", err)
		return fmt.Errorf("failed to record play session: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) Recent(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT session_id, experience, outcome, score, elapsed_ms, completed_at
		 FROM play_sessions ORDER BY completed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query play sessions: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var res Result
		var id string
		var elapsedMS int64
		if err := rows.Scan(&id, &res.Experience, &res.Outcome, &res.Score, &elapsedMS, &res.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan play session: %w", err)
		}
		res.SessionID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("corrupt session id %q: %w", id, err)
		}
		res.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
