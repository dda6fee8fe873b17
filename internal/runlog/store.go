package runlog

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Entry is one recorded pipeline run.
type Entry struct {
	ID            string
	Status        string
	WorkbookURL   string
	BoundariesURL string
	StartedAt     time.Time
	CompletedAt   *time.Time
	Regions       int64
	Rows          int64
	Unmatched     int64
	Output        string
	Error         string
}

// Result holds the outcome of a successful run, passed to Complete.
type Result struct {
	Regions   int64
	Rows      int64
	Unmatched int64
	Output    string
}

// Store is the local SQLite run ledger.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger at the given path and
// configures WAL mode.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "runlog: exec %s", pragma)
		}
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	status         TEXT NOT NULL DEFAULT 'running',
	workbook_url   TEXT NOT NULL,
	boundaries_url TEXT NOT NULL,
	started_at     DATETIME NOT NULL,
	completed_at   DATETIME,
	regions        INTEGER NOT NULL DEFAULT 0,
	rows           INTEGER NOT NULL DEFAULT 0,
	unmatched      INTEGER NOT NULL DEFAULT 0,
	output         TEXT NOT NULL DEFAULT '',
	error          TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

func (s *Store) migrate() error {
	_, err := s.db.Exec(migration)
	return eris.Wrap(err, "runlog: migrate")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Start records the beginning of a run and returns its ID.
func (s *Store) Start(ctx context.Context, workbookURL, boundariesURL string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, status, workbook_url, boundaries_url, started_at) VALUES (?, 'running', ?, ?, ?)`,
		id, workbookURL, boundariesURL, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "runlog: start run")
	}
	return id, nil
}

// Complete marks a run as successfully completed.
func (s *Store) Complete(ctx context.Context, runID string, result Result) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = 'complete', completed_at = ?, regions = ?, rows = ?, unmatched = ?, output = ? WHERE id = ?`,
		time.Now().UTC(), result.Regions, result.Rows, result.Unmatched, result.Output, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: complete run %s", runID)
	}
	return nil
}

// Fail marks a run as failed with an error message.
func (s *Store) Fail(ctx context.Context, runID string, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = 'failed', completed_at = ?, error = ? WHERE id = ?`,
		time.Now().UTC(), errMsg, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: fail run %s", runID)
	}
	return nil
}

// List returns all runs, most recent first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, workbook_url, boundaries_url, started_at, completed_at, regions, rows, unmatched, output, error
		 FROM runs ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.Status, &e.WorkbookURL, &e.BoundariesURL,
			&e.StartedAt, &e.CompletedAt, &e.Regions, &e.Rows,
			&e.Unmatched, &e.Output, &e.Error,
		); err != nil {
			return nil, eris.Wrap(err, "runlog: scan run")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "runlog: iterate runs")
	}

	return entries, nil
}
