// Package journal owns the on-disk history of render and rotate runs.
//
// Ownership boundary:
// - the runs table schema and its migrations
// - recording finished runs
// - listing recent runs for the history command
//
// The journal is optional; callers without one record into Discard.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Kind tags what a run did.
type Kind string

const (
	KindRender Kind = "render"
	KindRotate Kind = "rotate"
)

// detail column cap; tool output beyond this is truncated, keeping the
// journal bounded even when the tool is noisy.
const maxDetailBytes = 4096

// Run is one finished pass. OutputSHA carries the hex sha256 of the
// published document on successful render runs and is empty otherwise.
type Run struct {
	ID        int64
	Kind      Kind
	Started   time.Time
	Duration  time.Duration
	OK        bool
	ExitCode  int
	Detail    string
	OutputSHA string
}

// Recorder accepts finished runs.
type Recorder interface {
	Record(ctx context.Context, run Run) error
}

type discard struct{}

func (discard) Record(context.Context, Run) error { return nil }

// Discard drops every run. Used when no journal path is configured.
var Discard Recorder = discard{}

// Journal persists runs in a sqlite file.
type Journal struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	ok INTEGER NOT NULL,
	exit_code INTEGER NOT NULL DEFAULT 0,
	detail TEXT NOT NULL DEFAULT '',
	output_sha TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// Open creates or opens the journal file and ensures the schema exists.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: tune %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: tune %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends one run. Detail is truncated to keep rows bounded.
func (j *Journal) Record(ctx context.Context, run Run) error {
	detail := run.Detail
	if len(detail) > maxDetailBytes {
		detail = detail[:maxDetailBytes]
	}
	ok := 0
	if run.OK {
		ok = 1
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (kind, started_at, duration_ms, ok, exit_code, detail, output_sha)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(run.Kind),
		run.Started.UnixNano(),
		run.Duration.Milliseconds(),
		ok,
		run.ExitCode,
		detail,
		run.OutputSHA,
	)
	if err != nil {
		return fmt.Errorf("journal: record run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, kind, started_at, duration_ms, ok, exit_code, detail, output_sha
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			kind       string
			startedNS  int64
			durationMS int64
			ok         int
		)
		if err := rows.Scan(&run.ID, &kind, &startedNS, &durationMS, &ok, &run.ExitCode, &run.Detail, &run.OutputSHA); err != nil {
			return nil, fmt.Errorf("journal: scan run: %w", err)
		}
		run.Kind = Kind(kind)
		run.Started = time.Unix(0, startedNS)
		run.Duration = time.Duration(durationMS) * time.Millisecond
		run.OK = ok == 1
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: list runs: %w", err)
	}
	return runs, nil
}
