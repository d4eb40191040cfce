package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Mavwarf/imaging/internal/paths"
	"github.com/Mavwarf/imaging/internal/pipeline"

	_ "modernc.org/sqlite"
)

// Run is one recorded invocation.
type Run struct {
	ID        int64
	Time      time.Time
	Dir       string
	Project   string
	Version   string
	Engine    string
	Platforms []string
	Outcome   string
	Jobs      int
	Failed    int
	Duration  time.Duration
	Error     string // fatal error of an aborted run
	Failures  []Failure
}

// Failure is one failed output of a run.
type Failure struct {
	Category    string
	Platform    string
	Destination string
	Error       string
}

// FromResult converts a pipeline result into a Run ready to record.
func FromResult(res pipeline.Result, dir, engine string) Run {
	r := Run{
		Time:      res.Started,
		Dir:       dir,
		Project:   res.Project.Name,
		Version:   res.Project.Version,
		Engine:    engine,
		Platforms: res.Platforms,
		Outcome:   res.Outcome.String(),
		Jobs:      res.Jobs(),
		Duration:  res.Duration,
	}
	if res.Err != nil {
		r.Error = res.Err.Error()
	}
	for _, f := range res.Failures() {
		r.Failures = append(r.Failures, Failure{
			Category:    f.Job.Category.String(),
			Platform:    f.Job.Platform,
			Destination: f.Job.Destination,
			Error:       f.Err.Error(),
		})
	}
	r.Failed = len(r.Failures)
	return r
}

// Store keeps run history in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath is the history database location in the user data dir.
func DefaultPath() string {
	return filepath.Join(paths.DataDir(), paths.HistoryFileName)
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), paths.DirPerm); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Set PRAGMAs before any DDL.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	}

	ddl := `
CREATE TABLE IF NOT EXISTS runs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp       TEXT    NOT NULL,
    dir             TEXT    NOT NULL DEFAULT '',
    project         TEXT    NOT NULL DEFAULT '',
    version         TEXT    NOT NULL DEFAULT '',
    engine          TEXT    NOT NULL DEFAULT '',
    platforms_csv   TEXT    NOT NULL DEFAULT '',
    outcome         TEXT    NOT NULL,
    jobs            INTEGER NOT NULL DEFAULT 0,
    failed          INTEGER NOT NULL DEFAULT 0,
    duration_ms     INTEGER NOT NULL DEFAULT 0,
    error           TEXT    NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS failures (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id      INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    category    TEXT    NOT NULL,
    platform    TEXT    NOT NULL,
    destination TEXT    NOT NULL,
    error       TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_failures_run   ON failures(run_id);
`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Record stores r and its failures and returns the new run ID.
func (s *Store) Record(r Run) (int64, error) {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (timestamp, dir, project, version, engine, platforms_csv, outcome, jobs, failed, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.UTC().Format(time.RFC3339Nano), r.Dir, r.Project, r.Version, r.Engine,
		strings.Join(r.Platforms, ","), r.Outcome, r.Jobs, len(r.Failures),
		r.Duration.Milliseconds(), r.Error,
	)
	if err != nil {
		return 0, err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, f := range r.Failures {
		if _, err := tx.Exec(
			`INSERT INTO failures (run_id, category, platform, destination, error) VALUES (?, ?, ?, ?, ?)`,
			runID, f.Category, f.Platform, f.Destination, f.Error,
		); err != nil {
			return 0, err
		}
	}
	return runID, tx.Commit()
}

// Recent returns up to n runs, newest first. n <= 0 returns all.
func (s *Store) Recent(n int) ([]Run, error) {
	query := `SELECT id, timestamp, dir, project, version, engine, platforms_csv,
		outcome, jobs, failed, duration_ms, error
		FROM runs ORDER BY id DESC`
	var args []any
	if n > 0 {
		query += ` LIMIT ?`
		args = append(args, n)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var tsStr, platforms string
		var durMS int64
		if err := rows.Scan(&r.ID, &tsStr, &r.Dir, &r.Project, &r.Version, &r.Engine, &platforms,
			&r.Outcome, &r.Jobs, &r.Failed, &durMS, &r.Error); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339Nano, tsStr)
		if err != nil {
			continue
		}
		r.Time = ts
		r.Duration = time.Duration(durMS) * time.Millisecond
		if platforms != "" {
			r.Platforms = strings.Split(platforms, ",")
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Failures returns the failed outputs recorded for runID.
func (s *Store) Failures(runID int64) ([]Failure, error) {
	rows, err := s.db.Query(
		`SELECT category, platform, destination, error FROM failures WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.Category, &f.Platform, &f.Destination, &f.Error); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Clean removes runs older than days and returns how many were removed.
func (s *Store) Clean(days int) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -days).UTC().Format(time.RFC3339Nano)
	res, err := s.db.Exec(`DELETE FROM runs WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Clear deletes all history.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM runs`)
	return err
}
