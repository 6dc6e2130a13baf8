// Package history records build requests and their outcomes in SQLite so the
// client can show past builds across restarts.
package history

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Outcome values recorded for finished builds.
const (
	OutcomeSuccess            = "success"
	OutcomeBuildFailed        = "build-failed"
	OutcomeArtifactNotFound   = "artifact-not-found"
	OutcomeConfigurationError = "configuration-error"
	OutcomeLaunchFailed       = "launch-failed"
	OutcomeRejected           = "rejected"
)

// Record is one build request as stored.
type Record struct {
	ID         string `json:"id"`
	Project    string `json:"project"`
	StartedAt  int64  `json:"startedAt"`
	FinishedAt int64  `json:"finishedAt,omitempty"`
	ExitCode   *int   `json:"exitCode,omitempty"`
	Outcome    string `json:"outcome,omitempty"`
	Artifact   string `json:"artifact,omitempty"`
}

// Store wraps the SQLite database holding build history.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS builds (
			id TEXT PRIMARY KEY,
			project TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			finished_at INTEGER,
			exit_code INTEGER,
			outcome TEXT,
			artifact TEXT
		)
	`)
	return err
}

// RecordStart inserts a new build row when a request is accepted.
func (s *Store) RecordStart(id, project string, startedAt int64) error {
	_, err := s.db.Exec(
		"INSERT INTO builds (id, project, started_at) VALUES (?, ?, ?)",
		id, project, startedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record build start: %w", err)
	}
	return nil
}

// RecordFinish marks a build terminal with its outcome. Artifact may be empty.
func (s *Store) RecordFinish(id string, finishedAt int64, exitCode int, outcome, artifact string) error {
	_, err := s.db.Exec(
		"UPDATE builds SET finished_at = ?, exit_code = ?, outcome = ?, artifact = ? WHERE id = ?",
		finishedAt, exitCode, outcome, artifact, id,
	)
	if err != nil {
		return fmt.Errorf("failed to record build finish: %w", err)
	}
	return nil
}

// Recent returns up to limit builds, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT id, project, started_at, finished_at, exit_code, outcome, artifact
		FROM builds ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query builds: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var finishedAt sql.NullInt64
		var exitCode sql.NullInt64
		var outcome, artifact sql.NullString
		if err := rows.Scan(&r.ID, &r.Project, &r.StartedAt, &finishedAt, &exitCode, &outcome, &artifact); err != nil {
			return nil, fmt.Errorf("failed to scan build row: %w", err)
		}
		if finishedAt.Valid {
			r.FinishedAt = finishedAt.Int64
		}
		if exitCode.Valid {
			code := int(exitCode.Int64)
			r.ExitCode = &code
		}
		r.Outcome = outcome.String
		r.Artifact = artifact.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
