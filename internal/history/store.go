// Package history persists completed scan runs in a SQLite database.
//
// The store is opt-in: scans only touch it when history recording is
// enabled, and the scanner is fully functional without it.
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/vscan/vscan-backup-file-detector/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// RunRecord is one persisted scan run.
type RunRecord struct {
	RunID        uuid.UUID
	Root         string
	StartedAt    time.Time
	FinishedAt   time.Time
	FilesScanned int
	DirsScanned  int
	Warnings     int
	Findings     int
}

// Store manages the SQLite run history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if necessary) the history database at dbPath and
// initializes the schema. ":memory:" is accepted for tests.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// An in-memory database exists per connection, so the pool must not
	// open a second one.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// busy_timeout first so the remaining pragmas wait on locks instead of
	// failing when another invocation holds the database.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	s := &Store{db: db, dbPath: dbPath}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// execWithRetry retries a statement with exponential backoff on
// "database is locked" errors, which occur during concurrent initialization
// of the same database file.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun persists one finalized run and its findings in a single
// transaction.
func (s *Store) RecordRun(res *models.RunResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (run_id, root, started_at, finished_at, files_scanned, dirs_scanned, warnings, findings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID.String(), res.Root, res.StartedAt, res.FinishedAt,
		res.FilesScanned, res.DirsScanned, res.Warnings, len(res.Findings))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, f := range res.Findings {
		_, err = tx.Exec(`
			INSERT INTO findings (run_id, path, suffix, reason)
			VALUES (?, ?, ?, ?)`,
			res.RunID.String(), f.Candidate.Path, f.Rule.Suffix, f.Rule.Reason)
		if err != nil {
			return fmt.Errorf("insert finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means no
// limit.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	query := `
		SELECT run_id, root, started_at, finished_at, files_scanned, dirs_scanned, warnings, findings
		FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var id string
		if err := rows.Scan(&id, &rec.Root, &rec.StartedAt, &rec.FinishedAt,
			&rec.FilesScanned, &rec.DirsScanned, &rec.Warnings, &rec.Findings); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		rec.RunID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", id, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// FindingsForRun returns the findings persisted for one run, in insertion
// order.
func (s *Store) FindingsForRun(runID uuid.UUID) ([]models.Finding, error) {
	rows, err := s.db.Query(`
		SELECT path, suffix, reason FROM findings
		WHERE run_id = ? ORDER BY id`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("query findings: %w", err)
	}
	defer rows.Close()

	var findings []models.Finding
	for rows.Next() {
		var f models.Finding
		if err := rows.Scan(&f.Candidate.Path, &f.Rule.Suffix, &f.Rule.Reason); err != nil {
			return nil, fmt.Errorf("scan finding row: %w", err)
		}
		f.Candidate.Name = filepath.Base(f.Candidate.Path)
		findings = append(findings, f)
	}
	return findings, rows.Err()
}
