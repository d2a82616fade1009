// Package history persists completed normalization runs and input
// checksums in a SQLite database under .cjd/.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"cjd/internal/errors"
	"cjd/internal/logging"
	"cjd/internal/normalize"
	"cjd/internal/paths"
)

// Run is one recorded normalization pass.
type Run struct {
	ID          string          `json:"id"`
	File        string          `json:"file"`
	SortBy      string          `json:"sort_by"`
	RemoveEmpty bool            `json:"remove_empty"`
	Modified    bool            `json:"modified"`
	Stats       normalize.Stats `json:"stats"`
	Checksum    string          `json:"checksum,omitempty"`
	DurationMs  int64           `json:"duration_ms"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Totals aggregates everything recorded so far.
type Totals struct {
	Runs              int `json:"runs"`
	Files             int `json:"files"`
	DuplicatesFound   int `json:"duplicates_found"`
	DuplicatesRemoved int `json:"duplicates_removed"`
}

// Store provides persistence for runs in the history database.
type Store struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// Open opens or creates the history database at .cjd/history.db.
// History only works inside an initialized project: without .cjd/ the
// store is unavailable and callers fall back to running without it.
func Open(root string, logger *logging.Logger) (*Store, error) {
	if !paths.IsInitialized(root) {
		return nil, errors.NewHistoryError("project is not initialized (run 'cjd init')", nil)
	}

	dbPath := paths.HistoryDB(root)
	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// Set pragmas for performance
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	store := &Store{
		conn:   conn,
		logger: logger,
		dbPath: dbPath,
	}

	if !dbExists {
		logger.Info("Creating history database", map[string]interface{}{
			"path": dbPath,
		})
		if err := store.initializeSchema(); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to initialize history schema: %w", err)
		}
	}

	return store, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// initializeSchema creates the history tables.
func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			file TEXT NOT NULL,
			sort_by TEXT NOT NULL,
			remove_empty INTEGER NOT NULL,
			modified INTEGER NOT NULL,
			total_entries INTEGER NOT NULL,
			duplicates_found INTEGER NOT NULL,
			duplicates_removed INTEGER NOT NULL,
			entries_with_value INTEGER NOT NULL,
			entries_without_value INTEGER NOT NULL,
			checksum TEXT,
			duration_ms INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_file ON runs(file);
		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);

		CREATE TABLE IF NOT EXISTS file_checksums (
			path TEXT PRIMARY KEY,
			checksum TEXT NOT NULL,
			last_run TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`

	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// RecordRun inserts a completed run. A missing ID or timestamp is filled in.
func (s *Store) RecordRun(run *Run) error {
	if run.File == "" {
		return fmt.Errorf("run is missing its file")
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO runs (id, file, sort_by, remove_empty, modified,
			total_entries, duplicates_found, duplicates_removed,
			entries_with_value, entries_without_value,
			checksum, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.conn.Exec(query,
		run.ID,
		run.File,
		run.SortBy,
		boolToInt(run.RemoveEmpty),
		boolToInt(run.Modified),
		run.Stats.TotalEntries,
		run.Stats.DuplicatesFound,
		run.Stats.DuplicatesRemoved,
		run.Stats.EntriesWithValue,
		run.Stats.EntriesWithoutValue,
		nullString(run.Checksum),
		run.DurationMs,
		run.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	s.logger.Debug("Recorded run", map[string]interface{}{
		"runId": run.ID,
		"file":  run.File,
	})

	return nil
}

// ListRuns retrieves runs newest first. An empty file lists every file;
// limit <= 0 selects the default page size.
func (s *Store) ListRuns(file string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	query := `
		SELECT id, file, sort_by, remove_empty, modified,
			total_entries, duplicates_found, duplicates_removed,
			entries_with_value, entries_without_value,
			checksum, duration_ms, created_at
		FROM runs
	`
	var args []interface{}
	if file != "" {
		query += " WHERE file = ?"
		args = append(args, file)
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// Totals aggregates the stored runs.
func (s *Store) Totals() (*Totals, error) {
	query := `
		SELECT COUNT(*),
			COUNT(DISTINCT file),
			COALESCE(SUM(duplicates_found), 0),
			COALESCE(SUM(duplicates_removed), 0)
		FROM runs
	`

	var totals Totals
	err := s.conn.QueryRow(query).Scan(
		&totals.Runs,
		&totals.Files,
		&totals.DuplicatesFound,
		&totals.DuplicatesRemoved,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate runs: %w", err)
	}

	return &totals, nil
}

// LookupChecksum returns the last stored input checksum for a path,
// or "" when none is recorded.
func (s *Store) LookupChecksum(path string) (string, error) {
	var checksum string
	err := s.conn.QueryRow(`
		SELECT checksum FROM file_checksums WHERE path = ?
	`, path).Scan(&checksum)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return checksum, nil
}

// StoreChecksum saves or updates the input checksum for a path.
func (s *Store) StoreChecksum(path, checksum string) error {
	_, err := s.conn.Exec(`
		INSERT OR REPLACE INTO file_checksums (path, checksum, last_run)
		VALUES (?, ?, ?)
	`, path, checksum, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Prune removes all but the newest keep runs. keep <= 0 keeps everything.
func (s *Store) Prune(keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	result, err := s.conn.Exec(`
		DELETE FROM runs
		WHERE rowid NOT IN (
			SELECT rowid FROM runs
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}

	return result.RowsAffected()
}

// scanRun scans a row from a Rows result into a Run.
func scanRun(rows *sql.Rows) (Run, error) {
	var run Run
	var removeEmpty, modified int
	var checksum sql.NullString
	var createdAt string

	err := rows.Scan(
		&run.ID,
		&run.File,
		&run.SortBy,
		&removeEmpty,
		&modified,
		&run.Stats.TotalEntries,
		&run.Stats.DuplicatesFound,
		&run.Stats.DuplicatesRemoved,
		&run.Stats.EntriesWithValue,
		&run.Stats.EntriesWithoutValue,
		&checksum,
		&run.DurationMs,
		&createdAt,
	)
	if err != nil {
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}

	run.RemoveEmpty = removeEmpty != 0
	run.Modified = modified != 0
	run.Checksum = checksum.String

	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		run.CreatedAt = t
	}

	return run, nil
}

// Helper functions for nullable fields
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
