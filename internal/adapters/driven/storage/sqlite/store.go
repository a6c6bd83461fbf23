package sqlite

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ledgersync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driven"
)

// appName names the data directory under XDG_DATA_HOME.
const appName = "ledgersync"

// dbFile is the database file name inside the data directory.
const dbFile = "ledgersync.db"

// timeLayout is fixed width and always UTC so stored timestamps compare
// correctly as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is a unified SQLite-based storage that provides access to
// all sync store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultDataDir returns the data directory used when none is configured.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, appName)
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to $XDG_DATA_HOME/ledgersync.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	// Pragmas in the DSN apply to every pooled connection.
	db, err := sql.Open("sqlite", dbPath+
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// CheckpointStore returns a CheckpointStore backed by this store.
func (s *Store) CheckpointStore() driven.CheckpointStore {
	return &checkpointStore{store: s}
}

// SessionStore returns a SessionStore backed by this store.
func (s *Store) SessionStore() driven.SessionStore {
	return &sessionStore{store: s}
}

// SyncLogStore returns a SyncLogStore backed by this store.
func (s *Store) SyncLogStore() driven.SyncLogStore {
	return &sessionStore{store: s}
}

// StagingWriter returns a StagingWriter backed by this store.
func (s *Store) StagingWriter() driven.StagingWriter {
	return &stagingStore{store: s}
}

// StagingReader returns a StagingReader backed by this store.
func (s *Store) StagingReader() driven.StagingReader {
	return &stagingStore{store: s}
}

// SchedulerStore returns a SchedulerStore backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// apply runs one migration and records its version atomically.
func (s *Store) apply(version int, content string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(content); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Helper Functions ====================

// formatTime formats t in the fixed-width UTC layout.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// formatNullableTime formats a time, or returns nil for zero time.
func formatNullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

// formatTimePtr formats a time pointer, or returns nil for nil.
func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

// parseTime parses a stored timestamp. Returns zero time if invalid.
func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// parseNullableTime parses a nullable timestamp to time.Time.
// Returns zero time if the string is empty or invalid.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	return parseTime(s.String)
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// boolToInt converts a bool to 1 (true) or 0 (false).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
