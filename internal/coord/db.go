// Package coord provides the SQLite-backed coordination store shared
// by independently running agents. It holds session-scoped agent
// status, messages, context entries, and performance rows, plus the
// artifact and deployment audit rows that outlive session clears.
package coord

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// writeRetries bounds the retry loop around store writes. After the
// final attempt the error propagates to the caller.
const (
	writeRetries  = 3
	retryInterval = 50 * time.Millisecond
)

// DB wraps an SQLite connection with coordination-store operations.
type DB struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// ProjectDBPath returns the path to the project-local coordination
// database.
func ProjectDBPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".snowhive", "coordination.db")
}

// Open opens an SQLite database at the given path.
// It creates the parent directories if they don't exist.
// WAL mode is enabled for concurrent reads.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &DB{conn: conn, path: path}, nil
}

// OpenProject opens the project-local coordination database.
func OpenProject(projectRoot string) (*DB, error) {
	return Open(ProjectDBPath(projectRoot))
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Close()
}

// Path returns the path to the database file.
func (db *DB) Path() string {
	return db.path
}

// Migrate applies all pending schema migrations.
func (db *DB) Migrate() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Coordination},
		{2, migrationV2Performance},
		{3, migrationV3Audit},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Migration SQL statements
const migrationV1Coordination = `
CREATE TABLE IF NOT EXISTS agent_status (
	session TEXT NOT NULL,
	agent TEXT NOT NULL,
	state TEXT NOT NULL,
	progress INTEGER NOT NULL DEFAULT 0,
	current_tool TEXT,
	error_state TEXT,
	last_activity DATETIME NOT NULL,
	PRIMARY KEY (session, agent)
);

CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	session TEXT NOT NULL,
	from_agent TEXT NOT NULL,
	to_agent TEXT NOT NULL,
	type TEXT NOT NULL,
	content TEXT,
	artifact_ref TEXT,
	processed INTEGER NOT NULL DEFAULT 0,
	sent_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_recipient ON messages(session, to_agent, processed);

CREATE TABLE IF NOT EXISTS context_entries (
	session TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT,
	creator TEXT,
	expires_at DATETIME,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (session, key)
);
`

const migrationV2Performance = `
CREATE TABLE IF NOT EXISTS performance (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session TEXT NOT NULL,
	agent TEXT NOT NULL,
	operation TEXT NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	success INTEGER NOT NULL DEFAULT 0,
	error TEXT,
	recorded_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_performance_session ON performance(session);
`

const migrationV3Audit = `
CREATE TABLE IF NOT EXISTS artifacts (
	id TEXT PRIMARY KEY,
	session TEXT NOT NULL,
	type TEXT NOT NULL,
	name TEXT NOT NULL,
	created_by TEXT,
	payload TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_artifacts_session ON artifacts(session);

CREATE TABLE IF NOT EXISTS deployments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session TEXT NOT NULL,
	agent TEXT NOT NULL,
	artifact_type TEXT NOT NULL,
	artifact_name TEXT NOT NULL,
	success INTEGER NOT NULL DEFAULT 0,
	detail TEXT,
	deployed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_deployments_session ON deployments(session);
`

// Exec executes a write with a bounded retry, covering transient store
// unavailability (locked file, slow WAL checkpoint). Non-transient
// errors such as constraint violations fail immediately; after the
// retries are exhausted the last error propagates.
func (db *DB) Exec(query string, args ...any) (sql.Result, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var res sql.Result
	var err error
	for attempt := 0; attempt < writeRetries; attempt++ {
		res, err = db.conn.Exec(query, args...)
		if err == nil {
			return res, nil
		}
		if !transientWriteError(err) || attempt == writeRetries-1 {
			break
		}
		time.Sleep(retryInterval)
	}
	return nil, err
}

// transientWriteError reports whether a write failure is worth
// retrying. SQLite surfaces contention as SQLITE_BUSY or SQLITE_LOCKED.
func transientWriteError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "busy") || strings.Contains(msg, "locked")
}

// Query executes a query that returns rows.
func (db *DB) Query(query string, args ...any) (*sql.Rows, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.conn.Query(query, args...)
}

// QueryRow executes a query that returns at most one row.
func (db *DB) QueryRow(query string, args ...any) *sql.Row {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.conn.QueryRow(query, args...)
}

// Transaction runs the given function within a transaction.
func (db *DB) Transaction(fn func(tx *sql.Tx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// timeFormat keeps a fixed-width fraction so stored timestamps compare
// correctly as strings (MAX() in the status upsert relies on this).
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime formats a time.Time for SQLite storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

// parseTime parses a time string from SQLite.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// parseNullableTime parses a nullable time string from SQLite.
func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil
	}
	return &t
}
