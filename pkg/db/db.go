package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Register driver
)

// DB wraps the sql.DB connection.
type DB struct {
	*sql.DB
}

// Init opens the database and runs migrations.
func Init(path string) (*DB, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	// WAL plus busy timeout so API handlers and maintenance can share the file
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000;"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	d := &DB{db}
	// Enforce single connection to avoid SQLITE_BUSY errors during concurrent writes
	db.SetMaxOpenConns(1)

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return d, nil
}

// TimeLayout matches the SQLite CURRENT_TIMESTAMP format.
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime renders t the way SQLite stores CURRENT_TIMESTAMP, so that
// created_at columns compare correctly as text.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// PruneCache removes cache entries older than the specified duration.
func (d *DB) PruneCache(olderThan time.Duration) (int64, error) {
	return d.prune("cache", olderThan)
}

// PruneProfiles removes stored profiles older than the specified duration.
func (d *DB) PruneProfiles(olderThan time.Duration) (int64, error) {
	return d.prune("profiles", olderThan)
}

func (d *DB) prune(table string, olderThan time.Duration) (int64, error) {
	deadline := FormatTime(time.Now().Add(-olderThan))
	res, err := d.Exec("DELETE FROM "+table+" WHERE created_at < ?", deadline)
	if err != nil {
		return 0, fmt.Errorf("prune %s: %w", table, err)
	}
	return res.RowsAffected()
}

func (d *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS cache (
			key TEXT PRIMARY KEY,
			value BLOB,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			from_lat REAL,
			from_lon REAL,
			from_elevation REAL,
			from_antenna REAL,
			to_lat REAL,
			to_lon REAL,
			to_elevation REAL,
			to_antenna REAL,
			samples TEXT,
			earth_arc BOOLEAN DEFAULT 1,
			full_elevation BOOLEAN DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_created ON profiles (created_at);`,
	}

	for _, q := range queries {
		if _, err := d.Exec(q); err != nil {
			return fmt.Errorf("exec error: %w query: %s", err, q)
		}
	}

	return nil
}
