package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Actions recorded per eviction event.
const (
	ActionDelete   = "DELETE"
	ActionDryRun   = "DRY_RUN"
	ActionPruneDir = "PRUNE_DIR"
)

// DB manages the SQLite database holding the eviction history.
type DB struct {
	db *sql.DB
}

// Record represents a single eviction event.
type Record struct {
	ID           int64
	Timestamp    time.Time
	Action       string
	Path         string
	Size         int64
	RunningBytes int64
	CreatedAt    time.Time
}

// Open creates a database connection and initializes the schema.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// file: prefix with _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Exercise the connection so the file is created (and permission
	// problems surface) before any eviction runs.
	if _, err := db.Exec("SELECT 1"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	h := &DB{db: db}
	if err := h.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS evictions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		path TEXT NOT NULL,
		size INTEGER NOT NULL,
		running_bytes INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_evictions_timestamp ON evictions(timestamp);
	CREATE INDEX IF NOT EXISTS idx_evictions_action ON evictions(action);
	CREATE INDEX IF NOT EXISTS idx_evictions_path ON evictions(path);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// RecordEviction inserts one eviction event. runningBytes is the tree's
// running total after the action took effect.
func (d *DB) RecordEviction(action, path string, size int64, runningBytes uint64) error {
	query := `
	INSERT INTO evictions (timestamp, action, path, size, running_bytes)
	VALUES (?, ?, ?, ?, ?)
	`
	_, err := d.db.Exec(query, time.Now().UTC(), action, path, size, int64(runningBytes))
	return err
}

// Recent returns the n most recent eviction events, newest first.
func (d *DB) Recent(n int) ([]Record, error) {
	query := `
	SELECT id, timestamp, action, path, size, running_bytes, created_at
	FROM evictions
	ORDER BY id DESC
	LIMIT ?
	`
	rows, err := d.db.Query(query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent evictions: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ByAction returns events with the given action tag, newest first.
func (d *DB) ByAction(action string, n int) ([]Record, error) {
	query := `
	SELECT id, timestamp, action, path, size, running_bytes, created_at
	FROM evictions
	WHERE action = ?
	ORDER BY id DESC
	LIMIT ?
	`
	rows, err := d.db.Query(query, action, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query evictions by action: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Stats summarizes the recorded history.
type Stats struct {
	TotalDeleted int64
	TotalPruned  int64
	TotalDryRun  int64
	BytesFreed   int64
}

// GetStats aggregates counts and freed bytes over the whole history.
func (d *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	query := `
	SELECT
		COALESCE(SUM(CASE WHEN action = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN action = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN action = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN action = ? THEN size ELSE 0 END), 0)
	FROM evictions
	`
	err := d.db.QueryRow(query, ActionDelete, ActionPruneDir, ActionDryRun, ActionDelete).Scan(
		&stats.TotalDeleted,
		&stats.TotalPruned,
		&stats.TotalDryRun,
		&stats.BytesFreed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	return stats, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Action, &r.Path, &r.Size, &r.RunningBytes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan eviction row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}
