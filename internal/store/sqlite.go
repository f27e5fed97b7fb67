package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/teachtree/internal/visibility"
)

// SQLiteStore keeps a history of snapshots per key; Load returns the newest
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and
// applies migrations. ":memory:" opens a private in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db, dbPath: dbPath}
	if err := s.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// execWithRetry executes a statement with exponential backoff on lock errors
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

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Save appends snap to the history of key
func (s *SQLiteStore) Save(ctx context.Context, key string, snap visibility.Snapshot) error {
	visible, err := json.Marshal(snap.Visible)
	if err != nil {
		return fmt.Errorf("marshal visible ids: %w", err)
	}
	highlight, err := json.Marshal(snap.Highlight)
	if err != nil {
		return fmt.Errorf("marshal highlight: %w", err)
	}

	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}

	query := `INSERT INTO visibility_snapshots
		(snapshot_id, state_key, version, visible, highlight, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query,
		snap.ID, key, snap.Version, string(visible), string(highlight),
		savedAt.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// Load returns the newest snapshot for key
func (s *SQLiteStore) Load(ctx context.Context, key string) (visibility.Snapshot, bool, error) {
	snaps, err := s.History(ctx, key, 1)
	if err != nil {
		return visibility.Snapshot{}, false, err
	}
	if len(snaps) == 0 {
		return visibility.Snapshot{}, false, nil
	}
	return snaps[0], true, nil
}

// History returns up to limit snapshots for key, newest first (limit <= 0 = all)
func (s *SQLiteStore) History(ctx context.Context, key string, limit int) ([]visibility.Snapshot, error) {
	query := `SELECT snapshot_id, version, visible, highlight, saved_at
		FROM visibility_snapshots WHERE state_key = ? ORDER BY id DESC`
	args := []interface{}{key}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []visibility.Snapshot
	for rows.Next() {
		var (
			snap      visibility.Snapshot
			visible   string
			highlight sql.NullString
			savedAt   string
		)
		if err := rows.Scan(&snap.ID, &snap.Version, &visible, &highlight, &savedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if err := json.Unmarshal([]byte(visible), &snap.Visible); err != nil {
			return nil, fmt.Errorf("decode visible ids: %w", err)
		}
		if highlight.Valid && highlight.String != "" {
			if err := json.Unmarshal([]byte(highlight.String), &snap.Highlight); err != nil {
				return nil, fmt.Errorf("decode highlight: %w", err)
			}
		}
		if snap.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
			return nil, fmt.Errorf("parse saved_at: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snaps, nil
}

// Delete removes every snapshot for key
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM visibility_snapshots WHERE state_key = ?`, key); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	return nil
}

// Prune keeps the newest keep snapshots for key and returns how many were removed
func (s *SQLiteStore) Prune(ctx context.Context, key string, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	result, err := s.db.ExecContext(ctx, `
DELETE FROM visibility_snapshots
WHERE state_key = ? AND id NOT IN (
    SELECT id FROM visibility_snapshots WHERE state_key = ? ORDER BY id DESC LIMIT ?
)`, key, key, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return result.RowsAffected()
}
