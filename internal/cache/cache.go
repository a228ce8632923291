// Package cache persists JSON snapshots of Notion data in a local SQLite
// database. The HTTP API writes through to it on every successful fetch and
// reads from it in offline mode, so the last known inventory stays available
// when Notion is unreachable.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store is a SQLite-backed key/value snapshot store. Each entry keeps the
// serialized value together with the time it was saved.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the snapshot database at path. An empty path
// defaults to ~/.homedex/cache.db.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".homedex", "cache.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	// WAL mode lets the API serve reads while a snapshot write is in flight.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			key      TEXT PRIMARY KEY,
			saved_at INTEGER NOT NULL,
			data     TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating snapshots table: %w", err)
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

// Set serializes v and stores it under key, overwriting any previous
// snapshot and stamping the current time.
func (s *Store) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling snapshot: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO snapshots (key, saved_at, data)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			saved_at = excluded.saved_at,
			data = excluded.data
	`, key, time.Now().UTC().UnixMilli(), string(data))

	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// Get loads the snapshot stored under key into dest, regardless of age.
// The boolean reports whether a snapshot existed.
func (s *Store) Get(key string, dest any) (bool, error) {
	_, data, err := s.lookup(key)
	if err != nil || data == "" {
		return false, err
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("unmarshalling snapshot: %w", err)
	}
	return true, nil
}

// GetFresh loads the snapshot under key only if it was saved within maxAge.
// A maxAge of zero or less treats every snapshot as stale, so it never hits.
func (s *Store) GetFresh(key string, dest any, maxAge time.Duration) (bool, error) {
	if maxAge <= 0 {
		return false, nil
	}

	savedAt, data, err := s.lookup(key)
	if err != nil || data == "" {
		return false, err
	}
	if time.Since(savedAt) > maxAge {
		return false, nil
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("unmarshalling snapshot: %w", err)
	}
	return true, nil
}

// SavedAt reports when the snapshot under key was stored.
func (s *Store) SavedAt(key string) (time.Time, bool, error) {
	savedAt, data, err := s.lookup(key)
	if err != nil || data == "" {
		return time.Time{}, false, err
	}
	return savedAt, true, nil
}

// Delete removes one snapshot. Removing a missing key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM snapshots WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	return nil
}

// Clear removes every stored snapshot.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM snapshots"); err != nil {
		return fmt.Errorf("clearing snapshots: %w", err)
	}
	return nil
}

// lookup fetches the raw row for key. A missing key returns empty data and
// a nil error.
func (s *Store) lookup(key string) (time.Time, string, error) {
	row := s.db.QueryRow("SELECT saved_at, data FROM snapshots WHERE key = ?", key)

	var savedAtMillis int64
	var data string
	if err := row.Scan(&savedAtMillis, &data); err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, "", nil
		}
		return time.Time{}, "", fmt.Errorf("scanning snapshot: %w", err)
	}

	return time.UnixMilli(savedAtMillis).UTC(), data, nil
}
