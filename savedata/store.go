// Package savedata persists script values in a SQLite database.
package savedata

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/milk9111/lilah/logging"
	_ "modernc.org/sqlite"
)

var logger = logging.New("savedata")

var ErrNotFound = errors.New("savedata: key not found")

// Store is a key/value table. Values are stored as JSON.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path. A leading ~ is expanded to
// the home directory and missing parent directories are created.
func Open(path string) (*Store, error) {
	if path != "" && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("savedata: expand home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("savedata: create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("savedata: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("savedata: connect %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("savedata: migrate: %w", err)
	}
	logger.Debug("opened", "path", path)
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS saves (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("savedata: encode %s: %w", key, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO saves (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, string(b))
	if err != nil {
		return fmt.Errorf("savedata: set %s: %w", key, err)
	}
	return nil
}

// Get decodes the value stored under key into out.
func (s *Store) Get(key string, out any) error {
	var raw string
	err := s.db.QueryRow("SELECT value FROM saves WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return fmt.Errorf("savedata: get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("savedata: decode %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM saves WHERE key = ?", key); err != nil {
		return fmt.Errorf("savedata: delete %s: %w", key, err)
	}
	return nil
}

// Keys lists every stored key in order.
func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM saves ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("savedata: keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("savedata: keys: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Save and Load adapt the store to the script bridge.

func (s *Store) Save(key string, value any) error {
	return s.Set(key, value)
}

func (s *Store) Load(key string) (any, bool, error) {
	var v any
	err := s.Get(key, &v)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}
