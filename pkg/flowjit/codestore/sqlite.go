package codestore

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists entries to a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at path.
// Use ":memory:" for a throwaway store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS generated_code (
			key TEXT PRIMARY KEY,
			function TEXT NOT NULL,
			revision INTEGER NOT NULL,
			saved TEXT NOT NULL,
			code TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store. The previous code is read and replaced inside
// one transaction.
func (s *SQLiteStore) Save(key, function, code string) (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin save: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var prev string
	switch err := tx.QueryRow(`SELECT code FROM generated_code WHERE key = ?`, key).Scan(&prev); {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return false, fmt.Errorf("read previous code: %w", err)
	default:
		changed = prev != code
	}

	if _, err = tx.Exec(`
		INSERT INTO generated_code (key, function, revision, saved, code)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			revision = CASE WHEN generated_code.code = excluded.code
				THEN generated_code.revision
				ELSE generated_code.revision + 1 END,
			function = excluded.function,
			saved = excluded.saved,
			code = excluded.code
	`, key, function, time.Now().UTC().Format(time.RFC3339Nano), code); err != nil {
		return false, fmt.Errorf("save code: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit save: %w", err)
	}
	return changed, nil
}

// Load implements Store.
func (s *SQLiteStore) Load(key string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Entry{}, ErrStoreClosed
	}

	var (
		e     Entry
		saved string
	)
	err := s.db.QueryRow(`
		SELECT function, revision, saved, code FROM generated_code WHERE key = ?
	`, key).Scan(&e.Function, &e.Revision, &saved, &e.Code)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("load code: %w", err)
	}
	e.Key = key
	e.Size = len(e.Code)
	e.Saved, _ = time.Parse(time.RFC3339Nano, saved)
	return e, nil
}

// List implements Store.
func (s *SQLiteStore) List() ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT key, function, revision, saved, LENGTH(code)
		FROM generated_code
		ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("list code: %w", err)
	}
	defer rows.Close()

	infos := []Info{}
	for rows.Next() {
		var (
			info  Info
			saved string
		)
		if err := rows.Scan(&info.Key, &info.Function, &info.Revision, &saved, &info.Size); err != nil {
			return nil, fmt.Errorf("scan code info: %w", err)
		}
		info.Saved, _ = time.Parse(time.RFC3339Nano, saved)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate code: %w", err)
	}
	return infos, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if _, err := s.db.Exec(`DELETE FROM generated_code WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete code: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
