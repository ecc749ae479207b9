// Package store persists client state between runs: the bearer credential
// and a per-symbol cache of remote responses.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// StateStore is the SQLite-backed durable client state.
type StateStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS credential (
	id    INTEGER PRIMARY KEY CHECK (id = 1),
	token TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS cache (
	resource   TEXT NOT NULL,
	symbol     TEXT NOT NULL,
	body       BLOB NOT NULL,
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (resource, symbol)
);
`

// Open opens (or creates) the state database at dbPath, creating parent
// directories as needed.
func Open(dbPath string) (*StateStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &StateStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *StateStore) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Credential
// ---------------------------------------------------------------------------

// SaveToken stores the bearer token, replacing any previous one. The store
// holds exactly one credential row.
func (s *StateStore) SaveToken(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO credential (id, token) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET token = excluded.token`, token)
	return err
}

// LoadToken returns the stored bearer token, or "" when none is stored.
func (s *StateStore) LoadToken(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `SELECT token FROM credential WHERE id = 1`).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// ClearToken removes the stored bearer token.
func (s *StateStore) ClearToken(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM credential WHERE id = 1`)
	return err
}

// ---------------------------------------------------------------------------
// Response cache
// ---------------------------------------------------------------------------

// PutCache stores a raw response body for (resource, symbol), stamping it
// with the current time.
func (s *StateStore) PutCache(ctx context.Context, resource, symbol string, body []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache (resource, symbol, body, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (resource, symbol) DO UPDATE
		 SET body = excluded.body, fetched_at = excluded.fetched_at`,
		resource, symbol, body, time.Now().Unix())
	return err
}

// GetCache returns the cached body for (resource, symbol) if it is younger
// than maxAge. The second return value reports whether a fresh entry was
// found. A non-positive maxAge disables cache reads.
func (s *StateStore) GetCache(ctx context.Context, resource, symbol string, maxAge time.Duration) ([]byte, bool, error) {
	if maxAge <= 0 {
		return nil, false, nil
	}

	var body []byte
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT body, fetched_at FROM cache WHERE resource = ? AND symbol = ?`,
		resource, symbol).Scan(&body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if time.Since(time.Unix(fetchedAt, 0)) > maxAge {
		return nil, false, nil
	}
	return body, true, nil
}
