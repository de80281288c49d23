package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps snapshot documents in a local SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	idx        INTEGER NOT NULL UNIQUE,
	payload    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_snapshots_idx ON snapshots(idx DESC);
`

// Migrate creates the snapshots table.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save inserts or replaces the document at index.
func (s *SQLiteStore) Save(ctx context.Context, index int, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, idx, payload, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(idx) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		uuid.New().String(), index, string(data), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save snapshot %d", index)
}

// List returns all stored indices, highest first.
func (s *SQLiteStore) List(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT idx FROM snapshots ORDER BY idx DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list snapshots")
	}
	defer rows.Close() //nolint:errcheck

	var out []int
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan snapshot index")
		}
		out = append(out, idx)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list snapshots")
}

// Fetch returns the document at index.
func (s *SQLiteStore) Fetch(ctx context.Context, index int) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE idx = ?`, index).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: fetch snapshot %d", index)
	}
	return []byte(payload), nil
}
