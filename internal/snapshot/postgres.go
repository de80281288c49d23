package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock pools satisfy it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore keeps snapshot documents in a Postgres table.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 4
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	idx        INTEGER NOT NULL UNIQUE CHECK (idx BETWEEN 1 AND 100),
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate creates the snapshots table.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Save inserts or replaces the document at index.
func (s *PostgresStore) Save(ctx context.Context, index int, data []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO snapshots (id, idx, payload, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (idx) DO UPDATE SET payload = EXCLUDED.payload, created_at = EXCLUDED.created_at`,
		uuid.New().String(), index, data, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: save snapshot %d", index)
}

// List returns all stored indices, highest first.
func (s *PostgresStore) List(ctx context.Context) ([]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT idx FROM snapshots ORDER BY idx DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list snapshots")
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			return nil, eris.Wrap(err, "postgres: scan snapshot index")
		}
		out = append(out, idx)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list snapshots")
}

// Fetch returns the document at index.
func (s *PostgresStore) Fetch(ctx context.Context, index int) ([]byte, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM snapshots WHERE idx = $1`, index).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: fetch snapshot %d", index)
	}
	return payload, nil
}
