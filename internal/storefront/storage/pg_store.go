package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	getQuery = `SELECT value FROM kv_store WHERE key = $1`
	setQuery = `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
)

// PgStore implements KeyValue using PostgreSQL as the data store.
// The kv_store table is created by Migrate.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of KeyValue using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: dbp,
	}
}

// Get returns the value stored under key.
func (p *PgStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := p.db.QueryRow(ctx, getQuery, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts the value stored under key.
func (p *PgStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := p.db.Exec(ctx, setQuery, key, value); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}
