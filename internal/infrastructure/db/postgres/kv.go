package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createKVTable = `CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Medium stores key-value records in the kv_store table.
type Medium struct {
	db *pgxpool.Pool
}

func NewMedium(db *pgxpool.Pool) *Medium {
	return &Medium{db: db}
}

// EnsureSchema creates the kv_store table if it does not exist.
func (m *Medium) EnsureSchema(ctx context.Context) error {
	_, err := m.db.Exec(ctx, createKVTable)
	return err
}

func (m *Medium) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := m.db.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return value, true, nil
}

func (m *Medium) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, NOW())
			  ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := m.db.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

func (m *Medium) Remove(ctx context.Context, key string) error {
	_, err := m.db.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, key)
	return err
}

// Ping reports whether the pool can reach the server.
func (m *Medium) Ping(ctx context.Context) error {
	return m.db.Ping(ctx)
}
