package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const schemaSessionEntries = `CREATE TABLE IF NOT EXISTS console_session_entries (
	session_id TEXT NOT NULL,
	entry_key TEXT NOT NULL,
	entry_value TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (session_id, entry_key)
)`

type entryRow struct {
	Key   string `db:"entry_key"`
	Value string `db:"entry_value"`
}

// PostgresStorage persists entries in the console_session_entries table.
type PostgresStorage struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewPostgresStorage constructs a Postgres backed storage.
func NewPostgresStorage(db *sqlx.DB) *PostgresStorage {
	return &PostgresStorage{db: db, now: time.Now}
}

// EnsureSchema creates the entries table when missing.
func (p *PostgresStorage) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schemaSessionEntries); err != nil {
		return fmt.Errorf("create console_session_entries: %w", err)
	}
	return nil
}

// Read returns the present entries among keys.
func (p *PostgresStorage) Read(ctx context.Context, namespace string, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	var rows []entryRow
	query := `SELECT entry_key, entry_value FROM console_session_entries WHERE session_id = $1 AND entry_key = ANY($2)`
	if err := p.db.SelectContext(ctx, &rows, query, namespace, pq.Array(keys)); err != nil {
		return nil, fmt.Errorf("select session entries: %w", err)
	}
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

// Write upserts every entry in one transaction.
func (p *PostgresStorage) Write(ctx context.Context, namespace string, entries map[string]string) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session write: %w", err)
	}

	now := p.now().UTC()
	query := `INSERT INTO console_session_entries (session_id, entry_key, entry_value, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (session_id, entry_key) DO UPDATE SET entry_value = EXCLUDED.entry_value, updated_at = EXCLUDED.updated_at`
	for _, key := range sortedKeys(entries) {
		if _, err := tx.ExecContext(ctx, query, namespace, key, entries[key], now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert session entry %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session write: %w", err)
	}
	return nil
}

// Remove deletes keys of namespace.
func (p *PostgresStorage) Remove(ctx context.Context, namespace string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query := `DELETE FROM console_session_entries WHERE session_id = $1 AND entry_key = ANY($2)`
	if _, err := p.db.ExecContext(ctx, query, namespace, pq.Array(keys)); err != nil {
		return fmt.Errorf("delete session entries: %w", err)
	}
	return nil
}
