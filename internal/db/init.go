// Package db opens the game server's PostgreSQL database and runs its
// background maintenance.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    token TEXT PRIMARY KEY,
    username TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS hash_lists (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    algorithm TEXT NOT NULL,
    hashes TEXT[] NOT NULL DEFAULT '{}',
    open BOOLEAN NOT NULL DEFAULT TRUE,
    closes_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS credits (
    username TEXT NOT NULL,
    hash_list_id TEXT REFERENCES hash_lists(id) ON DELETE CASCADE,
    hash TEXT NOT NULL,
    PRIMARY KEY (username, hash_list_id, hash)
);

CREATE TABLE IF NOT EXISTS submissions (
    id UUID PRIMARY KEY,
    username TEXT NOT NULL,
    hash_list_id TEXT NOT NULL,
    found_count INTEGER NOT NULL,
    added_count INTEGER NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);
`

// ConnectAttempts is how often the first ping is tried before giving up.
const ConnectAttempts = 5

// InitPostgres connects to dsn, waiting for the database to come up, and
// creates the schema.
func InitPostgres(ctx context.Context, dsn string, log *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	err = retry.Do(
		func() error {
			return db.PingContext(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(ConnectAttempts),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("postgres not ready, retrying", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
