// Package postgres opens the ledger database and bootstraps its schema.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"didanchor/internal/platform/config"
)

// Schema is applied on startup. Statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS ledger_snapshot (
    id         SMALLINT PRIMARY KEY CHECK (id = 1),
    version    BIGINT NOT NULL,
    state      JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS ledger_log (
    id          SMALLINT PRIMARY KEY CHECK (id = 1),
    event_count BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_events (
    sequence         BIGINT PRIMARY KEY,
    id               UUID NOT NULL UNIQUE,
    type             TEXT NOT NULL,
    subject_key_hash BYTEA NOT NULL,
    payload_hash     BYTEA NOT NULL,
    leaf_value       BYTEA NOT NULL,
    logical_time     BIGINT NOT NULL,
    details          JSONB NOT NULL DEFAULT '{}'::jsonb
);

CREATE INDEX IF NOT EXISTS ledger_events_logical_time_idx ON ledger_events (logical_time);
`

// Open connects with the pgx driver, waits for the server and applies Schema.
func Open(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies Schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply ledger schema: %w", err)
	}
	return nil
}
