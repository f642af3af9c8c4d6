package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one forward-only schema step.
type migration struct {
	Name string
	Up   string
}

var migrations = []migration{
	{
		Name: "0001_initial_schema",
		Up: `
			CREATE EXTENSION IF NOT EXISTS pgcrypto;

			CREATE TABLE IF NOT EXISTS users (
				id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				username      TEXT NOT NULL UNIQUE,
				email         TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				salt          TEXT NOT NULL,
				saved_events  UUID[] NOT NULL DEFAULT '{}',
				created_at    TIMESTAMPTZ NOT NULL,
				updated_at    TIMESTAMPTZ NOT NULL
			);

			CREATE TABLE IF NOT EXISTS events (
				id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				title       TEXT NOT NULL,
				description TEXT NOT NULL,
				date        DATE NOT NULL,
				time        TEXT NOT NULL,
				location    TEXT NOT NULL,
				category    TEXT NOT NULL,
				image       TEXT,
				created_by  UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
				created_at  TIMESTAMPTZ NOT NULL,
				updated_at  TIMESTAMPTZ NOT NULL
			);
		`,
	},
	{
		Name: "0002_event_listing_indexes",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_events_date ON events (date, time);
			CREATE INDEX IF NOT EXISTS idx_events_category_date ON events (category, date);
			CREATE INDEX IF NOT EXISTS idx_events_created_by ON events (created_by);
			CREATE INDEX IF NOT EXISTS idx_users_saved_events ON users USING GIN (saved_events);
		`,
	},
}

// Migrate applies every migration not yet recorded in schema_migrations.
// Each step runs in its own transaction.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name   TEXT PRIMARY KEY,
			run_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	for _, m := range migrations {
		var applied bool
		if err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, m.Name).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", m.Name, err)
		}
		if applied {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Name, err)
		}
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck
	if _, err := tx.ExecContext(ctx, m.Up); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, m.Name); err != nil {
		return err
	}
	return tx.Commit()
}
