package database

import (
	"context"
	"fmt"
)

// migrations is the ordered schema history. Entries are append-only; the
// index+1 is the version recorded in schema_migrations.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS municipalities (
		municipal_id   BIGINT       PRIMARY KEY,
		municipal_name VARCHAR(255) NOT NULL,
		municipal_rate NUMERIC(9,8) NOT NULL DEFAULT 0,
		education_rate NUMERIC(9,8) NOT NULL DEFAULT 0,
		created_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id                     BIGSERIAL   PRIMARY KEY,
		assessment_roll_number VARCHAR(50) NOT NULL UNIQUE,
		assessment_value       BIGINT      NOT NULL CHECK (assessment_value >= 0),
		municipal_id           BIGINT      NOT NULL REFERENCES municipalities(municipal_id) ON DELETE CASCADE,
		created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_municipal_id ON properties(municipal_id)`,
}

// Migrate applies any migrations newer than the recorded schema version.
// Each migration runs in its own transaction together with its version row.
func (db *Database) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER     PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	var current int
	if err := db.Pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		stmt := migrations[i]
		err := db.WithTx(ctx, func(q Querier) error {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return err
			}
			_, err := q.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version)
			return err
		})
		if err != nil {
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
	}

	return nil
}

// SchemaVersion returns the number of migrations known to this binary.
func SchemaVersion() int {
	return len(migrations)
}
