// Package store persists sweep result tables to SQLite so external consumers
// (the dashboard, tabular reports) can query past sweeps without re-running
// them. Only result tables are stored — no engine state.
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// schemaV1 is the initial schema for the result store.
const schemaV1 = `
-- One row per executed sweep
CREATE TABLE IF NOT EXISTS sweeps (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    label TEXT NOT NULL,
    scenario_yaml TEXT NOT NULL,
    created_at TEXT NOT NULL
);

-- Summary table: one row per policy x margin x horizon cell
CREATE TABLE IF NOT EXISTS summaries (
    sweep_id INTEGER NOT NULL REFERENCES sweeps(id) ON DELETE CASCADE,
    policy_key TEXT NOT NULL,
    margin REAL NOT NULL,
    horizon INTEGER NOT NULL,

    final_impact REAL NOT NULL,
    final_bond_capital REAL NOT NULL,
    final_survival_fund REAL NOT NULL,
    fs_coverage_months REAL NOT NULL,
    fs_target_months INTEGER NOT NULL,
    pct_months_positive_utility REAL NOT NULL,
    time_to_first_impact INTEGER NOT NULL,
    employees_end INTEGER NOT NULL,
    hires_total INTEGER NOT NULL,
    active_people_end REAL NOT NULL,
    margin_end REAL NOT NULL,
    avg_utility REAL NOT NULL,
    avg_positive_utility REAL NOT NULL,
    last_p REAL NOT NULL,
    last_phase INTEGER NOT NULL,

    PRIMARY KEY (sweep_id, policy_key, margin, horizon)
);
CREATE INDEX IF NOT EXISTS idx_summaries_horizon ON summaries(sweep_id, horizon);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// InitSchema initializes the database schema, creating it when absent.
func InitSchema(ctx context.Context, db *sql.DB) error {
	currentVersion, err := getSchemaVersion(ctx, db)
	if err != nil {
		// Schema version table doesn't exist yet, create fresh schema
		if err := createSchema(ctx, db); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		return nil
	}

	if currentVersion > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", currentVersion, SchemaVersion)
	}
	return nil
}

// getSchemaVersion returns the current schema version from the database.
// Returns 0 and an error if the schema_version table doesn't exist.
func getSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// createSchema creates the initial database schema.
func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion,
	); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return tx.Commit()
}
