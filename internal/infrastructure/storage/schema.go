package storage

import (
	"context"
	"fmt"
)

// The DDL sticks to types understood by both Postgres and SQLite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS audit_runs (
		id          TEXT PRIMARY KEY,
		seed        TEXT NOT NULL,
		population  INTEGER NOT NULL,
		threshold   INTEGER NOT NULL,
		features    TEXT NOT NULL,
		status      TEXT NOT NULL,
		created_at  TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_citizens (
		run_id          TEXT NOT NULL REFERENCES audit_runs(id),
		position        INTEGER NOT NULL,
		name            TEXT NOT NULL,
		age             INTEGER NOT NULL,
		gender          TEXT NOT NULL,
		origin          TEXT NOT NULL,
		employment      TEXT NOT NULL,
		income          INTEGER NOT NULL,
		criminal_record TEXT NOT NULL,
		debt_history    TEXT NOT NULL,
		single_parent   BOOLEAN NOT NULL,
		disability      BOOLEAN NOT NULL,
		housing_status  TEXT NOT NULL,
		score           INTEGER NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS audit_group_metrics (
		run_id                    TEXT NOT NULL REFERENCES audit_runs(id),
		position                  INTEGER NOT NULL,
		sensitive_feature         TEXT NOT NULL,
		group_value               TEXT NOT NULL,
		group_size                INTEGER NOT NULL,
		selection_rate            DOUBLE PRECISION NOT NULL,
		average_raw_score         DOUBLE PRECISION NOT NULL,
		overall_selection_rate    DOUBLE PRECISION NOT NULL,
		overall_average_raw_score DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
}

// EnsureSchema creates the audit tables when they are missing.
func (r *SQLRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
