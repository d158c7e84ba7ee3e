package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is written for SQLite, the default driver. The statements are kept
// ANSI-conservative so the pgx driver accepts them as well, except for the
// session id autoincrement which PostgreSQL deployments provision manually.
const schema = `
CREATE TABLE IF NOT EXISTS students (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	school_id TEXT,
	district_id TEXT
);

CREATE TABLE IF NOT EXISTS study_sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	student_id TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	time_spent_minutes INTEGER,
	improvement_score INTEGER,
	FOREIGN KEY (student_id) REFERENCES students(id)
);

CREATE INDEX IF NOT EXISTS idx_sessions_student_created
	ON study_sessions (student_id, created_at);

CREATE TABLE IF NOT EXISTS ranking_snapshots (
	id TEXT PRIMARY KEY,
	scope_type TEXT NOT NULL,
	scope_id TEXT NOT NULL,
	week_start TIMESTAMP NOT NULL,
	week_end TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_snapshots_scope_week
	ON ranking_snapshots (scope_type, scope_id, week_start);

CREATE TABLE IF NOT EXISTS ranking_snapshot_entries (
	snapshot_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	student_id TEXT NOT NULL,
	student_name TEXT NOT NULL,
	total_score INTEGER NOT NULL,
	avg_improvement INTEGER NOT NULL,
	daily_study_minutes INTEGER NOT NULL,
	weekly_study_days INTEGER NOT NULL,
	PRIMARY KEY (snapshot_id, position),
	FOREIGN KEY (snapshot_id) REFERENCES ranking_snapshots(id)
);
`

// EnsureSchema creates the tables and indexes if they do not exist yet.
// The unique index on (scope_type, scope_id, week_start) is what serializes
// concurrent snapshot writers.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
