package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/studypulse/ranking-server/internal/repository/models"
)

// SnapshotRepository persists weekly ranking archives. A snapshot is keyed
// by (scope_type, scope_id, week_start) and immutable once written.
type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// InsertSnapshot writes the snapshot header and all entries in a single
// transaction, so a crash mid-write never leaves a partial snapshot
// readable. Returns false without error when the key is already taken:
// the unique index serializes concurrent writers, first writer wins.
func (r *SnapshotRepository) InsertSnapshot(ctx context.Context, snap models.SnapshotRow, entries []models.SnapshotEntryRow) (bool, error) {
	exists, err := r.snapshotExists(ctx, snap.ScopeType, snap.ScopeID, snap.WeekStart)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin InsertSnapshot: %w", err)
	}
	defer tx.Rollback()

	const insertHeader = `
		INSERT INTO ranking_snapshots (id, scope_type, scope_id, week_start, week_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, insertHeader,
		snap.ID, snap.ScopeType, snap.ScopeID, snap.WeekStart, snap.WeekEnd, snap.CreatedAt); err != nil {
		// A concurrent writer may have taken the key between the existence
		// check and this insert; re-check before treating it as a failure.
		if exists, checkErr := r.snapshotExists(ctx, snap.ScopeType, snap.ScopeID, snap.WeekStart); checkErr == nil && exists {
			return false, nil
		}
		return false, fmt.Errorf("insert snapshot header: %w", err)
	}

	const insertEntry = `
		INSERT INTO ranking_snapshot_entries
			(snapshot_id, position, student_id, student_name, total_score,
			 avg_improvement, daily_study_minutes, weekly_study_days)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, insertEntry,
			e.SnapshotID, e.Rank, e.StudentID, e.StudentName, e.TotalScore,
			e.AvgImprovement, e.DailyStudyMinutes, e.WeeklyStudyDays); err != nil {
			return false, fmt.Errorf("insert snapshot entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit InsertSnapshot: %w", err)
	}
	return true, nil
}

func (r *SnapshotRepository) GetSnapshot(ctx context.Context, scopeType, scopeID string, weekStart time.Time) (models.SnapshotRow, []models.SnapshotEntryRow, error) {
	const query = `
		SELECT id, scope_type, scope_id, week_start, week_end, created_at
		FROM ranking_snapshots
		WHERE scope_type = ? AND scope_id = ? AND week_start = ?
	`

	var snap models.SnapshotRow
	err := r.db.QueryRowContext(ctx, query, scopeType, scopeID, weekStart).Scan(
		&snap.ID, &snap.ScopeType, &snap.ScopeID, &snap.WeekStart, &snap.WeekEnd, &snap.CreatedAt)
	if err != nil {
		return models.SnapshotRow{}, nil, fmt.Errorf("query GetSnapshot: %w", err)
	}

	entries, err := r.ListSnapshotEntries(ctx, snap.ID)
	if err != nil {
		return models.SnapshotRow{}, nil, err
	}
	return snap, entries, nil
}

// ListSnapshots returns a scope's snapshot headers ordered by week.
func (r *SnapshotRepository) ListSnapshots(ctx context.Context, scopeType, scopeID string) ([]models.SnapshotRow, error) {
	const query = `
		SELECT id, scope_type, scope_id, week_start, week_end, created_at
		FROM ranking_snapshots
		WHERE scope_type = ? AND scope_id = ?
		ORDER BY week_start
	`

	rows, err := r.db.QueryContext(ctx, query, scopeType, scopeID)
	if err != nil {
		return nil, fmt.Errorf("query ListSnapshots: %w", err)
	}
	defer rows.Close()

	var results []models.SnapshotRow
	for rows.Next() {
		var s models.SnapshotRow
		if err := rows.Scan(&s.ID, &s.ScopeType, &s.ScopeID, &s.WeekStart, &s.WeekEnd, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ListSnapshots row: %w", err)
		}
		results = append(results, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListSnapshots: %w", err)
	}
	return results, nil
}

func (r *SnapshotRepository) ListSnapshotEntries(ctx context.Context, snapshotID string) ([]models.SnapshotEntryRow, error) {
	const query = `
		SELECT snapshot_id, position, student_id, student_name, total_score,
		       avg_improvement, daily_study_minutes, weekly_study_days
		FROM ranking_snapshot_entries
		WHERE snapshot_id = ?
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query ListSnapshotEntries: %w", err)
	}
	defer rows.Close()

	var results []models.SnapshotEntryRow
	for rows.Next() {
		var e models.SnapshotEntryRow
		if err := rows.Scan(&e.SnapshotID, &e.Rank, &e.StudentID, &e.StudentName, &e.TotalScore,
			&e.AvgImprovement, &e.DailyStudyMinutes, &e.WeeklyStudyDays); err != nil {
			return nil, fmt.Errorf("scan ListSnapshotEntries row: %w", err)
		}
		results = append(results, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListSnapshotEntries: %w", err)
	}
	return results, nil
}

// ListStudentWeeks returns one row per (week, scope) in which the student
// appears in an archived snapshot, ordered by week then scope type.
func (r *SnapshotRepository) ListStudentWeeks(ctx context.Context, studentID string) ([]models.StudentWeekRow, error) {
	const query = `
		SELECT s.week_start, s.week_end, s.scope_type, e.position, e.total_score
		FROM ranking_snapshot_entries AS e
		JOIN ranking_snapshots AS s ON e.snapshot_id = s.id
		WHERE e.student_id = ?
		ORDER BY s.week_start, s.scope_type
	`

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("query ListStudentWeeks: %w", err)
	}
	defer rows.Close()

	var results []models.StudentWeekRow
	for rows.Next() {
		var w models.StudentWeekRow
		if err := rows.Scan(&w.WeekStart, &w.WeekEnd, &w.ScopeType, &w.Rank, &w.TotalScore); err != nil {
			return nil, fmt.Errorf("scan ListStudentWeeks row: %w", err)
		}
		results = append(results, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListStudentWeeks: %w", err)
	}
	return results, nil
}

func (r *SnapshotRepository) snapshotExists(ctx context.Context, scopeType, scopeID string, weekStart time.Time) (bool, error) {
	const query = `
		SELECT COUNT(1)
		FROM ranking_snapshots
		WHERE scope_type = ? AND scope_id = ? AND week_start = ?
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, scopeType, scopeID, weekStart).Scan(&count); err != nil {
		return false, fmt.Errorf("query snapshotExists: %w", err)
	}
	return count > 0, nil
}
