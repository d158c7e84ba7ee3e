package scoring

import (
	"context"
	"time"

	"github.com/studypulse/ranking-server/internal/repository/models"
)

// SessionRepository is the read-only view of the session store and student
// directory consumed by the engine.
type SessionRepository interface {
	ListStudents(ctx context.Context) ([]models.StudentRow, error)
	GetStudent(ctx context.Context, id string) (models.StudentRow, error)
	ListSessions(ctx context.Context) ([]models.SessionRow, error)
	ListSessionsByStudent(ctx context.Context, studentID string) ([]models.SessionRow, error)
}

// SnapshotRepository persists weekly ranking archives.
type SnapshotRepository interface {
	// InsertSnapshot writes a snapshot atomically. It returns false without
	// error when a snapshot for the same (scope type, scope id, week start)
	// already exists; the first writer wins.
	InsertSnapshot(ctx context.Context, snap models.SnapshotRow, entries []models.SnapshotEntryRow) (bool, error)
	GetSnapshot(ctx context.Context, scopeType, scopeID string, weekStart time.Time) (models.SnapshotRow, []models.SnapshotEntryRow, error)
	ListSnapshots(ctx context.Context, scopeType, scopeID string) ([]models.SnapshotRow, error)
	ListSnapshotEntries(ctx context.Context, snapshotID string) ([]models.SnapshotEntryRow, error)
	ListStudentWeeks(ctx context.Context, studentID string) ([]models.StudentWeekRow, error)
}
