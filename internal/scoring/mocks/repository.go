package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/studypulse/ranking-server/internal/repository/models"
)

// MockSessionRepository is a mock implementation of the SessionRepository
// interface for testing the service layer.
type MockSessionRepository struct {
	ListStudentsFunc          func(ctx context.Context) ([]models.StudentRow, error)
	GetStudentFunc            func(ctx context.Context, id string) (models.StudentRow, error)
	ListSessionsFunc          func(ctx context.Context) ([]models.SessionRow, error)
	ListSessionsByStudentFunc func(ctx context.Context, studentID string) ([]models.SessionRow, error)
}

func (m *MockSessionRepository) ListStudents(ctx context.Context) ([]models.StudentRow, error) {
	if m.ListStudentsFunc != nil {
		return m.ListStudentsFunc(ctx)
	}
	return nil, errors.New("ListStudentsFunc not implemented")
}

func (m *MockSessionRepository) GetStudent(ctx context.Context, id string) (models.StudentRow, error) {
	if m.GetStudentFunc != nil {
		return m.GetStudentFunc(ctx, id)
	}
	return models.StudentRow{}, errors.New("GetStudentFunc not implemented")
}

func (m *MockSessionRepository) ListSessions(ctx context.Context) ([]models.SessionRow, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return nil, errors.New("ListSessionsFunc not implemented")
}

func (m *MockSessionRepository) ListSessionsByStudent(ctx context.Context, studentID string) ([]models.SessionRow, error) {
	if m.ListSessionsByStudentFunc != nil {
		return m.ListSessionsByStudentFunc(ctx, studentID)
	}
	return nil, errors.New("ListSessionsByStudentFunc not implemented")
}

// MockSnapshotRepository is a mock implementation of the SnapshotRepository
// interface. The zero value acts as an empty in-memory store that accepts
// every insert.
type MockSnapshotRepository struct {
	InsertSnapshotFunc      func(ctx context.Context, snap models.SnapshotRow, entries []models.SnapshotEntryRow) (bool, error)
	GetSnapshotFunc         func(ctx context.Context, scopeType, scopeID string, weekStart time.Time) (models.SnapshotRow, []models.SnapshotEntryRow, error)
	ListSnapshotsFunc       func(ctx context.Context, scopeType, scopeID string) ([]models.SnapshotRow, error)
	ListSnapshotEntriesFunc func(ctx context.Context, snapshotID string) ([]models.SnapshotEntryRow, error)
	ListStudentWeeksFunc    func(ctx context.Context, studentID string) ([]models.StudentWeekRow, error)
}

func (m *MockSnapshotRepository) InsertSnapshot(ctx context.Context, snap models.SnapshotRow, entries []models.SnapshotEntryRow) (bool, error) {
	if m.InsertSnapshotFunc != nil {
		return m.InsertSnapshotFunc(ctx, snap, entries)
	}
	return true, nil
}

func (m *MockSnapshotRepository) GetSnapshot(ctx context.Context, scopeType, scopeID string, weekStart time.Time) (models.SnapshotRow, []models.SnapshotEntryRow, error) {
	if m.GetSnapshotFunc != nil {
		return m.GetSnapshotFunc(ctx, scopeType, scopeID, weekStart)
	}
	return models.SnapshotRow{}, nil, errors.New("GetSnapshotFunc not implemented")
}

func (m *MockSnapshotRepository) ListSnapshots(ctx context.Context, scopeType, scopeID string) ([]models.SnapshotRow, error) {
	if m.ListSnapshotsFunc != nil {
		return m.ListSnapshotsFunc(ctx, scopeType, scopeID)
	}
	return nil, nil
}

func (m *MockSnapshotRepository) ListSnapshotEntries(ctx context.Context, snapshotID string) ([]models.SnapshotEntryRow, error) {
	if m.ListSnapshotEntriesFunc != nil {
		return m.ListSnapshotEntriesFunc(ctx, snapshotID)
	}
	return nil, nil
}

func (m *MockSnapshotRepository) ListStudentWeeks(ctx context.Context, studentID string) ([]models.StudentWeekRow, error) {
	if m.ListStudentWeeksFunc != nil {
		return m.ListStudentWeeksFunc(ctx, studentID)
	}
	return nil, nil
}
