package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/studypulse/ranking-server/internal/scoring"
)

// MockRankingService is a mock implementation of the RankingService
// interface for testing the handler layer.
type MockRankingService struct {
	StudentMetricsFunc      func(ctx context.Context, studentID string, now time.Time) (scoring.StudentMetrics, error)
	SchoolRankingFunc       func(ctx context.Context, schoolID string, now time.Time) (*scoring.RankedList, error)
	DistrictRankingFunc     func(ctx context.Context, districtID string, now time.Time) (*scoring.RankedList, error)
	SnapshotCurrentWeekFunc func(ctx context.Context, now time.Time) (scoring.SnapshotWeekResult, error)
	ScopeHistoryFunc        func(ctx context.Context, scope scoring.ScopeType, scopeID string) ([]scoring.RankingSnapshot, error)
	StudentHistoryFunc      func(ctx context.Context, studentID string) ([]scoring.StudentWeekRecord, error)
}

func (m *MockRankingService) StudentMetrics(ctx context.Context, studentID string, now time.Time) (scoring.StudentMetrics, error) {
	if m.StudentMetricsFunc != nil {
		return m.StudentMetricsFunc(ctx, studentID, now)
	}
	return scoring.StudentMetrics{}, errors.New("StudentMetricsFunc not implemented")
}

func (m *MockRankingService) SchoolRanking(ctx context.Context, schoolID string, now time.Time) (*scoring.RankedList, error) {
	if m.SchoolRankingFunc != nil {
		return m.SchoolRankingFunc(ctx, schoolID, now)
	}
	return nil, errors.New("SchoolRankingFunc not implemented")
}

func (m *MockRankingService) DistrictRanking(ctx context.Context, districtID string, now time.Time) (*scoring.RankedList, error) {
	if m.DistrictRankingFunc != nil {
		return m.DistrictRankingFunc(ctx, districtID, now)
	}
	return nil, errors.New("DistrictRankingFunc not implemented")
}

func (m *MockRankingService) SnapshotCurrentWeek(ctx context.Context, now time.Time) (scoring.SnapshotWeekResult, error) {
	if m.SnapshotCurrentWeekFunc != nil {
		return m.SnapshotCurrentWeekFunc(ctx, now)
	}
	return scoring.SnapshotWeekResult{}, errors.New("SnapshotCurrentWeekFunc not implemented")
}

func (m *MockRankingService) ScopeHistory(ctx context.Context, scope scoring.ScopeType, scopeID string) ([]scoring.RankingSnapshot, error) {
	if m.ScopeHistoryFunc != nil {
		return m.ScopeHistoryFunc(ctx, scope, scopeID)
	}
	return nil, errors.New("ScopeHistoryFunc not implemented")
}

func (m *MockRankingService) StudentHistory(ctx context.Context, studentID string) ([]scoring.StudentWeekRecord, error) {
	if m.StudentHistoryFunc != nil {
		return m.StudentHistoryFunc(ctx, studentID)
	}
	return nil, errors.New("StudentHistoryFunc not implemented")
}
