package http

import (
	"context"
	"time"

	"github.com/studypulse/ranking-server/internal/scoring"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// RankingService is the scoring engine surface the transport depends on.
type RankingService interface {
	StudentMetrics(ctx context.Context, studentID string, now time.Time) (scoring.StudentMetrics, error)
	SchoolRanking(ctx context.Context, schoolID string, now time.Time) (*scoring.RankedList, error)
	DistrictRanking(ctx context.Context, districtID string, now time.Time) (*scoring.RankedList, error)
	SnapshotCurrentWeek(ctx context.Context, now time.Time) (scoring.SnapshotWeekResult, error)
	ScopeHistory(ctx context.Context, scope scoring.ScopeType, scopeID string) ([]scoring.RankingSnapshot, error)
	StudentHistory(ctx context.Context, studentID string) ([]scoring.StudentWeekRecord, error)
}
