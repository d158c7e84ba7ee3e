package http

import (
	"time"

	"github.com/studypulse/ranking-server/internal/scoring"
)

// RankingEntry is one row of an ordered ranking as served to clients.
type RankingEntry struct {
	Rank              int    `json:"rank"`
	StudentID         string `json:"studentId"`
	Name              string `json:"name"`
	TotalScore        int    `json:"totalScore"`
	AvgImprovement    int    `json:"avgImprovement"`
	DailyStudyMinutes int    `json:"dailyStudyMinutes"`
	WeeklyStudyDays   int    `json:"weeklyStudyDays"`
}

// RankingResponse is the full ordered ranking of one scope. TotalStudents
// reflects the whole ranking even when a top-N view truncates Entries.
type RankingResponse struct {
	ScopeType     string         `json:"scopeType"`
	ScopeID       string         `json:"scopeId"`
	TotalStudents int            `json:"totalStudents"`
	Entries       []RankingEntry `json:"entries"`
}

type SnapshotResponse struct {
	ID        string         `json:"id"`
	ScopeType string         `json:"scopeType"`
	ScopeID   string         `json:"scopeId"`
	WeekStart time.Time      `json:"weekStart"`
	WeekEnd   time.Time      `json:"weekEnd"`
	CreatedAt time.Time      `json:"createdAt"`
	Entries   []RankingEntry `json:"entries"`
}

type SnapshotRunResponse struct {
	WeekStart     time.Time          `json:"weekStart"`
	WeekEnd       time.Time          `json:"weekEnd"`
	AlreadyExists bool               `json:"alreadyExists"`
	Snapshots     []SnapshotResponse `json:"snapshots"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toRankingEntry(r scoring.RankedStudent) RankingEntry {
	return RankingEntry{
		Rank:              r.Rank,
		StudentID:         r.ID,
		Name:              r.Name,
		TotalScore:        r.TotalScore,
		AvgImprovement:    r.Metrics.AvgImprovement,
		DailyStudyMinutes: r.Metrics.DailyStudyMinutes,
		WeeklyStudyDays:   r.Metrics.WeeklyStudyDays,
	}
}

func toRankingEntries(ranked []scoring.RankedStudent) []RankingEntry {
	entries := make([]RankingEntry, len(ranked))
	for i, r := range ranked {
		entries[i] = toRankingEntry(r)
	}
	return entries
}

func toSnapshotResponse(snap scoring.RankingSnapshot) SnapshotResponse {
	return SnapshotResponse{
		ID:        snap.ID,
		ScopeType: string(snap.Scope),
		ScopeID:   snap.ScopeID,
		WeekStart: snap.WeekStart,
		WeekEnd:   snap.WeekEnd,
		CreatedAt: snap.CreatedAt,
		Entries:   toRankingEntries(snap.Entries),
	}
}

func toSnapshotRunResponse(result scoring.SnapshotWeekResult) SnapshotRunResponse {
	snapshots := make([]SnapshotResponse, len(result.Snapshots))
	for i, snap := range result.Snapshots {
		snapshots[i] = toSnapshotResponse(snap)
	}
	return SnapshotRunResponse{
		WeekStart:     result.WeekStart,
		WeekEnd:       result.WeekEnd,
		AlreadyExists: result.AlreadyExists,
		Snapshots:     snapshots,
	}
}
