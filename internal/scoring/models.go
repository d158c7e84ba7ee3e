package scoring

import "time"

// ScopeType identifies a ranking boundary. Each scope type partitions the
// same student population independently, so one student carries one rank
// per scope type.
type ScopeType string

const (
	ScopeSchool   ScopeType = "school"
	ScopeDistrict ScopeType = "district"
)

// ParseScopeType validates a scope type received from a caller.
func ParseScopeType(s string) (ScopeType, bool) {
	switch ScopeType(s) {
	case ScopeSchool, ScopeDistrict:
		return ScopeType(s), true
	}
	return "", false
}

// StudySession is one raw study-session record as supplied by the session
// store. ImprovementScore is nil when the session carried no measurement.
type StudySession struct {
	StudentID        string
	CreatedAt        time.Time
	TimeSpentMinutes int
	ImprovementScore *int
}

// Student carries the directory attributes needed for scope grouping.
// An empty SchoolID or DistrictID means the attribute is unknown.
type Student struct {
	ID         string
	Name       string
	SchoolID   string
	DistrictID string
}

// StudentMetrics is the per-student aggregate recomputed on every run.
// It is never persisted on its own.
type StudentMetrics struct {
	StudentID         string `json:"studentId"`
	AvgImprovement    int    `json:"avgImprovement"`
	DailyStudyMinutes int    `json:"dailyStudyMinutes"`
	WeeklyStudyDays   int    `json:"weeklyStudyDays"`
}

type ScoredStudent struct {
	Student
	Metrics    StudentMetrics
	TotalScore int
}

type RankedStudent struct {
	ScoredStudent
	Rank int
}

// ScopeExclusion records a student left out of one scope's ranking because
// the scope attribute is missing. The student still ranks in the other scope.
type ScopeExclusion struct {
	StudentID string    `json:"studentId"`
	Scope     ScopeType `json:"scope"`
	Reason    string    `json:"reason"`
}

// RankingRun is the outcome of one full computation over a point-in-time
// snapshot of the session store.
type RankingRun struct {
	ComputedAt time.Time
	WeekStart  time.Time
	WeekEnd    time.Time
	BySchool   map[string]*RankedList
	ByDistrict map[string]*RankedList
	Exclusions []ScopeExclusion
}

// RankingSnapshot is the immutable weekly archive of one scope's ranking.
// It is created once per (scope, week) and never mutated afterwards.
type RankingSnapshot struct {
	ID        string
	Scope     ScopeType
	ScopeID   string
	WeekStart time.Time
	WeekEnd   time.Time
	CreatedAt time.Time
	Entries   []RankedStudent
}

// SnapshotWeekResult reports a snapshot run over all scopes of one week.
// AlreadyExists is true when every scope already had a snapshot for the
// week and nothing new was written.
type SnapshotWeekResult struct {
	WeekStart     time.Time
	WeekEnd       time.Time
	Snapshots     []RankingSnapshot
	AlreadyExists bool
}

// StudentWeekRecord is one week of archived history for a single student:
// both scope ranks plus the composite score. A zero rank means the student
// was absent from that scope's snapshot.
type StudentWeekRecord struct {
	WeekStart    time.Time `json:"weekStart"`
	WeekEnd      time.Time `json:"weekEnd"`
	SchoolRank   int       `json:"schoolRank"`
	DistrictRank int       `json:"districtRank"`
	TotalScore   int       `json:"totalScore"`
}
