package models

import (
	"database/sql"
	"time"
)

type StudentRow struct {
	ID         string
	Name       string
	SchoolID   sql.NullString
	DistrictID sql.NullString
}

type SessionRow struct {
	ID               int64
	StudentID        string
	CreatedAt        time.Time
	TimeSpentMinutes sql.NullInt64
	ImprovementScore sql.NullInt64
}

type SnapshotRow struct {
	ID        string
	ScopeType string
	ScopeID   string
	WeekStart time.Time
	WeekEnd   time.Time
	CreatedAt time.Time
}

type SnapshotEntryRow struct {
	SnapshotID        string
	Rank              int
	StudentID         string
	StudentName       string
	TotalScore        int
	AvgImprovement    int
	DailyStudyMinutes int
	WeeklyStudyDays   int
}

type StudentWeekRow struct {
	WeekStart  time.Time
	WeekEnd    time.Time
	ScopeType  string
	Rank       int
	TotalScore int
}
