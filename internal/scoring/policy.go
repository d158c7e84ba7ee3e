package scoring

import "time"

// Policy holds the tunable constants of the scoring formula and its time
// windows. The aggregation and ranking algorithms never hard-code these, so
// the weighting can change without touching them.
type Policy struct {
	// RecentSessionWindow is how many of the newest sessions feed the
	// improvement average.
	RecentSessionWindow int

	// NeutralImprovement substitutes for a session without an improvement
	// measurement.
	NeutralImprovement int

	// DailyMinutesCap bounds the daily-effort term so a single marathon day
	// cannot dominate the score.
	DailyMinutesCap int

	// WeekStartDay is the fixed weekday on which the weekly window opens,
	// at local midnight.
	WeekStartDay time.Weekday

	// ImprovementWeight, DailyMinutesWeight and WeeklyDaysWeight combine the
	// three metrics into the composite score. WeeklyDaysWeight is the
	// contribution of a full seven-day week.
	ImprovementWeight  float64
	DailyMinutesWeight float64
	WeeklyDaysWeight   float64
}

// DefaultPolicy yields composite scores in [0, 100]:
// 0.4*100 + 0.25*120 + 30 = 100.
var DefaultPolicy = Policy{
	RecentSessionWindow: 10,
	NeutralImprovement:  50,
	DailyMinutesCap:     120,
	WeekStartDay:        time.Sunday,
	ImprovementWeight:   0.4,
	DailyMinutesWeight:  0.25,
	WeeklyDaysWeight:    30,
}
