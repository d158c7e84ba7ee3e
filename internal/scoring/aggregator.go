package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/studypulse/ranking-server/pkg/timeutil"
)

// Aggregator reduces a student's raw session list into StudentMetrics.
// It is pure: no I/O, no state beyond the policy.
type Aggregator struct {
	policy Policy
}

func NewAggregator(policy Policy) Aggregator {
	return Aggregator{policy: policy}
}

// Metrics computes the three per-student aggregates against the reference
// instant now. Malformed records are clamped or dropped here and never abort
// the computation: a zero timestamp drops the record, negative minutes count
// as zero, an absent improvement score counts as neutral.
func (a Aggregator) Metrics(studentID string, sessions []StudySession, now time.Time) StudentMetrics {
	m := StudentMetrics{StudentID: studentID}

	valid := make([]StudySession, 0, len(sessions))
	for _, s := range sessions {
		if s.CreatedAt.IsZero() {
			continue
		}
		valid = append(valid, s)
	}
	if len(valid) == 0 {
		return m
	}

	sort.Slice(valid, func(i, j int) bool {
		return valid[i].CreatedAt.After(valid[j].CreatedAt)
	})

	m.AvgImprovement = a.recentImprovementAverage(valid)

	weekStart := timeutil.StartOfWeek(now, a.policy.WeekStartDay)
	weekDays := make(map[string]struct{}, 7)

	for _, s := range valid {
		ts := s.CreatedAt.In(now.Location())
		// Future-dated sessions must not inflate the windows (clock skew).
		if ts.After(now) {
			continue
		}
		if timeutil.SameDay(now, ts) {
			m.DailyStudyMinutes += clampMinutes(s.TimeSpentMinutes)
		}
		if !ts.Before(weekStart) {
			weekDays[timeutil.DateKey(ts)] = struct{}{}
		}
	}
	m.WeeklyStudyDays = len(weekDays)

	return m
}

// recentImprovementAverage averages the newest RecentSessionWindow sessions.
// sessions must already be sorted newest-first. With no sessions at all the
// average is 0, not neutral: inactivity earns no credit.
func (a Aggregator) recentImprovementAverage(sessions []StudySession) int {
	window := a.policy.RecentSessionWindow
	if len(sessions) < window {
		window = len(sessions)
	}
	if window == 0 {
		return 0
	}

	sum := 0
	for _, s := range sessions[:window] {
		sum += a.improvementOf(s)
	}
	return int(math.Round(float64(sum) / float64(window)))
}

func (a Aggregator) improvementOf(s StudySession) int {
	if s.ImprovementScore == nil {
		return a.policy.NeutralImprovement
	}
	v := *s.ImprovementScore
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clampMinutes(minutes int) int {
	if minutes < 0 {
		return 0
	}
	return minutes
}
