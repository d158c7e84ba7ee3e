package scoring

import "math"

const daysPerWeek = 7

// Calculator combines StudentMetrics into the composite score. Pure function
// of its input, no side effects.
type Calculator struct {
	policy Policy
}

func NewCalculator(policy Policy) Calculator {
	return Calculator{policy: policy}
}

// Score computes
//
//	round(avgImprovement*0.4 + min(dailyMinutes, cap)*0.25 + weeklyDays/7*30)
//
// under the default policy. Only the final sum is rounded, half away from
// zero (math.Round); rounding individual terms would shift edge cases by ±1.
// For metrics within their documented ranges the result is in [0, 100].
func (c Calculator) Score(m StudentMetrics) int {
	daily := m.DailyStudyMinutes
	if daily > c.policy.DailyMinutesCap {
		daily = c.policy.DailyMinutesCap
	}

	total := float64(m.AvgImprovement)*c.policy.ImprovementWeight +
		float64(daily)*c.policy.DailyMinutesWeight +
		float64(m.WeeklyStudyDays)/daysPerWeek*c.policy.WeeklyDaysWeight

	return int(math.Round(total))
}
