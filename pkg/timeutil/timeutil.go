// Package timeutil provides calendar helpers for the scoring windows.
// All window math is done in the location of the reference instant so that
// "today" and "this week" follow the clock the sessions were recorded against.
package timeutil

import "time"

// FormatDate is the canonical date format (YYYY-MM-DD) used for cache keys
// and distinct-day counting.
const FormatDate = "2006-01-02"

// StartOfDay returns midnight of the day containing t, in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of the day containing t.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}

// StartOfWeek returns midnight of the most recent weekStart weekday at or
// before t. If t itself falls on weekStart, the result is midnight of t's day.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	daysBack := int(t.Weekday()) - int(weekStart)
	if daysBack < 0 {
		daysBack += 7
	}
	return StartOfDay(t.AddDate(0, 0, -daysBack))
}

// EndOfWeek returns the last nanosecond of the week that starts at
// StartOfWeek(t, weekStart).
func EndOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	return EndOfDay(StartOfWeek(t, weekStart).AddDate(0, 0, 6))
}

// SameDay reports whether a and b fall on the same calendar date,
// compared in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// DateKey returns the calendar date of t as a YYYY-MM-DD string.
func DateKey(t time.Time) string {
	return t.Format(FormatDate)
}
