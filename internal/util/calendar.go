package util

import "time"

// Day truncates t to midnight UTC, the canonical representation of a
// calendar day throughout the platform. Rows ingested from different
// sources are normalized through Day so that equal dates compare equal.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NextDay returns the calendar day after d.
func NextDay(d time.Time) time.Time {
	return d.AddDate(0, 0, 1)
}

// DaysBetween returns every calendar day from start to end inclusive, in
// order. Weekends and holidays are included; the backtest driver iterates
// densely and lets days without data fall through as no-ops. An inverted
// range yields nil.
func DaysBetween(start, end time.Time) []time.Time {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return nil
	}
	var days []time.Time
	for d := start; !d.After(end); d = NextDay(d) {
		days = append(days, d)
	}
	return days
}
