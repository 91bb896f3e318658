// Package timeutil provides UTC calendar helpers used by streak and trend
// calculations. All day boundaries are UTC; a "day key" is the ISO 8601
// date string YYYY-MM-DD.
package timeutil

import (
	"fmt"
	"time"
)

// Layouts used across the service.
const (
	// FormatDate is the layout of a day key.
	FormatDate = "2006-01-02"
	// FormatMonth is the layout of a month period key.
	FormatMonth = "2006-01"
)

// Now returns the current time in UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// Date creates a UTC midnight time for the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// DateTime creates a UTC time for the given date and clock time.
func DateTime(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
}

// startOfDay returns UTC midnight of t's UTC day.
func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfMonth returns UTC midnight of the first day of t's UTC month.
func StartOfMonth(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns UTC midnight of the Monday of t's ISO week.
func StartOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

// DayKey returns the UTC day key of t.
func DayKey(t time.Time) string {
	return t.UTC().Format(FormatDate)
}

// ParseDayKey parses a day key into UTC midnight.
func ParseDayKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(FormatDate, key, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: invalid day key %q: %w", key, err)
	}
	return t, nil
}

// DaysBetween returns the signed number of calendar days from t1 to t2 (UTC).
func DaysBetween(t1, t2 time.Time) int {
	d1 := startOfDay(t1)
	d2 := startOfDay(t2)
	// Hours are exact in UTC, no DST drift.
	return int(d2.Sub(d1).Hours() / 24)
}

// IsConsecutiveDay reports whether t2 is the UTC day right after t1.
func IsConsecutiveDay(t1, t2 time.Time) bool {
	return DaysBetween(t1, t2) == 1
}

// IsSameMonth reports whether t1 and t2 fall in the same UTC calendar month.
func IsSameMonth(t1, t2 time.Time) bool {
	u1, u2 := t1.UTC(), t2.UTC()
	return u1.Year() == u2.Year() && u1.Month() == u2.Month()
}

// LastNDays returns n day keys ending on end's UTC day, oldest first.
func LastNDays(end time.Time, n int) []string {
	if n <= 0 {
		return []string{}
	}
	last := startOfDay(end)
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = DayKey(last.AddDate(0, 0, i-(n-1)))
	}
	return keys
}

// WeekKey returns the ISO week period key of t, e.g. "2024-W01".
func WeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// MonthKey returns the month period key of t, e.g. "2024-01".
func MonthKey(t time.Time) string {
	return t.UTC().Format(FormatMonth)
}
