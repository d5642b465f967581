package timeutil

import (
	"fmt"
	"time"
)

// DayFormat is the canonical day key used across tables and APIs
const DayFormat = "2006-01-02"

// ParseDay parses a YYYY-MM-DD day key in UTC
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DayFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDay formats a time as a YYYY-MM-DD day key in UTC
func FormatDay(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// Truncate returns the UTC midnight of t's day
func Truncate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of the ISO week containing t (UTC midnight)
func WeekStart(t time.Time) time.Time {
	day := Truncate(t)
	offset := int(day.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday
	}
	return day.AddDate(0, 0, -offset)
}

// WeekEnd returns the Sunday of the ISO week containing t (UTC midnight)
func WeekEnd(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, 6)
}

// DaysBetween returns the number of days in [from, to] inclusive.
// Returns 0 when to is before from.
func DaysBetween(from, to time.Time) int {
	f, t := Truncate(from), Truncate(to)
	if t.Before(f) {
		return 0
	}
	return int(t.Sub(f).Hours()/24) + 1
}

// EachDay returns every day key in [from, to] inclusive, ascending
func EachDay(from, to time.Time) []string {
	var days []string
	for d := Truncate(from); !d.After(Truncate(to)); d = d.AddDate(0, 0, 1) {
		days = append(days, FormatDay(d))
	}
	return days
}
