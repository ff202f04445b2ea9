package store

import (
	"strings"
	"time"
)

// StartOfDay returns the first instant of t's calendar day in loc. That is
// midnight, except in zones where a DST jump skips midnight; there the day
// starts at the transition.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return DayStart(t.Year(), t.Month(), t.Day(), loc)
}

// DayStart returns the first instant of the calendar day y-m-d in loc.
// Out-of-range days are normalised, so d+1 is the next day.
func DayStart(y int, m time.Month, d int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	// Noon always exists and lands on the right date.
	noon := time.Date(y, m, d, 12, 0, 0, 0, loc)
	y, m, d = noon.Date()

	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if sy, sm, sd := start.Date(); sy == y && sm == m && sd == d {
		return start
	}
	// Midnight does not exist and was pushed back into the previous day.
	zoneStart, _ := noon.ZoneBounds()
	return zoneStart.In(loc)
}

// AddDays returns the start of the day n calendar days after day's.
func AddDays(day time.Time, n int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	day = day.In(loc)
	return DayStart(day.Year(), day.Month(), day.Day()+n, loc)
}

// ParseDay reads a YYYY-MM-DD date as the start of that day in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(dayLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return DayStart(t.Year(), t.Month(), t.Day(), loc), nil
}

// DayRange returns the half-open bucket [start of day, start of next day)
// containing t. DST days are 23 or 25 hours long.
func DayRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(t, loc)
	return start, AddDays(start, 1, loc)
}

// SameDay reports whether a and b fall in the same day bucket in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return StartOfDay(a, loc).Equal(StartOfDay(b, loc))
}

// WeekRange returns the 7-day range containing t, starting on weekStart.
func WeekRange(t time.Time, weekStart time.Weekday, loc *time.Location) (time.Time, time.Time) {
	day := StartOfDay(t, loc)
	back := (int(day.Weekday()) - int(weekStart) + 7) % 7
	start := AddDays(day, -back, loc)
	return start, AddDays(start, 7, loc)
}

// ParseWeekday accepts "monday", "sunday", ... and falls back to Monday.
func ParseWeekday(s string) time.Weekday {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(s)) {
			return d
		}
	}
	return time.Monday
}

// timestamp encodes t for storage. Second precision in UTC keeps the text
// lexicographically ordered, which the date range queries rely on.
const dayLayout = "2006-01-02"

func timestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}
