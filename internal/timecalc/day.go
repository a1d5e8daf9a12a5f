package timecalc

import (
	"fmt"
	"strconv"
	"time"
)

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ClockOf returns the wall-clock time of t as seconds since midnight,
// truncated to the minute.
func ClockOf(t time.Time) Duration {
	return FromParts(int64(t.Hour()), int64(t.Minute()), 0)
}

// IsWeekend reports whether t is a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DateArgumentError reports a report-date argument that is neither a
// non-negative day offset nor a date in the configured layout.
type DateArgumentError struct {
	Arg    string
	Layout string
}

func (e *DateArgumentError) Error() string {
	return fmt.Sprintf("invalid date %q: expected a non-negative day offset or a date like %s",
		e.Arg, e.Layout)
}

// ParseReportDate resolves a CLI argument to the midnight of the report day
// in now's location. An empty argument means today; an integer is the number
// of days before today.
func ParseReportDate(arg, layout string, now time.Time) (time.Time, error) {
	today := StartOfDay(now)
	if arg == "" {
		return today, nil
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 0 {
			return time.Time{}, &DateArgumentError{Arg: arg, Layout: layout}
		}
		return today.AddDate(0, 0, -n), nil
	}
	t, err := time.ParseInLocation(layout, arg, now.Location())
	if err != nil {
		return time.Time{}, &DateArgumentError{Arg: arg, Layout: layout}
	}
	return StartOfDay(t), nil
}
