package timecalc

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// Duration is a signed span of time with one-second resolution.
// The zero value is an empty span and renders as "00:00".
type Duration int64

var clockPattern = regexp.MustCompile(`^(\d{2}):(\d{2})$`)

// FormatError reports a clock string that is not in HH:MM form.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid clock value %q: expected HH:MM", e.Input)
}

// ParseClock parses a two-digit "HH:MM" string. Hours and minutes are not
// range-checked, so "25:30" is 91800 seconds.
func ParseClock(s string) (Duration, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, &FormatError{Input: s}
	}
	h, _ := strconv.ParseInt(m[1], 10, 64)
	mins, _ := strconv.ParseInt(m[2], 10, 64)
	return FromParts(h, mins, 0), nil
}

// MustParseClock is like ParseClock but panics on malformed input.
// Intended for constants and tests.
func MustParseClock(s string) Duration {
	d, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromParts combines hours, minutes and seconds without validating ranges.
func FromParts(hours, minutes, seconds int64) Duration {
	return Duration(hours*secondsPerHour + minutes*secondsPerMinute + seconds)
}

// Seconds returns the span in seconds.
func (d Duration) Seconds() int64 { return int64(d) }

func (d Duration) Add(o Duration) Duration { return d + o }

func (d Duration) Sub(o Duration) Duration { return d.Add(-o) }

// CeilTo rounds d up to the next multiple of step. Exact multiples are
// returned unchanged. Rounding is toward positive infinity, so a negative
// span moves toward zero: CeilTo(-301, 300) == -300.
func (d Duration) CeilTo(step Duration) Duration {
	if step <= 0 {
		return d
	}
	if mod(int64(d), int64(step)) == 0 {
		return d
	}
	return Duration(floorDiv(int64(d), int64(step))*int64(step)) + step
}

// String renders d as [-][N day ]HH:MM. Seconds are dropped.
func (d Duration) String() string {
	sign := ""
	total := int64(d)
	if total < 0 {
		sign = "-"
		total = -total
	}

	days := total / secondsPerDay
	total -= days * secondsPerDay
	hours := total / secondsPerHour
	total -= hours * secondsPerHour
	minutes := total / secondsPerMinute

	day := ""
	if days > 0 {
		day = fmt.Sprintf("%d day ", days)
	}
	return fmt.Sprintf("%s%s%02d:%02d", sign, day, hours, minutes)
}

// Std converts d to a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) * time.Second }

// Max returns the larger of a and b.
func Max(a, b Duration) Duration {
	if a > b {
		return a
	}
	return b
}

// Sum adds every span in ds. An empty list sums to zero.
func Sum(ds ...Duration) Duration {
	var total Duration
	for _, d := range ds {
		total = total.Add(d)
	}
	return total
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
