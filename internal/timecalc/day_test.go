package timecalc_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	b := time.Date(2026, 2, 27, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	if !timecalc.SameDay(a, b) {
		t.Error("SameDay: expected same day for a and b")
	}
	if timecalc.SameDay(a, c) {
		t.Error("SameDay: expected different day for a and c")
	}
}

func TestClockOf(t *testing.T) {
	now := time.Date(2026, 2, 27, 12, 30, 45, 0, time.UTC)
	if got := timecalc.ClockOf(now).String(); got != "12:30" {
		t.Errorf("ClockOf = %q, want 12:30", got)
	}
}

func TestIsWeekend(t *testing.T) {
	sat := time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC)
	mon := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if !timecalc.IsWeekend(sat) {
		t.Error("IsWeekend(saturday) = false")
	}
	if timecalc.IsWeekend(mon) {
		t.Error("IsWeekend(monday) = true")
	}
}

func TestParseReportDate(t *testing.T) {
	now := time.Date(2026, 2, 27, 15, 4, 5, 0, time.UTC)
	tests := []struct {
		arg  string
		want time.Time
	}{
		{"", time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)},
		{"0", time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)},
		{"1", time.Date(2026, 2, 26, 0, 0, 0, 0, time.UTC)},
		{"27", time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)},
		{"2026-01-15", time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := timecalc.ParseReportDate(tt.arg, "2006-01-02", now)
		if err != nil {
			t.Fatalf("ParseReportDate(%q): %v", tt.arg, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseReportDate(%q) = %v, want %v", tt.arg, got, tt.want)
		}
	}
}

func TestParseReportDateInvalid(t *testing.T) {
	now := time.Date(2026, 2, 27, 15, 4, 5, 0, time.UTC)
	for _, arg := range []string{"-1", "yesterday", "27.02.2026", "2026-13-01"} {
		_, err := timecalc.ParseReportDate(arg, "2006-01-02", now)
		var de *timecalc.DateArgumentError
		if !errors.As(err, &de) {
			t.Errorf("ParseReportDate(%q) error = %v, want DateArgumentError", arg, err)
			continue
		}
		if de.Layout != "2006-01-02" {
			t.Errorf("DateArgumentError.Layout = %q", de.Layout)
		}
	}
}
