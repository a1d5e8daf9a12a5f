package report

import (
	"time"

	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

// UntrackedStep is the granularity untracked time is rounded up to.
const UntrackedStep = timecalc.Duration(5 * 60)

// Stats is the outcome of evaluating a report day against the workday.
type Stats struct {
	Bill    timecalc.Duration
	Free    timecalc.Duration
	Tracked timecalc.Duration
	Workday timecalc.Duration
	// Live is set when the report day is today and now is within working
	// hours. Elapsed and Remaining are only meaningful then.
	Live      bool
	Elapsed   timecalc.Duration
	Remaining timecalc.Duration
	// Untracked is rounded up to UntrackedStep. It is negative when more
	// time was tracked than expected.
	Untracked timecalc.Duration
}

// Evaluate computes the stats for a report of day against w, observed at now.
func Evaluate(w timecalc.Workday, day, now time.Time, totals Totals) Stats {
	st := Stats{
		Bill:    totals.Bill,
		Free:    totals.Free,
		Tracked: totals.Total(),
		Workday: w.Duration(),
	}

	clock := timecalc.ClockOf(now)
	var untracked timecalc.Duration
	if timecalc.SameDay(day, now) && w.Contains(clock) {
		st.Live = true
		st.Elapsed = w.ElapsedAt(clock)
		st.Remaining = st.Workday.Sub(st.Elapsed)
		untracked = st.Elapsed.Sub(st.Tracked)
	} else {
		untracked = st.Workday.Sub(st.Tracked)
	}
	st.Untracked = untracked.CeilTo(UntrackedStep)
	return st
}
