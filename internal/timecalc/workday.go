package timecalc

import "fmt"

// Workday describes the working hours as clock times (seconds since midnight).
type Workday struct {
	Begin      Duration
	End        Duration
	LunchBegin Duration
	LunchEnd   Duration
}

// Validate checks that begin <= lunch begin <= lunch end <= end.
func (w Workday) Validate() error {
	if !(w.Begin <= w.LunchBegin && w.LunchBegin <= w.LunchEnd && w.LunchEnd <= w.End) {
		return fmt.Errorf("workday %s-%s with lunch %s-%s is not ordered",
			w.Begin, w.End, w.LunchBegin, w.LunchEnd)
	}
	return nil
}

func (w Workday) LunchDuration() Duration { return w.LunchEnd.Sub(w.LunchBegin) }

// Duration is the expected working time: the span between begin and end
// minus lunch.
func (w Workday) Duration() Duration {
	return w.End.Sub(w.Begin).Sub(w.LunchDuration())
}

// Contains reports whether clock lies within [Begin, End].
func (w Workday) Contains(clock Duration) bool {
	return w.Begin <= clock && clock <= w.End
}

// ElapsedAt returns the working time elapsed at clock. Elapsed time does not
// advance during lunch.
func (w Workday) ElapsedAt(clock Duration) Duration {
	switch {
	case clock < w.LunchBegin:
		return clock.Sub(w.Begin)
	case clock <= w.LunchEnd:
		return w.LunchBegin.Sub(w.Begin)
	default:
		return clock.Sub(w.Begin).Sub(w.LunchDuration())
	}
}
