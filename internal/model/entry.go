package model

import (
	"time"

	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

// Entry is a single unit of recorded time reported by a source.
type Entry struct {
	// ID is the ticket, issue or task identifier in the source system.
	ID       string
	Billable bool
	Spent    timecalc.Duration
	Note     string
	// Updated is the source's last-update (or start) timestamp. It is only
	// used as a secondary sort key.
	Updated time.Time
}

// Kind returns "Bill" or "Free".
func (e Entry) Kind() string {
	if e.Billable {
		return "Bill"
	}
	return "Free"
}

// Sheet holds one source's entries for a single report date.
type Sheet struct {
	Source string
	// EntryURL is the prefix that, joined with Entry.ID, links to the entry.
	EntryURL string
	Date     time.Time
	Entries  []Entry
	// Err is set when the source could not be fetched or parsed. Entries is
	// empty in that case.
	Err error
}

// Empty reports whether the sheet has nothing to show.
func (s Sheet) Empty() bool { return len(s.Entries) == 0 }
