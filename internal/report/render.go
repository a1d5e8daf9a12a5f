package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/Tiliavir/trivial-time-report/internal/model"
	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

var (
	weekendColor = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
)

// Report is everything needed to print one day's summary.
type Report struct {
	Date   time.Time
	Sheets []model.Sheet
	Stats  Stats
	// Width is the progress bar width in characters.
	Width int
	// ListEntries prints every source's entries before the totals.
	ListEntries bool
}

// Header renders "Time records for Mon 02 Jan 2006", the date in red on
// weekends.
func Header(date time.Time) string {
	d := date.Format("Mon 02 Jan 2006")
	if timecalc.IsWeekend(date) {
		d = weekendColor.Sprint(d)
	}
	return "Time records for " + d
}

// WriteSheet lists a sheet's entries as
//
//	<entry url><id>
//		Bill: 01:30 note
//
// Empty sheets print nothing.
func WriteSheet(w io.Writer, s model.Sheet) error {
	for _, e := range s.Entries {
		line := fmt.Sprintf("%s%s\n\t%s: %s %s", s.EntryURL, e.ID, e.Kind(), e.Spent, e.Note)
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

// Write prints the full report.
func Write(w io.Writer, r Report) error {
	var b strings.Builder

	b.WriteString(Header(r.Date))
	b.WriteString("\n\n")

	if r.ListEntries {
		for _, s := range r.Sheets {
			if s.Empty() {
				continue
			}
			if err := WriteSheet(&b, s); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(&b, "\n%-23s%s\n", "Total tracked time:", r.Stats.Tracked)
	for _, s := range r.Sheets {
		if s.Err != nil {
			fmt.Fprintf(&b, "%-23s%s\n", "- "+s.Source+":", warnColor.Sprint(unavailable(s.Err)))
			continue
		}
		if s.Empty() {
			continue
		}
		t := EntryTotals(s.Entries)
		fmt.Fprintf(&b, "%-23s%s\n", "- "+s.Source+" billable:", t.Bill)
		fmt.Fprintf(&b, "%-23s%s\n", "- "+s.Source+" free:", t.Free)
	}

	width := r.Width
	if width <= 0 {
		width = DefaultBarWidth
	}
	b.WriteString("\nBill to free ratio:\n")
	b.WriteString(RenderBar(BarSegments(r.Stats, width)))
	b.WriteString("\n\n")

	if r.Stats.Live {
		fmt.Fprintf(&b, "Untracked time by now: %s\n", r.Stats.Untracked)
		fmt.Fprintf(&b, "Until end of workday:  %s\n", r.Stats.Remaining)
	} else {
		fmt.Fprintf(&b, "Untracked time: %s\n", r.Stats.Untracked)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteTicket prints the totals of a single ticket.
func WriteTicket(w io.Writer, id string, entries []model.Entry) error {
	t := EntryTotals(entries)
	_, err := fmt.Fprintf(w, "Time records for ticket #%s:\nTotal: %s\nBill:  %s\nFree:  %s\n",
		id, t.Total(), t.Bill, t.Free)
	return err
}

func unavailable(err error) string {
	var te *FetchTimeoutError
	if errors.As(err, &te) {
		return fmt.Sprintf("unavailable (timed out after %s)", te.After)
	}
	return "unavailable (" + err.Error() + ")"
}
