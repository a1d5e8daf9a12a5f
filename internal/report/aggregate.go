package report

import (
	"github.com/Tiliavir/trivial-time-report/internal/model"
	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

// BillableTotal sums the time of billable entries.
func BillableTotal(entries []model.Entry) timecalc.Duration {
	var total timecalc.Duration
	for _, e := range entries {
		if e.Billable {
			total = total.Add(e.Spent)
		}
	}
	return total
}

// FreeTotal sums the time of non-billable entries.
func FreeTotal(entries []model.Entry) timecalc.Duration {
	var total timecalc.Duration
	for _, e := range entries {
		if !e.Billable {
			total = total.Add(e.Spent)
		}
	}
	return total
}

// Total is BillableTotal plus FreeTotal.
func Total(entries []model.Entry) timecalc.Duration {
	return BillableTotal(entries).Add(FreeTotal(entries))
}

// Totals is the billable/free split of some set of entries.
type Totals struct {
	Bill timecalc.Duration
	Free timecalc.Duration
}

func (t Totals) Total() timecalc.Duration { return t.Bill.Add(t.Free) }

func (t Totals) Add(o Totals) Totals {
	return Totals{Bill: t.Bill.Add(o.Bill), Free: t.Free.Add(o.Free)}
}

// EntryTotals splits entries into billable and free time.
func EntryTotals(entries []model.Entry) Totals {
	return Totals{Bill: BillableTotal(entries), Free: FreeTotal(entries)}
}

// Summarize adds up the totals of every sheet. Failed or empty sheets
// contribute nothing.
func Summarize(sheets []model.Sheet) Totals {
	var sum Totals
	for _, s := range sheets {
		sum = sum.Add(EntryTotals(s.Entries))
	}
	return sum
}
