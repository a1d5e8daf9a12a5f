package report

import (
	"math"
	"strings"

	"github.com/fatih/color"

	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

// DefaultBarWidth is used when the terminal width is unknown.
const DefaultBarWidth = 80

var (
	billColor      = color.New(color.FgGreen)
	untrackedColor = color.New(color.FgRed)
)

// Segments are the character counts of the progress bar parts.
type Segments struct {
	Bill      int
	Free      int
	Untracked int
	Rest      int
}

func (s Segments) Len() int { return s.Bill + s.Free + s.Untracked + s.Rest }

// BarSegments scales the stats onto width characters. One character stands
// for max(tracked, workday)/width seconds and each segment is rounded to the
// nearest character. Untracked time only shows when positive, and Rest is the
// time left until the end of a live workday.
//
// Segments are filled in order (bill, free, untracked, rest) and each one is
// capped at the width still left, so the bar never exceeds width. When
// rounding pushes the total over, the later segments lose the excess: the
// untracked part can be one character shorter than its own rounded size.
func BarSegments(st Stats, width int) Segments {
	if width <= 0 {
		return Segments{}
	}
	span := timecalc.Max(st.Tracked, st.Workday)
	if span <= 0 {
		return Segments{}
	}
	scale := float64(span.Seconds()) / float64(width)

	budget := width
	part := func(d timecalc.Duration) int {
		n := int(math.Round(float64(d.Seconds()) / scale))
		if n < 0 {
			n = 0
		}
		if n > budget {
			n = budget
		}
		budget -= n
		return n
	}

	var seg Segments
	seg.Bill = part(st.Bill)
	seg.Free = part(st.Free)
	if st.Untracked > 0 {
		seg.Untracked = part(st.Untracked)
	}
	if st.Live {
		seg.Rest = part(st.Remaining)
	}
	return seg
}

// RenderBar draws the segments as [###   ]: billable in green, free plain,
// untracked in red and the rest of the workday blank.
func RenderBar(seg Segments) string {
	var b strings.Builder
	b.WriteString("[")
	if seg.Bill > 0 {
		b.WriteString(billColor.Sprint(strings.Repeat("#", seg.Bill)))
	}
	b.WriteString(strings.Repeat("#", seg.Free))
	if seg.Untracked > 0 {
		b.WriteString(untrackedColor.Sprint(strings.Repeat("#", seg.Untracked)))
	}
	b.WriteString(strings.Repeat(" ", seg.Rest))
	b.WriteString("]")
	return b.String()
}
