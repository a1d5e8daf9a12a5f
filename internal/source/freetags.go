package source

import (
	"strings"

	"github.com/Tiliavir/trivial-time-report/internal/model"
)

const (
	warnBillableTagged = "[warning: billable, but has a free tag]"
	warnFreeUntagged   = "[warning: free, but has no free tag]"
)

// CheckFreeTags annotates notes whose free tags disagree with the billable
// flag. The flag itself is never changed. Matching is case-insensitive.
// With no tags configured the entries are returned untouched.
func CheckFreeTags(entries []model.Entry, tags []string) []model.Entry {
	var lowered []string
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			lowered = append(lowered, strings.ToLower(t))
		}
	}
	if len(lowered) == 0 {
		return entries
	}

	for i := range entries {
		tagged := hasTag(entries[i].Note, lowered)
		switch {
		case entries[i].Billable && tagged:
			entries[i].Note = annotate(entries[i].Note, warnBillableTagged)
		case !entries[i].Billable && !tagged:
			entries[i].Note = annotate(entries[i].Note, warnFreeUntagged)
		}
	}
	return entries
}

func hasTag(note string, tags []string) bool {
	note = strings.ToLower(note)
	for _, t := range tags {
		if strings.Contains(note, t) {
			return true
		}
	}
	return false
}

func annotate(note, warning string) string {
	if note == "" {
		return warning
	}
	return note + " " + warning
}
