// Package source adapts the external ticketing systems (Freshdesk, Jira and
// Teamwork) to a uniform capability that turns one report day into entries.
package source

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/Tiliavir/trivial-time-report/internal/model"
)

// Source is one external system that can report time entries for a day.
//
// Fetch performs all I/O and returns the raw payload; Parse is pure and turns
// that payload into entries sorted by the source's stable key, with the
// billable flag already set.
type Source interface {
	Name() string
	EntryURL() string
	Fetch(ctx context.Context, day time.Time) ([]byte, error)
	Parse(raw []byte, day time.Time) ([]model.Entry, error)
}

// TicketSource is implemented by sources that can list every entry booked on
// a single ticket, regardless of date or author.
type TicketSource interface {
	Source
	FetchTicket(ctx context.Context, id string) ([]byte, error)
	ParseTicket(raw []byte) ([]model.Entry, error)
}

// sortEntries orders entries by ID, then by Updated. IDs sharing a prefix
// compare by their numeric suffix, so "PROJ-9" sorts before "PROJ-10" and
// plain ticket numbers sort numerically. The sort is stable so equal keys
// keep API order.
func sortEntries(entries []model.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.ID != b.ID {
			return lessID(a.ID, b.ID)
		}
		return a.Updated.Before(b.Updated)
	})
}

func lessID(a, b string) bool {
	ap, an, aok := splitID(a)
	bp, bn, bok := splitID(b)
	if aok && bok && ap == bp && an != bn {
		return an < bn
	}
	return a < b
}

// splitID splits an ID into its prefix and trailing number.
func splitID(id string) (string, int64, bool) {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if i == len(id) {
		return id, 0, false
	}
	n, err := strconv.ParseInt(id[i:], 10, 64)
	if err != nil {
		return id, 0, false
	}
	return id[:i], n, true
}
