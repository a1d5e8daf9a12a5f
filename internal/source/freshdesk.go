package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/trivial-time-report/internal/model"
	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

const freshdeskTimeLayout = "2006-01-02T15:04:05Z"

// FreshdeskConfig holds the helpdesk connection settings.
type FreshdeskConfig struct {
	URL     string
	AgentID string
	APIKey  string
	// FreeTags are note substrings that mark an entry as non-billable.
	FreeTags []string
	// Location is the timezone the report day is interpreted in. Nil = UTC.
	Location *time.Location
}

// Freshdesk reads an agent's time entries from the Freshdesk v2 API.
type Freshdesk struct {
	cfg    FreshdeskConfig
	client *Client
}

// NewFreshdesk creates a Freshdesk source. Freshdesk expects the API key as
// the basic-auth user with a dummy password.
func NewFreshdesk(cfg FreshdeskConfig, httpClient *http.Client) *Freshdesk {
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Freshdesk{
		cfg:    cfg,
		client: NewClient(httpClient).WithBasicAuth(cfg.APIKey, "X"),
	}
}

func (f *Freshdesk) Name() string { return "Freshdesk" }

func (f *Freshdesk) EntryURL() string { return f.cfg.URL + "/a/tickets/" }

// freshdeskTimeEntry is one element of /api/v2/time_entries.
type freshdeskTimeEntry struct {
	TicketID  int64     `json:"ticket_id"`
	Billable  bool      `json:"billable"`
	TimeSpent string    `json:"time_spent"`
	Note      string    `json:"note"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Window returns the executed_after/executed_before bounds for day. The window
// opens one second before local midnight so entries stamped exactly at
// midnight are included.
func (f *Freshdesk) Window(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, f.cfg.Location).Add(-time.Second)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// Fetch collects all pages of the agent's time entries executed on day.
func (f *Freshdesk) Fetch(ctx context.Context, day time.Time) ([]byte, error) {
	after, before := f.Window(day)
	params := url.Values{
		"agent_id":        {f.cfg.AgentID},
		"executed_after":  {after.Format(freshdeskTimeLayout)},
		"executed_before": {before.Format(freshdeskTimeLayout)},
		"per_page":        {"100"},
	}
	return f.fetchPages(ctx, f.cfg.URL+"/api/v2/time_entries", params)
}

// FetchTicket collects every time entry booked on ticket id.
func (f *Freshdesk) FetchTicket(ctx context.Context, id string) ([]byte, error) {
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return nil, fmt.Errorf("freshdesk ticket id must be numeric, got %q", id)
	}
	return f.fetchPages(ctx, f.cfg.URL+"/api/v2/tickets/"+id+"/time_entries", url.Values{"per_page": {"100"}})
}

// fetchPages follows Link rel="next" headers and concatenates the JSON arrays.
func (f *Freshdesk) fetchPages(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	var all []json.RawMessage
	for endpoint != "" {
		resp, err := f.client.get(ctx, endpoint, params)
		if err != nil {
			return nil, err
		}
		var page []json.RawMessage
		if err := json.Unmarshal(resp.body, &page); err != nil {
			return nil, fmt.Errorf("decoding freshdesk response: %w", err)
		}
		all = append(all, page...)
		endpoint = nextLink(resp.header)
		// The next link already carries the query string.
		params = nil
	}
	if all == nil {
		all = []json.RawMessage{}
	}
	return json.Marshal(all)
}

// Parse converts a time_entries payload into sorted entries and applies the
// free-tag cross-check to the notes.
func (f *Freshdesk) Parse(raw []byte, _ time.Time) ([]model.Entry, error) {
	return f.ParseTicket(raw)
}

// ParseTicket parses a ticket's time_entries payload. The format is the same
// as the agent listing.
func (f *Freshdesk) ParseTicket(raw []byte) ([]model.Entry, error) {
	var items []freshdeskTimeEntry
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding freshdesk time entries: %w", err)
	}

	entries := make([]model.Entry, 0, len(items))
	for _, it := range items {
		spent, err := timecalc.ParseClock(it.TimeSpent)
		if err != nil {
			return nil, fmt.Errorf("ticket %d: %w", it.TicketID, err)
		}
		entries = append(entries, model.Entry{
			ID:       strconv.FormatInt(it.TicketID, 10),
			Billable: it.Billable,
			Spent:    spent,
			Note:     it.Note,
			Updated:  it.UpdatedAt,
		})
	}
	sortEntries(entries)
	return CheckFreeTags(entries, f.cfg.FreeTags), nil
}
