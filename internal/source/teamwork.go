package source

import (
	"bytes"
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

// TeamworkConfig holds the project-management tool connection settings.
type TeamworkConfig struct {
	URL     string
	AgentID string
	APIKey  string
}

// Teamwork reads a user's time entries from the Teamwork Projects API.
type Teamwork struct {
	cfg    TeamworkConfig
	client *Client
}

func NewTeamwork(cfg TeamworkConfig, httpClient *http.Client) *Teamwork {
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &Teamwork{
		cfg:    cfg,
		client: NewClient(httpClient).WithBasicAuth(cfg.APIKey, "X"),
	}
}

func (t *Teamwork) Name() string { return "Teamwork" }

func (t *Teamwork) EntryURL() string { return t.cfg.URL + "/#tasks/" }

// flexInt decodes Teamwork's numbers, which arrive either as JSON numbers or
// as quoted strings. An empty string decodes to zero.
type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", b, err)
	}
	*n = flexInt(v)
	return nil
}

type teamworkTimeEntry struct {
	TodoItemID  flexInt `json:"todo-item-id"`
	Hours       flexInt `json:"hours"`
	Minutes     flexInt `json:"minutes"`
	IsBillable  flexInt `json:"isbillable"`
	ProjectName string  `json:"project-name"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

type teamworkResponse struct {
	TimeEntries []teamworkTimeEntry `json:"time-entries"`
}

// Fetch loads the user's time entries dated day.
func (t *Teamwork) Fetch(ctx context.Context, day time.Time) ([]byte, error) {
	d := day.Format("20060102")
	resp, err := t.client.get(ctx, t.cfg.URL+"/time_entries.json", url.Values{
		"userId":   {t.cfg.AgentID},
		"fromdate": {d},
		"todate":   {d},
	})
	if err != nil {
		return nil, err
	}
	return resp.body, nil
}

// Parse converts a time_entries.json payload. The note is the project name,
// followed by the entry description when present.
func (t *Teamwork) Parse(raw []byte, _ time.Time) ([]model.Entry, error) {
	var res teamworkResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decoding teamwork time entries: %w", err)
	}

	entries := make([]model.Entry, 0, len(res.TimeEntries))
	for _, it := range res.TimeEntries {
		note := it.ProjectName
		switch {
		case note == "":
			note = it.Description
		case it.Description != "":
			note += ": " + it.Description
		}
		date, _ := time.Parse(time.RFC3339, it.Date)
		entries = append(entries, model.Entry{
			ID:       strconv.FormatInt(int64(it.TodoItemID), 10),
			Billable: it.IsBillable == 1,
			Spent:    timecalc.FromParts(int64(it.Hours), int64(it.Minutes), 0),
			Note:     note,
			Updated:  date,
		})
	}
	sortEntries(entries)
	return entries, nil
}
