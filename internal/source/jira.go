package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/trivial-time-report/internal/model"
	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

const jiraStartedLayout = "2006-01-02T15:04:05.000-0700"

// JiraConfig holds the issue tracker connection settings. When Token is set
// it is sent as a bearer token (personal access token) and Password is
// ignored.
type JiraConfig struct {
	URL      string
	Login    string
	Password string
	Token    string
	// Billable marks every worklog as billable. Jira has no billable flag of
	// its own.
	Billable bool
}

// Jira reads the user's worklogs from the Jira REST API v2.
type Jira struct {
	cfg    JiraConfig
	client *Client
}

// NewJira creates a Jira source.
func NewJira(cfg JiraConfig, httpClient *http.Client) *Jira {
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	var client *Client
	if cfg.Token != "" {
		// oauth2.NewClient builds on the client found in the context.
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
		client = NewClient(oauth2.NewClient(ctx, ts))
	} else {
		client = NewClient(httpClient).WithBasicAuth(cfg.Login, cfg.Password)
	}
	return &Jira{cfg: cfg, client: client}
}

func (j *Jira) Name() string { return "Jira" }

func (j *Jira) EntryURL() string { return j.cfg.URL + "/browse/" }

type jiraSearchRequest struct {
	JQL        string   `json:"jql"`
	Fields     []string `json:"fields"`
	MaxResults int      `json:"maxResults"`
}

type jiraSearchResponse struct {
	Issues []struct {
		Key string `json:"key"`
	} `json:"issues"`
}

type jiraWorklog struct {
	Author struct {
		Name         string `json:"name"`
		AccountID    string `json:"accountId"`
		EmailAddress string `json:"emailAddress"`
	} `json:"author"`
	Comment          string `json:"comment"`
	Started          string `json:"started"`
	TimeSpentSeconds int64  `json:"timeSpentSeconds"`
}

type jiraWorklogResponse struct {
	Worklogs []jiraWorklog `json:"worklogs"`
}

// jiraPayload is the raw form handed from Fetch to Parse: each matching issue
// with its complete worklog list.
type jiraPayload struct {
	Issues []jiraIssueWorklogs `json:"issues"`
}

type jiraIssueWorklogs struct {
	Key      string        `json:"key"`
	Worklogs []jiraWorklog `json:"worklogs"`
}

// JQL returns the search query for the user's worklogs on day. The login is
// quoted so email addresses and account ids are accepted.
func (j *Jira) JQL(day time.Time) string {
	return fmt.Sprintf("worklogAuthor = %s AND worklogDate = %s", jqlQuote(j.cfg.Login), day.Format("2006-01-02"))
}

var jqlEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func jqlQuote(s string) string { return `"` + jqlEscaper.Replace(s) + `"` }

// Fetch searches for issues with the user's worklogs on day and loads each
// issue's worklog list.
func (j *Jira) Fetch(ctx context.Context, day time.Time) ([]byte, error) {
	resp, err := j.client.postJSON(ctx, j.cfg.URL+"/rest/api/2/search", jiraSearchRequest{
		JQL:        j.JQL(day),
		Fields:     []string{"key"},
		MaxResults: 1000,
	})
	if err != nil {
		return nil, err
	}
	var search jiraSearchResponse
	if err := json.Unmarshal(resp.body, &search); err != nil {
		return nil, fmt.Errorf("decoding jira search response: %w", err)
	}

	payload := jiraPayload{Issues: make([]jiraIssueWorklogs, 0, len(search.Issues))}
	for _, issue := range search.Issues {
		logs, err := j.worklogs(ctx, issue.Key)
		if err != nil {
			return nil, err
		}
		payload.Issues = append(payload.Issues, jiraIssueWorklogs{Key: issue.Key, Worklogs: logs})
	}
	return json.Marshal(payload)
}

// FetchTicket loads the worklogs of a single issue.
func (j *Jira) FetchTicket(ctx context.Context, key string) ([]byte, error) {
	logs, err := j.worklogs(ctx, key)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jiraPayload{Issues: []jiraIssueWorklogs{{Key: key, Worklogs: logs}}})
}

func (j *Jira) worklogs(ctx context.Context, key string) ([]jiraWorklog, error) {
	resp, err := j.client.get(ctx, j.cfg.URL+"/rest/api/2/issue/"+url.PathEscape(key)+"/worklog", nil)
	if err != nil {
		return nil, err
	}
	var wl jiraWorklogResponse
	if err := json.Unmarshal(resp.body, &wl); err != nil {
		return nil, fmt.Errorf("decoding jira worklogs for %s: %w", key, err)
	}
	return wl.Worklogs, nil
}

// Parse keeps the worklogs written by the configured user and started on day.
func (j *Jira) Parse(raw []byte, day time.Time) ([]model.Entry, error) {
	date := day.Format("2006-01-02")
	return j.parse(raw, func(w jiraWorklog) bool {
		return j.isAuthor(w) && strings.SplitN(w.Started, "T", 2)[0] == date
	})
}

// ParseTicket keeps every worklog of the issue.
func (j *Jira) ParseTicket(raw []byte) ([]model.Entry, error) {
	return j.parse(raw, func(jiraWorklog) bool { return true })
}

func (j *Jira) parse(raw []byte, keep func(jiraWorklog) bool) ([]model.Entry, error) {
	var payload jiraPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding jira payload: %w", err)
	}

	entries := []model.Entry{}
	for _, issue := range payload.Issues {
		for _, w := range issue.Worklogs {
			if !keep(w) {
				continue
			}
			started, _ := time.Parse(jiraStartedLayout, w.Started)
			entries = append(entries, model.Entry{
				ID:       issue.Key,
				Billable: j.cfg.Billable,
				Spent:    timecalc.Duration(w.TimeSpentSeconds),
				Note:     w.Comment,
				Updated:  started,
			})
		}
	}
	sortEntries(entries)
	return entries, nil
}

func (j *Jira) isAuthor(w jiraWorklog) bool {
	login := j.cfg.Login
	return login != "" && (w.Author.Name == login || w.Author.EmailAddress == login || w.Author.AccountID == login)
}
