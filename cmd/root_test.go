package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-time-report/internal/credentials"
	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

const dayEntries = `[
  {"ticket_id": 42, "billable": true,  "time_spent": "01:00", "note": "migration", "updated_at": "2026-02-26T10:30:00Z"},
  {"ticket_id": 7,  "billable": false, "time_spent": "00:30", "note": "standup", "updated_at": "2026-02-26T09:00:00Z"}
]`

const ticketEntries = `[
  {"ticket_id": 42, "billable": true,  "time_spent": "02:00", "note": "", "updated_at": "2026-02-20T10:00:00Z"},
  {"ticket_id": 42, "billable": false, "time_spent": "00:15", "note": "", "updated_at": "2026-02-21T10:00:00Z"}
]`

type recordedSecret struct{ service, account, secret string }

type fakeSecrets struct{ got []recordedSecret }

func (f *fakeSecrets) Set(service, account, secret string) error {
	f.got = append(f.got, recordedSecret{service, account, secret})
	return nil
}

func freshdeskServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _, ok := r.BasicAuth()
		if !ok || user != "fd-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/api/v2/time_entries":
			assert.Equal(t, "77", r.URL.Query().Get("agent_id"))
			fmt.Fprint(w, dayEntries)
		case "/api/v2/tickets/42/time_entries":
			fmt.Fprint(w, ticketEntries)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func freshdeskConfig(t *testing.T, url string) string {
	return writeConfig(t, fmt.Sprintf(`[global]
timezone    = UTC
bar_width   = 16
max_retries = 1

[freshdesk]
url      = %s
agent_id = 77
`, url))
}

func testOptions(now time.Time) *options {
	return &options{
		now:        func() time.Time { return now },
		httpClient: &http.Client{Timeout: 5 * time.Second},
		store:      credentials.Map{"freshdesk/77": "fd-key"},
		secrets:    &fakeSecrets{},
	}
}

func execute(t *testing.T, opts *options, args ...string) (string, string, error) {
	t.Helper()
	color.NoColor = true
	root := newRootCmd(opts)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestReportToday(t *testing.T) {
	srv := freshdeskServer(t)
	cfgPath := freshdeskConfig(t, srv.URL)
	now := time.Date(2026, 2, 26, 12, 0, 0, 0, time.UTC)

	out, _, err := execute(t, testOptions(now), "-c", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Time records for Thu 26 Feb 2026\n")
	assert.Contains(t, out, srv.URL+"/a/tickets/7\n\tFree: 00:30 standup\n")
	assert.Contains(t, out, srv.URL+"/a/tickets/42\n\tBill: 01:00 migration\n")
	assert.Less(t, strings.Index(out, "tickets/7\n"), strings.Index(out, "tickets/42\n"))
	assert.Contains(t, out, "Total tracked time:    01:30\n")
	assert.Contains(t, out, "- Freshdesk billable:  01:00\n")
	assert.Contains(t, out, "- Freshdesk free:      00:30\n")
	// 10:00 to 12:00 elapsed, 01:30 tracked.
	assert.Contains(t, out, "Untracked time by now: 00:30\n")
	assert.Contains(t, out, "Until end of workday:  06:00\n")
}

func TestReportPastDayWithoutListing(t *testing.T) {
	srv := freshdeskServer(t)
	cfgPath := freshdeskConfig(t, srv.URL)
	now := time.Date(2026, 2, 27, 12, 0, 0, 0, time.UTC)

	out, _, err := execute(t, testOptions(now), "-c", cfgPath, "--no-list", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "Time records for Thu 26 Feb 2026\n")
	assert.NotContains(t, out, "/a/tickets/")
	assert.Contains(t, out, "Untracked time: 06:30\n")
	assert.NotContains(t, out, "by now")
}

func TestReportExplicitDate(t *testing.T) {
	srv := freshdeskServer(t)
	cfgPath := freshdeskConfig(t, srv.URL)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	out, _, err := execute(t, testOptions(now), "-c", cfgPath, "2026-02-26")
	require.NoError(t, err)
	assert.Contains(t, out, "Time records for Thu 26 Feb 2026\n")
}

func TestReportRejectsBadDate(t *testing.T) {
	cfgPath := writeConfig(t, "[global]\ntimezone = UTC\n")

	for _, arg := range []string{"yesterday", "-1", "26.02.2026"} {
		_, _, err := execute(t, testOptions(time.Now()), "-c", cfgPath, "--", arg)
		var de *timecalc.DateArgumentError
		require.True(t, errors.As(err, &de), "arg %q: want DateArgumentError, got %v", arg, err)
		assert.Equal(t, "2006-01-02", de.Layout)
	}
}

func TestReportSourceFailureIsNotFatal(t *testing.T) {
	srv := freshdeskServer(t)
	cfgPath := freshdeskConfig(t, srv.URL)
	opts := testOptions(time.Date(2026, 2, 26, 12, 0, 0, 0, time.UTC))
	opts.store = credentials.Map{}

	out, stderr, err := execute(t, opts, "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "- Freshdesk:           unavailable (")
	assert.Contains(t, out, "Total tracked time:    00:00\n")
	assert.Contains(t, stderr, "no secret configured")
}

func TestReportCreatesConfigTemplate(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "ttr", "config.ini")

	out, stderr, err := execute(t, testOptions(time.Now()), "-c", cfgPath)
	require.NoError(t, err)
	assert.FileExists(t, cfgPath)
	assert.Contains(t, stderr, "Created a config template at "+cfgPath)
	assert.Contains(t, out, "Total tracked time:    00:00\n")
}

func TestTicket(t *testing.T) {
	srv := freshdeskServer(t)
	cfgPath := freshdeskConfig(t, srv.URL)

	out, _, err := execute(t, testOptions(time.Now()), "-c", cfgPath, "-t", "42")
	require.NoError(t, err)
	assert.Equal(t, "Time records for ticket #42:\nTotal: 02:15\nBill:  02:00\nFree:  00:15\n", out)
}

func TestTicketNeedsConfiguredSource(t *testing.T) {
	srv := freshdeskServer(t)
	cfgPath := freshdeskConfig(t, srv.URL)

	_, _, err := execute(t, testOptions(time.Now()), "-c", cfgPath, "-t", "ABC-1", "--source", "jira")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"jira"`)

	_, _, err = execute(t, testOptions(time.Now()), "-c", cfgPath, "-t", "ABC-1")
	assert.ErrorContains(t, err, "numeric")
}

func TestSecretSet(t *testing.T) {
	opts := testOptions(time.Now())
	secrets := opts.secrets.(*fakeSecrets)

	root := newRootCmd(opts)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetIn(strings.NewReader("  s3cret \n"))
	root.SetArgs([]string{"secret", "set", "Jira", "jdoe"})
	require.NoError(t, root.Execute())

	assert.Equal(t, []recordedSecret{{"jira", "jdoe", "s3cret"}}, secrets.got)
	assert.Equal(t, "Stored secret for jira/jdoe\n", out.String())
}

func TestSecretSetRejects(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		input string
	}{
		{"unknown service", []string{"secret", "set", "github", "me"}, "x\n"},
		{"empty secret", []string{"secret", "set", "teamwork", "5"}, "\n"},
		{"missing account", []string{"secret", "set", "teamwork"}, "x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(time.Now())
			root := newRootCmd(opts)
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			root.SetIn(strings.NewReader(tt.input))
			root.SetArgs(tt.args)
			assert.Error(t, root.Execute())
			assert.Empty(t, opts.secrets.(*fakeSecrets).got)
		})
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, zerolog.WarnLevel, setupLogger("", false, &buf).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, setupLogger("info", false, &buf).GetLevel())
	assert.Equal(t, zerolog.ErrorLevel, setupLogger("ERROR", false, &buf).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, setupLogger("error", true, &buf).GetLevel())
}

func TestBarWidth(t *testing.T) {
	assert.Equal(t, 42, barWidth(42, &bytes.Buffer{}))
	assert.Equal(t, 80, barWidth(0, &bytes.Buffer{}))
}
