package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-time-report/internal/config"
	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadCreatesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.ini")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Created)
	assert.Equal(t, path, cfg.Path)
	assert.FileExists(t, path)

	assert.Equal(t, "10:00", cfg.Global.WorkdayBegin)
	assert.Equal(t, "19:00", cfg.Global.WorkdayEnd)
	assert.Equal(t, "2006-01-02", cfg.Global.DateFormat)
	assert.Equal(t, 30*time.Second, cfg.Global.FetchTimeout)
	assert.Equal(t, 3, cfg.Global.MaxRetries)
	assert.Equal(t, "warn", cfg.Global.LogLevel)
	assert.Empty(t, cfg.Freshdesk.URL)

	again, err := config.Load(path)
	require.NoError(t, err)
	assert.False(t, again.Created)
}

func TestLoadSections(t *testing.T) {
	path := writeConfig(t, `
[global]
workday_begin = 09:00
workday_end   = 17:30
lunch_begin   = 12:00
lunch_end     = 12:30
timezone      = UTC
fetch_timeout = 5s
max_retries   = 2
bar_width     = 60

[freshdesk]
url       = https://acme.freshdesk.com
agent_id  = 77
api_key   = fd-key
free_tags = [free],[internal]

[jira]
url      = https://jira.acme.io
login    = jdoe
token    = pat
billable = true

[teamwork]
url      = https://acme.teamwork.com
agent_id = 5
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Created)

	assert.Equal(t, "12:00", cfg.Global.LunchBegin)
	assert.Equal(t, "12:30", cfg.Global.LunchEnd)
	assert.Equal(t, 5*time.Second, cfg.Global.FetchTimeout)
	assert.Equal(t, 2, cfg.Global.MaxRetries)
	assert.Equal(t, 60, cfg.Global.BarWidth)

	assert.Equal(t, "https://acme.freshdesk.com", cfg.Freshdesk.URL)
	assert.Equal(t, "77", cfg.Freshdesk.AgentID)
	assert.Equal(t, "fd-key", cfg.Freshdesk.APIKey)
	assert.Equal(t, []string{"[free]", "[internal]"}, cfg.Freshdesk.FreeTags)

	assert.Equal(t, "jdoe", cfg.Jira.Login)
	assert.Equal(t, "pat", cfg.Jira.Token)
	assert.True(t, cfg.Jira.Billable)
	assert.Equal(t, "5", cfg.Teamwork.AgentID)

	w, err := cfg.Workday()
	require.NoError(t, err)
	assert.Equal(t, timecalc.MustParseClock("09:00"), w.Begin)
	assert.Equal(t, "08:00", w.Duration().String())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "[freshdesk]\nurl = https://acme.freshdesk.com\n")
	t.Setenv("TTR_FRESHDESK_API_KEY", "from-env")
	t.Setenv("TTR_GLOBAL_WORKDAY_END", "18:00")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Freshdesk.APIKey)
	assert.Equal(t, "18:00", cfg.Global.WorkdayEnd)
}

func TestLoadRejectsBadClock(t *testing.T) {
	path := writeConfig(t, "[global]\nworkday_begin = 9:00\n")

	_, err := config.Load(path)
	require.Error(t, err)
	var fe *timecalc.FormatError
	assert.ErrorAs(t, err, &fe)
	assert.Contains(t, err.Error(), "workday_begin")
}

func TestLoadRejectsLunchOutsideWorkday(t *testing.T) {
	path := writeConfig(t, "[global]\nlaunch_begin = 08:00\nlaunch_end = 09:00\n")

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	path := writeConfig(t, "[global]\ntimezone = Mars/Olympus\n")

	_, err := config.Load(path)
	assert.ErrorContains(t, err, "Mars/Olympus")
}
