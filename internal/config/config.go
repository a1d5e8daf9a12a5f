package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

// DefaultPath is where the config lives unless -c says otherwise.
const DefaultPath = "~/.ttr/config.ini"

// Config is the root configuration for ttr, stored as an INI file with one
// section for global settings and one per ticketing system.
type Config struct {
	Global    GlobalConfig    `mapstructure:"global"`
	Freshdesk FreshdeskConfig `mapstructure:"freshdesk"`
	Jira      JiraConfig      `mapstructure:"jira"`
	Teamwork  TeamworkConfig  `mapstructure:"teamwork"`

	// Path is the resolved file the config was read from.
	Path string `mapstructure:"-"`
	// Created is set when Load wrote a fresh template to Path.
	Created bool `mapstructure:"-"`
}

// GlobalConfig holds workday boundaries and runtime settings.
type GlobalConfig struct {
	WorkdayBegin string `mapstructure:"workday_begin"`
	WorkdayEnd   string `mapstructure:"workday_end"`
	// The file keys keep the historical "launch" spelling; "lunch_begin" and
	// "lunch_end" are accepted as well.
	LunchBegin   string        `mapstructure:"launch_begin"`
	LunchEnd     string        `mapstructure:"launch_end"`
	Timezone     string        `mapstructure:"timezone"`
	DateFormat   string        `mapstructure:"date_format"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
	BarWidth     int           `mapstructure:"bar_width"`
	LogLevel     string        `mapstructure:"log_level"`
}

// FreshdeskConfig is the [freshdesk] section. The source is enabled when URL
// is set.
type FreshdeskConfig struct {
	URL      string   `mapstructure:"url"`
	AgentID  string   `mapstructure:"agent_id"`
	APIKey   string   `mapstructure:"api_key"`
	FreeTags []string `mapstructure:"free_tags"`
}

// JiraConfig is the [jira] section.
type JiraConfig struct {
	URL      string `mapstructure:"url"`
	Login    string `mapstructure:"login"`
	Password string `mapstructure:"password"`
	Token    string `mapstructure:"token"`
	Billable bool   `mapstructure:"billable"`
}

// TeamworkConfig is the [teamwork] section.
type TeamworkConfig struct {
	URL     string `mapstructure:"url"`
	AgentID string `mapstructure:"agent_id"`
	APIKey  string `mapstructure:"api_key"`
}

const configTemplate = `; ttr configuration
;
; One section per ticketing system. A system is queried when its url is set.
; Secrets (api_key, password, token) may be left empty; ttr then looks them
; up in the OS keyring. Store one with: ttr secret set <service> <account>

[global]
workday_begin = 10:00
workday_end   = 19:00
launch_begin  = 13:00
launch_end    = 14:00
; IANA timezone of the workday, e.g. Europe/Berlin. Empty = local time.
timezone      =
; Go reference layout for dates given on the command line.
date_format   = 2006-01-02
fetch_timeout = 30s
max_retries   = 3
; Progress bar width in characters. 0 = terminal width.
bar_width     = 0
log_level     = warn

[freshdesk]
; url      = https://yourcompany.freshdesk.com
; agent_id = 12345
; api_key  =
; Note substrings marking an entry as free, comma separated.
; free_tags = [free], [internal]

[jira]
; url      = https://jira.example.com
; login    = jdoe
; password =
; token    =
; billable = false

[teamwork]
; url      = https://yourcompany.teamwork.com
; agent_id = 12345
; api_key  =
`

// setDefaults registers every key so environment overrides apply to keys
// that are missing from the file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("global.workday_begin", "10:00")
	v.SetDefault("global.workday_end", "19:00")
	v.SetDefault("global.launch_begin", "13:00")
	v.SetDefault("global.launch_end", "14:00")
	v.SetDefault("global.timezone", "")
	v.SetDefault("global.date_format", "2006-01-02")
	v.SetDefault("global.fetch_timeout", "30s")
	v.SetDefault("global.max_retries", 3)
	v.SetDefault("global.bar_width", 0)
	v.SetDefault("global.log_level", "warn")

	v.SetDefault("freshdesk.url", "")
	v.SetDefault("freshdesk.agent_id", "")
	v.SetDefault("freshdesk.api_key", "")
	v.SetDefault("freshdesk.free_tags", []string{})

	v.SetDefault("jira.url", "")
	v.SetDefault("jira.login", "")
	v.SetDefault("jira.password", "")
	v.SetDefault("jira.token", "")
	v.SetDefault("jira.billable", false)

	v.SetDefault("teamwork.url", "")
	v.SetDefault("teamwork.agent_id", "")
	v.SetDefault("teamwork.api_key", "")
}

// Load reads the INI config at path (DefaultPath when empty), creating it
// from an annotated template on first run. Values can be overridden with
// TTR_<SECTION>_<KEY> environment variables.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	created := false
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := writeDefault(path); err != nil {
			return nil, err
		}
		created = true
	}

	settings, err := readINI(path)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("TTR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.MergeConfigMap(settings); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	for _, k := range []string{"begin", "end"} {
		if alias := "global.lunch_" + k; v.IsSet(alias) {
			v.Set("global.launch_"+k, v.GetString(alias))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	cfg.Path = path
	cfg.Created = created

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if _, err := cfg.Workday(); err != nil {
		return err
	}
	if _, err := cfg.Location(); err != nil {
		return err
	}
	if cfg.Global.DateFormat == "" {
		cfg.Global.DateFormat = "2006-01-02"
	}
	if cfg.Global.MaxRetries < 1 {
		cfg.Global.MaxRetries = 1
	}
	if cfg.Global.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout must not be negative, got %s", cfg.Global.FetchTimeout)
	}
	return nil
}

// Workday parses the configured workday and lunch boundaries.
func (c *Config) Workday() (timecalc.Workday, error) {
	var w timecalc.Workday
	for _, f := range []struct {
		key string
		val string
		dst *timecalc.Duration
	}{
		{"workday_begin", c.Global.WorkdayBegin, &w.Begin},
		{"workday_end", c.Global.WorkdayEnd, &w.End},
		{"launch_begin", c.Global.LunchBegin, &w.LunchBegin},
		{"launch_end", c.Global.LunchEnd, &w.LunchEnd},
	} {
		d, err := timecalc.ParseClock(strings.TrimSpace(f.val))
		if err != nil {
			return timecalc.Workday{}, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = d
	}
	if err := w.Validate(); err != nil {
		return timecalc.Workday{}, err
	}
	return w, nil
}

// Location returns the configured timezone, or time.Local when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Global.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Global.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Global.Timezone, err)
	}
	return loc, nil
}

// readINI loads path into the nested map viper expects: one map per section,
// keys of the default section at the top level. Section and key names are
// case-insensitive, and inline comments need a space before the marker so
// values such as "#free" survive.
func readINI(path string) (map[string]any, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		Insensitive:              true,
		SpaceBeforeInlineComment: true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	settings := map[string]any{}
	for _, sec := range f.Sections() {
		if strings.EqualFold(sec.Name(), ini.DefaultSection) {
			for _, k := range sec.Keys() {
				settings[k.Name()] = k.Value()
			}
			continue
		}
		values := make(map[string]any, len(sec.Keys()))
		for _, k := range sec.Keys() {
			values[k.Name()] = k.Value()
		}
		settings[sec.Name()] = values
	}
	return settings, nil
}

// writeDefault creates the config directory and atomically writes the
// annotated template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving default config: %w", err)
	}
	return nil
}
