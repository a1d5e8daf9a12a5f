package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Tiliavir/trivial-time-report/internal/config"
	"github.com/Tiliavir/trivial-time-report/internal/credentials"
	"github.com/Tiliavir/trivial-time-report/internal/report"
	"github.com/Tiliavir/trivial-time-report/internal/source"
	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

var noticeColor = color.New(color.FgYellow)

// session is what both the report and the ticket mode need after startup.
type session struct {
	cfg       *config.Config
	logger    zerolog.Logger
	collector *report.Collector
	sources   []source.Source
}

func start(cmd *cobra.Command, opts *options) (*session, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	logger := setupLogger(cfg.Global.LogLevel, opts.verbose, cmd.ErrOrStderr())
	if cfg.Created {
		noticeColor.Fprintf(cmd.ErrOrStderr(),
			"Created a config template at %s. Set the url of at least one ticketing system.\n", cfg.Path)
	}

	sources, err := buildSources(cfg, opts, logger)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		logger.Warn().Str("config", cfg.Path).Msg("no ticketing system configured")
	}

	return &session{
		cfg:       cfg,
		logger:    logger,
		collector: report.NewCollector(cfg.Global.FetchTimeout, cfg.Global.MaxRetries, logger),
		sources:   sources,
	}, nil
}

func runReport(cmd *cobra.Command, opts *options, arg string) error {
	s, err := start(cmd, opts)
	if err != nil {
		return err
	}
	loc, err := s.cfg.Location()
	if err != nil {
		return err
	}
	workday, err := s.cfg.Workday()
	if err != nil {
		return err
	}

	now := opts.now().In(loc)
	day, err := timecalc.ParseReportDate(arg, s.cfg.Global.DateFormat, now)
	if err != nil {
		return err
	}
	s.logger.Debug().Time("day", day).Int("sources", len(s.sources)).Msg("collecting time entries")

	sheets := s.collector.Collect(cmd.Context(), s.sources, day)
	stats := report.Evaluate(workday, day, now, report.Summarize(sheets))

	return report.Write(cmd.OutOrStdout(), report.Report{
		Date:        day,
		Sheets:      sheets,
		Stats:       stats,
		Width:       barWidth(s.cfg.Global.BarWidth, cmd.OutOrStdout()),
		ListEntries: opts.list && !opts.noList,
	})
}

func runTicket(cmd *cobra.Command, opts *options) error {
	s, err := start(cmd, opts)
	if err != nil {
		return err
	}

	var ts source.TicketSource
	for _, src := range s.sources {
		if t, ok := src.(source.TicketSource); ok && strings.EqualFold(src.Name(), opts.source) {
			ts = t
			break
		}
	}
	if ts == nil {
		return fmt.Errorf("ticket lookup needs %q to be configured in %s (supported: freshdesk, jira)",
			opts.source, s.cfg.Path)
	}

	entries, err := s.collector.Ticket(cmd.Context(), ts, opts.ticket)
	if err != nil {
		return fmt.Errorf("ticket %s: %w", opts.ticket, err)
	}
	return report.WriteTicket(cmd.OutOrStdout(), opts.ticket, entries)
}

// buildSources creates an adapter for every section that has a url. Secrets
// missing from the file are looked up in opts.store.
func buildSources(cfg *config.Config, opts *options, logger zerolog.Logger) ([]source.Source, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	secret := func(configured, service, account string) string {
		s, err := credentials.Resolve(opts.store, configured, service, account)
		if err != nil {
			if errors.Is(err, credentials.ErrNotFound) {
				logger.Warn().Str("source", service).Str("account", account).Msg("no secret configured")
			} else {
				logger.Warn().Err(err).Str("source", service).Msg("secret lookup failed")
			}
		}
		return s
	}

	var sources []source.Source
	if fd := cfg.Freshdesk; fd.URL != "" {
		sources = append(sources, source.NewFreshdesk(source.FreshdeskConfig{
			URL:      fd.URL,
			AgentID:  fd.AgentID,
			APIKey:   secret(fd.APIKey, "freshdesk", fd.AgentID),
			FreeTags: fd.FreeTags,
			Location: loc,
		}, opts.httpClient))
	}
	if j := cfg.Jira; j.URL != "" {
		jc := source.JiraConfig{URL: j.URL, Login: j.Login, Token: j.Token, Billable: j.Billable}
		if jc.Token == "" {
			jc.Password = secret(j.Password, "jira", j.Login)
		}
		sources = append(sources, source.NewJira(jc, opts.httpClient))
	}
	if tw := cfg.Teamwork; tw.URL != "" {
		sources = append(sources, source.NewTeamwork(source.TeamworkConfig{
			URL:     tw.URL,
			AgentID: tw.AgentID,
			APIKey:  secret(tw.APIKey, "teamwork", tw.AgentID),
		}, opts.httpClient))
	}
	return sources, nil
}

// barWidth returns the configured width, else the terminal width minus the
// brackets, else report.DefaultBarWidth.
func barWidth(configured int, out io.Writer) int {
	if configured > 0 {
		return configured
	}
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 2 {
			return w - 2
		}
	}
	return report.DefaultBarWidth
}
