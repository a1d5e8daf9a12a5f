package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-report/internal/credentials"
)

// options carries flag values and injectable collaborators for one
// invocation.
type options struct {
	configPath string
	ticket     string
	source     string
	verbose    bool
	list       bool
	noList     bool

	now        func() time.Time
	httpClient *http.Client
	store      credentials.Store
	secrets    secretWriter
}

func defaultOptions() *options {
	return &options{
		now:        time.Now,
		httpClient: &http.Client{},
		store:      credentials.Chain{credentials.Env{}, credentials.Keyring{}},
		secrets:    credentials.Keyring{},
	}
}

// NewRootCmd builds the ttr command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultOptions())
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "ttr [offset-or-date]",
		Short: "Trivial Time Report – daily summary of time booked in your ticketing systems",
		Long: `ttr collects the time you booked today (or on another day) in Freshdesk,
Jira and Teamwork, and prints billable and free totals, a progress bar and
the time still untracked in your workday.

The argument is either the number of days before today (0 = today) or a
date in the configured date_format. Settings live in ~/.ttr/config.ini.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.ticket != "" {
				return runTicket(cmd, opts)
			}
			arg := ""
			if len(args) == 1 {
				arg = args[0]
			}
			return runReport(cmd, opts, arg)
		},
	}

	f := root.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "Config file (default ~/.ttr/config.ini)")
	f.StringVarP(&opts.ticket, "ticket", "t", "", "Show the time booked on one ticket instead of a day")
	f.StringVar(&opts.source, "source", "freshdesk", "System the --ticket lives in: freshdesk, jira")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")
	f.BoolVar(&opts.list, "list", true, "List every entry before the totals")
	f.BoolVar(&opts.noList, "no-list", false, "Only print the totals")

	root.AddCommand(newSecretCmd(opts))
	return root
}

// Execute is the entry point called from main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
