package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// secretWriter persists a secret for a service and account.
type secretWriter interface {
	Set(service, account, secret string) error
}

var secretServices = []string{"freshdesk", "jira", "teamwork"}

func newSecretCmd(opts *options) *cobra.Command {
	secretCmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage API secrets in the OS keyring",
	}
	secretCmd.AddCommand(&cobra.Command{
		Use:   "set <service> <account>",
		Short: "Store the API key or password for a ticketing system",
		Long: `Reads a secret from stdin and stores it in the OS keyring.

service is one of freshdesk, jira, teamwork. account is the agent_id for
Freshdesk and Teamwork and the login for Jira.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSecretSet(cmd, opts, args[0], args[1])
		},
	})
	return secretCmd
}

func runSecretSet(cmd *cobra.Command, opts *options, service, account string) error {
	service = strings.ToLower(service)
	if !slices.Contains(secretServices, service) {
		return fmt.Errorf("unknown service %q, expected one of %s", service, strings.Join(secretServices, ", "))
	}

	secret, err := readSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), service, account)
	if err != nil {
		return err
	}
	if secret == "" {
		return errors.New("empty secret, nothing stored")
	}
	if err := opts.secrets.Set(service, account, secret); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stored secret for %s/%s\n", service, account)
	return nil
}

// readSecret prompts without echo on a terminal and reads one line otherwise.
func readSecret(in io.Reader, prompt io.Writer, service, account string) (string, error) {
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprintf(prompt, "Secret for %s/%s: ", service, account)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}
