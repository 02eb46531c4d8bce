package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/norvik-labs/promptctl/internal/config"
	"github.com/spf13/cobra"
)

func newCheckCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "check",
		Short:   "Verify credentials and registry reachability",
		Args:    cobra.NoArgs,
		PreRunE: loadConfigInto(st),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(st)
		},
	}
	return cmd
}

func runCheck(st *cliState) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("check: missing config (internal error)")
	}

	if !reportCredentialProblems(config.CheckCredentials(st.cfg)) {
		return fmt.Errorf("check: configuration incomplete")
	}
	fmt.Fprintln(stdoutWriter, "credentials: ok")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := newHubClient(st.cfg)
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("check: %w", err)
	}
	fmt.Fprintln(stdoutWriter, "registry: reachable")
	return nil
}
