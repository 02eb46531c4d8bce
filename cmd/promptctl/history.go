package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/norvik-labs/promptctl/internal/store"
	"github.com/spf13/cobra"
)

type historyOptions struct {
	promptName string
	limit      int
}

func newHistoryCmd(st *cliState) *cobra.Command {
	var opts historyOptions

	cmd := &cobra.Command{
		Use:     "history",
		Short:   "Show evaluation history",
		Args:    cobra.NoArgs,
		PreRunE: loadConfigInto(st),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.promptName, "prompt", "", "only show runs for this prompt")
	cmd.Flags().IntVar(&opts.limit, "limit", 20, "maximum number of runs to show")

	return cmd
}

func runHistory(st *cliState, opts *historyOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("history: missing config (internal error)")
	}

	s, err := store.Open(st.cfg)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	defer func() { _ = s.Close() }()

	runs, err := s.ListRuns(context.Background(), store.RunFilter{
		PromptName: strings.TrimSpace(opts.promptName),
		Limit:      opts.limit,
	})
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdoutWriter, "no runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(stdoutWriter, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tPROMPT\tTONE\tACCEPT\tFORMAT\tCOMPLETE\tVERDICT")
	for _, run := range runs {
		verdict := "FAIL"
		if run.Passed {
			verdict = "PASS"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.4f\t%.4f\t%.4f\t%s\n",
			run.StartedAt.Format("2006-01-02 15:04"),
			run.PromptName,
			run.Tone,
			run.Acceptance,
			run.Format,
			run.Completeness,
			verdict,
		)
	}
	return tw.Flush()
}
