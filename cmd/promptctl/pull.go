package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/norvik-labs/promptctl/internal/hub"
	"github.com/norvik-labs/promptctl/internal/prompt"
	"github.com/spf13/cobra"
)

type pullOptions struct {
	promptName string
	outputDir  string
}

func newPullCmd(st *cliState) *cobra.Command {
	var opts pullOptions

	cmd := &cobra.Command{
		Use:     "pull",
		Short:   "Pull a prompt from the registry and save it locally",
		Args:    cobra.NoArgs,
		PreRunE: loadConfigInto(st),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPull(st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.promptName, "prompt", defaultPromptName, "prompt name in the registry (owner/name)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "prompts", "directory to save the prompt YAML")

	return cmd
}

func runPull(st *cliState, opts *pullOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("pull: missing config (internal error)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := newHubClient(st.cfg)
	tmpl, err := client.Pull(ctx, opts.promptName)
	if err != nil {
		switch {
		case errors.Is(err, hub.ErrNotFound):
			fmt.Fprintf(stderrWriter, "prompt %q was not found; confirm the name (format: owner/name)\n", opts.promptName)
		case errors.Is(err, hub.ErrUnauthorized):
			fmt.Fprintln(stderrWriter, "registry rejected the credentials; check PROMPTHUB_API_KEY")
		default:
			fmt.Fprintln(stderrWriter, "check your network connection and the registry base URL")
		}
		return fmt.Errorf("pull: %w", err)
	}

	name := strings.TrimSpace(tmpl.Name)
	if name == "" {
		name = shortPromptName(opts.promptName)
		tmpl.Name = name
	}

	path := filepath.Join(opts.outputDir, name+".yml")
	if err := prompt.SaveToFile(tmpl, path); err != nil {
		return fmt.Errorf("pull: %w", err)
	}

	fmt.Fprintf(stdoutWriter, "saved %s\n", path)
	fmt.Fprintf(stdoutWriter, "  - name: %s\n", tmpl.Name)
	fmt.Fprintf(stdoutWriter, "  - owner: %s\n", tmpl.Owner)
	fmt.Fprintf(stdoutWriter, "  - messages: %d\n", len(tmpl.Messages))
	return nil
}

func shortPromptName(name string) string {
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
