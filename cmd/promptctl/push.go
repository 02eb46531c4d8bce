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

type pushOptions struct {
	file           string
	name           string
	skipValidation bool
}

func newPushCmd(st *cliState) *cobra.Command {
	var opts pushOptions

	cmd := &cobra.Command{
		Use:     "push",
		Short:   "Validate and publish a prompt to the registry",
		Args:    cobra.NoArgs,
		PreRunE: loadConfigInto(st),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPush(st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "prompts/bug_to_user_story.yml", "YAML file with the prompt")
	cmd.Flags().StringVar(&opts.name, "name", "", "registry name (owner/name); defaults to <owner>/<file name>")
	cmd.Flags().BoolVar(&opts.skipValidation, "skip-validation", false, "push even when validation fails (not recommended)")

	return cmd
}

func runPush(st *cliState, opts *pushOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("push: missing config (internal error)")
	}

	tmpl, err := prompt.LoadFromFile(opts.file)
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}

	if problems := prompt.LintForPush(tmpl); len(problems) > 0 {
		fmt.Fprintln(stderrWriter, "validation problems:")
		for _, p := range problems {
			fmt.Fprintf(stderrWriter, "  - %s\n", p)
		}
		if !opts.skipValidation {
			return fmt.Errorf("push: prompt failed validation (%d problems)", len(problems))
		}
		fmt.Fprintln(stderrWriter, "continuing despite validation problems (--skip-validation)")
	}

	name := resolvePushName(st, opts, tmpl)

	meta := hub.PushMeta{
		Description: tmpl.Description,
		Tags:        tmpl.Techniques,
	}
	if !containsTag(meta.Tags, "user-story") {
		meta.Tags = append(meta.Tags, "user-story")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := newHubClient(st.cfg)
	if err := client.Push(ctx, name, tmpl, meta); err != nil {
		switch {
		case errors.Is(err, hub.ErrUnauthorized):
			fmt.Fprintln(stderrWriter, "registry rejected the credentials; check PROMPTHUB_API_KEY")
		case errors.Is(err, hub.ErrNotFound):
			fmt.Fprintf(stderrWriter, "registry owner not found; confirm the name %q (format: owner/name)\n", name)
		}
		return fmt.Errorf("push: %w", err)
	}

	fmt.Fprintf(stdoutWriter, "pushed %s (%d messages, tags: %s)\n", name, len(tmpl.Messages), strings.Join(meta.Tags, ", "))
	return nil
}

func resolvePushName(st *cliState, opts *pushOptions, tmpl *prompt.Template) string {
	if name := strings.TrimSpace(opts.name); name != "" {
		return name
	}

	owner := strings.TrimSpace(st.cfg.Hub.Owner)
	if owner == "" {
		owner = strings.TrimSpace(tmpl.Owner)
	}
	if owner == "" {
		owner = "user"
	}

	base := filepath.Base(opts.file)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if v := strings.TrimSpace(tmpl.Name); v != "" {
		base = v
	}
	return owner + "/" + base
}

func containsTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(strings.TrimSpace(t), want) {
			return true
		}
	}
	return false
}
