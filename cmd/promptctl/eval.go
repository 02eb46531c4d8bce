package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/norvik-labs/promptctl/internal/config"
	"github.com/norvik-labs/promptctl/internal/dataset"
	"github.com/norvik-labs/promptctl/internal/hub"
	"github.com/norvik-labs/promptctl/internal/llm"
	"github.com/norvik-labs/promptctl/internal/metric"
	"github.com/norvik-labs/promptctl/internal/runner"
	"github.com/norvik-labs/promptctl/internal/store"
	"github.com/spf13/cobra"
)

var errEvalFailed = errors.New("promptctl: evaluation failed")

const (
	defaultPromptName  = "norvik/bug-to-user-story"
	defaultDatasetFile = "datasets/bug_to_user_story.jsonl"
	defaultProject     = "prompt-optimization"
)

type evalOptions struct {
	promptName  string
	datasetFile string
	maxExamples int
	noHistory   bool
}

func newEvalCmd(st *cliState) *cobra.Command {
	var opts evalOptions

	cmd := &cobra.Command{
		Use:     "eval",
		Short:   "Evaluate a prompt against the dataset",
		Args:    cobra.NoArgs,
		PreRunE: loadConfigInto(st),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.promptName, "prompt", defaultPromptName, "prompt name in the registry (owner/name)")
	cmd.Flags().StringVar(&opts.datasetFile, "dataset", defaultDatasetFile, "local JSONL dataset file")
	cmd.Flags().IntVar(&opts.maxExamples, "max-examples", 10, "maximum number of examples to evaluate")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "skip recording the run in local history")

	return cmd
}

func runEval(st *cliState, opts *evalOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("eval: missing config (internal error)")
	}
	if opts.maxExamples <= 0 {
		return fmt.Errorf("eval: --max-examples must be > 0 (got %d)", opts.maxExamples)
	}

	if !reportCredentialProblems(config.CheckCredentials(st.cfg)) {
		return fmt.Errorf("eval: configuration incomplete")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := newHubClient(st.cfg)

	datasetName := datasetNameFromConfig(st.cfg)
	if _, err := os.Stat(opts.datasetFile); err == nil {
		examples := dataset.LoadJSONL(opts.datasetFile, stderrWriter)
		dataset.Sync(ctx, client, datasetName, examples, stderrWriter)
	} else {
		fmt.Fprintf(stderrWriter, "eval: dataset file %q not found; evaluating against remote dataset %q\n", opts.datasetFile, datasetName)
	}

	provider, err := llm.DefaultProviderFromConfig(st.cfg)
	if err != nil {
		return fmt.Errorf("eval: %w", err)
	}
	judge, err := llm.JudgeProviderFromConfig(st.cfg)
	if err != nil {
		return fmt.Errorf("eval: %w", err)
	}

	metrics := []metric.Metric{
		metric.NewTone(judge),
		metric.NewAcceptanceCriteria(judge),
		metric.NewStoryFormat(judge),
		metric.NewCompleteness(judge),
	}

	pipeline := runner.NewPipeline(client, client, provider, metrics, runner.Config{
		MaxExamples: opts.maxExamples,
		Concurrency: st.cfg.Evaluation.Concurrency,
		Timeout:     st.cfg.Evaluation.Timeout,
		Diag:        stderrWriter,
	})

	report := pipeline.Evaluate(ctx, opts.promptName, datasetName)

	if report.ResolveErr != nil {
		printResolveRemediation(opts.promptName, report.ResolveErr)
	}

	displayReport(report)

	if !opts.noHistory {
		recordRun(ctx, st.cfg, report)
	}

	if !report.Passed {
		return errEvalFailed
	}
	return nil
}

func newHubClient(cfg *config.Config) *hub.Client {
	var opts []hub.Option
	if v := strings.TrimSpace(cfg.Hub.BaseURL); v != "" {
		opts = append(opts, hub.WithBaseURL(v))
	}
	return hub.NewClient(cfg.Hub.APIKey, opts...)
}

func datasetNameFromConfig(cfg *config.Config) string {
	project := strings.TrimSpace(cfg.Hub.Project)
	if project == "" {
		project = defaultProject
	}
	return project + "-eval"
}

func displayReport(report *runner.Report) {
	line := strings.Repeat("=", 32)
	fmt.Fprintln(stdoutWriter, line)
	fmt.Fprintf(stdoutWriter, "Prompt: %s\n", report.Prompt)
	fmt.Fprintf(stdoutWriter, "- Tone Score: %.2f\n", report.Scores.Tone)
	fmt.Fprintf(stdoutWriter, "- Acceptance Criteria: %.2f\n", report.Scores.AcceptanceCriteria)
	fmt.Fprintf(stdoutWriter, "- Format Score: %.2f\n", report.Scores.Format)
	fmt.Fprintf(stdoutWriter, "- Completeness: %.2f\n", report.Scores.Completeness)
	fmt.Fprintf(stdoutWriter, "Examples: %d scored, %d skipped\n", report.ScoredExamples, report.SkippedExamples)
	fmt.Fprintln(stdoutWriter, line)

	if report.Passed {
		fmt.Fprintf(stdoutWriter, "Status: PASSED - all metrics >= %.1f\n", runner.PassThreshold)
	} else {
		fmt.Fprintf(stdoutWriter, "Status: FAILED - metrics below the %.1f minimum\n", runner.PassThreshold)
		if failing := report.Scores.Failing(); len(failing) > 0 {
			fmt.Fprintf(stdoutWriter, "Failing metrics: %s\n", strings.Join(failing, ", "))
		}
	}
}

func printResolveRemediation(promptName string, err error) {
	switch {
	case errors.Is(err, hub.ErrNotFound):
		fmt.Fprintf(stderrWriter, "prompt %q was not found in the registry\n", promptName)
		fmt.Fprintln(stderrWriter, "  1. push the prompt first: promptctl push --file prompts/<name>.yml")
		fmt.Fprintln(stderrWriter, "  2. confirm the name is correct (format: owner/name)")
	case errors.Is(err, hub.ErrUnauthorized):
		fmt.Fprintln(stderrWriter, "registry rejected the credentials")
		fmt.Fprintln(stderrWriter, "  1. check PROMPTHUB_API_KEY")
		fmt.Fprintln(stderrWriter, "  2. confirm you have access to the workspace")
	default:
		fmt.Fprintf(stderrWriter, "could not resolve prompt %q: %v\n", promptName, err)
		fmt.Fprintln(stderrWriter, "  check your network connection and the registry base URL")
	}
}

// recordRun saves the report to local history. Failures are diagnostics
// only; history never blocks the verdict.
func recordRun(ctx context.Context, cfg *config.Config, report *runner.Report) {
	st, err := store.Open(cfg)
	if err != nil {
		fmt.Fprintf(stderrWriter, "eval: open history store: %v\n", err)
		return
	}
	defer func() { _ = st.Close() }()

	id, err := newRunID()
	if err != nil {
		fmt.Fprintf(stderrWriter, "eval: generate run id: %v\n", err)
		return
	}

	rec := &store.RunRecord{
		ID:              id,
		PromptName:      report.Prompt,
		DatasetName:     report.Dataset,
		Tone:            report.Scores.Tone,
		Acceptance:      report.Scores.AcceptanceCriteria,
		Format:          report.Scores.Format,
		Completeness:    report.Scores.Completeness,
		Passed:          report.Passed,
		TotalExamples:   report.TotalExamples,
		ScoredExamples:  report.ScoredExamples,
		SkippedExamples: report.SkippedExamples,
		StartedAt:       report.StartedAt,
		FinishedAt:      report.FinishedAt,
	}
	if err := st.SaveRun(ctx, rec); err != nil {
		fmt.Fprintf(stderrWriter, "eval: record run: %v\n", err)
	}
}

func newRunID() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("run_%s_%x", time.Now().UTC().Format("20060102T150405Z"), buf), nil
}
