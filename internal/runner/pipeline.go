package runner

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/norvik-labs/promptctl/internal/dataset"
	"github.com/norvik-labs/promptctl/internal/llm"
	"github.com/norvik-labs/promptctl/internal/metric"
	"github.com/norvik-labs/promptctl/internal/prompt"
)

// Pipeline turns a named prompt plus a labeled dataset into aggregate
// metric scores and a verdict. It holds no state across runs.
type Pipeline struct {
	templates TemplateSource
	examples  ExampleSource
	provider  llm.Provider
	metrics   []metric.Metric
	cfg       Config

	sem chan struct{}
}

// NewPipeline creates a Pipeline with defaults applied.
func NewPipeline(templates TemplateSource, examples ExampleSource, provider llm.Provider, metrics []metric.Metric, cfg Config) *Pipeline {
	if cfg.MaxExamples <= 0 {
		cfg.MaxExamples = 10
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Diag == nil {
		cfg.Diag = io.Discard
	}

	return &Pipeline{
		templates: templates,
		examples:  examples,
		provider:  provider,
		metrics:   metrics,
		cfg:       cfg,
		sem:       make(chan struct{}, cfg.Concurrency),
	}
}

// Evaluate runs the full pipeline for one prompt. It always returns a
// report: resolution failures and empty datasets yield all-zero scores and
// a failing verdict rather than an error, so a batch over several prompts
// can keep going.
func (p *Pipeline) Evaluate(ctx context.Context, promptName, datasetName string) *Report {
	report := &Report{
		Prompt:    promptName,
		Dataset:   datasetName,
		StartedAt: time.Now(),
	}
	defer func() {
		report.Passed = report.Scores.Passed()
		report.FinishedAt = time.Now()
	}()

	if p == nil || p.templates == nil || p.examples == nil || p.provider == nil {
		report.ResolveErr = fmt.Errorf("runner: pipeline not fully configured")
		return report
	}

	tmpl, err := p.templates.Pull(ctx, promptName)
	if err != nil {
		report.ResolveErr = err
		fmt.Fprintf(p.cfg.Diag, "runner: resolve prompt %q: %v\n", promptName, err)
		return report
	}

	examples, err := p.examples.ListExamples(ctx, datasetName)
	if err != nil {
		fmt.Fprintf(p.cfg.Diag, "runner: list examples for %q: %v\n", datasetName, err)
		examples = nil
	}
	if len(examples) > p.cfg.MaxExamples {
		examples = examples[:p.cfg.MaxExamples]
	}
	report.TotalExamples = len(examples)

	acc := newAccumulator(p.metrics)

	var wg sync.WaitGroup
	for i, ex := range examples {
		wg.Add(1)
		go func(i int, ex dataset.Example) {
			defer wg.Done()

			p.sem <- struct{}{}
			defer func() { <-p.sem }()

			result := p.runExample(ctx, tmpl, ex)
			if result.Answer == "" {
				acc.skip()
				return
			}

			scores, ok := p.scoreExample(ctx, i, result)
			if !ok {
				acc.skip()
				return
			}
			acc.add(scores)
		}(i, ex)
	}
	wg.Wait()

	report.Scores = acc.aggregate()
	report.ScoredExamples = acc.scored
	report.SkippedExamples = acc.skipped
	return report
}

// runExample renders the template against one example's inputs and invokes
// the model. Failures are absorbed: a diagnostic is written and an empty
// result comes back, which the caller treats as "skip".
func (p *Pipeline) runExample(ctx context.Context, tmpl *prompt.Template, ex dataset.Example) ExampleResult {
	callCtx := ctx
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	rendered, err := prompt.Render(tmpl, ex.Inputs)
	if err != nil {
		fmt.Fprintf(p.cfg.Diag, "runner: render template: %v\n", err)
		return ExampleResult{}
	}

	req, err := toRequest(rendered)
	if err != nil {
		fmt.Fprintf(p.cfg.Diag, "runner: build request: %v\n", err)
		return ExampleResult{}
	}

	resp, err := p.provider.Complete(callCtx, req)
	if err != nil {
		fmt.Fprintf(p.cfg.Diag, "runner: invoke model: %v\n", err)
		return ExampleResult{}
	}

	return ExampleResult{
		Answer:    resp.Text(),
		Reference: ex.Reference(),
		Question:  ex.Question(),
	}
}

// scoreExample runs every metric over one result. A single metric failure
// drops the whole example from all aggregates so the four score lists stay
// parallel.
func (p *Pipeline) scoreExample(ctx context.Context, idx int, result ExampleResult) (map[string]float64, bool) {
	scores := make(map[string]float64, len(p.metrics))
	for _, m := range p.metrics {
		s, err := p.evaluateMetric(ctx, m, result)
		if err != nil {
			fmt.Fprintf(p.cfg.Diag, "runner: example %d: metric %s: %v\n", idx, m.Name(), err)
			return nil, false
		}
		scores[m.Name()] = metric.Clamp(s.Value)
	}
	return scores, true
}

// evaluateMetric gives each judge call its own timeout budget, matching
// the per-call timeout on the model invocation.
func (p *Pipeline) evaluateMetric(ctx context.Context, m metric.Metric, result ExampleResult) (*metric.Score, error) {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}
	return m.Evaluate(ctx, result.Question, result.Answer, result.Reference)
}

// toRequest maps rendered template messages onto an LLM request. System
// messages become the request's system text; everything else stays an
// ordered chat message.
func toRequest(rendered []prompt.Rendered) (*llm.Request, error) {
	var systemParts []string
	var messages []llm.Message

	for _, m := range rendered {
		switch m.Role {
		case prompt.RoleSystem:
			systemParts = append(systemParts, m.Content)
		case prompt.RoleHuman:
			messages = append(messages, llm.Message{Role: "user", Content: m.Content})
		case prompt.RoleAI:
			messages = append(messages, llm.Message{Role: "assistant", Content: m.Content})
		default:
			messages = append(messages, llm.Message{Role: "user", Content: m.Content})
		}
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("template has no non-system messages")
	}

	return &llm.Request{
		Messages:  messages,
		System:    strings.Join(systemParts, "\n\n"),
		MaxTokens: 4096,
	}, nil
}

// accumulator collects per-metric score sums under a lock so the example
// fan-out can run concurrently. Mean is order-independent.
type accumulator struct {
	mu      sync.Mutex
	names   []string
	sums    map[string]float64
	counts  map[string]int
	scored  int
	skipped int
}

func newAccumulator(metrics []metric.Metric) *accumulator {
	names := make([]string, 0, len(metrics))
	for _, m := range metrics {
		names = append(names, m.Name())
	}
	return &accumulator{
		names:  names,
		sums:   make(map[string]float64, len(names)),
		counts: make(map[string]int, len(names)),
	}
}

func (a *accumulator) add(scores map[string]float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scored++
	for name, v := range scores {
		a.sums[name] += v
		a.counts[name]++
	}
}

func (a *accumulator) skip() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.skipped++
}

// aggregate computes each metric's mean over contributing examples only,
// rounded to 4 decimals. A metric with no contributors is exactly 0.0.
func (a *accumulator) aggregate() AggregateScores {
	a.mu.Lock()
	defer a.mu.Unlock()

	mean := func(name string) float64 {
		n := a.counts[name]
		if n == 0 {
			return 0.0
		}
		return round4(a.sums[name] / float64(n))
	}

	return AggregateScores{
		Tone:               mean(metric.NameTone),
		AcceptanceCriteria: mean(metric.NameAcceptanceCriteria),
		Format:             mean(metric.NameStoryFormat),
		Completeness:       mean(metric.NameCompleteness),
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
