package runner

import (
	"context"
	"io"
	"time"

	"github.com/norvik-labs/promptctl/internal/dataset"
	"github.com/norvik-labs/promptctl/internal/prompt"
)

// PassThreshold is the minimum every aggregate score must reach for a
// passing verdict. Fixed by policy, not configurable.
const PassThreshold = 0.9

// Config defines pipeline behavior.
type Config struct {
	MaxExamples int           // Cap on examples evaluated, default 10
	Concurrency int           // Max in-flight examples, default 1
	Timeout     time.Duration // Per network call, 0 = none
	Diag        io.Writer     // Human-readable diagnostics, default discard
}

// TemplateSource resolves prompt templates by identifier.
type TemplateSource interface {
	Pull(ctx context.Context, name string) (*prompt.Template, error)
}

// ExampleSource lists a dataset's examples in native order.
type ExampleSource interface {
	ListExamples(ctx context.Context, datasetName string) ([]dataset.Example, error)
}

// ExampleResult is the transient outcome of running one example. An empty
// Answer means the example failed and must be skipped, not scored.
type ExampleResult struct {
	Answer    string
	Reference string
	Question  string
}

// AggregateScores holds the per-metric means over scored examples.
type AggregateScores struct {
	Tone               float64 `json:"tone"`
	AcceptanceCriteria float64 `json:"acceptance_criteria"`
	Format             float64 `json:"format"`
	Completeness       float64 `json:"completeness"`
}

// Passed reports the verdict: true iff every metric mean is at or above
// the threshold.
func (a AggregateScores) Passed() bool {
	return a.Tone >= PassThreshold &&
		a.AcceptanceCriteria >= PassThreshold &&
		a.Format >= PassThreshold &&
		a.Completeness >= PassThreshold
}

// Failing returns the names of metrics below the threshold.
func (a AggregateScores) Failing() []string {
	var out []string
	if a.Tone < PassThreshold {
		out = append(out, "tone")
	}
	if a.AcceptanceCriteria < PassThreshold {
		out = append(out, "acceptance_criteria")
	}
	if a.Format < PassThreshold {
		out = append(out, "format")
	}
	if a.Completeness < PassThreshold {
		out = append(out, "completeness")
	}
	return out
}

// Report summarizes one prompt's evaluation.
type Report struct {
	Prompt          string
	Dataset         string
	Scores          AggregateScores
	Passed          bool
	TotalExamples   int // Examples considered (after the cap)
	ScoredExamples  int // Examples that produced a non-empty answer and scores
	SkippedExamples int
	ResolveErr      error // Set when the template could not be resolved
	StartedAt       time.Time
	FinishedAt      time.Time
}
