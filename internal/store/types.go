package store

import (
	"context"
	"time"
)

// RunRecord stores one prompt evaluation summary.
type RunRecord struct {
	ID              string
	PromptName      string
	DatasetName     string
	Tone            float64
	Acceptance      float64
	Format          float64
	Completeness    float64
	Passed          bool
	TotalExamples   int
	ScoredExamples  int
	SkippedExamples int
	StartedAt       time.Time
	FinishedAt      time.Time
}

// RunFilter filters run listings.
type RunFilter struct {
	PromptName string
	Limit      int
}

// Store defines persistence for evaluation runs.
type Store interface {
	SaveRun(ctx context.Context, run *RunRecord) error
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*RunRecord, error)
	Close() error
}
