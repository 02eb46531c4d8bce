package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/norvik-labs/promptctl/internal/config"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleRun(id string, startedAt time.Time) *RunRecord {
	return &RunRecord{
		ID:              id,
		PromptName:      "norvik/bug-to-user-story",
		DatasetName:     "bugs-eval",
		Tone:            0.9167,
		Acceptance:      0.95,
		Format:          1.0,
		Completeness:    0.9,
		Passed:          true,
		TotalExamples:   10,
		ScoredExamples:  9,
		SkippedExamples: 1,
		StartedAt:       startedAt,
		FinishedAt:      startedAt.Add(30 * time.Second),
	}
}

func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	want := sampleRun("run_1", time.Now().UTC().Truncate(time.Millisecond))
	if err := st.SaveRun(ctx, want); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := st.GetRun(ctx, "run_1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.PromptName != want.PromptName || got.DatasetName != want.DatasetName {
		t.Fatalf("got %+v", got)
	}
	if got.Tone != 0.9167 || got.Acceptance != 0.95 || got.Format != 1.0 || got.Completeness != 0.9 {
		t.Fatalf("scores = %+v", got)
	}
	if !got.Passed {
		t.Fatal("Passed = false")
	}
	if got.TotalExamples != 10 || got.ScoredExamples != 9 || got.SkippedExamples != 1 {
		t.Fatalf("counts = %+v", got)
	}
	if !got.StartedAt.Equal(want.StartedAt) {
		t.Fatalf("StartedAt = %v, want %v", got.StartedAt, want.StartedAt)
	}
}

func TestGetRunNotFound(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	_, err := st.GetRun(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveRunValidation(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		name string
		run  *RunRecord
	}{
		{"nil run", nil},
		{"empty id", &RunRecord{PromptName: "p", StartedAt: now, FinishedAt: now}},
		{"empty prompt", &RunRecord{ID: "r", StartedAt: now, FinishedAt: now}},
		{"missing timestamps", &RunRecord{ID: "r", PromptName: "p"}},
	}
	for _, tt := range tests {
		if err := st.SaveRun(ctx, tt.run); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i := 0; i < 5; i++ {
		run := sampleRun(fmt.Sprintf("run_%d", i), base.Add(time.Duration(i)*time.Minute))
		if i%2 == 1 {
			run.PromptName = "norvik/other"
			run.Passed = false
		}
		if err := st.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun %d: %v", i, err)
		}
	}

	runs, err := st.ListRuns(ctx, RunFilter{})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 5 {
		t.Fatalf("len = %d, want 5", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].StartedAt.After(runs[i-1].StartedAt) {
			t.Fatal("runs not ordered newest first")
		}
	}

	runs, err = st.ListRuns(ctx, RunFilter{PromptName: "norvik/other"})
	if err != nil {
		t.Fatalf("ListRuns filtered: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("filtered len = %d, want 2", len(runs))
	}
	for _, r := range runs {
		if r.PromptName != "norvik/other" {
			t.Fatalf("PromptName = %q", r.PromptName)
		}
		if r.Passed {
			t.Fatal("Passed should round-trip false")
		}
	}

	runs, err = st.ListRuns(ctx, RunFilter{Limit: 3})
	if err != nil {
		t.Fatalf("ListRuns limited: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("limited len = %d, want 3", len(runs))
	}
}

func TestDuplicateRunID(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	run := sampleRun("run_dup", time.Now())

	if err := st.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := st.SaveRun(ctx, run); err == nil {
		t.Fatal("expected primary key violation")
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Storage: config.StorageConfig{Type: "memory"}}
	st, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if err := st.SaveRun(context.Background(), sampleRun("run_mem", time.Now())); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	if _, err := Open(&config.Config{Storage: config.StorageConfig{Type: "postgres"}}); err == nil {
		t.Fatal("expected error for unsupported storage type")
	}
}
