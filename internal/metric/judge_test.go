package metric

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/norvik-labs/promptctl/internal/llm"
)

// fakeProvider returns a canned completion and records the last request.
type fakeProvider struct {
	reply   string
	err     error
	lastReq *llm.Request
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(_ context.Context, req *llm.Request) (*llm.Response, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{
		Content: []llm.ContentBlock{{Type: "text", Text: f.reply}},
	}, nil
}

func TestJudgeScoreNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		likert int
		want   float64
	}{
		{1, 0.0},
		{2, 0.25},
		{3, 0.5},
		{4, 0.75},
		{5, 1.0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("likert_%d", tt.likert), func(t *testing.T) {
			t.Parallel()
			p := &fakeProvider{reply: fmt.Sprintf(`{"score": %d, "reasoning": "ok"}`, tt.likert)}
			m := NewTone(p)
			score, err := m.Evaluate(context.Background(), "bug report", "As a user...", "")
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if math.Abs(score.Value-tt.want) > 1e-9 {
				t.Fatalf("Value = %v, want %v", score.Value, tt.want)
			}
			if score.Explanation != "ok" {
				t.Fatalf("Explanation = %q", score.Explanation)
			}
		})
	}
}

func TestJudgeFencedOutput(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{reply: "```json\n{\"score\": 5, \"reasoning\": \"clean\"}\n```"}
	m := NewCompleteness(p)
	score, err := m.Evaluate(context.Background(), "src", "gen", "ref")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if score.Value != 1.0 {
		t.Fatalf("Value = %v, want 1.0", score.Value)
	}
}

func TestJudgeInvalidOutputScoresZero(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		reply string
	}{
		{"not json", "the story looks great"},
		{"score too low", `{"score": 0, "reasoning": "?"}`},
		{"score too high", `{"score": 9, "reasoning": "?"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewStoryFormat(&fakeProvider{reply: tt.reply})
			score, err := m.Evaluate(context.Background(), "src", "gen", "")
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if score.Value != 0.0 {
				t.Fatalf("Value = %v, want 0.0", score.Value)
			}
			if len(score.Details) == 0 {
				t.Fatal("expected diagnostic details")
			}
		})
	}
}

func TestJudgeEmptyGenerated(t *testing.T) {
	t.Parallel()

	m := NewAcceptanceCriteria(&fakeProvider{reply: `{"score": 5}`})
	if _, err := m.Evaluate(context.Background(), "src", "   ", ""); err == nil {
		t.Fatal("expected error for empty generated text")
	}
}

func TestJudgeProviderError(t *testing.T) {
	t.Parallel()

	m := NewTone(&fakeProvider{err: fmt.Errorf("rate limited")})
	if _, err := m.Evaluate(context.Background(), "src", "gen", ""); err == nil {
		t.Fatal("expected provider error to propagate")
	}
}

func TestJudgePromptIncludesData(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{reply: `{"score": 3, "reasoning": "mid"}`}
	m := NewTone(p)
	if _, err := m.Evaluate(context.Background(), "the source bug", "the generated story", "the reference"); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if p.lastReq == nil || len(p.lastReq.Messages) != 1 {
		t.Fatalf("unexpected request: %+v", p.lastReq)
	}
	sent := p.lastReq.Messages[0].Content
	for _, want := range []string{"the source bug", "the generated story", "the reference", "[BEGIN DATA]"} {
		if !strings.Contains(sent, want) {
			t.Fatalf("judge prompt missing %q", want)
		}
	}
}

func TestDecodeVerdict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    judgeOutput
		wantErr bool
	}{
		{
			name: "plain object",
			raw:  `{"score": 4, "reasoning": "good"}`,
			want: judgeOutput{Score: 4, Reasoning: "good"},
		},
		{
			name: "fenced with language",
			raw:  "```json\n{\"score\": 5, \"reasoning\": \"x\"}\n```",
			want: judgeOutput{Score: 5, Reasoning: "x"},
		},
		{
			name: "fenced without language",
			raw:  "```\n{\"score\": 2}\n```",
			want: judgeOutput{Score: 2},
		},
		{
			name: "surrounding prose",
			raw:  "Here is my verdict: {\"score\": 3} hope that helps",
			want: judgeOutput{Score: 3},
		},
		{
			name:    "empty",
			raw:     "   ",
			wantErr: true,
		},
		{
			name:    "no object",
			raw:     "looks good to me",
			wantErr: true,
		},
		{
			name:    "malformed object",
			raw:     `{"score": }`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := decodeVerdict(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeVerdict: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.5, 1},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRegistryOrder(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry(&fakeProvider{reply: `{"score": 5}`})
	want := []string{NameTone, NameAcceptanceCriteria, NameStoryFormat, NameCompleteness}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	for _, name := range want {
		if _, ok := r.Get(name); !ok {
			t.Fatalf("Get(%q) missing", name)
		}
	}
}
