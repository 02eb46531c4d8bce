package main

import (
	"strings"
	"testing"

	"github.com/norvik-labs/promptctl/internal/config"
	"github.com/norvik-labs/promptctl/internal/prompt"
)

func TestResolvePushName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		st   *cliState
		opts *pushOptions
		tmpl *prompt.Template
		want string
	}{
		{
			name: "explicit name wins",
			st:   &cliState{cfg: &config.Config{}},
			opts: &pushOptions{name: "norvik/custom", file: "prompts/x.yml"},
			tmpl: &prompt.Template{Name: "ignored"},
			want: "norvik/custom",
		},
		{
			name: "config owner with template name",
			st:   &cliState{cfg: &config.Config{Hub: config.HubConfig{Owner: "norvik"}}},
			opts: &pushOptions{file: "prompts/bug_to_user_story.yml"},
			tmpl: &prompt.Template{Name: "bug-to-user-story"},
			want: "norvik/bug-to-user-story",
		},
		{
			name: "template owner fallback",
			st:   &cliState{cfg: &config.Config{}},
			opts: &pushOptions{file: "prompts/bug_to_user_story.yml"},
			tmpl: &prompt.Template{Owner: "acme", Name: "story"},
			want: "acme/story",
		},
		{
			name: "file basename fallback",
			st:   &cliState{cfg: &config.Config{}},
			opts: &pushOptions{file: "prompts/bug_to_user_story.yml"},
			tmpl: &prompt.Template{},
			want: "user/bug_to_user_story",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := resolvePushName(tt.st, tt.opts, tt.tmpl); got != tt.want {
				t.Fatalf("resolvePushName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDatasetNameFromConfig(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	if got := datasetNameFromConfig(cfg); got != defaultProject+"-eval" {
		t.Fatalf("datasetNameFromConfig() = %q", got)
	}

	cfg.Hub.Project = "my-project"
	if got := datasetNameFromConfig(cfg); got != "my-project-eval" {
		t.Fatalf("datasetNameFromConfig() = %q", got)
	}
}

func TestNewRunID(t *testing.T) {
	t.Parallel()

	a, err := newRunID()
	if err != nil {
		t.Fatalf("newRunID: %v", err)
	}
	b, err := newRunID()
	if err != nil {
		t.Fatalf("newRunID: %v", err)
	}
	if !strings.HasPrefix(a, "run_") {
		t.Fatalf("id = %q", a)
	}
	if a == b {
		t.Fatalf("ids should be unique: %q", a)
	}
}

func TestShortPromptName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"norvik/bug-to-user-story", "bug-to-user-story"},
		{"bug-to-user-story", "bug-to-user-story"},
		{"a/b/c", "c"},
	}
	for _, tt := range tests {
		if got := shortPromptName(tt.in); got != tt.want {
			t.Errorf("shortPromptName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContainsTag(t *testing.T) {
	t.Parallel()

	tags := []string{"few-shot", " User-Story "}
	if !containsTag(tags, "user-story") {
		t.Fatal("match should be case-insensitive and trimmed")
	}
	if containsTag(tags, "role-play") {
		t.Fatal("unexpected match")
	}
}
