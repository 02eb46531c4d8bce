package prompt

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	t.Parallel()

	tmpl := &Template{
		Name: "bug-to-user-story",
		Messages: []Message{
			{Role: RoleSystem, Content: "You are a Product Manager."},
			{Role: RoleHuman, Content: "Bug report: {{bug_report}}"},
		},
	}

	rendered, err := Render(tmpl, map[string]string{"bug_report": "Login fails on submit"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(rendered) != 2 {
		t.Fatalf("got %d messages, want 2", len(rendered))
	}
	if rendered[0].Role != RoleSystem || rendered[0].Content != "You are a Product Manager." {
		t.Fatalf("system message: %+v", rendered[0])
	}
	if rendered[1].Content != "Bug report: Login fails on submit" {
		t.Fatalf("human message: %+v", rendered[1])
	}
}

func TestRenderMissingVariable(t *testing.T) {
	t.Parallel()

	tmpl := &Template{
		Messages: []Message{
			{Role: RoleHuman, Content: "Report: {{bug_report}} by {{author}}"},
		},
	}

	_, err := Render(tmpl, map[string]string{"bug_report": "x"})
	if err == nil {
		t.Fatalf("expected error for missing variable")
	}
	if !strings.Contains(err.Error(), "author") {
		t.Fatalf("error should name the missing variable: %v", err)
	}
}

func TestRenderUnmatchedDelimiters(t *testing.T) {
	t.Parallel()

	tmpl := &Template{
		Messages: []Message{
			{Role: RoleHuman, Content: "broken }} here"},
		},
	}

	if _, err := Render(tmpl, nil); err == nil {
		t.Fatalf("expected error for unmatched delimiters")
	}
}

func TestRenderNilTemplate(t *testing.T) {
	t.Parallel()

	if _, err := Render(nil, nil); err == nil {
		t.Fatalf("expected error for nil template")
	}
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Role
	}{
		{"system", RoleSystem},
		{"SYSTEM", RoleSystem},
		{"human", RoleHuman},
		{"user", RoleHuman},
		{"ai", RoleAI},
		{"assistant", RoleAI},
		{"model", RoleAI},
		{"tool", Role("tool")},
	}
	for _, tt := range tests {
		if got := ParseRole(tt.in); got != tt.want {
			t.Fatalf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if !RoleSystem.Known() {
		t.Fatalf("RoleSystem should be known")
	}
	if Role("tool").Known() {
		t.Fatalf("custom role should not be known")
	}
}
