package prompt

import (
	"fmt"
	"strings"
)

// Validate checks the structural rules a template must satisfy before it may
// be pushed to the registry. Returns one problem string per violation; an
// empty slice means the template is valid.
func Validate(t *Template) []string {
	if t == nil {
		return []string{"nil template"}
	}

	var problems []string

	if len(t.Messages) == 0 {
		problems = append(problems, "template has no messages")
		return problems
	}

	hasSystem := false
	for i, m := range t.Messages {
		role := ParseRole(string(m.Role))
		switch role {
		case RoleSystem:
			hasSystem = true
		case RoleHuman, RoleAI:
		default:
			// Non-standard roles are allowed but must still carry a name.
			if strings.TrimSpace(string(role)) == "" {
				problems = append(problems, fmt.Sprintf("message %d has no role", i))
			}
		}
		if strings.TrimSpace(m.Content) == "" {
			problems = append(problems, fmt.Sprintf("message %d is empty", i))
		}
		if strings.Contains(m.Content, "[TODO]") {
			problems = append(problems, fmt.Sprintf("message %d contains a [TODO] marker", i))
		}
	}
	if !hasSystem {
		problems = append(problems, "template has no system message")
	}

	return problems
}

// LintForPush applies the stricter publication checks on top of Validate:
// the system message must establish a persona, some message must pin down
// the output format, the template must carry at least one few-shot
// human/ai exchange, and at least two techniques must be declared.
func LintForPush(t *Template) []string {
	problems := Validate(t)
	if t == nil || len(t.Messages) == 0 {
		return problems
	}

	if sys := t.SystemMessages(); len(sys) > 0 {
		lower := strings.ToLower(sys[0].Content)
		personaMarkers := []string{"you are", "act as", "your role"}
		if !containsAny(lower, personaMarkers) {
			problems = append(problems, "system message does not define a persona")
		}
	}

	var all strings.Builder
	for _, m := range t.Messages {
		all.WriteString(strings.ToLower(m.Content))
		all.WriteString(" ")
	}
	formatMarkers := []string{"markdown", "format", "structure", "user story", "as a", "i want", "so that"}
	if !containsAny(all.String(), formatMarkers) {
		problems = append(problems, "template does not mention an output format")
	}

	humans, ais := 0, 0
	for _, m := range t.Messages {
		switch ParseRole(string(m.Role)) {
		case RoleHuman:
			humans++
		case RoleAI:
			ais++
		}
	}
	if humans < 1 || ais < 1 {
		problems = append(problems, "template has no few-shot example (needs at least one human/ai pair)")
	}

	if len(t.Techniques) < 2 {
		problems = append(problems, fmt.Sprintf("at least 2 techniques required, found %d", len(t.Techniques)))
	}

	return problems
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
