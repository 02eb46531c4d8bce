package prompt

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Rendered is a message with all placeholders substituted.
type Rendered struct {
	Role    Role
	Content string
}

// Render substitutes {{variable}} placeholders in every message against the
// given inputs. A placeholder with no matching input is an error; rendering
// is all-or-nothing.
func Render(t *Template, inputs map[string]string) ([]Rendered, error) {
	if t == nil {
		return nil, errors.New("prompt: nil template")
	}
	if len(t.Messages) == 0 {
		return nil, errors.New("prompt: template has no messages")
	}

	out := make([]Rendered, 0, len(t.Messages))
	for i, m := range t.Messages {
		content, err := renderContent(m.Content, inputs)
		if err != nil {
			return nil, fmt.Errorf("prompt: message %d (%s): %w", i, m.Role, err)
		}
		out = append(out, Rendered{Role: ParseRole(string(m.Role)), Content: content})
	}
	return out, nil
}

func renderContent(content string, inputs map[string]string) (string, error) {
	var missing []string
	rendered := placeholderPattern.ReplaceAllStringFunc(content, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		v, ok := inputs[name]
		if !ok {
			missing = append(missing, name)
			return match
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("missing variables: %s", strings.Join(missing, ", "))
	}
	if err := validateDelimiters(rendered); err != nil {
		return "", err
	}
	return rendered, nil
}

func validateDelimiters(s string) error {
	open := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '{' && s[i+1] == '{' {
			open++
			i++
			continue
		}
		if s[i] == '}' && s[i+1] == '}' {
			if open == 0 {
				return errors.New("unmatched \"}}\"")
			}
			open--
			i++
		}
	}
	if open != 0 {
		return errors.New("unmatched \"{{\"")
	}
	return nil
}
