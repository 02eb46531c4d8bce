package prompt

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFromFile loads a template definition from a YAML file.
func LoadFromFile(path string) (*Template, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prompt: read %q: %w", path, err)
	}

	var t Template
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("prompt: parse %q: %w", path, err)
	}
	for i := range t.Messages {
		t.Messages[i].Role = ParseRole(string(t.Messages[i].Role))
	}
	return &t, nil
}

// SaveToFile writes a template definition as YAML, creating parent
// directories as needed.
func SaveToFile(t *Template, path string) error {
	if t == nil {
		return fmt.Errorf("prompt: save %q: nil template", path)
	}

	b, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("prompt: marshal %q: %w", path, err)
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("prompt: create dir %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("prompt: write %q: %w", path, err)
	}
	return nil
}
