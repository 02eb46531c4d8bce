package llm

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/norvik-labs/promptctl/internal/config"
)

func NewRegistryFromConfig(cfg *config.Config) (*Registry, error) {
	if cfg == nil {
		return nil, errors.New("llm: nil config")
	}

	r := NewRegistry()
	for name, pcfg := range cfg.LLM.Providers {
		key := strings.ToLower(strings.TrimSpace(name))
		switch key {
		case "":
			continue
		case "openai":
			r.Register(NewOpenAIProvider(pcfg.APIKey, pcfg.BaseURL, pcfg.Model))
		case "google", "gemini":
			r.Register(NewGeminiProvider(pcfg.APIKey, pcfg.Model))
		case "claude", "anthropic":
			r.Register(NewClaudeProvider(pcfg.APIKey, pcfg.BaseURL, pcfg.Model))
		default:
			return nil, fmt.Errorf("llm: unknown provider %q", name)
		}
	}

	return r, nil
}

func DefaultProviderFromConfig(cfg *config.Config) (Provider, error) {
	return providerFromConfig(cfg, func(c *config.Config) string { return c.LLM.DefaultProvider })
}

// JudgeProviderFromConfig returns the provider used for metric grading,
// falling back to the default provider when none is configured.
func JudgeProviderFromConfig(cfg *config.Config) (Provider, error) {
	return providerFromConfig(cfg, func(c *config.Config) string {
		if strings.TrimSpace(c.LLM.JudgeProvider) != "" {
			return c.LLM.JudgeProvider
		}
		return c.LLM.DefaultProvider
	})
}

func providerFromConfig(cfg *config.Config, pick func(*config.Config) string) (Provider, error) {
	if cfg == nil {
		return nil, errors.New("llm: nil config")
	}
	reg, err := NewRegistryFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	name := CanonicalName(pick(cfg))
	if name == "" {
		name = "openai"
	}
	if p, ok := reg.Get(name); ok {
		return p, nil
	}

	available := reg.Names()
	if len(available) == 1 {
		p, _ := reg.Get(available[0])
		return p, nil
	}

	sort.Strings(available)
	return nil, fmt.Errorf("llm: provider %q not configured (available: %s)", name, strings.Join(available, ", "))
}
