package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Hub        HubConfig        `yaml:"hub"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Storage    StorageConfig    `yaml:"storage"`
}

type LLMConfig struct {
	DefaultProvider string                    `yaml:"default_provider,omitempty"`
	JudgeProvider   string                    `yaml:"judge_provider,omitempty"`
	Providers       map[string]ProviderConfig `yaml:"providers,omitempty"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

// HubConfig holds prompt registry access settings.
type HubConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"`
	Owner   string `yaml:"owner,omitempty"` // Default prompt owner for push
	Project string `yaml:"project,omitempty"`
}

type EvaluationConfig struct {
	MaxExamples int           `yaml:"max_examples,omitempty"`
	Concurrency int           `yaml:"concurrency,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
}

type StorageConfig struct {
	Type string `yaml:"type,omitempty"` // "sqlite" or "memory"
	Path string `yaml:"path,omitempty"` // SQLite file path
}

func Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}

	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	case os.IsNotExist(err) && path == DefaultPath:
		// Running without a config file is fine; env vars carry the keys.
	default:
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	if cfg.LLM.Providers == nil {
		cfg.LLM.Providers = make(map[string]ProviderConfig)
	}

	if v := strings.TrimSpace(os.Getenv("LLM_PROVIDER")); v != "" {
		cfg.LLM.DefaultProvider = v
	}
	if strings.TrimSpace(cfg.LLM.DefaultProvider) == "" {
		cfg.LLM.DefaultProvider = "openai"
	}
	if strings.TrimSpace(cfg.LLM.JudgeProvider) == "" {
		cfg.LLM.JudgeProvider = cfg.LLM.DefaultProvider
	}

	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		p := cfg.LLM.Providers["openai"]
		p.APIKey = v
		cfg.LLM.Providers["openai"] = p
	}
	if v := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")); v != "" {
		p := cfg.LLM.Providers["gemini"]
		p.APIKey = v
		cfg.LLM.Providers["gemini"] = p
	} else if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" {
		p := cfg.LLM.Providers["gemini"]
		p.APIKey = v
		cfg.LLM.Providers["gemini"] = p
	}
	if v := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); v != "" {
		p := cfg.LLM.Providers["claude"]
		p.APIKey = v
		cfg.LLM.Providers["claude"] = p
	}

	if v := strings.TrimSpace(os.Getenv("LLM_MODEL")); v != "" {
		name := normalizeProviderName(cfg.LLM.DefaultProvider)
		p := cfg.LLM.Providers[name]
		p.Model = v
		cfg.LLM.Providers[name] = p
	}

	if v := strings.TrimSpace(os.Getenv("PROMPTHUB_API_KEY")); v != "" {
		cfg.Hub.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("PROMPTHUB_BASE_URL")); v != "" {
		cfg.Hub.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("PROMPTHUB_PROJECT")); v != "" {
		cfg.Hub.Project = v
	}

	if cfg.Evaluation.MaxExamples <= 0 {
		cfg.Evaluation.MaxExamples = 10
	}

	return &cfg, nil
}

func normalizeProviderName(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "google", "gemini":
		return "gemini"
	case "anthropic", "claude":
		return "claude"
	case "openai", "":
		return "openai"
	default:
		return strings.ToLower(strings.TrimSpace(name))
	}
}

// Problem describes one missing configuration value and how to fix it.
type Problem struct {
	Key         string
	Remediation string
}

// CheckCredentials reports every credential the configured providers need
// but do not have. An empty result means the run may proceed.
func CheckCredentials(cfg *Config) []Problem {
	if cfg == nil {
		return []Problem{{Key: "config", Remediation: "load a configuration before checking credentials"}}
	}

	var problems []Problem

	if strings.TrimSpace(cfg.Hub.APIKey) == "" {
		problems = append(problems, Problem{
			Key:         "PROMPTHUB_API_KEY",
			Remediation: "set PROMPTHUB_API_KEY or hub.api_key in the config file",
		})
	}

	name := normalizeProviderName(cfg.LLM.DefaultProvider)
	switch name {
	case "openai":
		if strings.TrimSpace(cfg.LLM.Providers["openai"].APIKey) == "" {
			problems = append(problems, Problem{
				Key:         "OPENAI_API_KEY",
				Remediation: "set OPENAI_API_KEY or llm.providers.openai.api_key",
			})
		}
	case "gemini":
		if strings.TrimSpace(cfg.LLM.Providers["gemini"].APIKey) == "" {
			problems = append(problems, Problem{
				Key:         "GOOGLE_API_KEY",
				Remediation: "set GOOGLE_API_KEY (or GEMINI_API_KEY) or llm.providers.gemini.api_key",
			})
		}
	case "claude":
		if strings.TrimSpace(cfg.LLM.Providers["claude"].APIKey) == "" {
			problems = append(problems, Problem{
				Key:         "ANTHROPIC_API_KEY",
				Remediation: "set ANTHROPIC_API_KEY or llm.providers.claude.api_key",
			})
		}
	default:
		problems = append(problems, Problem{
			Key:         "LLM_PROVIDER",
			Remediation: fmt.Sprintf("unknown provider %q; expected openai, gemini, or claude", cfg.LLM.DefaultProvider),
		})
	}

	return problems
}
