package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type GeminiProvider struct {
	apiKey string
	model  string

	client *genai.Client
}

func NewGeminiProvider(apiKey string, model string) *GeminiProvider {
	m := strings.TrimSpace(model)
	if m == "" {
		m = "gemini-2.5-flash"
	}
	return &GeminiProvider{
		apiKey: strings.TrimSpace(apiKey),
		model:  m,
	}
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

// WithClient injects a pre-built genai client, mainly for tests.
func (p *GeminiProvider) WithClient(client *genai.Client) *GeminiProvider {
	if p != nil {
		p.client = client
	}
	return p
}

func (p *GeminiProvider) ensureClient(ctx context.Context) (*genai.Client, error) {
	if p.client != nil {
		return p.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: gemini: new client: %w", err)
	}
	p.client = client
	return client, nil
}

func (p *GeminiProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	if p == nil {
		return nil, errors.New("llm: gemini: nil provider")
	}
	if ctx == nil {
		return nil, errors.New("llm: gemini: nil context")
	}
	if req == nil {
		return nil, errors.New("llm: gemini: nil request")
	}

	client, err := p.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		contents = append(contents, &genai.Content{
			Role:  normalizeGeminiRole(m.Role),
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	if len(contents) == 0 {
		return nil, errors.New("llm: gemini: empty messages")
	}

	cfg := &genai.GenerateContentConfig{}
	if system := strings.TrimSpace(req.System); system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		cfg.Temperature = &t
	}

	resp, err := client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("llm: gemini: generate content: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, errors.New("llm: gemini: no candidates")
	}

	cand := resp.Candidates[0]
	out := &Response{
		StopReason: string(cand.FinishReason),
	}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if part == nil || part.Text == "" {
				continue
			}
			out.Content = append(out.Content, ContentBlock{
				Type: "text",
				Text: part.Text,
			})
		}
	}
	return out, nil
}

func normalizeGeminiRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "ai", "assistant", "model":
		return "model"
	default:
		return "user"
	}
}
