package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/norvik-labs/promptctl/internal/claude"
)

type ClaudeProvider struct {
	client *claude.Client
}

func NewClaudeProvider(apiKey string, baseURL string, model string) *ClaudeProvider {
	opts := make([]claude.Option, 0, 2)
	if v := strings.TrimSpace(baseURL); v != "" {
		opts = append(opts, claude.WithBaseURL(v))
	}
	if v := strings.TrimSpace(model); v != "" {
		opts = append(opts, claude.WithModel(v))
	}
	return &ClaudeProvider{
		client: claude.NewClient(strings.TrimSpace(apiKey), opts...),
	}
}

func (p *ClaudeProvider) Name() string {
	return "claude"
}

func (p *ClaudeProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	if p == nil || p.client == nil {
		return nil, errors.New("llm: claude: nil client")
	}
	cReq, err := toClaudeRequest(req)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Complete(ctx, cReq)
	return fromClaudeResponse(resp), err
}

func toClaudeRequest(req *Request) (*claude.Request, error) {
	if req == nil {
		return nil, errors.New("llm: claude: nil request")
	}

	msgs := make([]claude.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, claude.Message{Role: m.Role, Content: m.Content})
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &claude.Request{
		Messages:    msgs,
		MaxTokens:   maxTokens,
		System:      req.System,
		Temperature: req.Temperature,
	}, nil
}

func fromClaudeResponse(resp *claude.Response) *Response {
	if resp == nil {
		return nil
	}

	out := &Response{
		StopReason: resp.StopReason,
		Usage: Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}
	for _, b := range resp.Content {
		if b.Type != "text" {
			continue
		}
		out.Content = append(out.Content, ContentBlock{Type: "text", Text: b.Text})
	}
	return out
}
