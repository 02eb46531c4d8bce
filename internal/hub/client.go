package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/norvik-labs/promptctl/internal/prompt"
)

const (
	defaultBaseURL = "https://api.prompthub.io/v1"
	defaultTimeout = 30 * time.Second
)

// Client talks to the prompt registry over HTTP.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the registry base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if c == nil {
			return
		}
		baseURL = strings.TrimSpace(baseURL)
		if baseURL == "" {
			return
		}
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if c == nil || httpClient == nil {
			return
		}
		c.httpClient = httpClient
	}
}

// NewClient constructs a registry client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wirePrompt struct {
	Name        string        `json:"name"`
	Owner       string        `json:"owner,omitempty"`
	Description string        `json:"description,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	Messages    []wireMessage `json:"messages"`
}

// PushMeta carries registry metadata alongside a pushed template.
type PushMeta struct {
	Description string
	Tags        []string
}

// Pull fetches a named template ("owner/name") from the registry.
func (c *Client) Pull(ctx context.Context, name string) (*prompt.Template, error) {
	if c == nil {
		return nil, errors.New("hub: nil client")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("hub: empty prompt name")
	}

	var wire wirePrompt
	if err := c.doJSON(ctx, http.MethodGet, "/prompts/"+promptPath(name), nil, &wire); err != nil {
		return nil, fmt.Errorf("hub: pull %q: %w", name, err)
	}

	t := &prompt.Template{
		Name:        wire.Name,
		Owner:       wire.Owner,
		Description: wire.Description,
		Techniques:  wire.Tags,
	}
	t.Messages = make([]prompt.Message, 0, len(wire.Messages))
	for _, m := range wire.Messages {
		t.Messages = append(t.Messages, prompt.Message{
			Role:    prompt.ParseRole(m.Role),
			Content: m.Content,
		})
	}
	return t, nil
}

// Push publishes a template under the given name ("owner/name").
func (c *Client) Push(ctx context.Context, name string, t *prompt.Template, meta PushMeta) error {
	if c == nil {
		return errors.New("hub: nil client")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("hub: empty prompt name")
	}
	if t == nil || len(t.Messages) == 0 {
		return errors.New("hub: template has no messages")
	}

	wire := wirePrompt{
		Name:        shortName(name),
		Owner:       ownerOf(name),
		Description: strings.TrimSpace(meta.Description),
		Tags:        meta.Tags,
	}
	wire.Messages = make([]wireMessage, 0, len(t.Messages))
	for _, m := range t.Messages {
		wire.Messages = append(wire.Messages, wireMessage{
			Role:    m.Role.String(),
			Content: m.Content,
		})
	}

	if err := c.doJSON(ctx, http.MethodPut, "/prompts/"+promptPath(name), wire, nil); err != nil {
		return fmt.Errorf("hub: push %q: %w", name, err)
	}
	return nil
}

// Ping checks registry reachability and credentials.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("hub: nil client")
	}
	if err := c.doJSON(ctx, http.MethodGet, "/whoami", nil, nil); err != nil {
		return fmt.Errorf("hub: ping: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	if ctx == nil {
		return errors.New("nil context")
	}
	if c.httpClient == nil {
		return errors.New("nil http client")
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       raw,
		}
		var env struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(raw, &env) == nil {
			if env.Message != "" {
				apiErr.Message = env.Message
			} else {
				apiErr.Message = env.Error
			}
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func promptPath(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func ownerOf(name string) string {
	if idx := strings.Index(name, "/"); idx > 0 {
		return name[:idx]
	}
	return ""
}

func shortName(name string) string {
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
