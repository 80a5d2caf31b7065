package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// AnthropicConfig carries the settings for the Anthropic client.
type AnthropicConfig struct {
	APIKey  string
	Model   string        // e.g. "claude-3-5-haiku-latest"
	BaseURL string        // Override for tests; defaults to the public API
	Version string        // anthropic-version header
	Timeout time.Duration // Per-request timeout
}

// Anthropic talks to the Anthropic messages API. It is text-only; image
// requests return ErrImageUnsupported.
type Anthropic struct {
	apiKey     string
	model      string
	baseURL    string
	version    string
	httpClient *http.Client
}

// NewAnthropic creates an Anthropic provider.
func NewAnthropic(cfg AnthropicConfig) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required (set ANTHROPIC_API_KEY)")
	}
	model := cfg.Model
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	version := cfg.Version
	if version == "" {
		version = "2023-06-01"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Anthropic{
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    baseURL,
		version:    version,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Name returns the provider identifier.
func (a *Anthropic) Name() string { return "anthropic" }

// anthropicMessage is one turn in a messages API conversation.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicRequest is the messages API request body.
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int32              `json:"max_tokens"`
	Temperature float32            `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

// anthropicContent is one content block in a messages API response.
type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// anthropicResponse is the messages API response body.
type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

// Complete sends a messages API request.
func (a *Anthropic) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	opts = opts.withDefaults()

	system := opts.SystemPrompt
	if system == "" {
		system = "You are a helpful scientific writing assistant."
	}

	request := anthropicRequest{
		Model:       a.model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		System:      system,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	}

	var response anthropicResponse
	err := doJSON(ctx, a.httpClient, jsonCall{
		provider: "anthropic",
		method:   http.MethodPost,
		url:      a.baseURL + "/v1/messages",
		header: map[string]string{
			"x-api-key":         a.apiKey,
			"anthropic-version": a.version,
		},
		body: request,
	}, &response)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("anthropic returned no text content")
	}
	return text, nil
}

// GenerateImage is unsupported for Anthropic.
func (a *Anthropic) GenerateImage(ctx context.Context, prompt string, size string, style string) (string, error) {
	return "", ErrImageUnsupported
}
