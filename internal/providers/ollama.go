package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OllamaConfig carries the settings for a local Ollama server.
type OllamaConfig struct {
	Host    string        // host:port or full URL, defaults to localhost:11434
	Model   string        // e.g. "llama3.2"
	Timeout time.Duration // Local models can be slow; defaults to 120s
}

// Ollama talks to a local Ollama server's generate endpoint. It is
// text-only; image requests return ErrImageUnsupported.
type Ollama struct {
	host       string
	model      string
	httpClient *http.Client
}

// NewOllama creates an Ollama provider.
func NewOllama(cfg OllamaConfig) *Ollama {
	host := strings.TrimSuffix(cfg.Host, "/")
	if host == "" {
		host = "localhost:11434"
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	model := cfg.Model
	if model == "" {
		model = "llama3.2"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &Ollama{
		host:       host,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns the provider identifier.
func (o *Ollama) Name() string { return "ollama" }

// ollamaOptions maps completion options onto Ollama model parameters.
type ollamaOptions struct {
	NumPredict  int32   `json:"num_predict"`
	Temperature float32 `json:"temperature"`
}

// ollamaRequest is the generate endpoint request body.
type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

// ollamaResponse is the non-streaming generate endpoint response body.
type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Complete sends a non-streaming generate request. The system prompt is
// folded into the prompt itself since not every local model handles a
// separate system field well.
func (o *Ollama) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	opts = opts.withDefaults()

	fullPrompt := prompt
	if opts.SystemPrompt != "" {
		fullPrompt = opts.SystemPrompt + "\n\n" + prompt
	}

	request := ollamaRequest{
		Model:  o.model,
		Prompt: fullPrompt,
		Stream: false,
		Options: ollamaOptions{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
		},
	}

	var response ollamaResponse
	err := doJSON(ctx, o.httpClient, jsonCall{
		provider: "ollama",
		method:   http.MethodPost,
		url:      o.host + "/api/generate",
		body:     request,
	}, &response)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(response.Response)
	if text == "" {
		return "", fmt.Errorf("ollama returned an empty response")
	}
	return text, nil
}

// GenerateImage is unsupported for Ollama.
func (o *Ollama) GenerateImage(ctx context.Context, prompt string, size string, style string) (string, error) {
	return "", ErrImageUnsupported
}
