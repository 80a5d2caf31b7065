package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OpenAIConfig carries the settings for the OpenAI client.
type OpenAIConfig struct {
	APIKey     string
	Model      string        // Chat model, e.g. "gpt-4o-mini"
	ImageModel string        // Image model, e.g. "gpt-image-1" or "dall-e-3"
	BaseURL    string        // Override for tests; defaults to the public API
	Timeout    time.Duration // Per-request timeout
	ImageDir   string        // Where generated images are written
}

// OpenAI talks to the OpenAI chat completions and images APIs.
type OpenAI struct {
	apiKey     string
	model      string
	imageModel string
	baseURL    string
	imageDir   string
	httpClient *http.Client
}

// NewOpenAI creates an OpenAI provider.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required (set OPENAI_API_KEY)")
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = "gpt-image-1"
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &OpenAI{
		apiKey:     cfg.APIKey,
		model:      model,
		imageModel: imageModel,
		baseURL:    baseURL,
		imageDir:   cfg.ImageDir,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Name returns the provider identifier.
func (o *OpenAI) Name() string { return "openai" }

// openAIChatMessage is one message in a chat completions conversation.
type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIChatRequest is the chat completions request body.
type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	MaxTokens   int32               `json:"max_tokens"`
	Temperature float32             `json:"temperature"`
}

// openAIChatChoice is one candidate completion.
type openAIChatChoice struct {
	Message openAIChatMessage `json:"message"`
}

// openAIChatResponse is the chat completions response body.
type openAIChatResponse struct {
	Choices []openAIChatChoice `json:"choices"`
}

// Complete sends a chat completion request.
func (o *OpenAI) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	opts = opts.withDefaults()

	messages := make([]openAIChatMessage, 0, 2)
	if opts.SystemPrompt != "" {
		messages = append(messages, openAIChatMessage{Role: "system", Content: opts.SystemPrompt})
	}
	messages = append(messages, openAIChatMessage{Role: "user", Content: prompt})

	request := openAIChatRequest{
		Model:       o.model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	var response openAIChatResponse
	err := doJSON(ctx, o.httpClient, jsonCall{
		provider: "openai",
		method:   http.MethodPost,
		url:      o.baseURL + "/chat/completions",
		header:   map[string]string{"Authorization": "Bearer " + o.apiKey},
		body:     request,
	}, &response)
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// openAIImageRequest is the images API request body.
type openAIImageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"` // Image size like "1024x1024"
	Style          string `json:"style,omitempty"`           // dall-e-3 only: "natural" or "vivid"
	ResponseFormat string `json:"response_format,omitempty"` // dall-e models only
}

// openAIImageResult is a single generated image.
type openAIImageResult struct {
	B64JSON string `json:"b64_json"`
	URL     string `json:"url,omitempty"`
}

// openAIImageResponse is the images API response body.
type openAIImageResponse struct {
	Created int64               `json:"created"`
	Data    []openAIImageResult `json:"data"`
}

// GenerateImage requests one image and returns a reference to it: a local
// file path for base64 payloads, or the hosted URL when the API returns one.
func (o *OpenAI) GenerateImage(ctx context.Context, prompt string, size string, style string) (string, error) {
	if size == "" {
		size = "1024x1024"
	}

	request := openAIImageRequest{
		Model:  o.imageModel,
		Prompt: prompt,
		N:      1,
		Size:   size,
	}
	// gpt-image-1 always returns base64 and rejects the style parameter;
	// dall-e models accept both.
	if strings.HasPrefix(o.imageModel, "dall-e") {
		request.Style = style
		request.ResponseFormat = "b64_json"
	}

	var response openAIImageResponse
	err := doJSON(ctx, o.httpClient, jsonCall{
		provider: "openai",
		method:   http.MethodPost,
		url:      o.baseURL + "/images/generations",
		header:   map[string]string{"Authorization": "Bearer " + o.apiKey},
		body:     request,
	}, &response)
	if err != nil {
		return "", err
	}
	if len(response.Data) == 0 {
		return "", fmt.Errorf("openai returned no image data")
	}

	result := response.Data[0]
	if result.URL != "" {
		return result.URL, nil
	}
	if result.B64JSON == "" {
		return "", fmt.Errorf("openai image response had neither url nor b64_json")
	}
	return o.saveImage(result.B64JSON)
}

// saveImage decodes a base64 payload into the image output directory and
// returns the written file path.
func (o *OpenAI) saveImage(base64Data string) (string, error) {
	imageData, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64 image: %w", err)
	}

	dir := o.imageDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, uuid.New().String()+".png")
	if err := os.WriteFile(path, imageData, 0644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return path, nil
}
