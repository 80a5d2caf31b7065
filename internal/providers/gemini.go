package providers

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini adapts the Google genai SDK to the Provider interface. It is
// text-only; image requests return ErrImageUnsupported.
type Gemini struct {
	model   string
	gClient *genai.Client
}

// NewGemini creates a Gemini provider backed by the genai SDK.
func NewGemini(apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required (set GEMINI_API_KEY)")
	}
	if model == "" {
		model = "gemini-2.5-flash-preview-05-20"
	}

	gClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{model: model, gClient: gClient}, nil
}

// Name returns the provider identifier.
func (g *Gemini) Name() string { return "gemini" }

// Complete generates content through the genai SDK.
func (g *Gemini) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	opts = opts.withDefaults()

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: opts.MaxTokens,
		Temperature:     genai.Ptr(opts.Temperature),
	}
	if opts.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: opts.SystemPrompt}},
		}
	}

	resp, err := g.gClient.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// GenerateImage is unsupported for Gemini.
func (g *Gemini) GenerateImage(ctx context.Context, prompt string, size string, style string) (string, error) {
	return "", ErrImageUnsupported
}
