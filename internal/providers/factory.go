package providers

import (
	"fmt"
	"strings"
	"time"

	"scholarly/internal/config"
)

// New builds a provider by name using the loaded configuration. A non-empty
// model overrides the configured default for that provider. Unknown names
// (including the empty string) are an error.
func New(name, model string) (Provider, error) {
	ai := config.GetAI()

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "openai":
		if model == "" {
			model = ai.OpenAI.Model
		}
		return NewOpenAI(OpenAIConfig{
			APIKey:     ai.OpenAI.APIKey,
			Model:      model,
			ImageModel: ai.OpenAI.ImageModel,
			BaseURL:    ai.OpenAI.BaseURL,
			Timeout:    parseTimeout(ai.OpenAI.Timeout, 60*time.Second),
			ImageDir:   config.GetImages().OutputDirectory,
		})
	case "anthropic":
		if model == "" {
			model = ai.Anthropic.Model
		}
		return NewAnthropic(AnthropicConfig{
			APIKey:  ai.Anthropic.APIKey,
			Model:   model,
			BaseURL: ai.Anthropic.BaseURL,
			Version: ai.Anthropic.Version,
			Timeout: parseTimeout(ai.Anthropic.Timeout, 60*time.Second),
		})
	case "gemini":
		if model == "" {
			model = ai.Gemini.Model
		}
		return NewGemini(ai.Gemini.APIKey, model)
	case "ollama":
		if model == "" {
			model = ai.Ollama.Model
		}
		return NewOllama(OllamaConfig{
			Host:    ai.Ollama.Host,
			Model:   model,
			Timeout: parseTimeout(ai.Ollama.Timeout, 120*time.Second),
		}), nil
	case "demo":
		return NewDemo(), nil
	}

	return nil, fmt.Errorf("unknown AI provider: %q", name)
}

// NewWithImageFallback builds the named text provider and, when it cannot
// generate images itself, composes it with the configured image provider.
func NewWithImageFallback(name, model string) (Provider, error) {
	primary, err := New(name, model)
	if err != nil {
		return nil, err
	}

	imageName := config.GetAI().ImageProvider
	if imageName == "" || imageName == primary.Name() {
		return primary, nil
	}
	imager, err := New(imageName, "")
	if err != nil {
		// A missing image key should not block text-only pipelines.
		return primary, nil
	}
	return WithImageFallback(primary, imager), nil
}

func parseTimeout(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
