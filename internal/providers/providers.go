// Package providers contains the AI provider implementations used for text
// completion and illustration generation, plus the factory that selects one
// by name at runtime.
package providers

import (
	"context"
	"errors"
)

// ErrImageUnsupported is returned by text-only providers when an image is
// requested. Callers can compose around it with WithImageFallback.
var ErrImageUnsupported = errors.New("provider does not support image generation")

// CompletionOptions controls a single text completion request.
type CompletionOptions struct {
	SystemPrompt string  // Optional system instruction
	MaxTokens    int32   // Maximum tokens to generate (0 = default 1000)
	Temperature  float32 // Sampling temperature (0 = default 0.7)
}

// withDefaults fills unset options with the shared defaults so every
// provider behaves the same when callers omit them.
func (o CompletionOptions) withDefaults() CompletionOptions {
	if o.MaxTokens <= 0 {
		o.MaxTokens = 1000
	}
	if o.Temperature <= 0 {
		o.Temperature = 0.7
	}
	return o
}

// Provider is the capability surface shared by all AI providers.
type Provider interface {
	// Name returns the provider identifier, e.g. "openai".
	Name() string

	// Complete generates a text completion for the given prompt.
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)

	// GenerateImage produces an illustration and returns a reference to it:
	// a local file path or a hosted URL. Text-only providers return
	// ErrImageUnsupported.
	GenerateImage(ctx context.Context, prompt string, size string, style string) (string, error)
}
