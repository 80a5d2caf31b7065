package pipeline

import (
	"scholarly/internal/credibility"
	"scholarly/internal/narrative"
	"scholarly/internal/providers"
	"scholarly/internal/summarize"
	"scholarly/internal/visual"
)

// Services bundles the AI-backed components for one digest run. They share
// a single provider built from the digest's provider and model fields.
type Services struct {
	Scorer      Scorer
	Summarizer  Summarizer
	Writer      TextsWriter
	Illustrator Illustrator
}

// ServiceFactory builds the Services for a provider and model pair.
type ServiceFactory func(providerName, model string) (*Services, error)

// DefaultServices wires the real components over the provider factory.
// Text-only providers fall back to the configured image provider for
// illustration.
func DefaultServices(providerName, model string) (*Services, error) {
	provider, err := providers.NewWithImageFallback(providerName, model)
	if err != nil {
		return nil, err
	}
	return &Services{
		Scorer:      credibility.NewAnalyzer(provider),
		Summarizer:  summarize.New(provider),
		Writer:      narrative.New(provider),
		Illustrator: visual.New(provider),
	}, nil
}
