package pipeline

import (
	"context"

	"scholarly/internal/core"
	"scholarly/internal/narrative"
	"scholarly/internal/summarize"
)

// Scorer produces the deterministic credibility score and its AI note.
type Scorer interface {
	// Score computes the weighted credibility total and per-factor breakdown,
	// caching any newly extracted study attributes on the paper.
	Score(ctx context.Context, paper *core.Paper, weights core.ScoringWeights) (float64, map[string]core.FactorScore)

	// AINote writes a short assessment of a scored paper. It degrades to a
	// deterministic note instead of failing.
	AINote(ctx context.Context, paper *core.Paper, score float64, breakdown map[string]core.FactorScore) string
}

// Summarizer produces the structured reader-facing summary for one paper.
type Summarizer interface {
	Summarize(ctx context.Context, paper *core.Paper, style string) (*summarize.Summary, error)
}

// TextsWriter generates a digest's introduction, connecting narrative, and
// conclusion.
type TextsWriter interface {
	Generate(ctx context.Context, digestName string, papers []*core.Paper) (*narrative.Texts, error)
}

// Illustrator produces infographic references. Both methods are best effort
// and return an empty reference on failure.
type Illustrator interface {
	// Illustrate renders one paper's infographic.
	Illustrate(ctx context.Context, paper *core.Paper) string

	// IllustrateDigest renders the digest-level summary infographic.
	IllustrateDigest(ctx context.Context, digestName string, papers []*core.Paper) string
}

// Events receives processing lifecycle events. Optional.
type Events interface {
	Capture(event string, properties map[string]any)
}
