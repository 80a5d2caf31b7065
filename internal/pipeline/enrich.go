package pipeline

import (
	"context"
	"fmt"

	"scholarly/internal/core"
	"scholarly/internal/logger"
	"scholarly/internal/persistence"
)

// Enricher runs the per-paper enrichment steps. Each step is keyed on its
// output field and skipped when that field is already populated, so a rerun
// resumes where the previous attempt stopped instead of redoing paid work.
type Enricher struct {
	papers      persistence.Papers
	settings    persistence.Settings
	scorer      Scorer
	summarizer  Summarizer
	illustrator Illustrator
}

// NewEnricher creates an enricher over the given repositories and services.
func NewEnricher(papers persistence.Papers, settings persistence.Settings, scorer Scorer, summarizer Summarizer, illustrator Illustrator) *Enricher {
	return &Enricher{
		papers:      papers,
		settings:    settings,
		scorer:      scorer,
		summarizer:  summarizer,
		illustrator: illustrator,
	}
}

// Enrich scores, summarizes, and illustrates one paper, persisting after
// each step. Summary failures propagate and fail the digest; a failed
// illustration leaves the reference unset.
func (e *Enricher) Enrich(ctx context.Context, paper *core.Paper, style string) error {
	if paper.CredibilityScore == nil {
		if err := e.score(ctx, paper); err != nil {
			return err
		}
	}
	if paper.Headline == "" {
		if err := e.summarize(ctx, paper, style); err != nil {
			return err
		}
	}
	if paper.ImageRef == "" {
		if err := e.illustrate(ctx, paper); err != nil {
			return err
		}
	}
	return nil
}

// score runs the credibility engine with the stored weights, persists the
// result, then requests the AI note and persists again. The first write
// also carries any study attributes the engine extracted along the way.
func (e *Enricher) score(ctx context.Context, paper *core.Paper) error {
	settings, err := e.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load scoring weights: %w", err)
	}

	total, breakdown := e.scorer.Score(ctx, paper, settings.Weights)
	paper.CredibilityScore = &total
	paper.CredibilityBreakdown = breakdown
	if err := e.papers.Update(ctx, paper); err != nil {
		return fmt.Errorf("failed to persist credibility score for paper %s: %w", paper.ID, err)
	}
	logger.Debug("Scored paper", "paper_id", paper.ID, "score", total)

	paper.CredibilityNote = e.scorer.AINote(ctx, paper, total, breakdown)
	if err := e.papers.Update(ctx, paper); err != nil {
		return fmt.Errorf("failed to persist credibility note for paper %s: %w", paper.ID, err)
	}
	return nil
}

func (e *Enricher) summarize(ctx context.Context, paper *core.Paper, style string) error {
	summary, err := e.summarizer.Summarize(ctx, paper, style)
	if err != nil {
		return fmt.Errorf("failed to summarize paper %s: %w", paper.ID, err)
	}

	paper.Headline = summary.Headline
	paper.Takeaway = summary.Takeaway
	paper.WhyMatters = summary.WhyMatters
	paper.KeyTakeaways = summary.KeyTakeaways
	paper.Tags = summary.Tags
	if err := e.papers.Update(ctx, paper); err != nil {
		return fmt.Errorf("failed to persist summary for paper %s: %w", paper.ID, err)
	}
	logger.Debug("Summarized paper", "paper_id", paper.ID, "headline", summary.Headline)
	return nil
}

// illustrate persists a reference only when the illustrator produced one.
// An empty reference is not an error; the field stays unset so a later run
// can retry.
func (e *Enricher) illustrate(ctx context.Context, paper *core.Paper) error {
	ref := e.illustrator.Illustrate(ctx, paper)
	if ref == "" {
		return nil
	}
	paper.ImageRef = ref
	if err := e.papers.Update(ctx, paper); err != nil {
		return fmt.Errorf("failed to persist image for paper %s: %w", paper.ID, err)
	}
	return nil
}
