// Package pipeline orchestrates digest processing: per-paper enrichment,
// the digest-level texts, and the summary illustration. Every intermediate
// result is persisted immediately, so an interrupted or failed run resumes
// from where it stopped when the digest is regenerated.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"scholarly/internal/core"
	"scholarly/internal/logger"
	"scholarly/internal/persistence"
)

// ErrDigestProcessing is returned when a regenerate is requested while the
// digest is still being processed.
var ErrDigestProcessing = errors.New("digest is already processing")

// ErrNoPapers is returned when a digest is created without any papers.
var ErrNoPapers = errors.New("digest requires at least one paper")

// Runner drives the digest lifecycle from creation through processing.
type Runner struct {
	store    persistence.Store
	services ServiceFactory
	events   Events
}

// NewRunner creates a runner. A nil factory uses the real AI services; a
// nil events sink disables event capture.
func NewRunner(store persistence.Store, services ServiceFactory, events Events) *Runner {
	if services == nil {
		services = DefaultServices
	}
	return &Runner{store: store, services: services, events: events}
}

// Create persists a new pending digest with ordered paper references.
// Empty provider, model, or style fall back to the stored defaults. Every
// referenced paper must exist.
func (r *Runner) Create(ctx context.Context, name string, paperIDs []string, providerName, model, style string) (*core.Digest, error) {
	if len(paperIDs) == 0 {
		return nil, ErrNoPapers
	}
	for _, id := range paperIDs {
		if _, err := r.store.Papers().Get(ctx, id); err != nil {
			return nil, err
		}
	}

	if providerName == "" || model == "" || style == "" {
		settings, err := r.store.Settings().Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load default settings: %w", err)
		}
		if providerName == "" {
			providerName = settings.DefaultProvider
		}
		if model == "" {
			model = settings.DefaultModel
		}
		if style == "" {
			style = settings.DefaultStyle
		}
	}

	digest := &core.Digest{
		ID:       uuid.NewString(),
		Name:     name,
		Status:   core.DigestPending,
		Provider: providerName,
		Model:    model,
		Style:    style,
		PaperIDs: paperIDs,
	}
	if err := r.store.Digests().Create(ctx, digest); err != nil {
		return nil, fmt.Errorf("failed to create digest: %w", err)
	}

	logger.Info("Created digest", "digest_id", digest.ID, "papers", len(paperIDs), "provider", providerName)
	r.capture("digest_created", map[string]any{
		"digest_id":   digest.ID,
		"paper_count": len(paperIDs),
		"provider":    providerName,
		"model":       model,
	})
	return digest, nil
}

// Process runs one digest to completion. It is the worker pool's job body:
// the digest is marked processing before any work, and ends either completed
// or failed with the error text recorded.
func (r *Runner) Process(ctx context.Context, digestID string) error {
	digest, err := r.store.Digests().Get(ctx, digestID)
	if err != nil {
		return err
	}
	if err := r.store.Digests().UpdateStatus(ctx, digestID, core.DigestProcessing, ""); err != nil {
		return fmt.Errorf("failed to mark digest processing: %w", err)
	}
	logger.Info("Processing digest", "digest_id", digestID, "papers", len(digest.PaperIDs))

	if err := r.run(ctx, digest); err != nil {
		logger.Error("Digest processing failed", err, "digest_id", digestID)
		if statusErr := r.store.Digests().UpdateStatus(ctx, digestID, core.DigestFailed, err.Error()); statusErr != nil {
			logger.Error("Failed to record digest failure", statusErr, "digest_id", digestID)
		}
		r.capture("digest_failed", map[string]any{"digest_id": digestID, "error": err.Error()})
		return err
	}

	if err := r.store.Digests().UpdateStatus(ctx, digestID, core.DigestCompleted, ""); err != nil {
		return fmt.Errorf("failed to mark digest completed: %w", err)
	}
	logger.Info("Digest completed", "digest_id", digestID)
	r.capture("digest_completed", map[string]any{"digest_id": digestID, "paper_count": len(digest.PaperIDs)})
	return nil
}

// run does the work between the processing and terminal status writes.
func (r *Runner) run(ctx context.Context, digest *core.Digest) error {
	services, err := r.services(digest.Provider, digest.Model)
	if err != nil {
		return fmt.Errorf("failed to build AI services: %w", err)
	}
	enricher := NewEnricher(r.store.Papers(), r.store.Settings(), services.Scorer, services.Summarizer, services.Illustrator)

	papers := make([]*core.Paper, 0, len(digest.PaperIDs))
	for _, id := range digest.PaperIDs {
		paper, err := r.store.Papers().Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load paper %s: %w", id, err)
		}
		enrichedBefore := paper.Enriched()
		if err := enricher.Enrich(ctx, paper, digest.Style); err != nil {
			return err
		}
		if !enrichedBefore {
			r.capture("paper_enriched", map[string]any{"paper_id": paper.ID, "digest_id": digest.ID})
		}
		papers = append(papers, paper)
	}

	texts, err := services.Writer.Generate(ctx, digest.Name, papers)
	if err != nil {
		return err
	}
	if err := r.store.Digests().UpdateTexts(ctx, digest.ID, texts.Intro, texts.Narrative, texts.Conclusion); err != nil {
		return fmt.Errorf("failed to persist digest texts: %w", err)
	}

	if ref := services.Illustrator.IllustrateDigest(ctx, digest.Name, papers); ref != "" {
		if err := r.store.Digests().SetImage(ctx, digest.ID, ref); err != nil {
			return fmt.Errorf("failed to persist digest image: %w", err)
		}
	}
	return nil
}

// Regenerate moves a failed or completed digest back to processing so it
// can be submitted again. Per-field idempotence in the enricher means only
// the missing work is redone.
func (r *Runner) Regenerate(ctx context.Context, digestID string) (*core.Digest, error) {
	digest, err := r.store.Digests().Get(ctx, digestID)
	if err != nil {
		return nil, err
	}
	if digest.Status == core.DigestProcessing {
		return nil, fmt.Errorf("digest %s: %w", digestID, ErrDigestProcessing)
	}
	if err := r.store.Digests().UpdateStatus(ctx, digestID, core.DigestProcessing, ""); err != nil {
		return nil, fmt.Errorf("failed to mark digest processing: %w", err)
	}

	digest.Status = core.DigestProcessing
	digest.ErrorMessage = ""
	digest.ProcessedAt = nil
	logger.Info("Digest queued for regeneration", "digest_id", digestID)
	return digest, nil
}

func (r *Runner) capture(event string, properties map[string]any) {
	if r.events == nil {
		return
	}
	r.events.Capture(event, properties)
}
