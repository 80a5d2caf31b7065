package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scholarly/internal/config"
	"scholarly/internal/core"
	"scholarly/internal/cost"
	"scholarly/internal/observability"
	"scholarly/internal/persistence"
	"scholarly/internal/pipeline"
)

// NewDigestCmd creates the digest command group.
func NewDigestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Create and inspect digests",
		Long:  `Create digests from stored papers, check their status, and estimate costs.`,
	}

	cmd.AddCommand(NewDigestCreateCmd())
	cmd.AddCommand(NewDigestStatusCmd())
	cmd.AddCommand(NewDigestRegenerateCmd())
	cmd.AddCommand(NewDigestEstimateCmd())

	return cmd
}

// NewDigestCreateCmd creates the digest create command.
func NewDigestCreateCmd() *cobra.Command {
	var (
		name     string
		provider string
		model    string
		style    string
	)

	cmd := &cobra.Command{
		Use:   "create <paper-id>...",
		Short: "Create a digest and process it",
		Long: `Create a digest over the given papers and run the enrichment
pipeline to completion. Papers keep the order they are listed in.

Provider, model, and style fall back to the stored settings defaults
when not given.

Examples:
  # Digest two papers with the configured defaults
  scholarly digest create --name "This week in ML" 3f2a... 9c81...

  # Force a specific provider and style
  scholarly digest create --provider anthropic --style technical 3f2a...`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigestCreate(cmd.Context(), name, args, provider, model, style)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "digest name (default: Digest <date>)")
	cmd.Flags().StringVar(&provider, "provider", "", "AI provider: openai, anthropic, gemini, ollama, demo")
	cmd.Flags().StringVar(&model, "model", "", "model name for the provider")
	cmd.Flags().StringVar(&style, "style", "", "summary style: newsletter, technical, layperson")

	return cmd
}

func runDigestCreate(ctx context.Context, name string, paperIDs []string, provider, model, style string) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	events, err := observability.New(config.GetPostHog())
	if err != nil {
		return fmt.Errorf("failed to create analytics client: %w", err)
	}
	defer events.Close()

	if name == "" {
		name = "Digest " + time.Now().Format("2006-01-02")
	}

	runner := pipeline.NewRunner(store, nil, events)
	digest, err := runner.Create(ctx, name, paperIDs, provider, model, style)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return fmt.Errorf("one or more papers were not found: %w", err)
		}
		return err
	}

	fmt.Printf("Created digest %s with %d papers\n", digest.ID, len(digest.PaperIDs))
	fmt.Printf("Processing with %s (%s)...\n\n", digest.Provider, digest.Model)

	if err := runner.Process(ctx, digest.ID); err != nil {
		// The failure is already recorded on the digest.
		fmt.Fprintf(os.Stderr, "❌ Digest processing failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "💡 Fix the cause and run 'scholarly digest regenerate %s'\n", digest.ID)
		os.Exit(1)
	}

	return showDigest(ctx, store, digest.ID, "text")
}

// NewDigestStatusCmd creates the digest status command.
func NewDigestStatusCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "status <digest-id>",
		Short: "Show a digest and its papers",
		Long: `Show a digest's status, generated texts, and member papers.

Examples:
  # Human-readable view
  scholarly digest status 7d41...

  # Raw JSON, papers included
  scholarly digest status 7d41... --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			return showDigest(cmd.Context(), store, args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json)")

	return cmd
}

// NewDigestRegenerateCmd creates the digest regenerate command.
func NewDigestRegenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regenerate <digest-id>",
		Short: "Re-run the pipeline for a digest",
		Long: `Re-run the enrichment pipeline for an existing digest.

Already-enriched papers are kept as they are; only missing enrichment and
the digest-level texts are produced again. Useful after a failed run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigestRegenerate(cmd.Context(), args[0])
		},
	}

	return cmd
}

func runDigestRegenerate(ctx context.Context, digestID string) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	events, err := observability.New(config.GetPostHog())
	if err != nil {
		return fmt.Errorf("failed to create analytics client: %w", err)
	}
	defer events.Close()

	runner := pipeline.NewRunner(store, nil, events)
	digest, err := runner.Regenerate(ctx, digestID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return fmt.Errorf("digest %s not found", digestID)
		}
		return err
	}

	fmt.Printf("Regenerating digest %s with %s (%s)...\n\n", digest.ID, digest.Provider, digest.Model)

	if err := runner.Process(ctx, digest.ID); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Digest processing failed: %v\n", err)
		os.Exit(1)
	}

	return showDigest(ctx, store, digest.ID, "text")
}

// NewDigestEstimateCmd creates the digest estimate command.
func NewDigestEstimateCmd() *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "estimate <paper-id>...",
		Short: "Estimate the cost of a digest without running it",
		Long: `Estimate API costs for a digest over the given papers.

No digest is created and no provider is called. Papers that are already
enriched are counted at zero cost because the pipeline skips them.

Examples:
  # Estimate with the stored default model
  scholarly digest estimate 3f2a... 9c81...

  # Estimate for a specific model
  scholarly digest estimate --model gpt-4o 3f2a...`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigestEstimate(cmd.Context(), args, model)
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "model to price (default from settings)")

	return cmd
}

func runDigestEstimate(ctx context.Context, paperIDs []string, model string) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	papers := make([]core.Paper, 0, len(paperIDs))
	for _, id := range paperIDs {
		paper, err := store.Papers().Get(ctx, id)
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				return fmt.Errorf("paper %s not found", id)
			}
			return fmt.Errorf("failed to load paper %s: %w", id, err)
		}
		papers = append(papers, *paper)
	}

	if model == "" {
		settings, err := store.Settings().Get(ctx)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		model = settings.DefaultModel
	}

	estimate := cost.EstimateDigestCost(papers, model)
	fmt.Print(estimate.FormatEstimate())
	return nil
}

// showDigest prints a digest and its papers in the requested format.
func showDigest(ctx context.Context, store persistence.Store, digestID, format string) error {
	digest, err := store.Digests().Get(ctx, digestID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return fmt.Errorf("digest %s not found", digestID)
		}
		return fmt.Errorf("failed to load digest: %w", err)
	}

	papers := make([]core.Paper, 0, len(digest.PaperIDs))
	for _, paperID := range digest.PaperIDs {
		paper, err := store.Papers().Get(ctx, paperID)
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				continue
			}
			return fmt.Errorf("failed to load paper %s: %w", paperID, err)
		}
		papers = append(papers, *paper)
	}

	if strings.EqualFold(format, "json") {
		view := struct {
			core.Digest
			Papers []core.Paper `json:"papers"`
		}{Digest: *digest, Papers: papers}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(view)
	}

	displayDigestText(digest, papers)
	return nil
}

func displayDigestText(digest *core.Digest, papers []core.Paper) {
	fmt.Printf("\n📄 %s\n", digest.Name)
	fmt.Println(strings.Repeat("═", 72))
	fmt.Printf("ID:        %s\n", digest.ID)
	fmt.Printf("Status:    %s\n", statusLabel(digest.Status))
	fmt.Printf("Provider:  %s (%s)\n", digest.Provider, digest.Model)
	fmt.Printf("Style:     %s\n", digest.Style)
	fmt.Printf("Created:   %s\n", digest.CreatedAt.Format("2006-01-02 15:04"))
	if digest.ProcessedAt != nil {
		fmt.Printf("Processed: %s\n", digest.ProcessedAt.Format("2006-01-02 15:04"))
	}
	if digest.ErrorMessage != "" {
		fmt.Printf("Error:     %s\n", digest.ErrorMessage)
	}

	if digest.IntroText != "" {
		fmt.Println("\n📌 Introduction")
		fmt.Println(strings.Repeat("─", 72))
		fmt.Println(digest.IntroText)
	}

	fmt.Printf("\n📚 Papers (%d)\n", len(papers))
	fmt.Println(strings.Repeat("─", 72))
	for i, paper := range papers {
		score := "  — "
		if paper.CredibilityScore != nil {
			score = fmt.Sprintf("%4.1f", *paper.CredibilityScore)
		}
		fmt.Printf("%d. [%s] %s\n", i+1, score, paper.Title)
		if paper.Headline != "" {
			fmt.Printf("   %s\n", paper.Headline)
		}
	}

	if digest.Narrative != "" {
		fmt.Println("\n🔗 Connecting Narrative")
		fmt.Println(strings.Repeat("─", 72))
		fmt.Println(digest.Narrative)
	}

	if digest.Conclusion != "" {
		fmt.Println("\n🏁 Conclusion")
		fmt.Println(strings.Repeat("─", 72))
		fmt.Println(digest.Conclusion)
	}

	if digest.ImageRef != "" {
		fmt.Printf("\n🖼  Image: %s\n", digest.ImageRef)
	}
	fmt.Println()
}

func statusLabel(status core.DigestStatus) string {
	switch status {
	case core.DigestCompleted:
		return "✅ completed"
	case core.DigestFailed:
		return "❌ failed"
	case core.DigestProcessing:
		return "⏳ processing"
	default:
		return string(status)
	}
}
