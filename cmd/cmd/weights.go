package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scholarly/internal/core"
)

// NewWeightsCmd creates the weights command group.
func NewWeightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Inspect and tune credibility scoring weights",
		Long: `Inspect and tune the six credibility factor weights.

Weights are renormalized to sum to 1.0 on every update, so only their
relative sizes matter. Changing weights affects future enrichment only;
already-scored papers keep their scores until regenerated.`,
	}

	cmd.AddCommand(NewWeightsShowCmd())
	cmd.AddCommand(NewWeightsUpdateCmd())

	return cmd
}

// NewWeightsShowCmd creates the weights show command.
func NewWeightsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current scoring weights",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			settings, err := store.Settings().Get(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}

			displayWeights(settings.Weights)
			return nil
		},
	}

	return cmd
}

// NewWeightsUpdateCmd creates the weights update command.
func NewWeightsUpdateCmd() *cobra.Command {
	var (
		journalImpact    float64
		authorHIndex     float64
		sampleSize       float64
		methodology      float64
		peerReview       float64
		citationVelocity float64
		reset            bool
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update one or more scoring weights",
		Long: `Update scoring weights. Only the flags you pass change; the rest
keep their stored values. The result is renormalized to sum to 1.0.

Examples:
  # Double the influence of peer review
  scholarly weights update --peer-review 0.2

  # Back to the defaults
  scholarly weights update --reset`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWeightsUpdate(cmd.Context(), cmd, weightFlags{
				journalImpact:    journalImpact,
				authorHIndex:     authorHIndex,
				sampleSize:       sampleSize,
				methodology:      methodology,
				peerReview:       peerReview,
				citationVelocity: citationVelocity,
				reset:            reset,
			})
		},
	}

	cmd.Flags().Float64Var(&journalImpact, "journal-impact", 0, "weight for journal impact factor")
	cmd.Flags().Float64Var(&authorHIndex, "author-hindex", 0, "weight for author h-index")
	cmd.Flags().Float64Var(&sampleSize, "sample-size", 0, "weight for study sample size")
	cmd.Flags().Float64Var(&methodology, "methodology", 0, "weight for methodology quality")
	cmd.Flags().Float64Var(&peerReview, "peer-review", 0, "weight for peer review status")
	cmd.Flags().Float64Var(&citationVelocity, "citation-velocity", 0, "weight for citation velocity")
	cmd.Flags().BoolVar(&reset, "reset", false, "restore the default weights")

	return cmd
}

type weightFlags struct {
	journalImpact    float64
	authorHIndex     float64
	sampleSize       float64
	methodology      float64
	peerReview       float64
	citationVelocity float64
	reset            bool
}

func runWeightsUpdate(ctx context.Context, cmd *cobra.Command, flags weightFlags) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	var weights core.ScoringWeights
	if flags.reset {
		weights = core.DefaultWeights()
	} else {
		settings, err := store.Settings().Get(ctx)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		weights = settings.Weights

		changed := false
		set := func(name string, target *float64, value float64) {
			if cmd.Flags().Changed(name) {
				*target = value
				changed = true
			}
		}
		set("journal-impact", &weights.JournalImpact, flags.journalImpact)
		set("author-hindex", &weights.AuthorHIndex, flags.authorHIndex)
		set("sample-size", &weights.SampleSize, flags.sampleSize)
		set("methodology", &weights.Methodology, flags.methodology)
		set("peer-review", &weights.PeerReview, flags.peerReview)
		set("citation-velocity", &weights.CitationVelocity, flags.citationVelocity)

		if !changed {
			return fmt.Errorf("nothing to update; pass at least one weight flag or --reset")
		}
	}

	updated, err := store.Settings().UpdateWeights(ctx, weights)
	if err != nil {
		return fmt.Errorf("failed to update weights: %w", err)
	}

	fmt.Println("✅ Weights updated")
	displayWeights(updated.Weights)
	return nil
}

func displayWeights(weights core.ScoringWeights) {
	defaults := core.DefaultWeights()

	fmt.Println("\n⚖️  Credibility Scoring Weights")
	fmt.Println(strings.Repeat("═", 44))
	fmt.Printf("%-20s %8s %10s\n", "Factor", "Weight", "Default")
	fmt.Println(strings.Repeat("─", 44))
	fmt.Printf("%-20s %8.3f %10.3f\n", "Journal impact", weights.JournalImpact, defaults.JournalImpact)
	fmt.Printf("%-20s %8.3f %10.3f\n", "Author h-index", weights.AuthorHIndex, defaults.AuthorHIndex)
	fmt.Printf("%-20s %8.3f %10.3f\n", "Sample size", weights.SampleSize, defaults.SampleSize)
	fmt.Printf("%-20s %8.3f %10.3f\n", "Methodology", weights.Methodology, defaults.Methodology)
	fmt.Printf("%-20s %8.3f %10.3f\n", "Peer review", weights.PeerReview, defaults.PeerReview)
	fmt.Printf("%-20s %8.3f %10.3f\n", "Citation velocity", weights.CitationVelocity, defaults.CitationVelocity)
	fmt.Println(strings.Repeat("─", 44))
	fmt.Printf("%-20s %8.3f\n\n", "Sum", weights.Sum())
}
