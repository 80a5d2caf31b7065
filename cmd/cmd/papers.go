package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"scholarly/internal/ingest"
	"scholarly/internal/persistence"
)

// NewPapersCmd creates the papers command group.
func NewPapersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "papers",
		Short: "Manage stored papers",
	}

	cmd.AddCommand(NewPapersImportCmd())
	cmd.AddCommand(NewPapersListCmd())

	return cmd
}

// NewPapersImportCmd creates the papers import command.
func NewPapersImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import papers from a JSON file",
		Long: `Import paper metadata from a JSON file.

The file holds either a bare array of papers or an object with a "papers"
key, matching the POST /api/papers request body. Titles and abstracts are
cleaned of HTML and JATS markup during import.

Example:
  scholarly papers import papers.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPapersImport(cmd.Context(), args[0])
		},
	}

	return cmd
}

func runPapersImport(ctx context.Context, path string) error {
	incoming, err := ingest.ReadFile(path)
	if err != nil {
		return err
	}
	if len(incoming) == 0 {
		return fmt.Errorf("no papers found in %s", path)
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	imported := 0
	failed := 0
	for i, in := range incoming {
		paper, err := ingest.Normalize(in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Paper %d (%q): %v\n", i+1, in.Title, err)
			failed++
			continue
		}
		if err := store.Papers().Create(ctx, paper); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Paper %d (%q): %v\n", i+1, paper.Title, err)
			failed++
			continue
		}
		fmt.Printf("✅ %s (%s)\n", paper.Title, paper.ID)
		imported++
	}

	fmt.Printf("\nImported %d of %d papers", imported, len(incoming))
	if failed > 0 {
		fmt.Printf(" (%d failed)", failed)
	}
	fmt.Println()

	if imported == 0 {
		return fmt.Errorf("no papers were imported")
	}
	return nil
}

// NewPapersListCmd creates the papers list command.
func NewPapersListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored papers",
		Long: `List stored papers, newest first, with their credibility score
when enriched.

Example:
  scholarly papers list --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPapersList(cmd.Context(), limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 25, "maximum number of papers to list")

	return cmd
}

func runPapersList(ctx context.Context, limit int) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	papers, err := store.Papers().List(ctx, persistence.ListOptions{Limit: limit})
	if err != nil {
		return fmt.Errorf("failed to list papers: %w", err)
	}

	if len(papers) == 0 {
		fmt.Println("No papers stored yet.")
		fmt.Println("💡 Import some with 'scholarly papers import <file>' or 'scholarly seed'")
		return nil
	}

	fmt.Printf("\n📚 Papers (%d)\n", len(papers))
	fmt.Println(strings.Repeat("═", 72))
	for _, paper := range papers {
		score := "  — "
		if paper.CredibilityScore != nil {
			score = fmt.Sprintf("%4.1f", *paper.CredibilityScore)
		}
		kind := "peer-reviewed"
		if paper.IsPreprint {
			kind = "preprint"
		}
		fmt.Printf("[%s] %s\n", score, paper.Title)
		fmt.Printf("       %s · %s · %s\n", paper.ID, paper.Journal, kind)
	}
	fmt.Println()

	return nil
}
