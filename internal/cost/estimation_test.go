package cost

import (
	"strings"
	"testing"

	"scholarly/internal/core"
)

func TestEstimateTokenCount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{
			name:     "empty string",
			input:    "",
			expected: 0,
		},
		{
			name:     "simple text",
			input:    "Hello world",
			expected: 4, // 11 chars / 3.5 ≈ 3.14, ceil = 4
		},
		{
			name:     "longer text",
			input:    "This is a longer piece of text that should result in more tokens.",
			expected: 19, // 66 chars / 3.5 ≈ 18.86, ceil = 19
		},
		{
			name:     "text with newlines",
			input:    "Line 1\nLine 2\nLine 3",
			expected: 6, // 20 chars (newlines replaced) / 3.5 ≈ 5.71, ceil = 6
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EstimateTokenCount(tt.input)
			if result != tt.expected {
				t.Errorf("EstimateTokenCount(%q) = %d, expected %d", tt.input, result, tt.expected)
			}
		})
	}
}

func enrichedPaper(id string) core.Paper {
	score := 72.5
	return core.Paper{
		ID:       id,
		Title:    "Enriched Paper",
		Abstract: "Already processed in a previous run.",

		CredibilityScore: &score,
		Headline:         "Already Summarized",
	}
}

func TestEstimateDigestCostCountsCalls(t *testing.T) {
	papers := []core.Paper{
		{ID: "paper-1", Title: "Fresh Paper", Abstract: strings.Repeat("word ", 100)},
		{ID: "paper-2", Title: "Another Fresh Paper", Abstract: strings.Repeat("word ", 100)},
	}

	estimate := EstimateDigestCost(papers, "gpt-4o")

	if len(estimate.Papers) != 2 {
		t.Fatalf("Papers = %d, want 2", len(estimate.Papers))
	}

	// Two text calls per paper: summary and note, both over title + abstract.
	promptTokens := EstimateTokenCount(papers[0].Title+" "+papers[0].Abstract) + promptOverheadTokens
	if got := estimate.Papers[0].InputTokens; got != 2*promptTokens {
		t.Errorf("InputTokens = %d, want %d", got, 2*promptTokens)
	}

	for _, paperEst := range estimate.Papers {
		if paperEst.Enriched {
			t.Errorf("paper %s marked enriched", paperEst.PaperID)
		}
		if paperEst.OutputTokens != summaryOutputTokens+noteOutputTokens {
			t.Errorf("paper %s OutputTokens = %d, want %d", paperEst.PaperID, paperEst.OutputTokens, summaryOutputTokens+noteOutputTokens)
		}
		if paperEst.ImageCost != PricingTable["gpt-4o"].ImageCost {
			t.Errorf("paper %s ImageCost = %v", paperEst.PaperID, paperEst.ImageCost)
		}
		if paperEst.TotalCost <= 0 {
			t.Errorf("paper %s TotalCost = %v, want > 0", paperEst.PaperID, paperEst.TotalCost)
		}
	}

	// Three digest texts always run.
	wantContext := 3 * (len(papers)*perPaperContextTokens + promptOverheadTokens)
	if estimate.DigestTextTokens != wantContext {
		t.Errorf("DigestTextTokens = %d, want %d", estimate.DigestTextTokens, wantContext)
	}
	if estimate.DigestTextCost <= 0 {
		t.Errorf("DigestTextCost = %v, want > 0", estimate.DigestTextCost)
	}
	if estimate.BatchImageCost != PricingTable["gpt-4o"].ImageCost {
		t.Errorf("BatchImageCost = %v", estimate.BatchImageCost)
	}

	wantTotal := estimate.Papers[0].TotalCost + estimate.Papers[1].TotalCost +
		estimate.DigestTextCost + estimate.BatchImageCost
	if diff := estimate.TotalCost - wantTotal; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("TotalCost = %v, want %v", estimate.TotalCost, wantTotal)
	}
}

func TestEstimateDigestCostSkipsEnrichedPapers(t *testing.T) {
	papers := []core.Paper{
		enrichedPaper("paper-1"),
		enrichedPaper("paper-2"),
	}

	estimate := EstimateDigestCost(papers, "gpt-4o")

	for _, paperEst := range estimate.Papers {
		if !paperEst.Enriched {
			t.Errorf("paper %s not marked enriched", paperEst.PaperID)
		}
		if paperEst.TotalCost != 0 || paperEst.InputTokens != 0 {
			t.Errorf("enriched paper %s has cost %v / %d tokens", paperEst.PaperID, paperEst.TotalCost, paperEst.InputTokens)
		}
	}

	// Only the digest texts and batch image remain.
	wantTotal := estimate.DigestTextCost + estimate.BatchImageCost
	if diff := estimate.TotalCost - wantTotal; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("TotalCost = %v, want texts+image %v", estimate.TotalCost, wantTotal)
	}
}

func TestEstimateDigestCostFreeModels(t *testing.T) {
	papers := []core.Paper{
		{ID: "paper-1", Title: "Offline Paper", Abstract: "Runs through the demo provider."},
	}

	for _, model := range []string{"demo", "llama3.2"} {
		t.Run(model, func(t *testing.T) {
			estimate := EstimateDigestCost(papers, model)
			if estimate.TotalCost != 0 {
				t.Errorf("TotalCost = %v, want 0", estimate.TotalCost)
			}
			if estimate.TotalInputTokens == 0 {
				t.Error("token counts should still be reported for free models")
			}
		})
	}
}

func TestEstimateDigestCostUnknownModel(t *testing.T) {
	papers := []core.Paper{
		{ID: "paper-1", Title: "Mystery Model Paper", Abstract: "Some abstract."},
	}

	estimate := EstimateDigestCost(papers, "model-nobody-heard-of")
	fallback := EstimateDigestCost(papers, "gpt-4o-mini")

	if estimate.TotalCost != fallback.TotalCost {
		t.Errorf("unknown model cost = %v, want gpt-4o-mini fallback %v", estimate.TotalCost, fallback.TotalCost)
	}
}

func TestFormatEstimate(t *testing.T) {
	papers := []core.Paper{
		{ID: "paper-1", Title: "Visible Paper", Abstract: "Abstract."},
		enrichedPaper("paper-2"),
	}

	output := EstimateDigestCost(papers, "gpt-4o").FormatEstimate()

	for _, want := range []string{
		"Cost Estimation for gpt-4o",
		"Papers in digest: 2 (1 still to enrich)",
		"Total estimated cost:",
		"Visible Paper",
		"already enriched",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("FormatEstimate() missing %q:\n%s", want, output)
		}
	}
}
