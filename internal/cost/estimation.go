// Package cost estimates AI spend for a digest run before it happens. The
// numbers are heuristics for a dry run, not a billing record: token counts
// come from character length, output sizes from typical response lengths.
package cost

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"scholarly/internal/core"
)

// Pricing represents the current pricing for one model
type Pricing struct {
	Model                 string
	InputCostPer1MTokens  float64 // Cost per 1M input tokens in USD
	OutputCostPer1MTokens float64 // Cost per 1M output tokens in USD
	ImageCost             float64 // Flat cost per generated illustration in USD
}

// PricingTable contains current model pricing as of 2025. Local and demo
// models cost nothing.
var PricingTable = map[string]Pricing{
	"gpt-4o": {
		Model:                 "gpt-4o",
		InputCostPer1MTokens:  2.50,
		OutputCostPer1MTokens: 10.00,
		ImageCost:             0.040,
	},
	"gpt-4o-mini": {
		Model:                 "gpt-4o-mini",
		InputCostPer1MTokens:  0.15,
		OutputCostPer1MTokens: 0.60,
		ImageCost:             0.040,
	},
	"claude-3-5-haiku-latest": {
		Model:                 "claude-3-5-haiku-latest",
		InputCostPer1MTokens:  0.80,
		OutputCostPer1MTokens: 4.00,
		ImageCost:             0.040, // Illustrations fall back to the image provider
	},
	"gemini-2.5-flash-preview-05-20": {
		Model:                 "gemini-2.5-flash-preview-05-20",
		InputCostPer1MTokens:  0.15,
		OutputCostPer1MTokens: 0.60,
		ImageCost:             0.040,
	},
	"llama3.2": {
		Model: "llama3.2", // Local via Ollama
	},
	"demo": {
		Model: "demo",
	},
}

// Typical request shapes for the three call types in a digest run.
const (
	promptOverheadTokens   = 150 // Instruction template around the paper text
	summaryOutputTokens    = 350 // Headline, takeaway, why-matters, three bullets, tags
	noteOutputTokens       = 120 // Two-sentence credibility note
	digestTextOutputTokens = 300 // One of intro / narrative / conclusion
	perPaperContextTokens  = 120 // Headline + takeaway fed into the digest text prompts
)

// EstimateTokenCount provides a rough estimation of token count for text.
// This is a simplified approximation: typically 1 token ≈ 0.75 words ≈ 4
// characters, with a little headroom for special tokens.
func EstimateTokenCount(text string) int {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\n", " ")

	charCount := utf8.RuneCountInString(text)

	return int(math.Ceil(float64(charCount) / 3.5))
}

// PaperCostEstimate represents the estimated spend for one paper's
// enrichment calls. An already-enriched paper costs nothing.
type PaperCostEstimate struct {
	PaperID      string
	Title        string
	Enriched     bool
	InputTokens  int
	OutputTokens int
	TextCost     float64 // Summary + credibility note calls
	ImageCost    float64
	TotalCost    float64
}

// DigestCostEstimate represents the total estimated spend for a digest run.
type DigestCostEstimate struct {
	Model             string
	Papers            []PaperCostEstimate
	DigestTextTokens  int     // Input tokens across the three cross-paper calls
	DigestTextCost    float64 // Intro + narrative + conclusion
	BatchImageCost    float64
	TotalInputTokens  int
	TotalOutputTokens int
	TotalInputCost    float64
	TotalOutputCost   float64
	TotalCost         float64
}

// EstimateDigestCost estimates the spend for running a digest over the given
// papers. Each paper that has not been enriched yet needs one summary call,
// one note call, and one illustration; papers that already carry a score and
// headline are skipped by the pipeline and cost nothing. Every run also
// regenerates the three digest texts and one batch illustration.
func EstimateDigestCost(papers []core.Paper, modelName string) *DigestCostEstimate {
	pricing, exists := PricingTable[modelName]
	if !exists {
		// Unknown models get the cheap-tier default rather than failing a
		// dry run.
		pricing = PricingTable["gpt-4o-mini"]
	}

	estimate := &DigestCostEstimate{
		Model:  modelName,
		Papers: make([]PaperCostEstimate, 0, len(papers)),
	}

	for _, paper := range papers {
		paperEst := estimatePaperCost(paper, pricing)
		estimate.Papers = append(estimate.Papers, paperEst)

		estimate.TotalInputTokens += paperEst.InputTokens
		estimate.TotalOutputTokens += paperEst.OutputTokens
		estimate.TotalInputCost += float64(paperEst.InputTokens) * pricing.InputCostPer1MTokens / 1_000_000
		estimate.TotalOutputCost += float64(paperEst.OutputTokens) * pricing.OutputCostPer1MTokens / 1_000_000
		estimate.TotalCost += paperEst.TotalCost
	}

	// The three digest texts each read every paper's summary context.
	contextTokens := len(papers)*perPaperContextTokens + promptOverheadTokens
	estimate.DigestTextTokens = 3 * contextTokens

	textInputCost := float64(estimate.DigestTextTokens) * pricing.InputCostPer1MTokens / 1_000_000
	textOutputCost := float64(3*digestTextOutputTokens) * pricing.OutputCostPer1MTokens / 1_000_000
	estimate.DigestTextCost = textInputCost + textOutputCost

	estimate.TotalInputTokens += estimate.DigestTextTokens
	estimate.TotalOutputTokens += 3 * digestTextOutputTokens
	estimate.TotalInputCost += textInputCost
	estimate.TotalOutputCost += textOutputCost

	estimate.BatchImageCost = pricing.ImageCost

	estimate.TotalCost += estimate.DigestTextCost + estimate.BatchImageCost

	return estimate
}

// estimatePaperCost estimates the spend for enriching a single paper.
func estimatePaperCost(paper core.Paper, pricing Pricing) PaperCostEstimate {
	est := PaperCostEstimate{
		PaperID:  paper.ID,
		Title:    paper.Title,
		Enriched: paper.Enriched(),
	}
	if est.Enriched {
		return est
	}

	// Summary and note both carry the title and abstract plus template.
	promptTokens := EstimateTokenCount(paper.Title+" "+paper.Abstract) + promptOverheadTokens

	est.InputTokens = 2 * promptTokens
	est.OutputTokens = summaryOutputTokens + noteOutputTokens
	est.TextCost = float64(est.InputTokens)*pricing.InputCostPer1MTokens/1_000_000 +
		float64(est.OutputTokens)*pricing.OutputCostPer1MTokens/1_000_000
	est.ImageCost = pricing.ImageCost
	est.TotalCost = est.TextCost + est.ImageCost

	return est
}

// FormatEstimate formats the cost estimate for display
func (e *DigestCostEstimate) FormatEstimate() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Cost Estimation for %s\n", e.Model))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	pending := 0
	for _, paper := range e.Papers {
		if !paper.Enriched {
			pending++
		}
	}

	sb.WriteString("📊 Summary:\n")
	sb.WriteString(fmt.Sprintf("   Papers in digest: %d (%d still to enrich)\n", len(e.Papers), pending))
	sb.WriteString(fmt.Sprintf("   Total estimated cost: $%.6f\n", e.TotalCost))
	sb.WriteString("\n")

	sb.WriteString("💰 Cost Breakdown:\n")
	sb.WriteString(fmt.Sprintf("   Input tokens: %d (~$%.6f)\n", e.TotalInputTokens, e.TotalInputCost))
	sb.WriteString(fmt.Sprintf("   Output tokens: %d (~$%.6f)\n", e.TotalOutputTokens, e.TotalOutputCost))
	sb.WriteString(fmt.Sprintf("   Digest texts: $%.6f\n", e.DigestTextCost))
	sb.WriteString(fmt.Sprintf("   Illustrations: $%.6f\n", e.BatchImageCost+paperImageTotal(e.Papers)))
	sb.WriteString("\n")

	if len(e.Papers) > 0 {
		sb.WriteString("📝 Per-Paper Estimates (showing first 5):\n")
		for i, paper := range e.Papers {
			if i >= 5 {
				sb.WriteString(fmt.Sprintf("   ... and %d more papers\n", len(e.Papers)-5))
				break
			}
			if paper.Enriched {
				sb.WriteString(fmt.Sprintf("   %d. already enriched - %s\n", i+1, paper.Title))
			} else {
				sb.WriteString(fmt.Sprintf("   %d. $%.6f - %s\n", i+1, paper.TotalCost, paper.Title))
			}
		}
	}

	return sb.String()
}

func paperImageTotal(papers []PaperCostEstimate) float64 {
	var total float64
	for _, paper := range papers {
		total += paper.ImageCost
	}
	return total
}
