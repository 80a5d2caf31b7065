// Package credibility scores papers on six weighted factors and produces the
// prose credibility note. Sub-scores live on a 0-100 scale; the weighted
// total is rounded to one decimal.
package credibility

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"scholarly/internal/core"
	"scholarly/internal/logger"
	"scholarly/internal/providers"
)

// TextCompleter is the slice of the provider surface the analyzer needs.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string, opts providers.CompletionOptions) (string, error)
}

// Analyzer computes credibility scores. The completer is used for one-time
// sample size and methodology extraction and for the AI note; every provider
// failure degrades to a neutral factor or the deterministic note, never to
// an error.
type Analyzer struct {
	completer TextCompleter
}

// NewAnalyzer creates an analyzer. A nil completer disables extraction and
// the AI note but scoring still works.
func NewAnalyzer(completer TextCompleter) *Analyzer {
	return &Analyzer{completer: completer}
}

var numberPattern = regexp.MustCompile(`\d+`)

// Score computes the weighted credibility total and per-factor breakdown.
// Missing sample size and methodology are extracted from the abstract first
// and written back onto the paper so they persist with the score.
func (a *Analyzer) Score(ctx context.Context, paper *core.Paper, weights core.ScoringWeights) (float64, map[string]core.FactorScore) {
	if paper.SampleSize == nil {
		paper.SampleSize = a.extractSampleSize(ctx, paper)
	}
	if paper.Methodology == nil {
		paper.Methodology = a.extractMethodology(ctx, paper)
	}

	breakdown := make(map[string]core.FactorScore, 6)
	record := func(key string, score, weight float64, detail string) {
		breakdown[key] = core.FactorScore{
			Score:    score,
			Weight:   weight,
			Weighted: score * weight,
			Detail:   detail,
		}
	}

	record(FactorJournalImpact, JournalImpactScore(paper.ImpactFactor),
		weights.JournalImpact, journalDetail(paper.ImpactFactor))
	record(FactorAuthorHIndex, AuthorHIndexScore(paper.Authors),
		weights.AuthorHIndex, authorDetail(paper.Authors))
	record(FactorSampleSize, SampleSizeScore(paper.SampleSize),
		weights.SampleSize, sampleDetail(paper.SampleSize))
	record(FactorMethodology, MethodologyScore(paper.Methodology),
		weights.Methodology, methodologyDetail(paper.Methodology))
	record(FactorPeerReview, PeerReviewScore(paper.IsPreprint, paper.IsPeerReviewed),
		weights.PeerReview, peerReviewDetail(paper.IsPeerReviewed))
	record(FactorCitationVelocity, CitationVelocityScore(paper.Citations, paper.Published, time.Now().UTC()),
		weights.CitationVelocity, citationDetail(paper.Citations))

	var total float64
	for _, factor := range breakdown {
		total += factor.Weighted
	}
	return math.Round(total*10) / 10, breakdown
}

// Note renders the deterministic credibility note for a total score.
func Note(score float64) string {
	var quality string
	switch {
	case score >= 90:
		quality = "Excellent credibility"
	case score >= 80:
		quality = "High credibility"
	case score >= 60:
		quality = "Moderate credibility"
	case score >= 40:
		quality = "Mixed credibility"
	default:
		quality = "Low credibility"
	}
	return fmt.Sprintf("%s (%.0f/100). Full AI assessment pending.", quality, score)
}

// AINote asks the provider for a short prose assessment, falling back to the
// deterministic Note on any failure.
func (a *Analyzer) AINote(ctx context.Context, paper *core.Paper, score float64, breakdown map[string]core.FactorScore) string {
	if a.completer == nil {
		return Note(score)
	}

	names := make([]string, 0, 3)
	for _, author := range paper.Authors {
		if len(names) == 3 {
			break
		}
		names = append(names, author.Name)
	}
	authorInfo := strings.Join(names, ", ")
	if authorInfo == "" {
		authorInfo = "Unknown authors"
	}

	journal := paper.Journal
	if journal == "" {
		journal = "Unknown"
	}

	preprint := "No (peer-reviewed)"
	if paper.IsPreprint {
		preprint = "Yes (not peer-reviewed)"
	}

	citations := "Unknown"
	if paper.Citations != nil {
		citations = strconv.Itoa(*paper.Citations)
	}

	prompt := fmt.Sprintf(`You are a scientific credibility analyst. Assess this paper's trustworthiness in 2-3 sentences.

PAPER: %s
JOURNAL: %s
AUTHORS: %s
PREPRINT: %s
CITATIONS: %s

CREDIBILITY SCORES (out of 100):
- Overall: %.0f/100
- Journal Impact: %.0f/100
- Author Experience: %.0f/100
- Sample Size: %.0f/100
- Methodology: %.0f/100
- Peer Review: %.0f/100
- Citation Velocity: %.0f/100

ABSTRACT (first 500 chars): %s

Write a brief, balanced assessment (2-3 sentences) that:
1. States the overall credibility level
2. Highlights the strongest factor supporting credibility
3. Notes the main limitation or area for caution
4. Keeps a professional, neutral tone

Do NOT use bullet points. Write as flowing prose.`,
		paper.Title, journal, authorInfo, preprint, citations,
		score,
		breakdown[FactorJournalImpact].Score,
		breakdown[FactorAuthorHIndex].Score,
		breakdown[FactorSampleSize].Score,
		breakdown[FactorMethodology].Score,
		breakdown[FactorPeerReview].Score,
		breakdown[FactorCitationVelocity].Score,
		truncate(paper.Abstract, 500))

	response, err := a.completer.Complete(ctx, prompt, providers.CompletionOptions{
		SystemPrompt: "You are a scientific credibility analyst providing balanced, professional assessments. Be specific and evidence-based.",
		MaxTokens:    150,
		Temperature:  0.5,
	})
	if err != nil {
		logger.Warn("AI credibility note failed, using fallback",
			"paper_id", paper.ID, "error", err.Error())
		return Note(score)
	}
	if note := strings.TrimSpace(response); note != "" {
		return note
	}
	return Note(score)
}

// extractSampleSize pulls the study n out of the abstract with a constrained
// completion. Any failure leaves the field unset so a later run can retry.
func (a *Analyzer) extractSampleSize(ctx context.Context, paper *core.Paper) *int {
	if a.completer == nil || paper.Abstract == "" {
		return nil
	}

	prompt := fmt.Sprintf(`Extract the sample size (number of participants, subjects, or data points) from this abstract.
Return ONLY a number, or "unknown" if not mentioned.

Abstract: %s`, truncate(paper.Abstract, 1500))

	response, err := a.completer.Complete(ctx, prompt, providers.CompletionOptions{MaxTokens: 20})
	if err != nil {
		logger.Debug("sample size extraction failed", "paper_id", paper.ID, "error", err.Error())
		return nil
	}

	match := numberPattern.FindString(response)
	if match == "" {
		return nil
	}
	n, err := strconv.Atoi(match)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// extractMethodology classifies the study design with a constrained
// completion, validating against the closed category list.
func (a *Analyzer) extractMethodology(ctx context.Context, paper *core.Paper) *string {
	if a.completer == nil || paper.Abstract == "" {
		return nil
	}

	prompt := fmt.Sprintf(`Classify this study's methodology. Choose ONE from:
- meta_analysis
- systematic_review
- rct (randomized controlled trial)
- cohort
- case_control
- cross_sectional
- case_report
- opinion
- unknown

Abstract: %s

Reply with ONLY the category name.`, truncate(paper.Abstract, 1500))

	response, err := a.completer.Complete(ctx, prompt, providers.CompletionOptions{MaxTokens: 20})
	if err != nil {
		logger.Debug("methodology classification failed", "paper_id", paper.ID, "error", err.Error())
		return nil
	}

	category := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(response)), " ", "_")
	for _, valid := range methodologyCategories {
		if category == valid {
			return &category
		}
	}
	return nil
}

func journalDetail(impactFactor *float64) string {
	if impactFactor == nil {
		return "Impact factor: Unknown"
	}
	return fmt.Sprintf("Impact factor: %g", *impactFactor)
}

func authorDetail(authors []core.Author) string {
	if len(authors) == 0 {
		return "No author information"
	}
	top := ""
	topH := 0
	found := false
	for _, a := range authors {
		if a.HIndex == nil {
			continue
		}
		if !found || *a.HIndex > topH {
			top = a.Name
			topH = *a.HIndex
			found = true
		}
	}
	if !found {
		return "Author h-indices not available"
	}
	return fmt.Sprintf("Top author h-index: %d (%s)", topH, top)
}

func sampleDetail(sampleSize *int) string {
	if sampleSize == nil {
		return "Sample size: Not assessed"
	}
	return fmt.Sprintf("Sample size: %d", *sampleSize)
}

func methodologyDetail(methodology *string) string {
	if methodology == nil {
		return "Study type: Not assessed"
	}
	return fmt.Sprintf("Study type: %s", *methodology)
}

func peerReviewDetail(isPeerReviewed bool) string {
	if isPeerReviewed {
		return "Peer-reviewed"
	}
	return "Preprint (not peer-reviewed)"
}

func citationDetail(citations *int) string {
	n := 0
	if citations != nil {
		n = *citations
	}
	return fmt.Sprintf("Citations: %d", n)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
