// Package summarize turns a paper's metadata and abstract into the
// structured newsletter summary: headline, takeaway, why-it-matters, three
// labeled key takeaways, and topic tags.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"scholarly/internal/core"
	"scholarly/internal/providers"
)

// defaultKeyTakeaway pads summaries when the model returns fewer than three.
const defaultKeyTakeaway = "Use this knowledge to improve your understanding of the world."

// systemPrompt frames every summarization call.
const systemPrompt = `You are an expert science communicator who makes complex research accessible and applicable to daily life.
You write engaging, accurate summaries that capture the essence of scientific findings.
Focus on practical utility: how can this knowledge improve the reader's life, health, or understanding of the world?
Always maintain scientific accuracy while making content engaging for general audiences.`

// styleInstructions adapt the summary voice to the digest's audience.
var styleInstructions = map[string]string{
	core.StyleNewsletter: `Write in an engaging, accessible style suitable for a general science newsletter.
Use clear language that educated non-specialists can understand.
Focus on the "so what?" - why should readers care?
Highlight practical applications and actionable advice where possible.`,

	core.StyleTechnical: `Write in a precise, technical style for expert readers.
Include methodology details and statistical significance where relevant.
Assume familiarity with domain-specific terminology.`,

	core.StyleLayperson: `Write in simple, everyday language for general public.
Avoid all jargon - explain any technical terms.
Use analogies and relatable examples where possible.
Focus on practical implications for daily life and wellness.`,
}

// Summary is the structured output of one summarization call.
type Summary struct {
	Headline     string
	Takeaway     string
	WhyMatters   string
	KeyTakeaways []string // Three "**Label**: text" entries
	Tags         []string
}

// Completer is the provider capability needed for summarization.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts providers.CompletionOptions) (string, error)
}

// Summarizer generates structured paper summaries.
type Summarizer struct {
	completer Completer
}

// New creates a summarizer.
func New(completer Completer) *Summarizer {
	return &Summarizer{completer: completer}
}

// Summarize generates the structured summary for one paper. Provider errors
// propagate to the caller; a malformed response never does, it degrades to
// placeholder fields instead.
func (s *Summarizer) Summarize(ctx context.Context, paper *core.Paper, style string) (*Summary, error) {
	abstract := paper.Abstract
	if abstract == "" {
		abstract = "No abstract available."
	}
	journal := paper.Journal
	if journal == "" {
		journal = "Unknown"
	}
	preprintLine := ""
	if paper.IsPreprint {
		preprintLine = "(Preprint - not peer reviewed)"
	}

	prompt := fmt.Sprintf(`Summarize this scientific paper for a newsletter audience.

TITLE: %s

ABSTRACT: %s

JOURNAL: %s
AUTHORS: %s
%s

%s

Provide your response in this exact format:
HEADLINE: [A catchy, informative headline in 10-15 words]
TAKEAWAY: [2-3 sentences explaining the key finding and context]
WHY_MATTERS: [1-2 sentences on broader implications for science and society]
KEY_TAKEAWAY_1_LABEL: [Short catchy 2-5 word label for the first insight]
KEY_TAKEAWAY_1_TEXT: [First key insight - specific, actionable advice or fact the reader can apply to their life]
KEY_TAKEAWAY_2_LABEL: [Short catchy 2-5 word label for the second insight]
KEY_TAKEAWAY_2_TEXT: [Second key insight - specific, actionable advice or fact the reader can apply to their life]
KEY_TAKEAWAY_3_LABEL: [Short catchy 2-5 word label for the third insight]
KEY_TAKEAWAY_3_TEXT: [Third key insight - specific, actionable advice or fact the reader can apply to their life]
TAGS: [comma-separated list of 3-5 topic tags]`,
		paper.Title, abstract, journal, authorLine(paper.Authors), preprintLine,
		instructionsFor(style))

	response, err := s.completer.Complete(ctx, prompt, providers.CompletionOptions{
		SystemPrompt: systemPrompt,
		MaxTokens:    600,
		Temperature:  0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}

	return parseSummary(response), nil
}

// instructionsFor returns the style block, defaulting to newsletter for
// unrecognized styles.
func instructionsFor(style string) string {
	if instructions, ok := styleInstructions[style]; ok {
		return instructions
	}
	return styleInstructions[core.StyleNewsletter]
}

// authorLine joins up to five author names for the prompt.
func authorLine(authors []core.Author) string {
	if len(authors) == 0 {
		return "Unknown"
	}
	names := make([]string, 0, 5)
	for _, a := range authors {
		if len(names) == 5 {
			break
		}
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// parseSummary extracts the labeled fields from a model response, filling
// placeholders for anything missing so a summary is never empty.
func parseSummary(response string) *Summary {
	lines := strings.Split(strings.TrimSpace(response), "\n")

	var headline, takeaway, whyMatters string
	var keyTakeaways, tags []string
	pendingLabel := ""

	addTakeaway := func(text string) {
		if pendingLabel == "" || text == "" {
			return
		}
		keyTakeaways = append(keyTakeaways, fmt.Sprintf("**%s**: %s", pendingLabel, text))
		pendingLabel = ""
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "HEADLINE:"):
			headline = stripMarkdown(strings.TrimPrefix(line, "HEADLINE:"))
		case strings.HasPrefix(line, "TAKEAWAY:"):
			takeaway = stripMarkdown(strings.TrimPrefix(line, "TAKEAWAY:"))
		case strings.HasPrefix(line, "WHY_MATTERS:"):
			whyMatters = stripMarkdown(strings.TrimPrefix(line, "WHY_MATTERS:"))
		case strings.HasPrefix(line, "KEY_TAKEAWAY_1_LABEL:"):
			pendingLabel = stripMarkdown(strings.TrimPrefix(line, "KEY_TAKEAWAY_1_LABEL:"))
		case strings.HasPrefix(line, "KEY_TAKEAWAY_1_TEXT:"):
			addTakeaway(stripMarkdown(strings.TrimPrefix(line, "KEY_TAKEAWAY_1_TEXT:")))
		case strings.HasPrefix(line, "KEY_TAKEAWAY_2_LABEL:"):
			pendingLabel = stripMarkdown(strings.TrimPrefix(line, "KEY_TAKEAWAY_2_LABEL:"))
		case strings.HasPrefix(line, "KEY_TAKEAWAY_2_TEXT:"):
			addTakeaway(stripMarkdown(strings.TrimPrefix(line, "KEY_TAKEAWAY_2_TEXT:")))
		case strings.HasPrefix(line, "KEY_TAKEAWAY_3_LABEL:"):
			pendingLabel = stripMarkdown(strings.TrimPrefix(line, "KEY_TAKEAWAY_3_LABEL:"))
		case strings.HasPrefix(line, "KEY_TAKEAWAY_3_TEXT:"):
			addTakeaway(stripMarkdown(strings.TrimPrefix(line, "KEY_TAKEAWAY_3_TEXT:")))
		case strings.HasPrefix(line, "TAGS:"):
			for _, tag := range strings.Split(strings.TrimPrefix(line, "TAGS:"), ",") {
				if tag = stripMarkdown(tag); tag != "" {
					tags = append(tags, tag)
				}
			}
		}
	}

	// Older prompt revisions used unlabeled takeaway lines; accept them when
	// the labeled pairs are absent.
	if len(keyTakeaways) == 0 {
		for _, line := range lines {
			line = strings.TrimSpace(line)
			for _, prefix := range []string{"KEY_TAKEAWAY_1:", "KEY_TAKEAWAY_2:", "KEY_TAKEAWAY_3:"} {
				if strings.HasPrefix(line, prefix) {
					if text := stripMarkdown(strings.TrimPrefix(line, prefix)); text != "" {
						keyTakeaways = append(keyTakeaways, text)
					}
				}
			}
		}
	}

	for len(keyTakeaways) < 3 {
		keyTakeaways = append(keyTakeaways, defaultKeyTakeaway)
	}

	if headline == "" {
		headline = "Research Finding"
	}
	if takeaway == "" {
		takeaway = "Summary not available."
	}
	if whyMatters == "" {
		whyMatters = "Implications being assessed."
	}
	if len(tags) == 0 {
		tags = []string{"research"}
	}

	return &Summary{
		Headline:     headline,
		Takeaway:     takeaway,
		WhyMatters:   whyMatters,
		KeyTakeaways: keyTakeaways[:3],
		Tags:         tags,
	}
}
