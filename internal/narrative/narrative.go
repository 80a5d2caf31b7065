// Package narrative generates the connective text for a digest: a welcome
// introduction, a cross-paper narrative, and an action-oriented conclusion.
// Each is an independent completion with its own token budget.
package narrative

import (
	"context"
	"fmt"
	"strings"

	"scholarly/internal/core"
	"scholarly/internal/providers"
)

// The no-markdown instruction lives in the system prompt as well as the user
// prompt because models routinely ignore it when it appears only once.
const (
	introSystem      = "You are a science communicator. NEVER use markdown: no *, no **, no ##, no italics. Write in plain text paragraphs only."
	narrativeSystem  = "You are a science communicator. NEVER use markdown: no *, no **, no ##. Write in plain text paragraphs only."
	conclusionSystem = "You are a science communicator. NEVER use markdown symbols like ## or ** or *. Use plain text only. Follow the exact format in the prompt."

	defaultTopics = "various scientific fields"
	maxTopics     = 10
)

// Completer is the provider capability this package needs.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts providers.CompletionOptions) (string, error)
}

// Texts is the connective material for one digest.
type Texts struct {
	Intro      string
	Narrative  string
	Conclusion string
}

// Writer builds digest-level texts from already-summarized papers.
type Writer struct {
	completer Completer
}

// New returns a Writer backed by the given completer.
func New(completer Completer) *Writer {
	return &Writer{completer: completer}
}

// Generate produces the intro, connecting narrative, and conclusion for a
// digest. The three completions run in order; a provider failure aborts the
// digest run, so errors are returned rather than swallowed.
func (w *Writer) Generate(ctx context.Context, digestName string, papers []*core.Paper) (*Texts, error) {
	topics := topicsLine(papers)
	overview := papersContext(papers)

	intro, err := w.completer.Complete(ctx, introPrompt(digestName, len(papers), topics, overview), providers.CompletionOptions{
		SystemPrompt: introSystem,
		MaxTokens:    300,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate digest intro: %w", err)
	}

	narr, err := w.completer.Complete(ctx, narrativePrompt(len(papers), overview), providers.CompletionOptions{
		SystemPrompt: narrativeSystem,
		MaxTokens:    400,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate digest narrative: %w", err)
	}

	conclusion, err := w.completer.Complete(ctx, conclusionPrompt(len(papers), topics, overview), providers.CompletionOptions{
		SystemPrompt: conclusionSystem,
		MaxTokens:    500,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate digest conclusion: %w", err)
	}

	return &Texts{
		Intro:      strings.TrimSpace(intro),
		Narrative:  strings.TrimSpace(narr),
		Conclusion: strings.TrimSpace(conclusion),
	}, nil
}

func introPrompt(digestName string, paperCount int, topics, papersContext string) string {
	return fmt.Sprintf(`Write an introduction for a science digest newsletter called "%s".

The digest covers %d recent papers exploring: %s.

Papers included:
%s

FORMATTING RULES:
- Write 2 short paragraphs (3-4 sentences each)
- Use plain text only - NO markdown headers, NO bold, NO bullet points
- Start with a warm welcome that draws readers in
- Second paragraph previews the exciting findings ahead
- Keep it conversational and accessible
- End with anticipation for what's to come

The intro should feel like a friendly "Letter from the Editor" - warm, curious, and inviting.`,
		digestName, paperCount, topics, papersContext)
}

func narrativePrompt(paperCount int, papersContext string) string {
	return fmt.Sprintf(`Write a connecting narrative for a science newsletter with %d research papers.

Papers and their findings:
%s

FORMATTING RULES:
- Write 2-3 flowing paragraphs (total 200-300 words)
- Use plain text only - NO markdown headers, NO bold, NO bullet points, NO asterisks
- Each paragraph should flow naturally into the next
- Find the common threads and surprising connections between the papers
- Show how the findings complement or build upon each other
- Make it feel like a cohesive story, not a list

Write in an engaging, conversational style that weaves the research together.`,
		paperCount, papersContext)
}

func conclusionPrompt(paperCount int, topics, papersContext string) string {
	return fmt.Sprintf(`Write a conclusion for this science digest newsletter.

The newsletter covered %d papers on: %s

Key insights from the papers:
%s

Write EXACTLY in this format (no markdown, no asterisks, no ## headers):

THE BIG PICTURE

[1 paragraph synthesizing the main insights - what's the overarching lesson?]

Key Takeaways:
- [First essential insight from the research]
- [Second essential insight]
- [Third essential insight]

YOUR ACTION PLAN

This Week's Challenge:
[One specific, measurable action. Be concrete: "Write three things you're grateful for each morning"]

Quick Wins - Start Today:
- [First immediate action they can do now]
- [Second small habit tweak]
- [Third micro-experiment]

Your 30-Day Experiment:
[One habit to try this month. Specific: what to do, when, how to track.]

Discussion Starter:
[A thought-provoking question to discuss with others]

[End with 1-2 motivational sentences]

CRITICAL FORMATTING RULES:
- NO markdown: no ##, no **, no *, no bold markers
- Use plain text headers (just the words, no symbols)
- Use simple dashes (-) for bullets
- Keep it SHORT - this should fit in about 350 words total
- Be SPECIFIC with actions`,
		paperCount, topics, papersContext)
}

// topicsLine joins up to ten unique paper tags in first-seen order, falling
// back to a generic phrase when no paper carries tags.
func topicsLine(papers []*core.Paper) string {
	seen := make(map[string]bool)
	var topics []string
	for _, p := range papers {
		for _, tag := range p.Tags {
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			topics = append(topics, tag)
			if len(topics) == maxTopics {
				return strings.Join(topics, ", ")
			}
		}
	}
	if len(topics) == 0 {
		return defaultTopics
	}
	return strings.Join(topics, ", ")
}

// papersContext renders one context line per summarized paper. Papers that
// have not been through summarization yet are skipped.
func papersContext(papers []*core.Paper) string {
	var lines []string
	for _, p := range papers {
		if p.Headline == "" || p.Takeaway == "" {
			continue
		}
		insight := ""
		if len(p.KeyTakeaways) > 0 {
			insight = p.KeyTakeaways[0]
		}
		lines = append(lines, fmt.Sprintf("- %s: %s\n  Key Insight: %s", p.Headline, clip(p.Takeaway, 200), insight))
	}
	return strings.Join(lines, "\n")
}

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
