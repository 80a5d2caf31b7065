package providers

import (
	"context"
	"strings"
)

// demoImageURL is a stable stock image reference returned for every demo
// image request.
const demoImageURL = "https://images.unsplash.com/photo-1532094349884-543bc11b234d?auto=format&fit=crop&q=80&w=1000"

const demoSummary = `HEADLINE: Gene Therapy Breakthrough Offers New Hope for Genetic Disorders
TAKEAWAY: Researchers have developed a novel delivery vector that triples the efficiency of gene therapy. The method also produced markedly fewer immune reactions in early patient trials.
WHY_MATTERS: This advance removes a major hurdle in treating inherited disease, potentially making therapies safer and more widely accessible.
KEY_TAKEAWAY_1_LABEL: Higher Efficiency
KEY_TAKEAWAY_1_TEXT: The new vector delivers therapeutic genes three times more effectively than current standards.
KEY_TAKEAWAY_2_LABEL: Fewer Side Effects
KEY_TAKEAWAY_2_TEXT: Patients experienced significantly fewer immune reactions, a common complication in gene therapy.
KEY_TAKEAWAY_3_LABEL: Faster Treatment
KEY_TAKEAWAY_3_TEXT: Improved delivery speed could shorten the overall treatment course for patients.
TAGS: gene therapy, biotechnology, medicine`

const demoCredibilityNote = `This paper shows solid overall credibility, anchored by a strong methodology and a respectable sample size for its field. The main caution is its limited citation history, which is expected for recent work but leaves the findings less independently verified. Readers can treat the conclusions as promising while awaiting replication.`

const demoImagePrompt = `A renaissance notebook page showing a branching vine of ideas: a central emblem for the main finding, three labeled sketches for supporting evidence, numbered annotations tracing cause to effect, and small icons for everyday applications, all rendered in fine sepia linework on aged parchment.`

const demoIntro = `Welcome to this edition of your science digest. This week we gathered research that bridges biological discovery and technological invention, from the precision of gene editing to the promise of cleaner energy and smarter machines.

The thread running through these papers is adaptability: the capacity of systems, natural and engineered alike, to adjust and endure. We hope the findings ahead spark the same curiosity in you that they did in us.`

const demoNarrative = `The convergence of biology and technology is the standout theme in this collection. Work on gene delivery and vaccine platforms shows our growing command over the building blocks of life, while results in quantum computing and solar materials show how physics is being harnessed for computational and environmental problems.

These fields are not advancing in isolation. Machine learning is accelerating discovery in the lab, and lessons from living systems are informing more adaptive engineering. The boundary between the organic and the synthetic keeps getting thinner, and the most interesting results in this digest sit right on that line.

Taken together, the research points toward solutions that borrow efficiency from engineering and resilience from biology, a combination we will need for the challenges ahead.`

const demoConclusion = `THE BIG PICTURE

The papers in this digest share one lesson: precision tools, from gene vectors to quantum processors, are maturing fast enough to move from the lab into daily practice.

Key Takeaways:
- Precision medicine is advancing rapidly with new gene delivery tools.
- Machine learning is compressing discovery timelines across fields.
- Interdisciplinary approaches are producing the most durable results.

YOUR ACTION PLAN

This Week's Challenge:
Pick one paper from this digest and explain its key finding to a friend in two sentences.

Quick Wins - Start Today:
- Note one technology you used today that did not exist a decade ago.
- Read one abstract from a field outside your own.
- Write down a question this digest raised for you.

Your 30-Day Experiment:
Follow one research topic from this digest for a month. Save each related headline you encounter and review the collection at the end.

Discussion Starter:
Which of these findings would change your daily routine first, and why?

Stay curious. The best discoveries start with a question you almost did not ask.`

// Demo returns deterministic canned responses keyed on prompt content so the
// full pipeline can run offline without API keys. It answers the
// summarization, credibility, extraction, and digest text prompts, and
// serves a fixed stock image.
type Demo struct{}

// NewDemo creates a demo provider.
func NewDemo() *Demo { return &Demo{} }

// Name returns the provider identifier.
func (d *Demo) Name() string { return "demo" }

// Complete returns a canned response matched to the request.
func (d *Demo) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	switch {
	case strings.Contains(prompt, "Summarize this scientific paper"):
		return demoSummary, nil
	case strings.Contains(prompt, "scientific credibility analyst"):
		return demoCredibilityNote, nil
	case strings.Contains(prompt, "Extract the sample size"):
		return "250", nil
	case strings.Contains(prompt, "Classify this study's methodology"):
		return "rct", nil
	case strings.Contains(prompt, "image generation prompt"):
		return demoImagePrompt, nil
	case strings.Contains(prompt, "Write an introduction for a science digest newsletter"):
		return demoIntro, nil
	case strings.Contains(prompt, "Write a connecting narrative"):
		return demoNarrative, nil
	case strings.Contains(prompt, "Write a conclusion for this science digest"):
		return demoConclusion, nil
	}
	return "Demo response: AI processing complete.", nil
}

// GenerateImage returns a fixed stock image URL.
func (d *Demo) GenerateImage(ctx context.Context, prompt string, size string, style string) (string, error) {
	return demoImageURL, nil
}
