// Package visual requests sketch-style illustrations for papers and
// digests. An AI completion crafts the image prompt from the paper's
// summary, a fixed art-style suffix is appended, and the image provider is
// asked to render it. Illustration is best effort: any failure degrades to
// an empty reference instead of an error, so a missing image never blocks
// enrichment.
package visual

import (
	"context"
	"fmt"
	"strings"

	"scholarly/internal/core"
	"scholarly/internal/logger"
	"scholarly/internal/providers"
)

const (
	imageSize  = "1024x1024"
	imageStyle = "natural"

	maxBatchTopics    = 8
	maxBatchHeadlines = 6

	paperStyleSuffix = ". Leonardo da Vinci style technical sketch, sepia ink on aged parchment, renaissance scientific illustration, detailed cross-hatching, anatomical precision, vintage scientific diagram with arrows and annotations, hand-drawn infographic elements, masterful linework, museum quality scientific art."

	digestStyleSuffix = ". Leonardo da Vinci style master diagram, sepia ink on aged parchment, renaissance scientific synthesis illustration, interconnected concept map, visual knowledge hierarchy, detailed cross-hatching, flowing connection lines and arrows, hand-drawn infographic summarizing multiple topics, anatomical precision applied to abstract concepts, museum quality scientific art, unified visual narrative."
)

// Provider is the slice of the AI surface illustration needs: a completion
// to craft the image prompt and the image call itself.
type Provider interface {
	Complete(ctx context.Context, prompt string, opts providers.CompletionOptions) (string, error)
	GenerateImage(ctx context.Context, prompt, size, style string) (string, error)
}

// Illustrator turns papers and digests into image references.
type Illustrator struct {
	provider Provider
}

// New returns an Illustrator backed by the given provider.
func New(provider Provider) *Illustrator {
	return &Illustrator{provider: provider}
}

// Illustrate requests an infographic for one paper and returns its
// reference, or an empty string when prompt crafting or rendering fails.
func (il *Illustrator) Illustrate(ctx context.Context, paper *core.Paper) string {
	prompt, err := il.craftPaperPrompt(ctx, paper)
	if err != nil {
		logger.Warn("illustration prompt crafting failed", "paper_id", paper.ID, "error", err)
		return ""
	}

	ref, err := il.provider.GenerateImage(ctx, prompt, imageSize, imageStyle)
	if err != nil {
		logger.Warn("illustration failed", "paper_id", paper.ID, "error", err)
		return ""
	}
	return ref
}

// IllustrateDigest requests one summary infographic covering every paper in
// the digest. Same failure contract as Illustrate.
func (il *Illustrator) IllustrateDigest(ctx context.Context, digestName string, papers []*core.Paper) string {
	prompt, err := il.craftDigestPrompt(ctx, digestName, papers)
	if err != nil {
		logger.Warn("digest infographic prompt crafting failed", "digest", digestName, "error", err)
		return ""
	}

	ref, err := il.provider.GenerateImage(ctx, prompt, imageSize, imageStyle)
	if err != nil {
		logger.Warn("digest infographic failed", "digest", digestName, "error", err)
		return ""
	}
	return ref
}

func (il *Illustrator) craftPaperPrompt(ctx context.Context, paper *core.Paper) (string, error) {
	research := fmt.Sprintf(`TITLE: %s

HEADLINE: %s

KEY FINDING: %s

ABSTRACT: %s`, paper.Title, paper.Headline, paper.Takeaway, clip(paper.Abstract, 400))

	prompt := fmt.Sprintf(`Create a vivid image generation prompt for an INFORMATIVE scientific infographic in Leonardo da Vinci's technical sketch style.

RESEARCH CONTEXT:
%s

The image must be EDUCATIONAL - a viewer should understand the key finding just by looking at it.

CONTENT REQUIREMENTS (most important):
- Central visual metaphor representing the main finding
- 3-4 labeled diagram elements showing key concepts (use elegant hand-lettering)
- Visual representation of the data/statistics (simple icons, comparisons, before/after)
- Arrows and flow lines showing cause-and-effect relationships
- Small numbered annotations (1, 2, 3) showing process steps or sequence
- Icons or symbols representing practical applications

STYLE REQUIREMENTS:
- Da Vinci renaissance sketch style: sepia/brown ink on aged parchment paper
- Hand-drawn technical illustration with cross-hatching and fine linework
- Anatomical precision applied to the scientific concepts
- Vintage scientific notebook aesthetic
- Labels should be in English and readable (not mirror-writing)

The illustration should teach the research finding visually, like Da Vinci explaining a discovery in his notebook.

Return ONLY the image prompt (200-250 words), describing specific visual elements that convey the research finding.`, research)

	response, err := il.provider.Complete(ctx, prompt, providers.CompletionOptions{
		MaxTokens:   300,
		Temperature: 0.8,
	})
	if err != nil {
		return "", err
	}
	imagePrompt := strings.TrimSpace(response)
	if imagePrompt == "" {
		return "", fmt.Errorf("empty image prompt for paper %s", paper.ID)
	}

	return imagePrompt + paperStyleSuffix, nil
}

func (il *Illustrator) craftDigestPrompt(ctx context.Context, digestName string, papers []*core.Paper) (string, error) {
	seen := make(map[string]bool)
	var topics, insights []string
	for _, p := range papers {
		if p.Headline != "" && len(insights) < maxBatchHeadlines {
			insights = append(insights, "- "+p.Headline)
		}
		for _, tag := range p.Tags {
			if tag == "" || seen[tag] || len(topics) == maxBatchTopics {
				continue
			}
			seen[tag] = true
			topics = append(topics, tag)
		}
	}

	prompt := fmt.Sprintf(`Create a vivid image generation prompt for an INFORMATIVE SUMMARY INFOGRAPHIC in Leonardo da Vinci's technical sketch style.

This infographic must TEACH the viewer about ALL key findings from a science digest newsletter.

DIGEST: "%s"
TOPICS COVERED: %s

KEY FINDINGS TO VISUALIZE:
%s

CONTENT REQUIREMENTS (most important):
- Central hub showing the unifying theme with a clear TITLE label
- Separate visual sections for EACH key finding (like chapters in a visual book)
- Each section has: icon/symbol + short text label + visual representation of the data
- Numbered list (1, 2, 3...) showing the key takeaways readers should remember
- Arrows connecting related concepts showing how findings reinforce each other
- "Action Items" section with icons representing practical applications
- Visual summary statistics or comparisons where relevant

STYLE REQUIREMENTS:
- Da Vinci renaissance master sketch: sepia/brown ink on aged parchment
- Hand-drawn infographic elements with elegant hand-lettered labels (readable English)
- Visual hierarchy: main theme large in center, supporting findings around it
- Cross-hatching shading and fine renaissance linework
- Icons and symbols should be clear and meaningful

A reader should be able to understand ALL the newsletter's main points just by studying this image for 30 seconds.

Return ONLY the image prompt (250-300 words), describing specific visual elements that summarize each finding.`,
		digestName, strings.Join(topics, ", "), strings.Join(insights, "\n"))

	response, err := il.provider.Complete(ctx, prompt, providers.CompletionOptions{
		MaxTokens:   400,
		Temperature: 0.8,
	})
	if err != nil {
		return "", err
	}
	imagePrompt := strings.TrimSpace(response)
	if imagePrompt == "" {
		return "", fmt.Errorf("empty infographic prompt for digest %q", digestName)
	}

	return imagePrompt + digestStyleSuffix, nil
}

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
