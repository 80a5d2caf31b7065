package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"scholarly/internal/core"
	"scholarly/internal/providers"
)

const structuredResponse = `HEADLINE: Gene Therapy Breakthrough Offers New Hope
TAKEAWAY: Researchers developed a delivery vector that triples efficiency. Immune reactions dropped sharply in trials.
WHY_MATTERS: Safer delivery could make genetic treatments accessible to far more patients.
KEY_TAKEAWAY_1_LABEL: Higher Efficiency
KEY_TAKEAWAY_1_TEXT: The new vector delivers genes three times more effectively.
KEY_TAKEAWAY_2_LABEL: Fewer Side Effects
KEY_TAKEAWAY_2_TEXT: Patients experienced significantly fewer immune reactions.
KEY_TAKEAWAY_3_LABEL: Faster Treatment
KEY_TAKEAWAY_3_TEXT: Improved delivery could shorten the treatment course.
TAGS: gene therapy, biotechnology, medicine`

// mockCompleter captures the last request and returns a scripted response.
type mockCompleter struct {
	response string
	err      error
	prompt   string
	opts     providers.CompletionOptions
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string, opts providers.CompletionOptions) (string, error) {
	m.prompt = prompt
	m.opts = opts
	return m.response, m.err
}

func intPtr(n int) *int { return &n }

func TestSummarizePromptAndOptions(t *testing.T) {
	completer := &mockCompleter{response: structuredResponse}
	summarizer := New(completer)

	paper := &core.Paper{
		ID:         "p1",
		Title:      "CRISPR delivery via lipid nanoparticles",
		Abstract:   "We tested a new vector in 250 patients.",
		Journal:    "Nature Biotech",
		IsPreprint: true,
		Authors: []core.Author{
			{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}, {Name: "E"}, {Name: "F", HIndex: intPtr(10)},
		},
	}

	if _, err := summarizer.Summarize(context.Background(), paper, core.StyleTechnical); err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}

	for _, want := range []string{
		"Summarize this scientific paper",
		"TITLE: CRISPR delivery via lipid nanoparticles",
		"ABSTRACT: We tested a new vector in 250 patients.",
		"JOURNAL: Nature Biotech",
		"AUTHORS: A, B, C, D, E",
		"(Preprint - not peer reviewed)",
		"precise, technical style",
		"HEADLINE:",
	} {
		if !strings.Contains(completer.prompt, want) {
			t.Errorf("prompt is missing %q", want)
		}
	}
	if strings.Contains(completer.prompt, "E, F") {
		t.Error("prompt should cap the author list at five names")
	}

	if completer.opts.MaxTokens != 600 {
		t.Errorf("MaxTokens = %d, want 600", completer.opts.MaxTokens)
	}
	if completer.opts.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", completer.opts.Temperature)
	}
	if !strings.Contains(completer.opts.SystemPrompt, "science communicator") {
		t.Error("system prompt should frame the science communicator role")
	}
}

func TestSummarizeParsesStructuredResponse(t *testing.T) {
	completer := &mockCompleter{response: structuredResponse}
	paper := &core.Paper{ID: "p1", Title: "T", Abstract: "A"}

	summary, err := New(completer).Summarize(context.Background(), paper, core.StyleNewsletter)
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}

	if summary.Headline != "Gene Therapy Breakthrough Offers New Hope" {
		t.Errorf("Headline = %q", summary.Headline)
	}
	if !strings.HasPrefix(summary.Takeaway, "Researchers developed") {
		t.Errorf("Takeaway = %q", summary.Takeaway)
	}
	if !strings.HasPrefix(summary.WhyMatters, "Safer delivery") {
		t.Errorf("WhyMatters = %q", summary.WhyMatters)
	}
	if len(summary.KeyTakeaways) != 3 {
		t.Fatalf("KeyTakeaways len = %d, want 3", len(summary.KeyTakeaways))
	}
	if summary.KeyTakeaways[0] != "**Higher Efficiency**: The new vector delivers genes three times more effectively." {
		t.Errorf("KeyTakeaways[0] = %q", summary.KeyTakeaways[0])
	}
	wantTags := []string{"gene therapy", "biotechnology", "medicine"}
	if len(summary.Tags) != len(wantTags) {
		t.Fatalf("Tags = %v", summary.Tags)
	}
	for i, tag := range wantTags {
		if summary.Tags[i] != tag {
			t.Errorf("Tags[%d] = %q, want %q", i, summary.Tags[i], tag)
		}
	}
}

func TestSummarizeProviderErrorPropagates(t *testing.T) {
	cause := errors.New("model overloaded")
	completer := &mockCompleter{err: cause}
	paper := &core.Paper{ID: "p1", Title: "T"}

	_, err := New(completer).Summarize(context.Background(), paper, core.StyleNewsletter)
	if err == nil {
		t.Fatal("expected the provider error to propagate")
	}
	if !errors.Is(err, cause) {
		t.Errorf("error chain lost the cause: %v", err)
	}
}

func TestSummarizeEmptyAbstractUsesPlaceholder(t *testing.T) {
	completer := &mockCompleter{response: structuredResponse}
	paper := &core.Paper{ID: "p1", Title: "T"}

	if _, err := New(completer).Summarize(context.Background(), paper, core.StyleNewsletter); err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if !strings.Contains(completer.prompt, "ABSTRACT: No abstract available.") {
		t.Error("prompt should carry the abstract placeholder")
	}
	if !strings.Contains(completer.prompt, "JOURNAL: Unknown") {
		t.Error("prompt should carry the journal placeholder")
	}
}

func TestParseSummaryDefaults(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "empty response", response: ""},
		{name: "free-form prose", response: "The model decided to chat instead of following the format."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := parseSummary(tt.response)

			if summary.Headline != "Research Finding" {
				t.Errorf("Headline = %q", summary.Headline)
			}
			if summary.Takeaway != "Summary not available." {
				t.Errorf("Takeaway = %q", summary.Takeaway)
			}
			if summary.WhyMatters != "Implications being assessed." {
				t.Errorf("WhyMatters = %q", summary.WhyMatters)
			}
			if len(summary.KeyTakeaways) != 3 {
				t.Fatalf("KeyTakeaways len = %d, want 3", len(summary.KeyTakeaways))
			}
			for _, kt := range summary.KeyTakeaways {
				if kt != defaultKeyTakeaway {
					t.Errorf("takeaway = %q, want the padding text", kt)
				}
			}
			if len(summary.Tags) != 1 || summary.Tags[0] != "research" {
				t.Errorf("Tags = %v, want [research]", summary.Tags)
			}
		})
	}
}

func TestParseSummaryLegacyTakeawayFormat(t *testing.T) {
	response := `HEADLINE: A finding
KEY_TAKEAWAY_1: First insight
KEY_TAKEAWAY_2: Second insight`

	summary := parseSummary(response)

	if summary.KeyTakeaways[0] != "First insight" {
		t.Errorf("KeyTakeaways[0] = %q", summary.KeyTakeaways[0])
	}
	if summary.KeyTakeaways[1] != "Second insight" {
		t.Errorf("KeyTakeaways[1] = %q", summary.KeyTakeaways[1])
	}
	if summary.KeyTakeaways[2] != defaultKeyTakeaway {
		t.Errorf("KeyTakeaways[2] = %q, want padding", summary.KeyTakeaways[2])
	}
}

func TestParseSummaryDropsTextWithoutLabel(t *testing.T) {
	response := `HEADLINE: A finding
KEY_TAKEAWAY_1_TEXT: Orphaned text with no label
KEY_TAKEAWAY_2_LABEL: Paired
KEY_TAKEAWAY_2_TEXT: This one counts`

	summary := parseSummary(response)

	if summary.KeyTakeaways[0] != "**Paired**: This one counts" {
		t.Errorf("KeyTakeaways[0] = %q", summary.KeyTakeaways[0])
	}
	if summary.KeyTakeaways[1] != defaultKeyTakeaway {
		t.Errorf("KeyTakeaways[1] = %q, want padding", summary.KeyTakeaways[1])
	}
}

func TestParseSummaryStripsModelMarkdown(t *testing.T) {
	response := `HEADLINE: **Bold** and _quiet_ findings
TAKEAWAY: See [the paper](https://example.com) for details.
WHY_MATTERS: ## It matters
KEY_TAKEAWAY_1_LABEL: **Wrapped Label**
KEY_TAKEAWAY_1_TEXT: Plain advice.
TAGS: **gene therapy**, medicine`

	summary := parseSummary(response)

	if summary.Headline != "Bold and quiet findings" {
		t.Errorf("Headline = %q", summary.Headline)
	}
	if summary.Takeaway != "See the paper for details." {
		t.Errorf("Takeaway = %q", summary.Takeaway)
	}
	if summary.WhyMatters != "It matters" {
		t.Errorf("WhyMatters = %q", summary.WhyMatters)
	}
	if summary.KeyTakeaways[0] != "**Wrapped Label**: Plain advice." {
		t.Errorf("KeyTakeaways[0] = %q, label should be stripped before wrapping", summary.KeyTakeaways[0])
	}
	if summary.Tags[0] != "gene therapy" {
		t.Errorf("Tags[0] = %q", summary.Tags[0])
	}
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain text untouched", input: "no markup here", want: "no markup here"},
		{name: "bold", input: "a **bold** claim", want: "a bold claim"},
		{name: "emphasis", input: "an *emphasized* word", want: "an emphasized word"},
		{name: "heading", input: "# Title line", want: "Title line"},
		{name: "inline code", input: "run `go test` now", want: "run go test now"},
		{name: "link keeps text", input: "[click here](https://example.com)", want: "click here"},
		{name: "bullet list", input: "* one\n* two", want: "one two"},
		{name: "whitespace collapsed", input: "**a**\n\n\nb", want: "a b"},
		{name: "empty", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripMarkdown(tt.input); got != tt.want {
				t.Errorf("stripMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestInstructionsForUnknownStyle(t *testing.T) {
	if got := instructionsFor("haiku"); got != styleInstructions[core.StyleNewsletter] {
		t.Error("unknown styles should fall back to the newsletter instructions")
	}
	if got := instructionsFor(core.StyleLayperson); !strings.Contains(got, "everyday language") {
		t.Errorf("layperson instructions = %q", got)
	}
}
