// Package ingest converts externally supplied paper records into core
// papers. Research APIs routinely leave markup in abstracts (JATS tags from
// Crossref, inline HTML from RSS feeds), so every abstract is normalized to
// plain text before it reaches storage or a prompt.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"scholarly/internal/core"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

// ErrMissingTitle is returned when an incoming paper has no usable title.
var ErrMissingTitle = errors.New("paper title is required")

// Incoming is one paper as supplied by an API client or an import file.
// Field names follow the upstream research-API conventions.
type Incoming struct {
	Title          string           `json:"title"`
	Abstract       string           `json:"abstract"`
	Journal        string           `json:"journal"`
	Source         string           `json:"source"`
	DOI            string           `json:"doi"`
	URL            string           `json:"url"`
	Published      *time.Time       `json:"published_date"`
	Citations      *int             `json:"citations"`
	ImpactFactor   *float64         `json:"impact_factor"`
	IsPreprint     bool             `json:"is_preprint"`
	IsPeerReviewed bool             `json:"is_peer_reviewed"`
	Authors        []IncomingAuthor `json:"authors"`
}

// IncomingAuthor mirrors core.Author for decode purposes.
type IncomingAuthor struct {
	Name   string `json:"name"`
	HIndex *int   `json:"h_index"`
}

// Normalize validates an incoming record and converts it into a core.Paper
// with a fresh ID. Abstracts and titles are stripped of markup, authors with
// empty names are dropped, and papers without a source are marked "manual".
func Normalize(in Incoming) (*core.Paper, error) {
	title := CleanText(in.Title)
	if title == "" {
		return nil, ErrMissingTitle
	}

	paper := &core.Paper{
		ID:             uuid.NewString(),
		Title:          title,
		Abstract:       CleanText(in.Abstract),
		Journal:        strings.TrimSpace(in.Journal),
		Source:         strings.TrimSpace(in.Source),
		DOI:            strings.TrimSpace(in.DOI),
		URL:            strings.TrimSpace(in.URL),
		Published:      in.Published,
		Citations:      in.Citations,
		ImpactFactor:   in.ImpactFactor,
		IsPreprint:     in.IsPreprint,
		IsPeerReviewed: in.IsPeerReviewed,
	}
	if paper.Source == "" {
		paper.Source = "manual"
	}

	for _, a := range in.Authors {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			continue
		}
		paper.Authors = append(paper.Authors, core.Author{Name: name, HIndex: a.HIndex})
	}

	return paper, nil
}

// CleanText strips HTML/XML markup from a text fragment and collapses runs
// of whitespace into single spaces. Plain text passes through with only the
// whitespace normalization; a literal "<" that does not open a tag (as in
// "p < 0.05") survives intact.
func CleanText(raw string) string {
	if raw == "" {
		return ""
	}

	if strings.ContainsAny(raw, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
		if err == nil {
			doc.Find("script, style").Remove()
			raw = doc.Text()
		}
	}

	return strings.Join(strings.Fields(raw), " ")
}

// ReadFile loads incoming papers from a JSON file. Both a bare array and the
// {"papers": [...]} envelope produced by the list endpoint are accepted, so
// an exported list can be re-imported as is.
func ReadFile(path string) ([]Incoming, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	var papers []Incoming
	if err := json.Unmarshal(data, &papers); err == nil {
		return papers, nil
	}

	var wrapped struct {
		Papers []Incoming `json:"papers"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse import file %s: %w", path, err)
	}
	return wrapped.Papers, nil
}
