package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"scholarly/internal/core"
)

// Both backends share the same logical schema, so column order, argument
// building, and row scanning live here; the implementations differ only in
// placeholder style and column types.

// paperColumns is the canonical column order for every paper statement.
const paperColumns = `id, title, abstract, journal, source, doi, url, published,
	citations, impact_factor, is_preprint, is_peer_reviewed, authors,
	credibility_score, credibility_breakdown, credibility_note, sample_size,
	methodology, summary_headline, summary_takeaway, summary_why_matters,
	key_takeaways, tags, image_ref, created_at, updated_at`

// digestColumns is the canonical column order for every digest statement.
const digestColumns = `id, name, status, error_message, ai_provider, ai_model,
	summary_style, intro_text, connecting_narrative, conclusion_text,
	image_ref, created_at, processed_at`

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// paperArgs binds a paper to the paperColumns order.
func paperArgs(p *core.Paper) ([]any, error) {
	authors, err := jsonString(p.Authors)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal authors: %w", err)
	}
	breakdown, err := jsonString(p.CredibilityBreakdown)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credibility breakdown: %w", err)
	}
	takeaways, err := jsonString(p.KeyTakeaways)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key takeaways: %w", err)
	}
	tags, err := jsonString(p.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}

	return []any{
		p.ID, p.Title, p.Abstract, p.Journal, p.Source, p.DOI, p.URL,
		nullTime(p.Published), nullInt(p.Citations), nullFloat(p.ImpactFactor),
		p.IsPreprint, p.IsPeerReviewed, authors,
		nullFloat(p.CredibilityScore), breakdown, p.CredibilityNote,
		nullInt(p.SampleSize), nullString(p.Methodology),
		p.Headline, p.Takeaway, p.WhyMatters, takeaways, tags, p.ImageRef,
		p.CreatedAt, p.UpdatedAt,
	}, nil
}

// scanPaper reads one row in paperColumns order.
func scanPaper(row rowScanner) (*core.Paper, error) {
	var p core.Paper
	var published sql.NullTime
	var citations, sampleSize sql.NullInt64
	var impactFactor, score sql.NullFloat64
	var methodology sql.NullString
	var authorsJSON, breakdownJSON, takeawaysJSON, tagsJSON []byte

	err := row.Scan(
		&p.ID, &p.Title, &p.Abstract, &p.Journal, &p.Source, &p.DOI, &p.URL,
		&published, &citations, &impactFactor, &p.IsPreprint, &p.IsPeerReviewed, &authorsJSON,
		&score, &breakdownJSON, &p.CredibilityNote, &sampleSize, &methodology,
		&p.Headline, &p.Takeaway, &p.WhyMatters, &takeawaysJSON, &tagsJSON, &p.ImageRef,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if published.Valid {
		t := published.Time.UTC()
		p.Published = &t
	}
	if citations.Valid {
		n := int(citations.Int64)
		p.Citations = &n
	}
	if impactFactor.Valid {
		f := impactFactor.Float64
		p.ImpactFactor = &f
	}
	if score.Valid {
		s := score.Float64
		p.CredibilityScore = &s
	}
	if sampleSize.Valid {
		n := int(sampleSize.Int64)
		p.SampleSize = &n
	}
	if methodology.Valid && methodology.String != "" {
		m := methodology.String
		p.Methodology = &m
	}

	if err := unmarshalColumn(authorsJSON, &p.Authors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal authors: %w", err)
	}
	if err := unmarshalColumn(breakdownJSON, &p.CredibilityBreakdown); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credibility breakdown: %w", err)
	}
	if err := unmarshalColumn(takeawaysJSON, &p.KeyTakeaways); err != nil {
		return nil, fmt.Errorf("failed to unmarshal key takeaways: %w", err)
	}
	if err := unmarshalColumn(tagsJSON, &p.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()

	return &p, nil
}

// digestArgs binds a digest to the digestColumns order. Paper references
// are join rows, not a column.
func digestArgs(d *core.Digest) []any {
	return []any{
		d.ID, d.Name, string(d.Status), d.ErrorMessage, d.Provider, d.Model,
		d.Style, d.IntroText, d.Narrative, d.Conclusion,
		d.ImageRef, d.CreatedAt, nullTime(d.ProcessedAt),
	}
}

// scanDigest reads one row in digestColumns order. PaperIDs are loaded
// separately.
func scanDigest(row rowScanner) (*core.Digest, error) {
	var d core.Digest
	var status string
	var processedAt sql.NullTime

	err := row.Scan(
		&d.ID, &d.Name, &status, &d.ErrorMessage, &d.Provider, &d.Model,
		&d.Style, &d.IntroText, &d.Narrative, &d.Conclusion,
		&d.ImageRef, &d.CreatedAt, &processedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Status = core.DigestStatus(status)
	d.CreatedAt = d.CreatedAt.UTC()
	if processedAt.Valid {
		t := processedAt.Time.UTC()
		d.ProcessedAt = &t
	}
	return &d, nil
}

// scanSettings reads the singleton row: weights JSON plus defaults.
func scanSettings(row rowScanner) (*core.Settings, error) {
	var s core.Settings
	var weightsJSON []byte

	err := row.Scan(&weightsJSON, &s.DefaultProvider, &s.DefaultModel, &s.DefaultStyle, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := unmarshalColumn(weightsJSON, &s.Weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}

// defaultSettings is the lazily-created first settings row.
func defaultSettings() *core.Settings {
	return &core.Settings{
		Weights:         core.DefaultWeights(),
		DefaultProvider: "openai",
		DefaultModel:    "gpt-4o",
		DefaultStyle:    core.StyleNewsletter,
		UpdatedAt:       time.Now().UTC(),
	}
}

// jsonString marshals to a string so the value binds as TEXT on SQLite and
// coerces to JSONB on Postgres.
func jsonString(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalColumn(data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
