package core

import "time"

// DigestStatus tracks a digest through its processing lifecycle.
type DigestStatus string

const (
	DigestPending    DigestStatus = "pending"    // Created, not yet picked up by a worker
	DigestProcessing DigestStatus = "processing" // Enrichment in progress
	DigestCompleted  DigestStatus = "completed"  // All papers enriched and digest texts generated
	DigestFailed     DigestStatus = "failed"     // Aborted; ErrorMessage carries the cause
)

// Terminal reports whether the status is an end state that only a
// regenerate request can leave.
func (s DigestStatus) Terminal() bool {
	return s == DigestCompleted || s == DigestFailed
}

// Summary styles accepted by the summarizer.
const (
	StyleNewsletter = "newsletter"
	StyleTechnical  = "technical"
	StyleLayperson  = "layperson"
)

// Author is a paper author with an optional h-index.
type Author struct {
	Name   string `json:"name"`              // Display name
	HIndex *int   `json:"h_index,omitempty"` // nil when the source has no h-index data
}

// FactorScore is one factor's contribution to a credibility score.
type FactorScore struct {
	Score    float64 `json:"score"`    // Raw sub-score on the 0-100 scale
	Weight   float64 `json:"weight"`   // Weight in effect when the paper was scored
	Weighted float64 `json:"weighted"` // Score * Weight
	Detail   string  `json:"detail"`   // Human-readable explanation for display/audit
}

// Paper is a single research paper. Fetched attributes are immutable after
// ingest; enrichment fields start empty and are written exactly once by the
// pipeline. A populated enrichment field is never overwritten.
type Paper struct {
	ID             string     `json:"id"`               // Unique identifier
	Title          string     `json:"title"`            // Paper title
	Abstract       string     `json:"abstract"`         // Plain-text abstract
	Journal        string     `json:"journal"`          // Journal or venue name
	Source         string     `json:"source"`           // Origin feed (e.g., "pubmed", "arxiv")
	DOI            string     `json:"doi"`              // DOI if known
	URL            string     `json:"url"`              // Landing page URL
	Published      *time.Time `json:"published"`        // Publication date, nil when unknown
	Citations      *int       `json:"citations"`        // Citation count, nil when unknown
	ImpactFactor   *float64   `json:"impact_factor"`    // Journal impact factor, nil when unknown
	IsPreprint     bool       `json:"is_preprint"`      // True for preprint servers
	IsPeerReviewed bool       `json:"is_peer_reviewed"` // True when the venue peer-reviews
	Authors        []Author   `json:"authors"`          // Author list in byline order

	// Enrichment fields, owned by the pipeline.
	CredibilityScore     *float64               `json:"credibility_score"`     // Total 0-100, one decimal
	CredibilityBreakdown map[string]FactorScore `json:"credibility_breakdown"` // Factor name -> contribution
	CredibilityNote      string                 `json:"credibility_note"`      // Prose assessment
	SampleSize           *int                   `json:"sample_size"`           // Extracted study n, nil when unknown
	Methodology          *string                `json:"methodology"`           // Extracted study design category
	Headline             string                 `json:"summary_headline"`      // Summary headline
	Takeaway             string                 `json:"summary_takeaway"`      // Key finding in 2-3 sentences
	WhyMatters           string                 `json:"summary_why_matters"`   // Broader implications
	KeyTakeaways         []string               `json:"key_takeaways"`         // Three "**Label**: text" entries
	Tags                 []string               `json:"tags"`                  // Topic tags
	ImageRef             string                 `json:"image_ref"`             // Illustration path/URL, empty when none produced

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Enriched reports whether the scoring and summary steps have produced
// output. An empty ImageRef still counts as enriched, since an illustration
// request can legitimately yield nothing.
func (p *Paper) Enriched() bool {
	return p.CredibilityScore != nil && p.Headline != ""
}

// Digest is an ordered batch of papers plus the cross-paper material the
// pipeline generates for it. PaperIDs is fixed at creation.
type Digest struct {
	ID           string       `json:"id"`                      // Unique identifier
	Name         string       `json:"name"`                    // Display name
	Status       DigestStatus `json:"status"`                  // Lifecycle state
	ErrorMessage string       `json:"error_message,omitempty"` // Set when Status is failed
	Provider     string       `json:"ai_provider"`             // Provider used for enrichment
	Model        string       `json:"ai_model"`                // Model name, empty for provider default
	Style        string       `json:"summary_style"`           // One of the Style* constants
	IntroText    string       `json:"intro_text"`              // Generated introduction
	Narrative    string       `json:"connecting_narrative"`    // Generated cross-paper narrative
	Conclusion   string       `json:"conclusion_text"`         // Generated conclusion
	ImageRef     string       `json:"image_ref"`               // Batch illustration, empty when none produced
	PaperIDs     []string     `json:"paper_ids"`               // Paper IDs in reading order
	CreatedAt    time.Time    `json:"created_at"`
	ProcessedAt  *time.Time   `json:"processed_at"` // Set on transition to completed
}

// Settings is the application-wide singleton configuration record. It is
// created lazily with defaults on first read and mutated only through
// explicit updates.
type Settings struct {
	Weights         ScoringWeights `json:"credibility_weights"` // Always normalized to sum 1.0
	DefaultProvider string         `json:"default_provider"`    // Provider for digests that specify none
	DefaultModel    string         `json:"default_model"`       // Model for digests that specify none
	DefaultStyle    string         `json:"default_style"`       // Summary style for digests that specify none
	UpdatedAt       time.Time      `json:"updated_at"`
}
