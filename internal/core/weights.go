package core

// ScoringWeights holds the six credibility factor weights. The update path
// normalizes them so they always sum to 1.0 when persisted.
type ScoringWeights struct {
	JournalImpact    float64 `json:"journal_impact"`
	AuthorHIndex     float64 `json:"author_hindex"`
	SampleSize       float64 `json:"sample_size"`
	Methodology      float64 `json:"methodology"`
	PeerReview       float64 `json:"peer_review"`
	CitationVelocity float64 `json:"citation_velocity"`
}

// DefaultWeights returns the factory weight configuration.
func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		JournalImpact:    0.25,
		AuthorHIndex:     0.15,
		SampleSize:       0.20,
		Methodology:      0.20,
		PeerReview:       0.10,
		CitationVelocity: 0.10,
	}
}

// Sum returns the total of the six weights.
func (w ScoringWeights) Sum() float64 {
	return w.JournalImpact + w.AuthorHIndex + w.SampleSize +
		w.Methodology + w.PeerReview + w.CitationVelocity
}

// Normalized returns the weights scaled so they sum to 1.0. A non-positive
// total leaves the weights unchanged.
func (w ScoringWeights) Normalized() ScoringWeights {
	total := w.Sum()
	if total <= 0 {
		return w
	}
	return ScoringWeights{
		JournalImpact:    w.JournalImpact / total,
		AuthorHIndex:     w.AuthorHIndex / total,
		SampleSize:       w.SampleSize / total,
		Methodology:      w.Methodology / total,
		PeerReview:       w.PeerReview / total,
		CitationVelocity: w.CitationVelocity / total,
	}
}
