package credibility

import (
	"time"

	"scholarly/internal/core"
)

// Factor keys used in the stored credibility breakdown.
const (
	FactorJournalImpact    = "journal_impact"
	FactorAuthorHIndex     = "author_hindex"
	FactorSampleSize       = "sample_size"
	FactorMethodology      = "methodology"
	FactorPeerReview       = "peer_review"
	FactorCitationVelocity = "citation_velocity"
)

// neutralScore is used whenever a factor has no data to judge.
const neutralScore = 50.0

// methodologyScores ranks study designs by evidentiary strength.
var methodologyScores = map[string]float64{
	"meta_analysis":     95,
	"systematic_review": 90,
	"rct":               85,
	"cohort":            70,
	"case_control":      60,
	"cross_sectional":   50,
	"case_report":       30,
	"opinion":           20,
	"unknown":           50,
}

// methodologyCategories is the closed vocabulary accepted from the
// classification call. "unknown" is deliberately absent: a model answering
// unknown leaves the field unset so a later run can try again.
var methodologyCategories = []string{
	"meta_analysis",
	"systematic_review",
	"rct",
	"cohort",
	"case_control",
	"cross_sectional",
	"case_report",
	"opinion",
}

// JournalImpactScore maps a journal impact factor onto 0-100.
// Scale: 0-5 IF = 0-50, 5-20 IF = 50-80, 20+ IF = 80-100.
func JournalImpactScore(impactFactor *float64) float64 {
	if impactFactor == nil {
		return neutralScore
	}
	f := *impactFactor
	switch {
	case f < 5:
		return (f / 5) * 50
	case f < 20:
		return 50 + ((f-5)/15)*30
	default:
		return min100(80 + ((f-20)/30)*20)
	}
}

// AuthorHIndexScore maps the best author h-index onto 0-100.
// Scale: h-index 0-10 = 0-40, 10-30 = 40-70, 30-60 = 70-90, 60+ = 90-100.
func AuthorHIndexScore(authors []core.Author) float64 {
	maxH, ok := maxHIndex(authors)
	if !ok {
		return neutralScore
	}
	h := float64(maxH)
	switch {
	case h < 10:
		return (h / 10) * 40
	case h < 30:
		return 40 + ((h-10)/20)*30
	case h < 60:
		return 70 + ((h-30)/30)*20
	default:
		return min100(90 + ((h-60)/40)*10)
	}
}

// SampleSizeScore maps a study's n onto 0-100.
// Scale: n < 30 weak, 30-100 moderate, 100-1000 good, 1000+ excellent
// (capped at n = 10000).
func SampleSizeScore(sampleSize *int) float64 {
	if sampleSize == nil {
		return neutralScore
	}
	n := float64(*sampleSize)
	switch {
	case n < 30:
		return 20 + (n/30)*20
	case n < 100:
		return 40 + ((n-30)/70)*20
	case n < 1000:
		return 60 + ((n-100)/900)*25
	default:
		if n > 10000 {
			n = 10000
		}
		return min100(85 + (n-1000)/9000*15)
	}
}

// MethodologyScore looks up the study design's evidentiary rank. An unset or
// unrecognized category scores neutral.
func MethodologyScore(methodology *string) float64 {
	if methodology == nil {
		return neutralScore
	}
	if score, ok := methodologyScores[*methodology]; ok {
		return score
	}
	return neutralScore
}

// PeerReviewScore scores publication status. Preprints score low but not
// zero since they can still be valuable.
func PeerReviewScore(isPreprint, isPeerReviewed bool) float64 {
	if isPreprint {
		return 40.0
	}
	if isPeerReviewed {
		return 100.0
	}
	return neutralScore
}

// CitationVelocityScore maps citations per month since publication onto
// 0-100. Papers younger than a month count as one month old.
// Scale: 0-1/mo poor, 1-5 average, 5-20 good, 20+ excellent (capped at 100).
func CitationVelocityScore(citations *int, published *time.Time, now time.Time) float64 {
	if citations == nil || published == nil {
		return neutralScore
	}

	months := now.Sub(*published).Hours() / 24 / 30
	if months < 1 {
		months = 1
	}
	velocity := float64(*citations) / months

	switch {
	case velocity < 1:
		return 30 + velocity*20
	case velocity < 5:
		return 50 + ((velocity-1)/4)*20
	case velocity < 20:
		return 70 + ((velocity-5)/15)*20
	default:
		if velocity > 100 {
			velocity = 100
		}
		return min100(90 + (velocity-20)/80*10)
	}
}

// maxHIndex returns the largest h-index among the authors, reporting false
// when no author carries one.
func maxHIndex(authors []core.Author) (int, bool) {
	maxH := 0
	found := false
	for _, a := range authors {
		if a.HIndex == nil {
			continue
		}
		if !found || *a.HIndex > maxH {
			maxH = *a.HIndex
			found = true
		}
	}
	return maxH, found
}

func min100(v float64) float64 {
	if v > 100 {
		return 100
	}
	return v
}
