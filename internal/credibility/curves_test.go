package credibility

import (
	"math"
	"testing"
	"time"

	"scholarly/internal/core"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(n int) *int           { return &n }
func strPtr(s string) *string     { return &s }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestJournalImpactScore(t *testing.T) {
	tests := []struct {
		name   string
		impact *float64
		want   float64
	}{
		{name: "unknown is neutral", impact: nil, want: 50},
		{name: "zero", impact: floatPtr(0), want: 0},
		{name: "low band midpoint", impact: floatPtr(2.5), want: 25},
		{name: "first breakpoint", impact: floatPtr(5), want: 50},
		{name: "middle band", impact: floatPtr(10), want: 60},
		{name: "second breakpoint", impact: floatPtr(20), want: 80},
		{name: "top band", impact: floatPtr(35), want: 90},
		{name: "top of scale", impact: floatPtr(50), want: 100},
		{name: "capped at 100", impact: floatPtr(200), want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JournalImpactScore(tt.impact); !almostEqual(got, tt.want) {
				t.Errorf("JournalImpactScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJournalImpactScoreMonotonic(t *testing.T) {
	prev := -1.0
	for f := 0.0; f <= 60; f += 0.5 {
		got := JournalImpactScore(&f)
		if got < prev {
			t.Fatalf("score decreased at impact factor %v: %v < %v", f, got, prev)
		}
		prev = got
	}
}

func TestAuthorHIndexScore(t *testing.T) {
	tests := []struct {
		name    string
		authors []core.Author
		want    float64
	}{
		{name: "no authors is neutral", authors: nil, want: 50},
		{
			name:    "authors without h-index are neutral",
			authors: []core.Author{{Name: "A. Researcher"}},
			want:    50,
		},
		{
			name:    "low h-index",
			authors: []core.Author{{Name: "A", HIndex: intPtr(5)}},
			want:    20,
		},
		{
			name:    "first breakpoint",
			authors: []core.Author{{Name: "A", HIndex: intPtr(10)}},
			want:    40,
		},
		{
			name:    "mid band",
			authors: []core.Author{{Name: "A", HIndex: intPtr(20)}},
			want:    55,
		},
		{
			name:    "established researcher",
			authors: []core.Author{{Name: "A", HIndex: intPtr(40)}},
			want:    70 + (10.0/30)*20,
		},
		{
			name:    "third breakpoint",
			authors: []core.Author{{Name: "A", HIndex: intPtr(60)}},
			want:    90,
		},
		{
			name:    "capped at 100",
			authors: []core.Author{{Name: "A", HIndex: intPtr(120)}},
			want:    100,
		},
		{
			name: "max across authors wins",
			authors: []core.Author{
				{Name: "Junior", HIndex: intPtr(3)},
				{Name: "Senior", HIndex: intPtr(60)},
				{Name: "Unknown"},
			},
			want: 90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AuthorHIndexScore(tt.authors); !almostEqual(got, tt.want) {
				t.Errorf("AuthorHIndexScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSampleSizeScore(t *testing.T) {
	tests := []struct {
		name string
		n    *int
		want float64
	}{
		{name: "unknown is neutral", n: nil, want: 50},
		{name: "tiny study", n: intPtr(15), want: 30},
		{name: "first breakpoint", n: intPtr(30), want: 40},
		{name: "moderate", n: intPtr(65), want: 50},
		{name: "second breakpoint", n: intPtr(100), want: 60},
		{name: "good", n: intPtr(550), want: 72.5},
		{name: "third breakpoint", n: intPtr(1000), want: 85},
		{name: "excellent cap", n: intPtr(10000), want: 100},
		{name: "beyond cap", n: intPtr(50000), want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SampleSizeScore(tt.n); !almostEqual(got, tt.want) {
				t.Errorf("SampleSizeScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMethodologyScore(t *testing.T) {
	tests := []struct {
		name        string
		methodology *string
		want        float64
	}{
		{name: "unset is neutral", methodology: nil, want: 50},
		{name: "meta analysis", methodology: strPtr("meta_analysis"), want: 95},
		{name: "systematic review", methodology: strPtr("systematic_review"), want: 90},
		{name: "rct", methodology: strPtr("rct"), want: 85},
		{name: "cohort", methodology: strPtr("cohort"), want: 70},
		{name: "case control", methodology: strPtr("case_control"), want: 60},
		{name: "cross sectional", methodology: strPtr("cross_sectional"), want: 50},
		{name: "case report", methodology: strPtr("case_report"), want: 30},
		{name: "opinion", methodology: strPtr("opinion"), want: 20},
		{name: "unknown category", methodology: strPtr("unknown"), want: 50},
		{name: "unrecognized category", methodology: strPtr("vibes"), want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MethodologyScore(tt.methodology); !almostEqual(got, tt.want) {
				t.Errorf("MethodologyScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPeerReviewScore(t *testing.T) {
	tests := []struct {
		name           string
		isPreprint     bool
		isPeerReviewed bool
		want           float64
	}{
		{name: "preprint", isPreprint: true, want: 40},
		{name: "preprint flag wins", isPreprint: true, isPeerReviewed: true, want: 40},
		{name: "peer reviewed", isPeerReviewed: true, want: 100},
		{name: "neither is neutral", want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeerReviewScore(tt.isPreprint, tt.isPeerReviewed); !almostEqual(got, tt.want) {
				t.Errorf("PeerReviewScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCitationVelocityScore(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	daysAgo := func(d int) *time.Time {
		ts := now.AddDate(0, 0, -d)
		return &ts
	}

	tests := []struct {
		name      string
		citations *int
		published *time.Time
		want      float64
	}{
		{name: "unknown citations is neutral", citations: nil, published: daysAgo(60), want: 50},
		{name: "unknown date is neutral", citations: intPtr(10), published: nil, want: 50},
		{name: "zero velocity", citations: intPtr(0), published: daysAgo(60), want: 30},
		{name: "one per month", citations: intPtr(2), published: daysAgo(60), want: 50},
		{name: "scenario velocity 2.5", citations: intPtr(5), published: daysAgo(60), want: 57.5},
		{name: "five per month", citations: intPtr(10), published: daysAgo(60), want: 70},
		{name: "twenty per month", citations: intPtr(40), published: daysAgo(60), want: 90},
		{name: "velocity capped at 100", citations: intPtr(100000), published: daysAgo(60), want: 100},
		{name: "young papers count a full month", citations: intPtr(3), published: daysAgo(10), want: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CitationVelocityScore(tt.citations, tt.published, now); !almostEqual(got, tt.want) {
				t.Errorf("CitationVelocityScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSampleSizeScoreMonotonic(t *testing.T) {
	prev := -1.0
	for n := 0; n <= 12000; n += 25 {
		got := SampleSizeScore(&n)
		if got < prev {
			t.Fatalf("score decreased at n=%d: %v < %v", n, got, prev)
		}
		prev = got
	}
}
