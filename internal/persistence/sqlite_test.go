package persistence

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"scholarly/internal/core"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	store, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewSQLite(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "data", "test.db")

	store, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	// Check that the database file and its directory were created
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("Database file should be created")
	}
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		wantErr bool
	}{
		{"empty driver defaults to sqlite", "", false},
		{"sqlite", "sqlite", false},
		{"sqlite3", "sqlite3", false},
		{"unknown driver", "oracle", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(tt.driver, ":memory:")
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error for unknown driver")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer func() { _ = store.Close() }()

			if _, ok := store.(*SQLite); !ok {
				t.Errorf("Expected *SQLite store, got %T", store)
			}
		})
	}
}

func TestPaperCreateGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	published := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	citations := 42
	impact := 18.5
	score := 72.4
	sampleSize := 250
	methodology := "rct"
	hIndex := 31

	paper := &core.Paper{
		ID:             "paper-full",
		Title:          "Gene Therapy Vector Efficiency",
		Abstract:       "A randomized trial of a new delivery vector.",
		Journal:        "Nature Medicine",
		Source:         "pubmed",
		DOI:            "10.1000/xyz123",
		URL:            "https://example.org/paper",
		Published:      &published,
		Citations:      &citations,
		ImpactFactor:   &impact,
		IsPreprint:     false,
		IsPeerReviewed: true,
		Authors: []core.Author{
			{Name: "A. Researcher", HIndex: &hIndex},
			{Name: "B. Scientist"},
		},
		CredibilityScore: &score,
		CredibilityBreakdown: map[string]core.FactorScore{
			"journal_impact": {Score: 85, Weight: 0.25, Weighted: 21.25, Detail: "Impact factor 18.5"},
			"peer_review":    {Score: 100, Weight: 0.10, Weighted: 10, Detail: "Peer reviewed"},
		},
		CredibilityNote: "High credibility (72/100). Full AI assessment pending.",
		SampleSize:      &sampleSize,
		Methodology:     &methodology,
		Headline:        "Vector Triples Delivery Rate",
		Takeaway:        "The new vector delivers genes three times more effectively.",
		WhyMatters:      "Could make gene therapy viable for more conditions.",
		KeyTakeaways:    []string{"**Efficiency**: Three times better.", "**Safety**: No adverse events."},
		Tags:            []string{"gene-therapy", "medicine"},
		ImageRef:        "/images/paper-full.png",
	}

	if err := store.Papers().Create(ctx, paper); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Papers().Get(ctx, "paper-full")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.Title != paper.Title {
		t.Errorf("Expected title %q, got %q", paper.Title, got.Title)
	}
	if got.Journal != paper.Journal {
		t.Errorf("Expected journal %q, got %q", paper.Journal, got.Journal)
	}
	if got.Published == nil || !got.Published.Equal(published) {
		t.Errorf("Expected published %v, got %v", published, got.Published)
	}
	if got.Citations == nil || *got.Citations != citations {
		t.Errorf("Expected citations %d, got %v", citations, got.Citations)
	}
	if got.ImpactFactor == nil || *got.ImpactFactor != impact {
		t.Errorf("Expected impact factor %f, got %v", impact, got.ImpactFactor)
	}
	if !got.IsPeerReviewed {
		t.Error("Expected peer reviewed paper")
	}
	if len(got.Authors) != 2 {
		t.Fatalf("Expected 2 authors, got %d", len(got.Authors))
	}
	if got.Authors[0].Name != "A. Researcher" {
		t.Errorf("Expected author name %q, got %q", "A. Researcher", got.Authors[0].Name)
	}
	if got.Authors[0].HIndex == nil || *got.Authors[0].HIndex != hIndex {
		t.Errorf("Expected h-index %d, got %v", hIndex, got.Authors[0].HIndex)
	}
	if got.Authors[1].HIndex != nil {
		t.Errorf("Expected nil h-index, got %v", *got.Authors[1].HIndex)
	}
	if got.CredibilityScore == nil || *got.CredibilityScore != score {
		t.Errorf("Expected credibility score %f, got %v", score, got.CredibilityScore)
	}
	if len(got.CredibilityBreakdown) != 2 {
		t.Fatalf("Expected 2 breakdown factors, got %d", len(got.CredibilityBreakdown))
	}
	factor := got.CredibilityBreakdown["journal_impact"]
	if factor.Score != 85 || factor.Weighted != 21.25 {
		t.Errorf("Expected journal_impact 85/21.25, got %f/%f", factor.Score, factor.Weighted)
	}
	if factor.Detail != "Impact factor 18.5" {
		t.Errorf("Expected detail %q, got %q", "Impact factor 18.5", factor.Detail)
	}
	if got.SampleSize == nil || *got.SampleSize != sampleSize {
		t.Errorf("Expected sample size %d, got %v", sampleSize, got.SampleSize)
	}
	if got.Methodology == nil || *got.Methodology != methodology {
		t.Errorf("Expected methodology %q, got %v", methodology, got.Methodology)
	}
	if got.Headline != paper.Headline {
		t.Errorf("Expected headline %q, got %q", paper.Headline, got.Headline)
	}
	if len(got.KeyTakeaways) != 2 || got.KeyTakeaways[0] != paper.KeyTakeaways[0] {
		t.Errorf("Expected key takeaways %v, got %v", paper.KeyTakeaways, got.KeyTakeaways)
	}
	if len(got.Tags) != 2 || got.Tags[1] != "medicine" {
		t.Errorf("Expected tags %v, got %v", paper.Tags, got.Tags)
	}
	if got.ImageRef != paper.ImageRef {
		t.Errorf("Expected image ref %q, got %q", paper.ImageRef, got.ImageRef)
	}
	if !got.Enriched() {
		t.Error("Expected paper to report as enriched")
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("Expected create to stamp timestamps")
	}
}

func TestPaperNilFieldsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	paper := &core.Paper{
		ID:         "paper-bare",
		Title:      "Untitled Preprint",
		Source:     "arxiv",
		IsPreprint: true,
	}
	if err := store.Papers().Create(ctx, paper); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Papers().Get(ctx, "paper-bare")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.Published != nil {
		t.Errorf("Expected nil published, got %v", got.Published)
	}
	if got.Citations != nil {
		t.Errorf("Expected nil citations, got %v", got.Citations)
	}
	if got.ImpactFactor != nil {
		t.Errorf("Expected nil impact factor, got %v", got.ImpactFactor)
	}
	if got.CredibilityScore != nil {
		t.Errorf("Expected nil credibility score, got %v", got.CredibilityScore)
	}
	if got.SampleSize != nil {
		t.Errorf("Expected nil sample size, got %v", got.SampleSize)
	}
	if got.Methodology != nil {
		t.Errorf("Expected nil methodology, got %v", got.Methodology)
	}
	if !got.IsPreprint {
		t.Error("Expected preprint flag to survive")
	}
	if got.Enriched() {
		t.Error("Expected bare paper to report as not enriched")
	}
}

func TestPaperNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Papers().Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound from Get, got %v", err)
	}
	err := store.Papers().Update(ctx, &core.Paper{ID: "missing", Title: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound from Update, got %v", err)
	}
	if err := store.Papers().Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound from Delete, got %v", err)
	}
}

func TestPaperUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	paper := &core.Paper{ID: "paper-1", Title: "Before Enrichment", Source: "pubmed"}
	if err := store.Papers().Create(ctx, paper); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	score := 61.3
	paper.CredibilityScore = &score
	paper.CredibilityNote = "Moderate credibility (61/100). Full AI assessment pending."
	paper.Headline = "Sleep Improves Recall"
	paper.Takeaway = "Participants who slept recalled more."
	if err := store.Papers().Update(ctx, paper); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.Papers().Get(ctx, "paper-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.CredibilityScore == nil || *got.CredibilityScore != score {
		t.Errorf("Expected credibility score %f, got %v", score, got.CredibilityScore)
	}
	if got.Headline != "Sleep Improves Recall" {
		t.Errorf("Expected updated headline, got %q", got.Headline)
	}
	if !got.Enriched() {
		t.Error("Expected updated paper to report as enriched")
	}
}

func TestPaperList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i, id := range []string{"paper-old", "paper-mid", "paper-new"} {
		paper := &core.Paper{
			ID:        id,
			Title:     id,
			CreatedAt: now.Add(time.Duration(i) * time.Hour),
			UpdatedAt: now,
		}
		if err := store.Papers().Create(ctx, paper); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	// Newest first
	papers, err := store.Papers().List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(papers) != 3 {
		t.Fatalf("Expected 3 papers, got %d", len(papers))
	}
	if papers[0].ID != "paper-new" || papers[2].ID != "paper-old" {
		t.Errorf("Expected newest-first order, got %s..%s", papers[0].ID, papers[2].ID)
	}

	papers, err = store.Papers().List(ctx, ListOptions{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("List with pagination failed: %v", err)
	}
	if len(papers) != 1 || papers[0].ID != "paper-mid" {
		t.Errorf("Expected paper-mid page, got %v", papers)
	}
}

func TestPaperDeleteRemovesDigestReferences(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	paper := &core.Paper{ID: "paper-1", Title: "Referenced"}
	if err := store.Papers().Create(ctx, paper); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	digest := &core.Digest{
		ID:       "digest-1",
		Name:     "Weekly",
		Status:   core.DigestPending,
		PaperIDs: []string{"paper-1"},
	}
	if err := store.Digests().Create(ctx, digest); err != nil {
		t.Fatalf("Create digest failed: %v", err)
	}

	if err := store.Papers().Delete(ctx, "paper-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Papers().Get(ctx, "paper-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	ids, err := store.Digests().PaperIDs(ctx, "digest-1")
	if err != nil {
		t.Fatalf("PaperIDs failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected digest references removed, got %v", ids)
	}
}

func TestDigestCreateGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	digest := &core.Digest{
		ID:       "digest-1",
		Name:     "March Neuroscience",
		Status:   core.DigestPending,
		Provider: "anthropic",
		Model:    "claude-sonnet-4",
		Style:    core.StyleTechnical,
		PaperIDs: []string{"paper-c", "paper-a", "paper-b"},
	}
	if err := store.Digests().Create(ctx, digest); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Digests().Get(ctx, "digest-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.Name != digest.Name {
		t.Errorf("Expected name %q, got %q", digest.Name, got.Name)
	}
	if got.Status != core.DigestPending {
		t.Errorf("Expected status %q, got %q", core.DigestPending, got.Status)
	}
	if got.Provider != "anthropic" || got.Model != "claude-sonnet-4" {
		t.Errorf("Expected provider/model to survive, got %s/%s", got.Provider, got.Model)
	}
	if got.Style != core.StyleTechnical {
		t.Errorf("Expected style %q, got %q", core.StyleTechnical, got.Style)
	}
	if got.ProcessedAt != nil {
		t.Errorf("Expected nil processed at, got %v", got.ProcessedAt)
	}

	// Paper references keep their submitted order
	want := []string{"paper-c", "paper-a", "paper-b"}
	if len(got.PaperIDs) != len(want) {
		t.Fatalf("Expected %d paper ids, got %d", len(want), len(got.PaperIDs))
	}
	for i, id := range want {
		if got.PaperIDs[i] != id {
			t.Errorf("Expected paper id %q at position %d, got %q", id, i, got.PaperIDs[i])
		}
	}
}

func TestDigestUpdateStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	digest := &core.Digest{ID: "digest-1", Name: "Weekly", Status: core.DigestPending}
	if err := store.Digests().Create(ctx, digest); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Digests().UpdateStatus(ctx, "digest-1", core.DigestProcessing, ""); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	got, err := store.Digests().Get(ctx, "digest-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != core.DigestProcessing || got.ProcessedAt != nil {
		t.Errorf("Expected processing with nil processed at, got %s/%v", got.Status, got.ProcessedAt)
	}

	// Completion stamps the processed time
	if err := store.Digests().UpdateStatus(ctx, "digest-1", core.DigestCompleted, ""); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	got, err = store.Digests().Get(ctx, "digest-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != core.DigestCompleted {
		t.Errorf("Expected completed status, got %q", got.Status)
	}
	if got.ProcessedAt == nil {
		t.Fatal("Expected processed at to be stamped on completion")
	}

	// Failure stores the message verbatim
	if err := store.Digests().UpdateStatus(ctx, "digest-1", core.DigestFailed, "provider exploded"); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	got, err = store.Digests().Get(ctx, "digest-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != core.DigestFailed || got.ErrorMessage != "provider exploded" {
		t.Errorf("Expected failed with message, got %s/%q", got.Status, got.ErrorMessage)
	}
	if got.ProcessedAt != nil {
		t.Errorf("Expected processed at cleared on failure, got %v", got.ProcessedAt)
	}

	// Reprocessing clears the previous error
	if err := store.Digests().UpdateStatus(ctx, "digest-1", core.DigestProcessing, ""); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	got, err = store.Digests().Get(ctx, "digest-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ErrorMessage != "" {
		t.Errorf("Expected error message cleared, got %q", got.ErrorMessage)
	}
}

func TestDigestListFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	seed := []struct {
		id     string
		status core.DigestStatus
	}{
		{"digest-1", core.DigestPending},
		{"digest-2", core.DigestPending},
		{"digest-3", core.DigestCompleted},
	}
	for i, s := range seed {
		digest := &core.Digest{
			ID:        s.id,
			Name:      s.id,
			Status:    s.status,
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Digests().Create(ctx, digest); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	all, err := store.Digests().List(ctx, DigestFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 digests, got %d", len(all))
	}
	if all[0].ID != "digest-3" {
		t.Errorf("Expected newest-first order, got %s first", all[0].ID)
	}

	pending, err := store.Digests().List(ctx, DigestFilter{Status: core.DigestPending})
	if err != nil {
		t.Fatalf("List with status failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending digests, got %d", len(pending))
	}
	for _, d := range pending {
		if d.Status != core.DigestPending {
			t.Errorf("Expected pending digest, got %q", d.Status)
		}
	}

	page, err := store.Digests().List(ctx, DigestFilter{
		ListOptions: ListOptions{Limit: 1, Offset: 1},
		Status:      core.DigestPending,
	})
	if err != nil {
		t.Fatalf("List with pagination failed: %v", err)
	}
	if len(page) != 1 || page[0].ID != "digest-1" {
		t.Errorf("Expected digest-1 page, got %v", page)
	}
}

func TestDigestTextsAndImage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	digest := &core.Digest{ID: "digest-1", Name: "Weekly", Status: core.DigestProcessing}
	if err := store.Digests().Create(ctx, digest); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := store.Digests().UpdateTexts(ctx, "digest-1", "Letter from the editor.", "The thread connecting these.", "The big picture.")
	if err != nil {
		t.Fatalf("UpdateTexts failed: %v", err)
	}
	if err := store.Digests().SetImage(ctx, "digest-1", "/images/digest-1.png"); err != nil {
		t.Fatalf("SetImage failed: %v", err)
	}

	got, err := store.Digests().Get(ctx, "digest-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.IntroText != "Letter from the editor." {
		t.Errorf("Expected intro text, got %q", got.IntroText)
	}
	if got.Narrative != "The thread connecting these." {
		t.Errorf("Expected narrative, got %q", got.Narrative)
	}
	if got.Conclusion != "The big picture." {
		t.Errorf("Expected conclusion, got %q", got.Conclusion)
	}
	if got.ImageRef != "/images/digest-1.png" {
		t.Errorf("Expected image ref, got %q", got.ImageRef)
	}
}

func TestDigestNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Digests().Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound from Get, got %v", err)
	}
	if err := store.Digests().UpdateStatus(ctx, "missing", core.DigestCompleted, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound from UpdateStatus, got %v", err)
	}
	if err := store.Digests().UpdateTexts(ctx, "missing", "a", "b", "c"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound from UpdateTexts, got %v", err)
	}
	if err := store.Digests().SetImage(ctx, "missing", "/x.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound from SetImage, got %v", err)
	}
	if err := store.Digests().Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound from Delete, got %v", err)
	}
}

func TestDigestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	digest := &core.Digest{
		ID:       "digest-1",
		Name:     "Weekly",
		Status:   core.DigestCompleted,
		PaperIDs: []string{"paper-1", "paper-2"},
	}
	if err := store.Digests().Create(ctx, digest); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Digests().Delete(ctx, "digest-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Digests().Get(ctx, "digest-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	ids, err := store.Digests().PaperIDs(ctx, "digest-1")
	if err != nil {
		t.Fatalf("PaperIDs failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected join rows removed, got %v", ids)
	}
}

func TestSettingsLazyDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	settings, err := store.Settings().Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if settings.DefaultProvider != "openai" {
		t.Errorf("Expected default provider openai, got %q", settings.DefaultProvider)
	}
	if settings.DefaultModel != "gpt-4o" {
		t.Errorf("Expected default model gpt-4o, got %q", settings.DefaultModel)
	}
	if settings.DefaultStyle != core.StyleNewsletter {
		t.Errorf("Expected default style %q, got %q", core.StyleNewsletter, settings.DefaultStyle)
	}
	if settings.Weights != core.DefaultWeights() {
		t.Errorf("Expected default weights, got %+v", settings.Weights)
	}
	if math.Abs(settings.Weights.Sum()-1.0) > 1e-9 {
		t.Errorf("Expected weights to sum to 1.0, got %f", settings.Weights.Sum())
	}

	// A second read returns the same row, not a new one
	again, err := store.Settings().Get(ctx)
	if err != nil {
		t.Fatalf("Second Get failed: %v", err)
	}
	if !again.UpdatedAt.Equal(settings.UpdatedAt) {
		t.Errorf("Expected stable settings row, got %v then %v", settings.UpdatedAt, again.UpdatedAt)
	}
}

func TestSettingsUpdateWeightsNormalizes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	updated, err := store.Settings().UpdateWeights(ctx, core.ScoringWeights{
		JournalImpact:    2,
		AuthorHIndex:     2,
		SampleSize:       2,
		Methodology:      2,
		PeerReview:       1,
		CitationVelocity: 1,
	})
	if err != nil {
		t.Fatalf("UpdateWeights failed: %v", err)
	}

	if math.Abs(updated.Weights.JournalImpact-0.2) > 1e-9 {
		t.Errorf("Expected journal impact 0.2, got %f", updated.Weights.JournalImpact)
	}
	if math.Abs(updated.Weights.PeerReview-0.1) > 1e-9 {
		t.Errorf("Expected peer review 0.1, got %f", updated.Weights.PeerReview)
	}
	if math.Abs(updated.Weights.Sum()-1.0) > 1e-9 {
		t.Errorf("Expected normalized sum 1.0, got %f", updated.Weights.Sum())
	}

	// Persisted, not just returned
	got, err := store.Settings().Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if math.Abs(got.Weights.Methodology-0.2) > 1e-9 {
		t.Errorf("Expected persisted methodology weight 0.2, got %f", got.Weights.Methodology)
	}
}

func TestSettingsUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	settings, err := store.Settings().Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	settings.DefaultProvider = "anthropic"
	settings.DefaultModel = "claude-sonnet-4"
	settings.DefaultStyle = core.StyleLayperson
	if err := store.Settings().Update(ctx, settings); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.Settings().Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.DefaultProvider != "anthropic" || got.DefaultModel != "claude-sonnet-4" {
		t.Errorf("Expected updated provider/model, got %s/%s", got.DefaultProvider, got.DefaultModel)
	}
	if got.DefaultStyle != core.StyleLayperson {
		t.Errorf("Expected layperson style, got %q", got.DefaultStyle)
	}
}
