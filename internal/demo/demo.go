// Package demo seeds the store with canned papers so the pipeline can be
// exercised end to end without fetchers or API keys. Pair it with the demo
// provider, which answers every AI call offline. Papers are seeded
// unenriched on purpose: creating a digest over them is what shows the
// pipeline working.
package demo

import (
	"context"
	"fmt"
	"time"

	"scholarly/internal/core"
	"scholarly/internal/persistence"

	"github.com/google/uuid"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func author(name string, hIndex int) core.Author {
	return core.Author{Name: name, HIndex: &hIndex}
}

// Papers returns the eight demo papers with fresh IDs and publication dates
// spread over the two weeks before now.
func Papers() []*core.Paper {
	papers := []*core.Paper{
		{
			Title:          "CRISPR-Cas9 Gene Editing Achieves New Precision in Human Cells",
			Abstract:       "We demonstrate a novel approach to CRISPR-Cas9 gene editing that reduces off-target effects by 95% compared to standard methods. Using a modified guide RNA structure and optimized delivery mechanism, we achieved precise edits in human stem cells with unprecedented accuracy. Our method was validated across 50 different gene targets, with consistent results showing minimal unintended modifications. This breakthrough could accelerate the development of gene therapies for genetic disorders.",
			Journal:        "Nature Biotechnology",
			Source:         "pubmed",
			DOI:            "10.1038/nbt.2024.001",
			IsPeerReviewed: true,
			ImpactFactor:   floatp(54.3),
			Citations:      intp(45),
			Authors:        []core.Author{author("Dr. Sarah Chen", 58), author("Dr. Michael Roberts", 64), author("Dr. Lisa Wong", 51)},
		},
		{
			Title:      "Large Language Models Show Emergent Reasoning Capabilities in Scientific Problem Solving",
			Abstract:   "This study investigates the emergent reasoning capabilities of large language models (LLMs) when applied to complex scientific problems. We tested GPT-4 and Claude on 1,000 graduate-level physics, chemistry, and biology problems. Results show that chain-of-thought prompting enables models to solve problems requiring multi-step reasoning with 78% accuracy. Importantly, we identify specific failure modes and propose mitigation strategies.",
			Journal:    "arXiv",
			Source:     "arxiv",
			IsPreprint: true,
			Citations:  intp(12),
			Authors:    []core.Author{author("Alex Thompson", 14), {Name: "Dr. Jennifer Lee"}, author("Prof. David Kim", 37)},
		},
		{
			Title:          "Climate Change Impact on Global Biodiversity: A Meta-Analysis of 500 Studies",
			Abstract:       "We present a comprehensive meta-analysis of 500 peer-reviewed studies examining climate change impacts on biodiversity across terrestrial, freshwater, and marine ecosystems. Our analysis reveals that 68% of studied species show range shifts, with an average poleward movement of 17km per decade. Tropical species face the highest extinction risk, while temperate species show greater adaptive capacity. We provide specific conservation recommendations based on regional vulnerability assessments.",
			Journal:        "Science",
			Source:         "science_rss",
			DOI:            "10.1126/science.2024.123",
			IsPeerReviewed: true,
			ImpactFactor:   floatp(56.9),
			Citations:      intp(89),
			Authors:        []core.Author{author("Dr. Emma Watson", 44), author("Prof. James Rodriguez", 72), author("Dr. Priya Patel", 29)},
		},
		{
			Title:          "Novel mRNA Vaccine Platform Shows Promise Against Multiple Cancer Types",
			Abstract:       "Building on mRNA vaccine technology, we developed a personalized cancer vaccine platform that targets patient-specific tumor neoantigens. In Phase I trials with 45 patients across melanoma, lung, and colorectal cancers, we observed complete responses in 22% of patients and partial responses in 40%. The vaccine was well-tolerated with mild side effects. Immune profiling revealed robust CD8+ T cell responses targeting tumor cells.",
			Journal:        "Cell",
			Source:         "pubmed",
			DOI:            "10.1016/j.cell.2024.001",
			IsPeerReviewed: true,
			ImpactFactor:   floatp(66.8),
			Citations:      intp(156),
			Authors:        []core.Author{author("Dr. Robert Johnson", 55), author("Dr. Maria Garcia", 61), author("Dr. Ahmed Hassan", 40)},
		},
		{
			Title:          "Quantum Computing Breakthrough: Error Correction Achieved at Scale",
			Abstract:       "We report the first demonstration of fault-tolerant quantum error correction operating below the threshold required for practical quantum computing. Using a 72-qubit superconducting processor, we implemented a distance-5 surface code that maintains logical qubit coherence for over 1 second, a 100x improvement over physical qubits. This milestone brings us closer to scalable, error-corrected quantum computers capable of solving classically intractable problems.",
			Journal:        "Nature",
			Source:         "nature_rss",
			DOI:            "10.1038/nature.2024.567",
			IsPeerReviewed: true,
			ImpactFactor:   floatp(64.8),
			Citations:      intp(234),
			Authors:        []core.Author{author("Prof. John Smith", 81), author("Dr. Wei Zhang", 47), author("Dr. Anna Kowalski", 33)},
		},
		{
			Title:      "Deep Learning Model Predicts Protein-Drug Interactions with 94% Accuracy",
			Abstract:   "We introduce DrugBERT, a transformer-based deep learning model that predicts protein-drug binding affinity with unprecedented accuracy. Trained on 2 million protein-ligand pairs, our model achieves 94% accuracy on held-out test sets and correctly identified binding sites in 89% of cases. We demonstrate its utility by identifying 12 novel drug candidates for antibiotic-resistant bacteria, 3 of which showed promising in vitro activity.",
			Journal:    "bioRxiv",
			Source:     "biorxiv",
			DOI:        "10.1101/2024.01.15.567890",
			IsPreprint: true,
			Citations:  intp(8),
			Authors:    []core.Author{author("Dr. Yuki Tanaka", 22), author("Prof. Carlos Silva", 49), {Name: "Dr. Sophie Martin"}},
		},
		{
			Title:          "Microplastics Found in Human Brain Tissue: Implications for Neurological Health",
			Abstract:       "This study presents the first systematic analysis of microplastic accumulation in human brain tissue. Analyzing post-mortem samples from 120 individuals, we detected microplastics in 92% of specimens, with concentrations correlating with age and environmental exposure. Experimental models suggest potential neurotoxic effects through oxidative stress and inflammation pathways. While causation remains to be established, our findings highlight an urgent need for further research.",
			Journal:        "Environmental Health Perspectives",
			Source:         "pubmed",
			DOI:            "10.1289/EHP.2024.890",
			IsPeerReviewed: true,
			ImpactFactor:   floatp(11.0),
			Citations:      intp(67),
			Authors:        []core.Author{author("Dr. Laura Anderson", 38), author("Dr. Thomas Mueller", 52), author("Dr. Kenji Yamamoto", 45)},
		},
		{
			Title:          "Revolutionary Solar Cell Design Achieves 47% Efficiency",
			Abstract:       "We present a tandem solar cell architecture combining perovskite and silicon layers that achieves 47.1% power conversion efficiency under concentrated sunlight, surpassing the previous record by 3.2 percentage points. The design uses a novel anti-reflection coating and optimized band gap engineering. Stability tests show less than 5% degradation after 1,000 hours of operation. This technology could dramatically reduce the cost of solar energy.",
			Journal:        "Science Advances",
			Source:         "semantic_scholar",
			DOI:            "10.1126/sciadv.2024.789",
			IsPeerReviewed: true,
			ImpactFactor:   floatp(14.1),
			Citations:      intp(112),
			Authors:        []core.Author{author("Prof. Helen Park", 66), author("Dr. Omar Farouq", 31), author("Dr. Nina Petrov", 27)},
		},
	}

	now := time.Now().UTC()
	for i, paper := range papers {
		paper.ID = uuid.NewString()
		paper.URL = fmt.Sprintf("https://example.com/paper/%d", i+1)
		published := now.AddDate(0, 0, -(2*i + 1))
		paper.Published = &published
	}

	return papers
}

// Seed inserts the demo papers, skipping any whose title is already stored,
// and returns the number inserted. Running it twice is a no-op.
func Seed(ctx context.Context, store persistence.Store) (int, error) {
	existing, err := store.Papers().List(ctx, persistence.ListOptions{Limit: 100})
	if err != nil {
		return 0, fmt.Errorf("failed to check existing papers: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, paper := range existing {
		seen[paper.Title] = true
	}

	created := 0
	for _, paper := range Papers() {
		if seen[paper.Title] {
			continue
		}
		if err := store.Papers().Create(ctx, paper); err != nil {
			return created, fmt.Errorf("failed to seed paper %q: %w", paper.Title, err)
		}
		created++
	}

	return created, nil
}
