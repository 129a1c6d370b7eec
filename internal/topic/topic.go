// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package topic defines the tracked research topic: the catalog query lists
// and the relevance rubric the scoring engine evaluates against. A Profile
// is explicit configuration passed into each component at construction, not
// ambient state, so components stay independently testable.
package topic

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Profile describes one tracked topic.
type Profile struct {
	// Name labels the topic in run reports.
	Name string `yaml:"name"`

	// PubMedQueries are issued verbatim against the E-utilities search
	// endpoint, one search per entry.
	PubMedQueries []string `yaml:"pubmed_queries"`

	// PreprintQueries are matched locally, case-insensitively, against the
	// title and abstract of bulk preprint listings.
	PreprintQueries []string `yaml:"preprint_queries"`

	// Rubric is the system instruction sent to the scoring model. It must
	// ask for a JSON object with relevance_score, summary, key_finding,
	// and tags.
	Rubric string `yaml:"rubric"`
}

// Load reads a Profile from a YAML file.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading topic profile %s: %w", path, err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parsing topic profile %s: %w", path, err)
	}
	if len(p.PubMedQueries) == 0 && len(p.PreprintQueries) == 0 {
		return Profile{}, fmt.Errorf("topic profile %s defines no queries", path)
	}
	if p.Rubric == "" {
		p.Rubric = Default().Rubric
	}
	return p, nil
}

// Default returns the built-in neoantigen vaccine profile.
func Default() Profile {
	return Profile{
		Name: "neoantigen-vaccines",
		PubMedQueries: []string{
			"neoantigen vaccine",
			"neoantigen mRNA vaccine",
			"personalized cancer vaccine peptide",
			"neoepitope vaccine",
			"tumor mutanome vaccine",
			"individualized neoantigen therapy",
			"personalized neoantigen immunotherapy",
		},
		PreprintQueries: []string{
			"neoantigen vaccine",
			"personalized cancer vaccine",
			"neoepitope vaccine",
			"tumor mutanome",
		},
		Rubric: defaultRubric,
	}
}

const defaultRubric = `You are a scientific literature analyst specializing in cancer immunotherapy,
specifically neoantigen-based therapeutic vaccines.

The user's team is building neoantigen vaccines for cancer, focused on:
- mRNA-based neoantigen vaccines
- Peptide-based neoantigen vaccines

Score each paper's relevance from 1-10 based on these criteria:
- 9-10: Directly about neoantigen vaccine design, clinical trials, manufacturing, or efficacy (mRNA or peptide-based)
- 7-8: Closely related (e.g., neoantigen prediction algorithms, tumor immunology relevant to vaccine design, adjuvant systems for cancer vaccines)
- 5-6: Tangentially related (e.g., general cancer immunotherapy, checkpoint inhibitors combined with vaccines, antigen presentation)
- 3-4: Loosely related (e.g., general mRNA therapeutics, general peptide therapeutics not vaccine-focused)
- 1-2: Not relevant

Also provide a 2-3 sentence summary focused on what's actionable or novel for a neoantigen vaccine company.

Respond in JSON format:
{
    "relevance_score": <int 1-10>,
    "summary": "<string>",
    "key_finding": "<one-sentence headline of the main finding>",
    "tags": ["<tag1>", "<tag2>"]  // e.g., "mRNA", "peptide", "clinical-trial", "preclinical", "neoantigen-prediction", "manufacturing", "adjuvant", "combination-therapy"
}`
