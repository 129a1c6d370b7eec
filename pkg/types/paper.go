// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// PaperSource identifies the catalog a paper came from.
type PaperSource string

const (
	SourcePubMed  PaperSource = "pubmed"
	SourceBiorxiv PaperSource = "biorxiv"
	SourceMedrxiv PaperSource = "medrxiv"
)

// Paper is the central entity of the pipeline. A paper is created by a
// source adapter, persisted unscored, and later filled in by the scoring
// engine. Only Starred and Notes remain mutable after scoring.
type Paper struct {
	// ID is the composite identifier "<source>:<native key>", e.g.
	// "pubmed:38123456" or "biorxiv:10.1101/2026.01.01.123456".
	ID string `json:"id" yaml:"id"`

	// Source names the originating catalog.
	Source PaperSource `json:"source" yaml:"source"`

	// Title is the paper title. Required.
	Title string `json:"title" yaml:"title"`

	// Authors lists author names in catalog order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the full abstract text, possibly empty.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Journal is the journal title, or "<server> (preprint)" for preprints.
	Journal string `json:"journal" yaml:"journal"`

	// PublishedDate is the publication date in YYYY-MM-DD form, or empty.
	PublishedDate string `json:"published_date" yaml:"published_date"`

	// URL points at the paper's landing page.
	URL string `json:"url" yaml:"url"`

	// DOI is the bare DOI (no https://doi.org/ prefix), or empty.
	DOI string `json:"doi" yaml:"doi"`

	// RelevanceScore is 1-10, nil until the paper has been scored.
	RelevanceScore *int `json:"relevance_score,omitempty" yaml:"relevance_score,omitempty"`

	// Summary is a short LLM-written summary, empty until scored.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// KeyFinding is a one-sentence headline of the main finding.
	KeyFinding string `json:"key_finding,omitempty" yaml:"key_finding,omitempty"`

	// Tags are free-text labels assigned by the scoring engine.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// FetchedAt is set when the paper is first inserted.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`

	// ScoredAt is set when the scoring engine writes the score. It is
	// non-nil exactly when RelevanceScore is non-nil.
	ScoredAt *time.Time `json:"scored_at,omitempty" yaml:"scored_at,omitempty"`

	// Starred is user-controlled and defaults to false.
	Starred bool `json:"starred" yaml:"starred"`

	// Notes is user-attached free text.
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Scored reports whether the scoring engine has processed the paper.
func (p *Paper) Scored() bool {
	return p.RelevanceScore != nil
}
