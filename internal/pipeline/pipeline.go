// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences the run: source adapters, dedup, store
// insertion, then scoring. Partial failures are reported in the run summary
// and never abort the process.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/paper-tracker/internal/fetch"
	"github.com/pdiddy/paper-tracker/internal/score"
	"github.com/pdiddy/paper-tracker/internal/topic"
	"github.com/pdiddy/paper-tracker/pkg/types"
)

// Store is the subset of the paper store the orchestrator writes through.
type Store interface {
	Exists(ctx context.Context, id string) (bool, error)
	Insert(ctx context.Context, p types.Paper) error
}

// Pipeline wires the stages together for one run.
type Pipeline struct {
	Store   Store
	Sources []fetch.Source
	Engine  *score.Engine
	Profile topic.Profile
	Cfg     types.PipelineConfig
}

// FetchResult summarizes the fetch stage of one run.
type FetchResult struct {
	// Candidates is the number of records emitted by all sources.
	Candidates int

	// Added is the number of new records persisted after dedup.
	Added int
}

// Fetch runs the sources in their fixed order, deduplicates the candidates,
// and inserts the survivors. Each insert is a single atomic record write, so
// an interrupted run leaves the store consistent.
func (p *Pipeline) Fetch(ctx context.Context, w io.Writer) (FetchResult, error) {
	window := fetch.NewWindow(p.Cfg.Fetch.LookbackDays)
	candidates := fetch.FetchAll(ctx, p.Sources, window, p.Profile, w)

	kept, err := fetch.Dedup(ctx, p.Store, candidates, p.Cfg.Fetch.MaxPerRun, w)
	if err != nil {
		return FetchResult{}, err
	}

	for _, paper := range kept {
		if err := p.Store.Insert(ctx, paper); err != nil {
			return FetchResult{}, err
		}
	}

	fmt.Fprintf(w, "added %d new paper(s)\n", len(kept))
	return FetchResult{Candidates: len(candidates), Added: len(kept)}, nil
}

// Score runs the scoring engine over all unscored papers.
func (p *Pipeline) Score(ctx context.Context, w io.Writer) (score.Summary, error) {
	return p.Engine.ScoreAll(ctx, p.Profile, w)
}

// Run performs the combined mode: fetch, then score, but only when the
// fetch stage added new records.
func (p *Pipeline) Run(ctx context.Context, w io.Writer) error {
	result, err := p.Fetch(ctx, w)
	if err != nil {
		return err
	}

	if result.Added == 0 {
		fmt.Fprintln(w, "no new papers to score")
		return nil
	}

	_, err = p.Score(ctx, w)
	return err
}
