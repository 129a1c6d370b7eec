// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch discovers newly published papers in external catalogs and
// normalizes them into Paper records. Each catalog is a Source; sources run
// sequentially in a fixed order and a failing query or variant degrades to
// an empty result rather than aborting the run.
package fetch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/paper-tracker/internal/topic"
	"github.com/pdiddy/paper-tracker/pkg/types"
)

// Window is the trailing time span over which new papers are sought.
type Window struct {
	From time.Time
	To   time.Time
}

// NewWindow returns a window of the given number of days ending now.
func NewWindow(days int) Window {
	now := time.Now()
	return Window{From: now.AddDate(0, 0, -days), To: now}
}

// Registry is the subset of the paper store the fetch stage reads. It backs
// both the adapters' known-key checks and the dedup engine's cross-run pass.
type Registry interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Source converts a lookback window and a topic profile into a finite
// sequence of candidate papers. Every invocation makes fresh network calls.
// Implementations report per-query progress and failures to w and return an
// error only for conditions that invalidate the whole source.
type Source interface {
	Name() string
	Fetch(ctx context.Context, window Window, profile topic.Profile, w io.Writer) ([]types.Paper, error)
}

// FetchAll runs the sources in order and concatenates their candidates in
// emission order. A failing source is reported and skipped; FetchAll itself
// never fails.
func FetchAll(ctx context.Context, sources []Source, window Window, profile topic.Profile, w io.Writer) []types.Paper {
	var all []types.Paper
	for _, src := range sources {
		fmt.Fprintf(w, "fetching from %s\n", src.Name())
		papers, err := src.Fetch(ctx, window, profile, w)
		if err != nil {
			fmt.Fprintf(w, "warning: source %s failed: %v\n", src.Name(), err)
			continue
		}
		fmt.Fprintf(w, "  %s: %d candidate(s)\n", src.Name(), len(papers))
		all = append(all, papers...)
	}
	return all
}
