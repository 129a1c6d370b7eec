// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score evaluates unscored papers against a topic rubric using a
// local text-generation service and writes the parsed judgment back to the
// store. A paper whose reply cannot be parsed is left unscored and retried
// on a future run; no record is ever written with partial scoring data.
package score

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/paper-tracker/internal/topic"
	"github.com/pdiddy/paper-tracker/pkg/types"
)

// Generator abstracts the text-generation service so tests can supply a
// mock.
type Generator interface {
	// CheckModel verifies the service is reachable and the configured
	// model is loaded.
	CheckModel(ctx context.Context) error

	// Generate sends one request and returns the reply text.
	Generate(ctx context.Context, system, user string) (string, error)
}

// PaperStore is the subset of the paper store the scoring engine uses.
type PaperStore interface {
	ListUnscored(ctx context.Context) ([]types.Paper, error)
	UpdateScoring(ctx context.Context, id string, score int, summary, keyFinding string, tags []string) error
}

// Summary holds counts from one scoring pass.
type Summary struct {
	Scored int
	Failed int
}

// Total returns the number of papers attempted.
func (s Summary) Total() int {
	return s.Scored + s.Failed
}

// Engine scores papers one at a time, in fetched_at-descending order, with
// a fixed delay between calls to avoid saturating the local service.
type Engine struct {
	Store     PaperStore
	Generator Generator
	Cfg       types.ScoringConfig
}

// ScoreAll scores every unscored paper. The preflight check runs before any
// record is touched; if the service is unreachable or the model missing the
// whole pass aborts with a remediation hint and the store is left untouched.
// Individual failures are logged and skipped.
func (e *Engine) ScoreAll(ctx context.Context, profile topic.Profile, w io.Writer) (Summary, error) {
	papers, err := e.Store.ListUnscored(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("listing unscored papers: %w", err)
	}
	if len(papers) == 0 {
		fmt.Fprintln(w, "no unscored papers")
		return Summary{}, nil
	}

	if err := e.Generator.CheckModel(ctx); err != nil {
		return Summary{}, fmt.Errorf("scoring service preflight: %w", err)
	}

	fmt.Fprintf(w, "scoring %d paper(s)\n", len(papers))

	var summary Summary
	for i, p := range papers {
		if i > 0 && e.Cfg.ScoreDelay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(e.Cfg.ScoreDelay):
			}
		}

		fmt.Fprintf(w, "  [%d/%d] %s\n", i+1, len(papers), truncate(p.Title, 80))

		result, err := e.scorePaper(ctx, profile, p)
		if err != nil {
			fmt.Fprintf(w, "    warning: %v\n", err)
			summary.Failed++
			continue
		}

		if err := e.Store.UpdateScoring(ctx, p.ID, result.Score, result.Summary, result.KeyFinding, result.Tags); err != nil {
			return summary, err
		}
		fmt.Fprintf(w, "    score %d/10\n", result.Score)
		summary.Scored++
	}

	fmt.Fprintf(w, "scored %d/%d paper(s)\n", summary.Scored, summary.Total())
	return summary, nil
}

// scorePaper sends one paper through the generator and parses the reply.
func (e *Engine) scorePaper(ctx context.Context, profile topic.Profile, p types.Paper) (Result, error) {
	user, err := renderUserMessage(p)
	if err != nil {
		return Result{}, fmt.Errorf("rendering message: %w", err)
	}

	reply, err := e.Generator.Generate(ctx, profile.Rubric, user)
	if err != nil {
		return Result{}, err
	}

	result, err := ParseReply(reply)
	if err != nil {
		return Result{}, fmt.Errorf("%v (raw: %s)", err, truncate(reply, 200))
	}
	return result, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
