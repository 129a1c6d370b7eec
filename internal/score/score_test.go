// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-tracker/internal/topic"
	"github.com/pdiddy/paper-tracker/pkg/types"
)

// fakeGenerator replays canned replies per paper title.
type fakeGenerator struct {
	checkErr error
	replies  map[string]string
	genErr   error
	calls    int
}

func (g *fakeGenerator) CheckModel(ctx context.Context) error { return g.checkErr }

func (g *fakeGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	g.calls++
	if g.genErr != nil {
		return "", g.genErr
	}
	for title, reply := range g.replies {
		if strings.Contains(user, title) {
			return reply, nil
		}
	}
	return "", errors.New("no canned reply")
}

// fakeStore records scoring updates in memory.
type fakeStore struct {
	unscored []types.Paper
	listErr  error
	updates  map[string]Result
}

func (s *fakeStore) ListUnscored(ctx context.Context) ([]types.Paper, error) {
	return s.unscored, s.listErr
}

func (s *fakeStore) UpdateScoring(ctx context.Context, id string, score int, summary, keyFinding string, tags []string) error {
	if s.updates == nil {
		s.updates = map[string]Result{}
	}
	s.updates[id] = Result{Score: score, Summary: summary, KeyFinding: keyFinding, Tags: tags}
	return nil
}

func unscoredPaper(id, title string) types.Paper {
	return types.Paper{ID: id, Source: types.SourcePubMed, Title: title}
}

func TestScoreAll(t *testing.T) {
	store := &fakeStore{unscored: []types.Paper{
		unscoredPaper("pubmed:1", "First paper"),
		unscoredPaper("pubmed:2", "Second paper"),
	}}
	gen := &fakeGenerator{replies: map[string]string{
		"First paper":  `{"relevance_score": 9, "summary": "great", "key_finding": "x", "tags": ["mRNA"]}`,
		"Second paper": `{"relevance_score": 3, "summary": "meh"}`,
	}}
	engine := &Engine{Store: store, Generator: gen}

	summary, err := engine.ScoreAll(context.Background(), topic.Default(), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, Summary{Scored: 2}, summary)

	require.Len(t, store.updates, 2)
	assert.Equal(t, 9, store.updates["pubmed:1"].Score)
	assert.Equal(t, []string{"mRNA"}, store.updates["pubmed:1"].Tags)
	assert.Equal(t, 3, store.updates["pubmed:2"].Score)
}

func TestScoreAllPreflightFailureAborts(t *testing.T) {
	store := &fakeStore{unscored: []types.Paper{unscoredPaper("pubmed:1", "Paper")}}
	gen := &fakeGenerator{checkErr: errors.New("connection refused")}
	engine := &Engine{Store: store, Generator: gen}

	_, err := engine.ScoreAll(context.Background(), topic.Default(), io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preflight")

	// No generation attempted and nothing written.
	assert.Zero(t, gen.calls)
	assert.Empty(t, store.updates)
}

func TestScoreAllNoUnscoredSkipsPreflight(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGenerator{checkErr: errors.New("connection refused")}
	engine := &Engine{Store: store, Generator: gen}

	var log strings.Builder
	summary, err := engine.ScoreAll(context.Background(), topic.Default(), &log)
	require.NoError(t, err)
	assert.Zero(t, summary.Total())
	assert.Contains(t, log.String(), "no unscored papers")
}

func TestScoreAllUnparseableReplyLeavesUnscored(t *testing.T) {
	store := &fakeStore{unscored: []types.Paper{
		unscoredPaper("pubmed:1", "Good paper"),
		unscoredPaper("pubmed:2", "Chatty paper"),
	}}
	gen := &fakeGenerator{replies: map[string]string{
		"Good paper":   `{"relevance_score": 7}`,
		"Chatty paper": "Sure! I would rate this paper highly because",
	}}
	engine := &Engine{Store: store, Generator: gen}

	var log strings.Builder
	summary, err := engine.ScoreAll(context.Background(), topic.Default(), &log)
	require.NoError(t, err)
	assert.Equal(t, Summary{Scored: 1, Failed: 1}, summary)

	// The bad reply is logged truncated; the paper keeps its unscored state.
	assert.Contains(t, log.String(), "warning:")
	assert.Contains(t, log.String(), "Sure! I would rate")
	_, updated := store.updates["pubmed:2"]
	assert.False(t, updated)
}

func TestScoreAllGeneratorErrorCountsAsFailed(t *testing.T) {
	store := &fakeStore{unscored: []types.Paper{unscoredPaper("pubmed:1", "Paper")}}
	gen := &fakeGenerator{genErr: errors.New("timeout")}
	engine := &Engine{Store: store, Generator: gen}

	summary, err := engine.ScoreAll(context.Background(), topic.Default(), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, Summary{Failed: 1}, summary)
}

func TestRenderUserMessage(t *testing.T) {
	msg, err := renderUserMessage(types.Paper{
		Title:    "A paper",
		Journal:  "A journal",
		Abstract: "An abstract.",
	})
	require.NoError(t, err)
	assert.Contains(t, msg, "**Title**: A paper")
	assert.Contains(t, msg, "**Journal**: A journal")
	assert.Contains(t, msg, "**Abstract**: An abstract.")
	assert.Contains(t, msg, "JSON only")

	msg, err = renderUserMessage(types.Paper{Title: "No abstract"})
	require.NoError(t, err)
	assert.Contains(t, msg, "No abstract available.")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "long st...", truncate("long string here", 10))
}
