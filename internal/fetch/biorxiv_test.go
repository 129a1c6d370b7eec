// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-tracker/internal/topic"
	"github.com/pdiddy/paper-tracker/pkg/types"
)

func newBiorxivSource(t *testing.T, serverURL string, variant types.PaperSource) *BiorxivSource {
	t.Helper()
	orig := biorxivAPIBase
	biorxivAPIBase = serverURL
	t.Cleanup(func() { biorxivAPIBase = orig })
	return &BiorxivSource{
		Client:  &http.Client{},
		Variant: variant,
	}
}

func TestBiorxivFetchFiltersByQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/biorxiv/"))
		assert.True(t, strings.HasSuffix(r.URL.Path, "/0/100"))
		fmt.Fprint(w, `{"collection": [
			{"doi": "10.1101/a", "title": "Neoantigen prediction with deep learning",
			 "authors": "Smith, J.; Doe, J.", "abstract": "We predict.", "date": "2026-08-20"},
			{"doi": "10.1101/b", "title": "Unrelated plant genomics",
			 "authors": "Green, A.", "abstract": "Chloroplasts.", "date": "2026-08-21"},
			{"doi": "", "title": "Neoantigen paper without DOI",
			 "authors": "X", "abstract": "", "date": "2026-08-22"}
		]}`)
	}))
	defer server.Close()

	src := newBiorxivSource(t, server.URL, types.SourceBiorxiv)

	profile := topic.Profile{PreprintQueries: []string{"neoantigen"}}
	var log strings.Builder
	papers, err := src.Fetch(context.Background(), NewWindow(4), profile, &log)
	require.NoError(t, err)

	// Only the matching record with a DOI survives.
	require.Len(t, papers, 1)
	p := papers[0]
	assert.Equal(t, "biorxiv:10.1101/a", p.ID)
	assert.Equal(t, types.SourceBiorxiv, p.Source)
	assert.Equal(t, "Neoantigen prediction with deep learning", p.Title)
	assert.Equal(t, []string{"Smith, J.", "Doe, J."}, p.Authors)
	assert.Equal(t, "biorxiv (preprint)", p.Journal)
	assert.Equal(t, "2026-08-20", p.PublishedDate)
	assert.Equal(t, "https://doi.org/10.1101/a", p.URL)
	assert.Equal(t, "10.1101/a", p.DOI)
}

func TestBiorxivFetchMatchesAbstract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"collection": [
			{"doi": "10.1101/c", "title": "A study of tumors",
			 "authors": "Y", "abstract": "This work uses Neoantigen Vaccines.", "date": "2026-08-20"}
		]}`)
	}))
	defer server.Close()

	src := newBiorxivSource(t, server.URL, types.SourceMedrxiv)

	profile := topic.Profile{PreprintQueries: []string{"neoantigen vaccine"}}
	papers, err := src.Fetch(context.Background(), NewWindow(4), profile, io.Discard)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "medrxiv:10.1101/c", papers[0].ID)
	assert.Equal(t, "medrxiv (preprint)", papers[0].Journal)
}

func TestBiorxivFetchFailureYieldsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	src := newBiorxivSource(t, server.URL, types.SourceBiorxiv)

	var log strings.Builder
	papers, err := src.Fetch(context.Background(), NewWindow(4), topic.Profile{}, &log)
	require.NoError(t, err)
	assert.Empty(t, papers)
	assert.Contains(t, log.String(), "warning: biorxiv fetch")
}

func TestMatchesAnyQuery(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		abstract string
		queries  []string
		want     bool
	}{
		{"title match", "Neoantigen discovery", "", []string{"neoantigen"}, true},
		{"abstract match", "A paper", "about TUMOR ANTIGEN targets", []string{"tumor antigen"}, true},
		{"no match", "A paper", "about plants", []string{"neoantigen"}, false},
		{"no queries", "Anything", "at all", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesAnyQuery(tt.title, tt.abstract, tt.queries); got != tt.want {
				t.Errorf("matchesAnyQuery() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitAuthors(t *testing.T) {
	assert.Equal(t, []string{"Smith, J.", "Doe, J."}, splitAuthors("Smith, J.; Doe, J."))
	assert.Equal(t, []string{"Solo"}, splitAuthors("Solo"))
	assert.Nil(t, splitAuthors(""))
	assert.Nil(t, splitAuthors(" ; "))
}
