// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package topic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeProfile(t, `
name: crispr-delivery
pubmed_queries:
  - CRISPR delivery nanoparticle
preprint_queries:
  - crispr delivery
rubric: |
  Score each paper from 1-10.
`)

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "crispr-delivery", p.Name)
	assert.Equal(t, []string{"CRISPR delivery nanoparticle"}, p.PubMedQueries)
	assert.Equal(t, []string{"crispr delivery"}, p.PreprintQueries)
	assert.Contains(t, p.Rubric, "Score each paper")
}

func TestLoadFallsBackToDefaultRubric(t *testing.T) {
	path := writeProfile(t, `
name: minimal
pubmed_queries:
  - some query
`)

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Rubric, p.Rubric)
}

func TestLoadRejectsProfileWithoutQueries(t *testing.T) {
	path := writeProfile(t, `
name: empty
rubric: something
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defines no queries")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	p := Default()
	assert.Equal(t, "neoantigen-vaccines", p.Name)
	assert.NotEmpty(t, p.PubMedQueries)
	assert.NotEmpty(t, p.PreprintQueries)
	assert.Contains(t, p.Rubric, "relevance_score")
}
