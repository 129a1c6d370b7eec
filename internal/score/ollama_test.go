// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-tracker/pkg/types"
)

func newOllamaClient(serverURL, model string) *OllamaClient {
	return &OllamaClient{
		Cfg: types.ScoringConfig{
			BaseURL:     serverURL,
			Model:       model,
			Temperature: 0.3,
		},
		Client: &http.Client{},
	}
}

func TestCheckModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		fmt.Fprint(w, `{"models": [{"name": "mistral:latest"}, {"name": "llama3:8b"}]}`)
	}))
	defer server.Close()

	// Tag suffixes do not matter; the base name does.
	assert.NoError(t, newOllamaClient(server.URL, "mistral").CheckModel(context.Background()))

	err := newOllamaClient(server.URL, "phi").CheckModel(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `model "phi" not loaded`)
	assert.Contains(t, err.Error(), "ollama pull phi")
}

func TestCheckModelUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	err := newOllamaClient(server.URL, "mistral").CheckModel(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama serve")
}

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mistral", req.Model)
		assert.False(t, req.Stream)
		assert.InDelta(t, 0.3, req.Options.Temperature, 0.001)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "rubric text", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)

		fmt.Fprint(w, `{"message": {"role": "assistant", "content": "  {\"relevance_score\": 8}  "}}`)
	}))
	defer server.Close()

	reply, err := newOllamaClient(server.URL, "mistral").Generate(context.Background(), "rubric text", "evaluate this")
	require.NoError(t, err)
	assert.Equal(t, `{"relevance_score": 8}`, reply)
}

func TestGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newOllamaClient(server.URL, "mistral").Generate(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}
