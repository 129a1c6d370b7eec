// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/paper-tracker/internal/httputil"
	"github.com/pdiddy/paper-tracker/pkg/types"
)

// OllamaClient talks to a locally reachable Ollama server. It implements
// Generator.
type OllamaClient struct {
	Cfg    types.ScoringConfig
	Client *http.Client
}

// ollamaTagsResponse is the /api/tags envelope.
type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// CheckModel verifies the server is reachable and the configured model is
// loaded. Errors carry a remediation hint because a failed preflight aborts
// the whole scoring pass.
func (c *OllamaClient) CheckModel(ctx context.Context) error {
	if c.Cfg.StatusTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Cfg.StatusTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Cfg.BaseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("Ollama is not reachable at %s (start it with: ollama serve): %w", c.Cfg.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama status endpoint returned HTTP %d", resp.StatusCode)
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("parsing Ollama model list: %w", err)
	}

	var names []string
	for _, m := range tags.Models {
		// Tags look like "mistral:latest"; compare the base name.
		base, _, _ := strings.Cut(m.Name, ":")
		if base == c.Cfg.Model {
			return nil
		}
		names = append(names, base)
	}
	return fmt.Errorf("model %q not loaded (available: %s; run: ollama pull %s)",
		c.Cfg.Model, strings.Join(names, ", "), c.Cfg.Model)
}

// ollamaChatRequest is the /api/chat request body.
type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Options  ollamaChatOptions   `json:"options"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatOptions struct {
	Temperature float64 `json:"temperature"`
}

// ollamaChatResponse is the non-streaming /api/chat response body.
type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
}

// Generate sends one non-streaming chat request with the given system
// instruction and user message and returns the reply text.
func (c *OllamaClient) Generate(ctx context.Context, system, user string) (string, error) {
	if c.Cfg.ChatTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Cfg.ChatTimeout)
		defer cancel()
	}

	reqBody := ollamaChatRequest{
		Model: c.Cfg.Model,
		Messages: []ollamaChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream:  false,
		Options: ollamaChatOptions{Temperature: c.Cfg.Temperature},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Cfg.BaseURL+"/api/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.httpClient(), req, 0)
	if err != nil {
		return "", fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Ollama returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	var cr ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	return strings.TrimSpace(cr.Message.Content), nil
}

func (c *OllamaClient) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return http.DefaultClient
}
