// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Result is the strict, typed judgment coerced out of a model reply.
type Result struct {
	Score      int
	Summary    string
	KeyFinding string
	Tags       []string
}

// ParseReply coerces a free-text model reply into a Result. Code fences are
// stripped, the remainder must decode as one JSON object, and each field is
// coerced with a named default: score clamps to [1,10] and falls back to 1
// when missing or non-numeric, text fields fall back to empty strings, tags
// to an empty list. A reply that does not decode yields an error; the paper
// stays unscored and eligible for a later run.
func ParseReply(text string) (Result, error) {
	text = stripFences(text)

	var raw struct {
		RelevanceScore any `json:"relevance_score"`
		Summary        any `json:"summary"`
		KeyFinding     any `json:"key_finding"`
		Tags           any `json:"tags"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Result{}, fmt.Errorf("reply is not a JSON object: %w", err)
	}

	return Result{
		Score:      clampScore(coerceScore(raw.RelevanceScore)),
		Summary:    coerceString(raw.Summary),
		KeyFinding: coerceString(raw.KeyFinding),
		Tags:       coerceTags(raw.Tags),
	}, nil
}

// stripFences removes a surrounding Markdown code fence, including any
// language tag on the opening line.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if _, rest, ok := strings.Cut(text, "\n"); ok {
		text = rest
	} else {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func coerceScore(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return 1
}

func clampScore(n int) int {
	if n < 1 {
		return 1
	}
	if n > 10 {
		return 10
	}
	return n
}

func coerceString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func coerceTags(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var tags []string
	for _, elem := range list {
		if s, ok := elem.(string); ok && s != "" {
			tags = append(tags, s)
		}
	}
	return tags
}
