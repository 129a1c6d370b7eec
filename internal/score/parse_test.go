// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    Result
		wantErr bool
	}{
		{
			name:  "plain JSON",
			reply: `{"relevance_score": 8, "summary": "good", "key_finding": "works", "tags": ["mRNA", "clinical-trial"]}`,
			want:  Result{Score: 8, Summary: "good", KeyFinding: "works", Tags: []string{"mRNA", "clinical-trial"}},
		},
		{
			name:  "fenced with language tag",
			reply: "```json\n{\"relevance_score\": 7, \"summary\": \"s\"}\n```",
			want:  Result{Score: 7, Summary: "s"},
		},
		{
			name:  "fenced without language tag",
			reply: "```\n{\"relevance_score\": 5}\n```",
			want:  Result{Score: 5},
		},
		{
			name:  "score above range clamps to 10",
			reply: `{"relevance_score": 42}`,
			want:  Result{Score: 10},
		},
		{
			name:  "score below range clamps to 1",
			reply: `{"relevance_score": -3}`,
			want:  Result{Score: 1},
		},
		{
			name:  "numeric string score",
			reply: `{"relevance_score": "9"}`,
			want:  Result{Score: 9},
		},
		{
			name:  "non-numeric score defaults to 1",
			reply: `{"relevance_score": "very relevant"}`,
			want:  Result{Score: 1},
		},
		{
			name:  "missing fields get defaults",
			reply: `{}`,
			want:  Result{Score: 1},
		},
		{
			name:  "wrong-typed fields get defaults",
			reply: `{"relevance_score": 6, "summary": 12, "key_finding": null, "tags": "not-a-list"}`,
			want:  Result{Score: 6},
		},
		{
			name:  "non-string tags dropped",
			reply: `{"relevance_score": 6, "tags": ["ok", 3, "", "also"]}`,
			want:  Result{Score: 6, Tags: []string{"ok", "also"}},
		},
		{
			name:    "prose reply fails",
			reply:   "I would rate this paper an 8 out of 10.",
			wantErr: true,
		},
		{
			name:    "empty reply fails",
			reply:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReply(tt.reply)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"{\"a\": 1}", "{\"a\": 1}"},
		{"```json\n{\"a\": 1}\n```", "{\"a\": 1}"},
		{"```\n{\"a\": 1}\n```", "{\"a\": 1}"},
		{"  ```json\n{\"a\": 1}\n```  ", "{\"a\": 1}"},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
