// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-tracker/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// FetchConfig holds settings for the fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// LookbackDays is the trailing window, in days, over which new papers
	// are sought on each run (default 4).
	LookbackDays int `json:"lookback_days" yaml:"lookback_days" mapstructure:"lookback_days"`

	// MaxPerQuery caps the native keys returned per catalog search
	// (default 20).
	MaxPerQuery int `json:"max_per_query" yaml:"max_per_query" mapstructure:"max_per_query"`

	// MaxPerRun caps the papers handed to the store per run, after dedup
	// (default 50). Bounds downstream scoring cost.
	MaxPerRun int `json:"max_per_run" yaml:"max_per_run" mapstructure:"max_per_run"`

	// RequestDelay is the pause between consecutive catalog calls
	// (default 350 ms, polite to NCBI).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay" mapstructure:"request_delay"`

	// NCBIAPIKey is an optional E-utilities key for higher rate limits.
	NCBIAPIKey string `json:"ncbi_api_key,omitempty" yaml:"ncbi_api_key,omitempty" mapstructure:"ncbi_api_key"`
}

// ScoringConfig holds settings for the scoring stage.
type ScoringConfig struct {
	// BaseURL is the Ollama server address (default http://localhost:11434).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Model is the Ollama model name (default "mistral").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// Temperature is the sampling temperature for scoring calls (default 0.3).
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// ChatTimeout bounds a single generation call (default 120 s).
	ChatTimeout time.Duration `json:"chat_timeout" yaml:"chat_timeout" mapstructure:"chat_timeout"`

	// StatusTimeout bounds the preflight model-list call (default 5 s).
	StatusTimeout time.Duration `json:"status_timeout" yaml:"status_timeout" mapstructure:"status_timeout"`

	// ScoreDelay is the pause between consecutive scoring calls
	// (default 200 ms).
	ScoreDelay time.Duration `json:"score_delay" yaml:"score_delay" mapstructure:"score_delay"`
}

// StoreConfig holds settings for the paper store.
type StoreConfig struct {
	// Path is the SQLite database file (default "papers.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Scoring ScoringConfig `json:"scoring" yaml:"scoring" mapstructure:"scoring"`
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`

	// MinRelevanceScore is the default display threshold for listings
	// (default 5).
	MinRelevanceScore int `json:"min_relevance_score" yaml:"min_relevance_score" mapstructure:"min_relevance_score"`
}

// DefaultPipelineConfig returns the configuration used when no config file
// overrides a setting.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Fetch: FetchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   15 * time.Second,
				UserAgent: "paper-tracker/0.1",
			},
			LookbackDays: 4,
			MaxPerQuery:  20,
			MaxPerRun:    50,
			RequestDelay: 350 * time.Millisecond,
		},
		Scoring: ScoringConfig{
			BaseURL:       "http://localhost:11434",
			Model:         "mistral",
			Temperature:   0.3,
			ChatTimeout:   120 * time.Second,
			StatusTimeout: 5 * time.Second,
			ScoreDelay:    200 * time.Millisecond,
		},
		Store: StoreConfig{
			Path: "papers.db",
		},
		MinRelevanceScore: 5,
	}
}
