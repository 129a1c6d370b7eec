// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-tracker/internal/fetch"
	"github.com/pdiddy/paper-tracker/internal/pipeline"
	"github.com/pdiddy/paper-tracker/internal/score"
	"github.com/pdiddy/paper-tracker/internal/store"
	"github.com/pdiddy/paper-tracker/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch new papers, then score them if any were added",
	Long: `Run executes the combined pipeline: fetch from all catalogs, deduplicate,
store, and score with the local Ollama model. Scoring is skipped when the
fetch stage added no new papers. Partial failures are logged and do not
fail the process.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	p, st, err := buildPipeline()
	if err != nil {
		return err
	}
	defer st.Close()

	printBanner("paper-tracker run")
	if err := p.Run(context.Background(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return nil
}

// buildPipeline assembles the stages from configuration. The caller owns
// the returned store.
func buildPipeline() (*pipeline.Pipeline, *store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	profile, err := loadProfile()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	client := &http.Client{}

	sources := []fetch.Source{
		&fetch.PubMedSource{Client: client, Cfg: cfg.Fetch, Registry: st},
		&fetch.BiorxivSource{Client: client, Cfg: cfg.Fetch, Variant: types.SourceBiorxiv},
		&fetch.BiorxivSource{Client: client, Cfg: cfg.Fetch, Variant: types.SourceMedrxiv},
	}

	engine := &score.Engine{
		Store:     st,
		Generator: &score.OllamaClient{Cfg: cfg.Scoring, Client: client},
		Cfg:       cfg.Scoring,
	}

	p := &pipeline.Pipeline{
		Store:   st,
		Sources: sources,
		Engine:  engine,
		Profile: profile,
		Cfg:     cfg,
	}
	return p, st, nil
}

func printBanner(title string) {
	fmt.Printf("%s (%s)\n", title, time.Now().Format("2006-01-02 15:04"))
}

func init() {
	rootCmd.AddCommand(runCmd)
}
