// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score all unscored papers with the local Ollama model",
	Long: `Score sends every unscored paper to the configured Ollama model and
stores the parsed relevance judgment. The pass is aborted before touching
any record when the server is unreachable or the model is not loaded.
Papers whose reply cannot be parsed stay unscored and are retried on the
next run.`,
	RunE: runScore,
}

func runScore(cmd *cobra.Command, args []string) error {
	p, st, err := buildPipeline()
	if err != nil {
		return err
	}
	defer st.Close()

	printBanner("paper-tracker score")
	if _, err := p.Score(context.Background(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}
