// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch new papers from all catalogs without scoring",
	Long: `Fetch queries PubMed and the bioRxiv/medRxiv bulk listings over the
lookback window, deduplicates the candidates against the store and within
the run, and persists new papers in the unscored state. No Ollama server is
needed for this mode.`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	p, st, err := buildPipeline()
	if err != nil {
		return err
	}
	defer st.Close()

	printBanner("paper-tracker fetch")
	if _, err := p.Fetch(context.Background(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
