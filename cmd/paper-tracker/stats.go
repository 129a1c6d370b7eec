// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-tracker/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print store counters: total, scored, high relevance, starred, per source",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("papers:          %d\n", stats.Total)
	fmt.Printf("scored:          %d\n", stats.Scored)
	fmt.Printf("high relevance:  %d (score >= 7)\n", stats.HighRelevance)
	fmt.Printf("starred:         %d\n", stats.Starred)
	for source, n := range stats.Sources {
		fmt.Printf("  %-12s %d\n", source+":", n)
	}
	return nil
}

func init() {
	statsCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(statsCmd)
}
