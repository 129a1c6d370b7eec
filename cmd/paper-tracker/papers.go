// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-tracker/internal/store"
	"github.com/pdiddy/paper-tracker/pkg/types"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "Browse and annotate stored papers",
	Long: `Papers lists scored papers and manages the two user-controlled fields:
the starred flag and free-text notes. Everything else on a stored paper is
immutable after scoring.`,
}

// --- list subcommand ---

var papersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scored papers filtered by score, source, or tag",
	RunE:  runPapersList,
}

func runPapersList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	minScore, _ := cmd.Flags().GetInt("min-score")
	if !cmd.Flags().Changed("min-score") {
		minScore = cfg.MinRelevanceScore
	}
	limit, _ := cmd.Flags().GetInt("limit")
	source, _ := cmd.Flags().GetString("source")
	tag, _ := cmd.Flags().GetString("tag")

	papers, err := st.ListScored(context.Background(), store.ListOptions{
		MinScore: minScore,
		Limit:    limit,
		Source:   types.PaperSource(source),
		Tag:      tag,
	})
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	}

	if len(papers) == 0 {
		fmt.Println("No papers found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-5s  %-60s  %-10s  %-12s  %s\n",
		"Score", "Title", "Source", "Published", "ID")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for _, p := range papers {
		title := p.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		star := " "
		if p.Starred {
			star = "*"
		}
		fmt.Fprintf(os.Stdout, "%s%-4d  %-60s  %-10s  %-12s  %s\n",
			star, *p.RelevanceScore, title, p.Source, p.PublishedDate, p.ID)
	}

	fmt.Fprintf(os.Stdout, "\n%d paper(s)\n", len(papers))
	return nil
}

// --- show subcommand ---

var papersShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one paper in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runPapersShow,
}

func runPapersShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	paper, err := st.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("paper %s: %w", args[0], err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(paper)
}

// --- star subcommand ---

var papersStarCmd = &cobra.Command{
	Use:   "star <id>",
	Short: "Toggle the starred flag on a paper",
	Args:  cobra.ExactArgs(1),
	RunE:  runPapersStar,
}

func runPapersStar(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	return st.ToggleStarred(context.Background(), args[0])
}

// --- notes subcommand ---

var papersNotesCmd = &cobra.Command{
	Use:   "notes <id> <text>",
	Short: "Replace the notes on a paper",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runPapersNotes,
}

func runPapersNotes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	return st.SetNotes(context.Background(), args[0], strings.Join(args[1:], " "))
}

func init() {
	papersListCmd.Flags().Int("min-score", 5, "minimum relevance score (default from config)")
	papersListCmd.Flags().Int("limit", 100, "maximum papers to list")
	papersListCmd.Flags().String("source", "", "filter by catalog: pubmed, biorxiv, medrxiv")
	papersListCmd.Flags().String("tag", "", "filter by tag")
	papersListCmd.Flags().Bool("json", false, "output as JSON")

	papersCmd.AddCommand(papersListCmd)
	papersCmd.AddCommand(papersShowCmd)
	papersCmd.AddCommand(papersStarCmd)
	papersCmd.AddCommand(papersNotesCmd)

	rootCmd.AddCommand(papersCmd)
}
