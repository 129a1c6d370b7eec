// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-tracker CLI.
//
// paper-tracker discovers newly published papers on a tracked topic,
// deduplicates them against prior runs, and scores their relevance with a
// local Ollama model. Each pipeline stage is a subcommand: fetch, score,
// and run (fetch then score).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-tracker/internal/secrets"
	"github.com/pdiddy/paper-tracker/internal/topic"
	"github.com/pdiddy/paper-tracker/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

var rootCmd = &cobra.Command{
	Use:   "paper-tracker",
	Short: "Track and score newly published papers on a fixed research topic",
	Long: `paper-tracker periodically discovers newly published scientific papers
matching a tracked topic, deduplicates them against prior runs, and attaches
a relevance score and summary generated by a local Ollama model.

Run "paper-tracker run" twice a week for the full pipeline, or use the fetch
and score subcommands separately. Stored papers are browsed with "papers
list" and annotated with "papers star" and "papers notes".`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-tracker.yaml or ~/.config/paper-tracker/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "papers database file (default from config, papers.db)")
	rootCmd.PersistentFlags().String("topic", "", "topic profile YAML (default: built-in neoantigen vaccine profile)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-tracker")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-tracker"))
		}
	}

	viper.SetEnvPrefix("PAPER_TRACKER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig merges the config file and environment over the defaults.
func loadConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing configuration: %w", err)
	}

	if db, _ := rootCmd.PersistentFlags().GetString("db"); db != "" {
		cfg.Store.Path = db
	}
	if cfg.Fetch.NCBIAPIKey == "" {
		cfg.Fetch.NCBIAPIKey = loadedSecrets["ncbi-api-key"]
	}
	return cfg, nil
}

// loadProfile returns the topic profile from --topic, or the built-in
// default.
func loadProfile() (topic.Profile, error) {
	path, _ := rootCmd.PersistentFlags().GetString("topic")
	if path == "" {
		return topic.Default(), nil
	}
	return topic.Load(path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
