// Package cmd defines and implements the CLI commands for the extractor
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/contract-extractor/internal/config"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contract-extractor",
		Short: "Batch metadata extraction for multilingual contract documents.",
		Long: `contract-extractor reads contract documents from a local folder or a
cloud bucket, extracts structured CLM metadata from each one with a
multilingual LLM, and writes the results to CSV for import.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml if present)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newExtractCmd())

	return cmd
}

// loadConfig resolves the --config flag, falling back to ./config.yaml when
// one exists.
func loadConfig() (config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
