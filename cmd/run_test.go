package cmd

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/contract-extractor/internal/config"
)

func TestApplyRunFlags(t *testing.T) {
	cmd := newRunCmd()
	require.NoError(t, cmd.Flags().Set("source", "gcs"))
	require.NoError(t, cmd.Flags().Set("bucket", "contracts"))
	require.NoError(t, cmd.Flags().Set("output", "batch.csv"))
	require.NoError(t, cmd.Flags().Set("sequential", "true"))
	require.NoError(t, cmd.Flags().Set("workers", "4"))

	cfg, err := config.Load("")
	require.NoError(t, err)
	applyRunFlags(cmd, &cfg)

	require.Equal(t, "gcs", cfg.Source.Kind)
	require.Equal(t, "contracts", cfg.Source.GCS.Bucket)
	require.Equal(t, "batch.csv", cfg.Output.CSVPath)
	require.True(t, cfg.Executor.Sequential)
	require.Equal(t, 4, cfg.Executor.MaxWorkers)
}

func TestPrompt_EmptyKeepsDefault(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader("\n"))

	got := prompt(in, &out, "Contracts folder", "sample_contracts")
	require.Equal(t, "sample_contracts", got)
	require.Contains(t, out.String(), "Contracts folder [sample_contracts]: ")
}

func TestPrompt_AnswerOverridesDefault(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader("  /data/contracts \n"))

	got := prompt(in, &out, "Contracts folder", "sample_contracts")
	require.Equal(t, "/data/contracts", got)
}

func TestPromptForPaths_UsesSourceKind(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Source.Kind = "gcs"
	cfg.Source.GCS.Bucket = "documents"

	cmd := newRunCmd()
	cmd.SetIn(strings.NewReader("\ncontracts\narchive/\nresults.csv\n"))
	var out bytes.Buffer
	cmd.SetOut(&out)

	promptForPaths(cmd, &cfg)
	require.Equal(t, "contracts", cfg.Source.GCS.Bucket)
	require.Equal(t, "archive/", cfg.Source.GCS.Prefix)
	require.Equal(t, "results.csv", cfg.Output.CSVPath)
}
