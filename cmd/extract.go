package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/contract-extractor/internal/contracts"
	"github.com/JakeFAU/contract-extractor/internal/logging"
)

// newExtractCmd creates the 'extract' subcommand for a single document.
func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract metadata from a single contract document",
		Long: `Runs one document through the read-and-extract path and prints the
metadata as JSON. Useful for spot checks before a full batch run.`,
		Args: cobra.ExactArgs(1),
		RunE: runExtractCommand,
	}
	cmd.Flags().String("out", "", "write the JSON payload to this path instead of stdout")
	return cmd
}

func runExtractCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve %s: %w", args[0], err)
	}
	cfg.Source.Kind = "local"
	cfg.Source.Local.Dir = filepath.Dir(path)

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, _, cleanup, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	md, err := p.ExtractOne(ctx, contracts.WorkItem{
		Name:     filepath.Base(path),
		Location: path,
		Source:   contracts.SourceLocal,
	})
	if err != nil {
		return fmt.Errorf("extract %s: %w", path, err)
	}

	payload, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := os.WriteFile(out, payload, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "metadata written to %s\n", out)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(payload))
	return nil
}
