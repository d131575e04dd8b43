package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	cloudpubsub "cloud.google.com/go/pubsub"
	gcsclient "cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/contract-extractor/internal/api"
	"github.com/JakeFAU/contract-extractor/internal/clock/system"
	"github.com/JakeFAU/contract-extractor/internal/config"
	"github.com/JakeFAU/contract-extractor/internal/contracts"
	"github.com/JakeFAU/contract-extractor/internal/executor"
	"github.com/JakeFAU/contract-extractor/internal/export"
	"github.com/JakeFAU/contract-extractor/internal/id/uuid"
	"github.com/JakeFAU/contract-extractor/internal/llm/gemini"
	"github.com/JakeFAU/contract-extractor/internal/logging"
	"github.com/JakeFAU/contract-extractor/internal/pipeline"
	"github.com/JakeFAU/contract-extractor/internal/progress/sinks"
	pubsubpub "github.com/JakeFAU/contract-extractor/internal/publisher/pubsub"
	"github.com/JakeFAU/contract-extractor/internal/reader"
	"github.com/JakeFAU/contract-extractor/internal/source/gcs"
	"github.com/JakeFAU/contract-extractor/internal/source/local"
	"github.com/JakeFAU/contract-extractor/internal/store/postgres"
)

// newRunCmd creates and configures the 'run' subcommand, which processes a
// whole batch of contracts.
func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract metadata from every contract in the source",
		Long: `Enumerates the configured source, runs every document through the
extraction pool, and writes one CSV row per document. Documents that fail
after the retry budget keep their row with the failure reason.`,
		RunE: runBatchCommand,
	}
	cmd.Flags().String("source", "", "document source: local or gcs (default from config)")
	cmd.Flags().String("input", "", "folder with contract documents (local source)")
	cmd.Flags().String("bucket", "", "bucket with contract documents (gcs source)")
	cmd.Flags().String("prefix", "", "object prefix inside the bucket")
	cmd.Flags().String("output", "", "CSV output path")
	cmd.Flags().String("xlsx", "", "also write an XLSX workbook to this path")
	cmd.Flags().Bool("sequential", false, "process documents one at a time")
	cmd.Flags().Int("workers", 0, "worker count override")
	cmd.Flags().Bool("no-prompt", false, "skip interactive prompts, use config and flags as-is")
	return cmd
}

func runBatchCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, &cfg)

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	noPrompt, _ := cmd.Flags().GetBool("no-prompt")
	if !noPrompt {
		promptForPaths(cmd, &cfg)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, registry, cleanup, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	stopServer := startStatusServer(cfg, p, registry, logger)
	defer stopServer()

	promSink, err := sinks.NewPrometheusSink(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	outcome, err := p.Run(ctx,
		sinks.NewConsoleSink(cmd.OutOrStdout()),
		sinks.NewLogSink(logger),
		promSink,
	)
	if err != nil {
		return err
	}

	if err := export.WriteSummary(cmd.OutOrStdout(), outcome.Summary); err != nil {
		return err
	}
	if outcome.Summary.Failed > 0 && outcome.Summary.Succeeded == 0 && outcome.Summary.Total > 0 {
		return fmt.Errorf("all %d documents failed", outcome.Summary.Total)
	}
	return nil
}

// applyRunFlags lets command-line flags override the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetString("source"); v != "" {
		cfg.Source.Kind = v
	}
	if v, _ := cmd.Flags().GetString("input"); v != "" {
		cfg.Source.Local.Dir = v
	}
	if v, _ := cmd.Flags().GetString("bucket"); v != "" {
		cfg.Source.GCS.Bucket = v
	}
	if v, _ := cmd.Flags().GetString("prefix"); v != "" {
		cfg.Source.GCS.Prefix = v
	}
	if v, _ := cmd.Flags().GetString("output"); v != "" {
		cfg.Output.CSVPath = v
	}
	if v, _ := cmd.Flags().GetString("xlsx"); v != "" {
		cfg.Output.XLSXPath = v
	}
	if v, _ := cmd.Flags().GetBool("sequential"); v {
		cfg.Executor.Sequential = true
	}
	if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
		cfg.Executor.MaxWorkers = v
	}
}

// promptForPaths asks for the handful of values operators change between
// runs. Empty answers keep the shown defaults.
func promptForPaths(cmd *cobra.Command, cfg *config.Config) {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	if kind := prompt(in, out, "Source (local/gcs)", cfg.Source.Kind); kind == "local" || kind == "gcs" {
		cfg.Source.Kind = kind
	}
	switch cfg.Source.Kind {
	case "local":
		cfg.Source.Local.Dir = prompt(in, out, "Contracts folder", cfg.Source.Local.Dir)
	case "gcs":
		cfg.Source.GCS.Bucket = prompt(in, out, "Bucket", cfg.Source.GCS.Bucket)
		cfg.Source.GCS.Prefix = prompt(in, out, "Object prefix", cfg.Source.GCS.Prefix)
	}
	cfg.Output.CSVPath = prompt(in, out, "Output CSV", cfg.Output.CSVPath)
}

func prompt(in *bufio.Reader, out io.Writer, label, def string) string {
	fmt.Fprintf(out, "%s [%s]: ", label, def)
	line, err := in.ReadString('\n')
	if err != nil {
		return def
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

// buildPipeline assembles the batch subsystems from config. The returned
// cleanup closes every client it opened.
func buildPipeline(ctx context.Context, cfg config.Config, logger *zap.Logger) (*pipeline.Pipeline, *prometheus.Registry, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	source, err := buildSource(ctx, cfg, &closers)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	extractor, err := gemini.New(ctx, cfg.Gemini, logger)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	opts := pipeline.Options{
		Executor: executor.Options{
			Workers:      cfg.Executor.MaxWorkers,
			MaxRetries:   cfg.Executor.MaxRetries,
			RetryDelay:   cfg.Executor.RetryDelay(),
			RateLimitRPS: cfg.Executor.RateLimitRPS,
			Sequential:   cfg.Executor.Sequential,
		},
		CSVPath:  cfg.Output.CSVPath,
		XLSXPath: cfg.Output.XLSXPath,
		Topic:    cfg.PubSub.TopicName,
	}

	p, err := pipeline.New(source, reader.New(nil), extractor, system.New(), uuid.NewUUIDGenerator(), logger, opts)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	if cfg.DB.DSN != "" {
		store, err := postgres.NewResultStore(ctx, postgres.ResultStoreConfig{
			DSN:         cfg.DB.DSN,
			BatchTable:  cfg.DB.BatchTable,
			ResultTable: cfg.DB.ResultTable,
		})
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		closers = append(closers, store.Close)
		p.WithStore(store)
	}

	if cfg.PubSub.TopicName != "" {
		client, err := cloudpubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("create pubsub client: %w", err)
		}
		topic := client.Topic(cfg.PubSub.TopicName)
		closers = append(closers, topic.Stop, func() { _ = client.Close() })
		p.WithPublisher(pubsubpub.New(topic))
	}

	return p, prometheus.NewRegistry(), cleanup, nil
}

func buildSource(ctx context.Context, cfg config.Config, closers *[]func()) (contracts.Source, error) {
	switch cfg.Source.Kind {
	case "local":
		return local.New(cfg.Source.Local)
	case "gcs":
		client, err := gcsclient.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		*closers = append(*closers, func() { _ = client.Close() })
		return gcs.New(client, cfg.Source.GCS)
	default:
		return nil, fmt.Errorf("unsupported source kind %q", cfg.Source.Kind)
	}
}

// startStatusServer serves health, metrics and live batch progress while the
// run is in flight. Returns a stop function; a no-op when disabled.
func startStatusServer(cfg config.Config, p *pipeline.Pipeline, registry *prometheus.Registry, logger *zap.Logger) func() {
	if !cfg.Server.Enabled {
		return func() {}
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewServer(p, registry, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("status server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("status server stopped", zap.Error(err))
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
