// Package pipeline orchestrates a batch run: enumerate the source, drive
// every document through read and extract, then render the outputs.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/contract-extractor/internal/contracts"
	"github.com/JakeFAU/contract-extractor/internal/executor"
	"github.com/JakeFAU/contract-extractor/internal/export"
	"github.com/JakeFAU/contract-extractor/internal/progress"
	"github.com/JakeFAU/contract-extractor/internal/reader"
)

// Options configures one batch run.
type Options struct {
	// Executor controls worker count and retry policy.
	Executor executor.Options
	// CSVPath is where the result table lands. Empty skips the CSV.
	CSVPath string
	// XLSXPath additionally writes a workbook when set.
	XLSXPath string
	// Topic names the Pub/Sub topic for the batch-done event. Empty skips
	// publishing.
	Topic string
}

// Pipeline wires the batch subsystems together. Source, extractor, clock and
// id generator are required; publisher and store are optional.
type Pipeline struct {
	source    contracts.Source
	reader    *reader.Reader
	extractor contracts.Extractor
	clock     contracts.Clock
	idGen     contracts.IDGenerator
	publisher contracts.Publisher
	store     contracts.ResultStore
	logger    *zap.Logger
	opts      Options

	mu      sync.RWMutex
	tracker *progress.Tracker
}

// New constructs a Pipeline.
func New(
	source contracts.Source,
	docReader *reader.Reader,
	extractor contracts.Extractor,
	clock contracts.Clock,
	idGen contracts.IDGenerator,
	logger *zap.Logger,
	opts Options,
) (*Pipeline, error) {
	if source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if docReader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("clock is required")
	}
	if idGen == nil {
		return nil, fmt.Errorf("id generator is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		source:    source,
		reader:    docReader,
		extractor: extractor,
		clock:     clock,
		idGen:     idGen,
		logger:    logger,
		opts:      opts,
	}, nil
}

// WithPublisher attaches a publisher for the batch-done event.
func (p *Pipeline) WithPublisher(pub contracts.Publisher) *Pipeline {
	p.publisher = pub
	return p
}

// WithStore attaches a result store for batch and per-item rows.
func (p *Pipeline) WithStore(store contracts.ResultStore) *Pipeline {
	p.store = store
	return p
}

// Outcome is everything a finished batch produced.
type Outcome struct {
	BatchID string
	Results []contracts.ExtractionResult
	Summary contracts.BatchSummary
}

// Run executes one full batch and returns its outcome. Enumeration failures
// abort the batch; per-item failures are recorded and never do.
func (p *Pipeline) Run(ctx context.Context, sinks ...progress.Sink) (Outcome, error) {
	batchID, err := p.idGen.NewID()
	if err != nil {
		return Outcome{}, fmt.Errorf("generate batch id: %w", err)
	}

	items, err := p.source.List(ctx, reader.SupportedExtensions())
	if err != nil {
		return Outcome{}, fmt.Errorf("enumerate source: %w", err)
	}
	p.logger.Info("batch enumerated",
		zap.String("batch_id", batchID),
		zap.Int("items", len(items)),
	)

	tracker := progress.NewTracker(batchID, len(items), p.logger, sinks...)
	p.setTracker(tracker)
	defer tracker.Close(ctx)
	tracker.BatchStart()

	start := p.clock.Now()
	exec := executor.New(p.clock, p.logger, p.opts.Executor)
	results := exec.Run(ctx, items, p.processOne, tracker)
	elapsed := p.clock.Now().Sub(start)

	tracker.BatchDone(elapsed)
	summary := contracts.Summarize(batchID, results, elapsed)

	if err := p.writeOutputs(results); err != nil {
		return Outcome{}, err
	}
	p.record(ctx, batchID, results, summary)

	return Outcome{BatchID: batchID, Results: results, Summary: summary}, nil
}

func (p *Pipeline) setTracker(t *progress.Tracker) {
	p.mu.Lock()
	p.tracker = t
	p.mu.Unlock()
}

// Snapshot reads the live counters of the batch in flight. Before any batch
// has started it returns the zero Snapshot.
func (p *Pipeline) Snapshot() progress.Snapshot {
	p.mu.RLock()
	t := p.tracker
	p.mu.RUnlock()
	if t == nil {
		return progress.Snapshot{}
	}
	return t.Snapshot()
}

// ExtractOne runs the fetch-read-extract path for a single item without the
// batch machinery. Used by the single-document CLI mode.
func (p *Pipeline) ExtractOne(ctx context.Context, item contracts.WorkItem) (contracts.Metadata, error) {
	return p.processOne(ctx, item)
}

// processOne is the per-item attempt: fetch, decode, extract, stamp.
func (p *Pipeline) processOne(ctx context.Context, item contracts.WorkItem) (contracts.Metadata, error) {
	data, err := p.source.Fetch(ctx, item)
	if err != nil {
		return contracts.Metadata{}, fmt.Errorf("fetch: %w", err)
	}
	text, err := p.reader.Read(ctx, item, data)
	if err != nil {
		return contracts.Metadata{}, err
	}
	md, err := p.extractor.Extract(ctx, text, item)
	if err != nil {
		return contracts.Metadata{}, err
	}
	md.ExtractedAt = p.clock.Now().UTC()
	return md, nil
}

func (p *Pipeline) writeOutputs(results []contracts.ExtractionResult) error {
	if p.opts.CSVPath != "" {
		f, err := os.Create(p.opts.CSVPath)
		if err != nil {
			return fmt.Errorf("create csv %s: %w", p.opts.CSVPath, err)
		}
		if err := export.WriteCSV(f, results); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close csv: %w", err)
		}
		p.logger.Info("csv written", zap.String("path", p.opts.CSVPath), zap.Int("rows", len(results)))
	}
	if p.opts.XLSXPath != "" {
		data, err := export.WriteXLSX(results)
		if err != nil {
			return err
		}
		if err := os.WriteFile(p.opts.XLSXPath, data, 0o644); err != nil {
			return fmt.Errorf("write xlsx %s: %w", p.opts.XLSXPath, err)
		}
		p.logger.Info("xlsx written", zap.String("path", p.opts.XLSXPath))
	}
	return nil
}

// record pushes the batch into the optional store and publisher. Failures
// here are logged, not fatal; the primary outputs already landed.
func (p *Pipeline) record(ctx context.Context, batchID string, results []contracts.ExtractionResult, summary contracts.BatchSummary) {
	if p.store != nil {
		if err := p.store.RecordBatch(ctx, summary); err != nil {
			p.logger.Warn("record batch failed", zap.Error(err))
		}
		for _, r := range results {
			if err := p.store.RecordResult(ctx, batchID, r); err != nil {
				p.logger.Warn("record result failed",
					zap.String("file", r.Item.Name),
					zap.Error(err),
				)
			}
		}
	}
	if p.publisher != nil && p.opts.Topic != "" {
		payload := map[string]any{
			"batch_id":   batchID,
			"total":      summary.Total,
			"succeeded":  summary.Succeeded,
			"failed":     summary.Failed,
			"elapsed_ms": summary.Elapsed.Milliseconds(),
			"created_at": time.Now().UTC().Format(time.RFC3339),
		}
		if _, err := p.publisher.Publish(ctx, p.opts.Topic, payload); err != nil {
			p.logger.Warn("publish batch event failed", zap.Error(err))
		}
	}
}
