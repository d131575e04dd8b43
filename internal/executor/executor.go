// Package executor implements the bounded concurrent retry pipeline that
// drives every work item to a final extraction result.
package executor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/JakeFAU/contract-extractor/internal/contracts"
	"github.com/JakeFAU/contract-extractor/internal/progress"
)

// Options controls pool sizing and the per-item retry policy.
type Options struct {
	// Workers caps concurrent extraction calls. Default 10.
	Workers int
	// MaxRetries is the retry budget per item beyond the first attempt, so an
	// item sees at most MaxRetries+1 tries. Default 3.
	MaxRetries int
	// RetryDelay is the base backoff; retry a waits RetryDelay * 2^a. Default 2s.
	RetryDelay time.Duration
	// RateLimitRPS is a global request cap shared by all workers. <=0 disables.
	RateLimitRPS float64
	// Sequential forces a single worker. Outcome semantics are identical to
	// the parallel path.
	Sequential bool
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 10
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 2 * time.Second
	}
	if o.Sequential {
		o.Workers = 1
	}
	return o
}

// ProcessFunc performs one extraction attempt for an item. Rate-limit shaped
// failures must satisfy contracts.IsRetryable; everything else is fatal.
type ProcessFunc func(ctx context.Context, item contracts.WorkItem) (contracts.Metadata, error)

// Executor runs batches of work items through a worker pool with per-item
// retry and live progress reporting.
type Executor struct {
	clock  contracts.Clock
	logger *zap.Logger
	opts   Options
}

// New constructs an Executor.
func New(clock contracts.Clock, logger *zap.Logger, opts Options) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		clock:  clock,
		logger: logger,
		opts:   opts.withDefaults(),
	}
}

// Run drives every item to a final ExtractionResult. It returns exactly one
// result per input item, in completion order, and returns only after all
// items have resolved. Per-item failures are captured as data and never
// propagate as errors; one item's outcome cannot affect another's.
func (e *Executor) Run(
	ctx context.Context,
	items []contracts.WorkItem,
	process ProcessFunc,
	tracker *progress.Tracker,
) []contracts.ExtractionResult {
	if len(items) == 0 {
		return nil
	}

	var limiter *rate.Limiter
	if e.opts.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(e.opts.RateLimitRPS), 1)
	}

	jobs := make(chan contracts.WorkItem)
	done := make(chan contracts.ExtractionResult, e.opts.Workers)

	var wg sync.WaitGroup
	for i := 0; i < e.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				res := e.processItem(ctx, item, process, limiter, tracker)
				if tracker != nil {
					tracker.ItemDone(item, res)
				}
				done <- res
			}
		}()
	}

	go func() {
		for _, item := range items {
			jobs <- item
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(done)
	}()

	results := make([]contracts.ExtractionResult, 0, len(items))
	for res := range done {
		results = append(results, res)
	}
	return results
}

// processItem runs the retry loop for one item: attempts 0..MaxRetries, with
// exponential backoff after retryable failures and immediate termination on
// fatal ones.
func (e *Executor) processItem(
	ctx context.Context,
	item contracts.WorkItem,
	process ProcessFunc,
	limiter *rate.Limiter,
	tracker *progress.Tracker,
) contracts.ExtractionResult {
	start := e.clock.Now()
	var lastErr error

	for attempt := 0; attempt <= e.opts.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return e.failed(item, err.Error(), attempt, start)
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return e.failed(item, err.Error(), attempt, start)
			}
		}

		metadata, err := process(ctx, item)
		if err == nil {
			return contracts.ExtractionResult{
				Item:         item,
				Metadata:     metadata,
				AttemptsUsed: attempt + 1,
				Duration:     e.clock.Now().Sub(start),
			}
		}
		lastErr = err

		if !contracts.IsRetryable(err) {
			e.logger.Debug("fatal extraction error",
				zap.String("name", item.Name),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			return e.failed(item, err.Error(), attempt+1, start)
		}
		if attempt == e.opts.MaxRetries {
			break
		}

		wait := e.opts.RetryDelay << uint(attempt)
		if tracker != nil {
			tracker.RetryWait(item, attempt+1, wait)
		}
		e.logger.Debug("rate limited, backing off",
			zap.String("name", item.Name),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
		)
		if err := e.clock.Sleep(ctx, wait); err != nil {
			return e.failed(item, err.Error(), attempt+1, start)
		}
	}

	return e.failed(item, lastErr.Error(), e.opts.MaxRetries+1, start)
}

func (e *Executor) failed(item contracts.WorkItem, reason string, attempts int, start time.Time) contracts.ExtractionResult {
	if attempts < 1 {
		attempts = 1
	}
	return contracts.ExtractionResult{
		Item:         item,
		Failed:       true,
		FailReason:   reason,
		AttemptsUsed: attempts,
		Duration:     e.clock.Now().Sub(start),
	}
}
