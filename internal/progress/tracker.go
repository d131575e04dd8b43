package progress

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/contract-extractor/internal/contracts"
)

// Snapshot is a consistent read of the tracker counters.
type Snapshot struct {
	BatchID   string `json:"batch_id"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

// Tracker owns the shared batch counters. All mutation happens under one
// mutex held for the duration of an increment-and-read, so completed counts
// are monotonic and never skip or repeat under concurrent completion. A
// Tracker is created per batch and discarded at batch end.
type Tracker struct {
	mu        sync.Mutex
	batchID   string
	total     int
	completed int
	succeeded int
	failed    int

	sinks  []Sink
	logger *zap.Logger
}

// NewTracker creates a Tracker for a batch of total items.
func NewTracker(batchID string, total int, logger *zap.Logger, sinks ...Sink) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		batchID: batchID,
		total:   total,
		sinks:   append([]Sink(nil), sinks...),
		logger:  logger,
	}
}

// ItemDone records one item's final resolution, increments the counters and
// emits the post-increment ITEM_DONE event to every sink.
func (t *Tracker) ItemDone(item contracts.WorkItem, res contracts.ExtractionResult) {
	t.mu.Lock()
	t.completed++
	if res.Failed {
		t.failed++
	} else {
		t.succeeded++
	}
	evt := Event{
		BatchID:    t.batchID,
		TS:         time.Now().UTC(),
		Kind:       KindItemDone,
		Name:       item.Name,
		Total:      t.total,
		Completed:  t.completed,
		Succeeded:  t.succeeded,
		Failed:     t.failed,
		Success:    !res.Failed,
		Language:   res.Metadata.SourceLanguage,
		Confidence: res.Metadata.Confidence,
		Note:       res.FailReason,
		Dur:        res.Duration,
	}
	t.mu.Unlock()
	t.Emit(evt)
}

// RetryWait reports that an item is pausing before another attempt. The
// counters are read without incrementing.
func (t *Tracker) RetryWait(item contracts.WorkItem, attempt int, wait time.Duration) {
	t.mu.Lock()
	evt := Event{
		BatchID:   t.batchID,
		TS:        time.Now().UTC(),
		Kind:      KindRetryWait,
		Name:      item.Name,
		Total:     t.total,
		Completed: t.completed,
		Succeeded: t.succeeded,
		Failed:    t.failed,
		Attempt:   attempt,
		Wait:      wait,
	}
	t.mu.Unlock()
	t.Emit(evt)
}

// BatchStart emits the opening event.
func (t *Tracker) BatchStart() {
	t.Emit(Event{
		BatchID: t.batchID,
		TS:      time.Now().UTC(),
		Kind:    KindBatchStart,
		Total:   t.total,
	})
}

// BatchDone emits the closing event with the final counters.
func (t *Tracker) BatchDone(elapsed time.Duration) {
	snap := t.Snapshot()
	t.Emit(Event{
		BatchID:   t.batchID,
		TS:        time.Now().UTC(),
		Kind:      KindBatchDone,
		Total:     snap.Total,
		Completed: snap.Completed,
		Succeeded: snap.Succeeded,
		Failed:    snap.Failed,
		Dur:       elapsed,
	})
}

// Emit validates and fans the event out to every sink synchronously.
func (t *Tracker) Emit(evt Event) {
	if err := evt.Validate(); err != nil {
		t.logger.Debug("discarding invalid progress event", zap.Error(err))
		return
	}
	for _, sink := range t.sinks {
		if sink == nil {
			continue
		}
		if err := sink.Consume(context.Background(), evt); err != nil {
			t.logger.Warn("progress sink consume failed", zap.Error(err))
		}
	}
}

// Snapshot returns a consistent copy of the counters.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		BatchID:   t.batchID,
		Total:     t.total,
		Completed: t.completed,
		Succeeded: t.succeeded,
		Failed:    t.failed,
	}
}

// Close closes every sink.
func (t *Tracker) Close(ctx context.Context) {
	for _, sink := range t.sinks {
		if sink == nil {
			continue
		}
		if err := sink.Close(ctx); err != nil {
			t.logger.Warn("progress sink close failed", zap.Error(err))
		}
	}
}
