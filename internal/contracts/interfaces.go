package contracts

import (
	"context"
	"time"
)

// Source enumerates a batch's documents and retrieves their bytes.
type Source interface {
	// List returns the WorkItems whose extension is in the allow-list. An
	// unreachable location is a whole-batch error; an empty listing is not.
	List(ctx context.Context, allowed []string) ([]WorkItem, error)
	// Fetch returns the raw bytes for one previously listed item.
	Fetch(ctx context.Context, item WorkItem) ([]byte, error)
}

// Extractor derives Metadata from a document's text via the model. Failures
// eligible for retry must be reported as *RateLimitError.
type Extractor interface {
	Extract(ctx context.Context, text string, item WorkItem) (Metadata, error)
}

// Translator converts a document's text to English for the two-call path.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Publisher pushes completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// ResultStore persists batch runs and per-item results for later review.
type ResultStore interface {
	RecordBatch(ctx context.Context, summary BatchSummary) error
	RecordResult(ctx context.Context, batchID string, result ExtractionResult) error
}

// Clock returns the current time and sleeps (useful for testing backoff).
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// IDGenerator produces batch IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
