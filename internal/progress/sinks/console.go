// Package sinks provides progress.Sink implementations for console output,
// structured logs and Prometheus metrics.
package sinks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/JakeFAU/contract-extractor/internal/progress"
)

// ConsoleSink prints the human-readable per-item status stream, one line per
// completion of the shape "[completed/total] name: marker detail".
type ConsoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleSink writes status lines to w (typically os.Stdout).
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

// Consume renders one event. Lines are serialized so concurrent completions
// never interleave mid-line.
func (s *ConsoleSink) Consume(_ context.Context, evt progress.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch evt.Kind {
	case progress.KindBatchStart:
		_, err = fmt.Fprintf(s.w, "Processing %d contracts...\n", evt.Total)
	case progress.KindRetryWait:
		_, err = fmt.Fprintf(s.w, "   [%d/%d] %s: rate limited, retrying in %s (attempt %d)\n",
			evt.Completed, evt.Total, evt.Name, evt.Wait, evt.Attempt)
	case progress.KindItemDone:
		if evt.Success {
			_, err = fmt.Fprintf(s.w, "   [%d/%d] %s: OK %s, %s\n",
				evt.Completed, evt.Total, evt.Name, upperOrUnknown(evt.Language), evt.Confidence)
		} else {
			_, err = fmt.Fprintf(s.w, "   [%d/%d] %s: FAILED %s\n",
				evt.Completed, evt.Total, evt.Name, evt.Note)
		}
	case progress.KindBatchDone:
		_, err = fmt.Fprintf(s.w, "Done: %d succeeded, %d failed of %d (%s)\n",
			evt.Succeeded, evt.Failed, evt.Total, evt.Dur.Round(timeUnit))
	}
	if err != nil {
		return fmt.Errorf("write status line: %w", err)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *ConsoleSink) Close(context.Context) error {
	return nil
}
