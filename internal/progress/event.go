// Package progress tracks batch completion counters and fans events out to
// registered sinks.
package progress

import (
	"errors"
	"time"

	"github.com/JakeFAU/contract-extractor/internal/contracts"
)

// Kind denotes the type of milestone represented by an Event.
type Kind string

// Supported progress event kinds.
const (
	KindBatchStart Kind = "BATCH_START"
	KindRetryWait  Kind = "RETRY_WAIT"
	KindItemDone   Kind = "ITEM_DONE"
	KindBatchDone  Kind = "BATCH_DONE"
)

// Event captures a single milestone of batch progress. For KindItemDone the
// counter fields carry the post-increment values observed by the worker that
// resolved the item.
type Event struct {
	BatchID string
	TS      time.Time
	Kind    Kind

	// Name is the display name of the item for item-scoped events.
	Name string

	Total     int
	Completed int
	Succeeded int
	Failed    int

	// Success, Language and Confidence describe an ITEM_DONE resolution.
	Success    bool
	Language   string
	Confidence contracts.Confidence

	// Attempt and Wait describe a RETRY_WAIT pause.
	Attempt int
	Wait    time.Duration

	// Note carries failure reasons or other low-volume context.
	Note string

	Dur time.Duration
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.BatchID == "" {
		return errors.New("batch id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Kind {
	case KindBatchStart, KindBatchDone:
	case KindItemDone, KindRetryWait:
		if e.Name == "" {
			return errors.New("item event requires a name")
		}
	default:
		return errors.New("unknown event kind")
	}
	return nil
}
