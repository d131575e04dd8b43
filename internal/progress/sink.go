package progress

import "context"

// Sink consumes progress events. Implementations must be safe for concurrent
// use; the tracker invokes them synchronously so completion lines always
// reflect the counter values they carry.
type Sink interface {
	Consume(ctx context.Context, evt Event) error
	Close(ctx context.Context) error
}

// Emitter publishes individual events; Tracker satisfies this interface so
// the executor can remain agnostic about counting and fan-out.
type Emitter interface {
	Emit(evt Event)
}
