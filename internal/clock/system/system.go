// Package system provides the wall-clock implementation of contracts.Clock.
package system

import (
	"context"
	"fmt"
	"time"
)

// Clock reads time.Now and sleeps with timers.
type Clock struct{}

// New returns a system Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time.
func (*Clock) Now() time.Time {
	return time.Now()
}

// Sleep blocks for d or until the context finishes.
func (*Clock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sleep interrupted: %w", ctx.Err())
	}
}
