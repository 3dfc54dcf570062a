// Package schedule runs cancellable recompute loops.
package schedule

import (
	"context"
	"time"
)

const (
	// MetricsInterval is the live metrics cadence (10 Hz).
	MetricsInterval = 100 * time.Millisecond
	// RaceInterval is the bot race cadence (20 Hz).
	RaceInterval = 50 * time.Millisecond
)

// Loop calls tick every interval until ctx is cancelled or tick returns false.
// The returned channel is closed once the loop has exited.
func Loop(ctx context.Context, interval time.Duration, tick func(now time.Time) bool) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if !tick(now) {
					return
				}
			}
		}
	}()
	return done
}
