package ai

import (
	"context"
	"sync"
	"time"
)

// RateGate enforces a minimum spacing between upstream call starts. The
// upstream quota is vendor-wide, not per-caller, so a single gate is shared
// by every pipeline invocation in the process. It serializes call starts
// only: slow in-flight calls may still overlap.
type RateGate struct {
	mu            sync.Mutex
	minInterval   time.Duration
	lastRequestAt time.Time
}

// NewRateGate builds a gate with the given minimum inter-start interval.
func NewRateGate(minInterval time.Duration) *RateGate {
	return &RateGate{minInterval: minInterval}
}

// Acquire blocks until the configured spacing from the previous call start
// has elapsed, then records this call's start time. It returns early with
// the context error if the caller gives up while waiting.
func (g *RateGate) Acquire(ctx context.Context) error {
	for {
		g.mu.Lock()
		now := time.Now()
		if g.lastRequestAt.IsZero() || now.Sub(g.lastRequestAt) >= g.minInterval {
			g.lastRequestAt = now
			g.mu.Unlock()
			return nil
		}
		wait := g.minInterval - now.Sub(g.lastRequestAt)
		g.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			// Another caller may have claimed a slot while we slept;
			// loop and re-check.
		}
	}
}
