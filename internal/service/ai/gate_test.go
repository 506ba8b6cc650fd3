package ai

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestRateGateSpacing(t *testing.T) {
	const interval = 20 * time.Millisecond
	gate := NewRateGate(interval)
	ctx := context.Background()

	var returns []time.Time
	for i := 0; i < 3; i++ {
		if err := gate.Acquire(ctx); err != nil {
			t.Fatalf("Acquire err: %v", err)
		}
		returns = append(returns, time.Now())
	}

	for i := 1; i < len(returns); i++ {
		// The gate stamps its start time just before Acquire returns, so
		// the observed gap can run a hair under the interval.
		if gap := returns[i].Sub(returns[i-1]); gap < interval-2*time.Millisecond {
			t.Fatalf("returns %d and %d only %v apart, want at least %v", i-1, i, gap, interval)
		}
	}
}

func TestRateGateFirstAcquireImmediate(t *testing.T) {
	gate := NewRateGate(time.Second)

	start := time.Now()
	if err := gate.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire err: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("first acquire waited %v", elapsed)
	}
}

func TestRateGateConcurrentAcquires(t *testing.T) {
	const interval = 20 * time.Millisecond
	gate := NewRateGate(interval)

	var (
		mu      sync.Mutex
		returns []time.Time
		wg      sync.WaitGroup
	)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gate.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire err: %v", err)
				return
			}
			mu.Lock()
			returns = append(returns, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(returns, func(i, j int) bool { return returns[i].Before(returns[j]) })
	for i := 1; i < len(returns); i++ {
		// Allow a small scheduling tolerance between the gate stamping the
		// start and the goroutine recording it.
		if gap := returns[i].Sub(returns[i-1]); gap < interval-2*time.Millisecond {
			t.Fatalf("concurrent returns only %v apart, want about %v", gap, interval)
		}
	}
}

func TestRateGateAcquireCancelled(t *testing.T) {
	gate := NewRateGate(time.Minute)

	if err := gate.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire err: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := gate.Acquire(ctx); err == nil {
		t.Fatal("expected context error while waiting at the gate")
	}
}
