package dispatcher

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunPreservesOrder(t *testing.T) {
	t.Parallel()

	jobs := []int{5, 1, 4, 2, 3}
	got, done := Run(context.Background(), New(3), jobs, func(_ context.Context, n int) int {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * 10
	})
	want := []int{50, 10, 40, 20, 30}
	for i := range want {
		if got[i] != want[i] || !done[i] {
			t.Fatalf("result %d = %d (done %v), want %d", i, got[i], done[i], want[i])
		}
	}
}

func TestRunBoundsWorkers(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	jobs := make([]int, 12)
	Run(context.Background(), New(4), jobs, func(context.Context, int) struct{} {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}
	})
	if p := peak.Load(); p > 4 || p < 1 {
		t.Fatalf("expected peak concurrency in [1,4], got %d", p)
	}
}

func TestWorkers(t *testing.T) {
	t.Parallel()

	d := New(0)
	if got := d.Workers(10); got != 1 {
		t.Fatalf("expected 1 worker, got %d", got)
	}
	if got := New(8).Workers(3); got != 3 {
		t.Fatalf("expected min(jobs, workers)=3, got %d", got)
	}
}

func TestRunStopsFeedingAfterCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	_, done := Run(ctx, New(1), []int{1, 2, 3, 4}, func(context.Context, int) int {
		if calls.Add(1) == 1 {
			cancel()
		}
		return 0
	})
	if !done[0] {
		t.Fatal("first job should have run")
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected no jobs to start after cancel, got %d calls", n)
	}
	if done[3] {
		t.Fatal("last job should have been skipped")
	}
}
