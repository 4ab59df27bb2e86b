// Package dispatcher fans work out to a bounded pool of workers and collects
// results in input order.
package dispatcher

import (
	"context"
	"sync"
)

// Dispatcher runs jobs on at most Workers goroutines.
type Dispatcher struct {
	workers int
}

// New creates a Dispatcher. workers below 1 means one worker.
func New(workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{workers: workers}
}

// Workers returns the pool size used for n jobs: min(n, configured workers).
func (d *Dispatcher) Workers(n int) int {
	return min(n, d.workers)
}

// Run applies fn to every job and returns the results in job order. Jobs not
// yet started when ctx is cancelled are skipped, leaving their result zero and
// their done flag false.
func Run[J, R any](ctx context.Context, d *Dispatcher, jobs []J, fn func(context.Context, J) R) ([]R, []bool) {
	results := make([]R, len(jobs))
	done := make([]bool, len(jobs))
	if len(jobs) == 0 {
		return results, done
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for range d.Workers(len(jobs)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				if ctx.Err() != nil {
					continue
				}
				results[i] = fn(ctx, jobs[i])
				done[i] = true
			}
		}()
	}

feed:
	for i := range jobs {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()
	return results, done
}
