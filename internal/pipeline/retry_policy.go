package pipeline

import (
	"context"
	"errors"
	"time"
)

// DefaultMaxAttempts bounds every network operation in the pipeline.
const DefaultMaxAttempts = 3

// LinearRetryPolicy retries up to maxAttempts with a delay of step*attempt.
type LinearRetryPolicy struct {
	maxAttempts int
	step        time.Duration
}

// NewLinearRetryPolicy builds a policy. Non-positive values fall back to 3 attempts and 1s.
func NewLinearRetryPolicy(maxAttempts int, step time.Duration) *LinearRetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if step < 0 {
		step = time.Second
	}
	return &LinearRetryPolicy{maxAttempts: maxAttempts, step: step}
}

// ShouldRetry decides whether the error is retryable. attempt is 1-based.
func (p *LinearRetryPolicy) ShouldRetry(err error, attempt int) bool {
	if err == nil {
		return false
	}
	if attempt >= p.maxAttempts {
		return false
	}
	// Per-attempt deadlines are retried; explicit cancellation is not.
	return !errors.Is(err, context.Canceled)
}

// Backoff returns the wait duration before the next attempt.
func (p *LinearRetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.step * time.Duration(attempt)
}

// MaxAttempts returns the attempt bound.
func (p *LinearRetryPolicy) MaxAttempts() int {
	return p.maxAttempts
}

// Retry runs op until it succeeds or policy says stop. It returns the attempt count.
// The wait between attempts honors ctx; op itself decides which context it runs under.
func Retry(ctx context.Context, policy RetryPolicy, op func(attempt int) error) (int, error) {
	attempt := 0
	for {
		attempt++
		err := op(attempt)
		if err == nil {
			return attempt, nil
		}
		if !policy.ShouldRetry(err, attempt) || ctx.Err() != nil {
			return attempt, err
		}
		timer := time.NewTimer(policy.Backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, err
		case <-timer.C:
		}
	}
}
