package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLinearRetryPolicy(t *testing.T) {
	t.Parallel()

	p := NewLinearRetryPolicy(3, time.Second)
	errBoom := errors.New("boom")

	require.True(t, p.ShouldRetry(errBoom, 1))
	require.True(t, p.ShouldRetry(context.DeadlineExceeded, 2))
	require.False(t, p.ShouldRetry(errBoom, 3))
	require.False(t, p.ShouldRetry(context.Canceled, 1))
	require.False(t, p.ShouldRetry(nil, 1))

	require.Equal(t, time.Second, p.Backoff(1))
	require.Equal(t, 2*time.Second, p.Backoff(2))
	require.Equal(t, 3, p.MaxAttempts())
}

func TestNewLinearRetryPolicyDefaults(t *testing.T) {
	t.Parallel()

	p := NewLinearRetryPolicy(0, -1)
	require.Equal(t, DefaultMaxAttempts, p.MaxAttempts())
	require.Equal(t, time.Second, p.Backoff(1))
}

func TestRetryStopsAtBound(t *testing.T) {
	t.Parallel()

	calls := 0
	attempts, err := Retry(context.Background(), NewLinearRetryPolicy(3, 0), func(int) error {
		calls++
		return context.DeadlineExceeded
	})
	require.Error(t, err)
	require.Equal(t, 3, attempts)
	require.Equal(t, 3, calls)
}

func TestRetrySucceedsEventually(t *testing.T) {
	t.Parallel()

	attempts, err := Retry(context.Background(), NewLinearRetryPolicy(3, 0), func(attempt int) error {
		if attempt < 2 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, attempts)
}

func TestRetryHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, err := Retry(ctx, NewLinearRetryPolicy(3, time.Hour), func(int) error {
		calls++
		return errors.New("transient")
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}
