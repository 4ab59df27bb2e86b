package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLimiterDelaysSameDomain(t *testing.T) {
	t.Parallel()

	// 10 RPS with burst 1 leaves roughly 100ms between tokens.
	l := New(Config{DefaultRPS: 10, DefaultBurst: 1})
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx, "https://energiasrenovables.com.ar/"))
	start := time.Now()
	require.NoError(t, l.Wait(ctx, "https://energiasrenovables.com.ar/noticias"))
	require.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestLimiterDomainsAreIndependent(t *testing.T) {
	t.Parallel()

	l := New(Config{DefaultRPS: 1, DefaultBurst: 1})
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx, "https://www.energiaestrategica.com/"))
	start := time.Now()
	require.NoError(t, l.Wait(ctx, "https://www.pv-magazine-latam.com/"))
	require.Less(t, time.Since(start), 50*time.Millisecond)
	require.Equal(t, 2, l.Domains())
}

func TestLimiterCanceledContext(t *testing.T) {
	t.Parallel()

	l := New(Config{DefaultRPS: 0.1, DefaultBurst: 1})
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, l.Wait(ctx, "https://energiaonline.com.ar/"))
	cancel()
	require.Error(t, l.Wait(ctx, "https://energiaonline.com.ar/"))
	require.Equal(t, 1, l.Domains())
}

func TestLimiterUnlimited(t *testing.T) {
	t.Parallel()

	l := New(Config{})
	for range 20 {
		require.NoError(t, l.Wait(context.Background(), "https://api.pexels.com/v1/search"))
	}
}

func TestLimiterSharesBucketAcrossWWW(t *testing.T) {
	t.Parallel()

	l := New(Config{DefaultRPS: 10, DefaultBurst: 1})
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx, "https://www.energiaestrategica.com/"))
	start := time.Now()
	require.NoError(t, l.Wait(ctx, "https://energiaestrategica.com/wp-content/uploads/foto.jpg"))
	require.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	require.Equal(t, 1, l.Domains())
}

func TestLimiterDomainOverride(t *testing.T) {
	t.Parallel()

	l := New(Config{
		DefaultRPS:   0.1,
		DefaultBurst: 1,
		DomainRPS:    map[string]float64{"WWW.Pexels.com": 0},
	})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for range 5 {
		require.NoError(t, l.Wait(ctx, "https://pexels.com/v1/search"))
	}
}

func TestLimiterUnparseableURL(t *testing.T) {
	t.Parallel()

	l := New(Config{})
	require.NoError(t, l.Wait(context.Background(), "://bad"))
	require.Equal(t, 1, l.Domains())
}
