// Package ratelimit implements a per-domain token bucket limiter for portal and media requests.
package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JakeFAU/renewables-newsroom/internal/metrics"
)

// Config holds rate limiter configuration. RPS values <= 0 mean unlimited.
type Config struct {
	DefaultRPS   float64
	DefaultBurst int
	// DomainRPS overrides DefaultRPS per host. Keys ignore a leading "www.".
	DomainRPS map[string]float64
}

// Limiter keeps one token bucket per host. "www.example.com" and
// "example.com" share a bucket.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	rates   map[string]rate.Limit
	def     rate.Limit
	burst   int
}

// New creates a new Limiter.
func New(cfg Config) *Limiter {
	burst := cfg.DefaultBurst
	if burst <= 0 {
		burst = 1
	}
	l := &Limiter{
		buckets: make(map[string]*rate.Limiter),
		rates:   make(map[string]rate.Limit, len(cfg.DomainRPS)),
		def:     limitOf(cfg.DefaultRPS),
		burst:   burst,
	}
	for host, rps := range cfg.DomainRPS {
		l.rates[normalize(host)] = limitOf(rps)
	}
	return l
}

// Wait blocks until rawURL's host has a token or ctx is done.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	domain := domainOf(rawURL)
	bucket := l.bucket(domain)

	start := time.Now()
	if err := bucket.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", domain, err)
	}
	if waited := time.Since(start); waited > time.Millisecond {
		metrics.ObserveRateLimitDelay(domain, waited)
	}
	return nil
}

// Domains reports how many hosts have a bucket.
func (l *Limiter) Domains() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) bucket(domain string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[domain]
	if !ok {
		limit, override := l.rates[domain]
		if !override {
			limit = l.def
		}
		b = rate.NewLimiter(limit, l.burst)
		l.buckets[domain] = b
	}
	return b
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return normalize(u.Hostname())
}

func normalize(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

func limitOf(rps float64) rate.Limit {
	if rps <= 0 {
		return rate.Inf
	}
	return rate.Limit(rps)
}
