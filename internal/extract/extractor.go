// Package extract pulls candidate headlines from portal pages, with feed and
// synthetic fallbacks when a page yields nothing usable.
package extract

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/renewables-newsroom/internal/clock/system"
	"github.com/JakeFAU/renewables-newsroom/internal/metrics"
	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

// FallbackKind records how a portal's items were produced.
type FallbackKind string

// Fallback kinds.
const (
	FallbackNone      FallbackKind = "none"
	FallbackFeed      FallbackKind = "feed"
	FallbackSynthetic FallbackKind = "synthetic"
)

// Report describes one Extract call.
type Report struct {
	Portal    string
	Attempts  int
	Strategy  string
	Fallback  FallbackKind
	Inspected int
	Rejected  int
	Items     int
	Duration  time.Duration
	// Promoted is set when the page was fetched again through the renderer.
	Promoted bool
	// Err is the failure that triggered the fallback, if any.
	Err error
}

// Config controls fetch behaviour.
type Config struct {
	Timeout time.Duration
	Headers http.Header
}

// Extractor turns portals into raw items. It is safe for concurrent use.
type Extractor struct {
	cfg        Config
	fetcher    pipeline.Fetcher
	renderer   pipeline.Fetcher
	promoter   Promoter
	limiter    pipeline.RateLimiter
	policy     pipeline.RetryPolicy
	strategies *StrategyRegistry
	selectors  Selectors
	bank       *Bank
	relevant   func(string) bool
	clock      pipeline.Clock
	logger     *zap.Logger
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithRenderer sets the headless fetcher used for portals flagged Render.
func WithRenderer(f pipeline.Fetcher) Option { return func(e *Extractor) { e.renderer = f } }

// Promoter decides whether a plain page that yielded nothing deserves a render.
type Promoter interface {
	ShouldPromote(resp pipeline.FetchResponse) bool
}

// WithPromoter re-fetches empty pages through the renderer when p says so.
func WithPromoter(p Promoter) Option { return func(e *Extractor) { e.promoter = p } }

// WithLimiter sets the per-domain rate limiter.
func WithLimiter(l pipeline.RateLimiter) Option { return func(e *Extractor) { e.limiter = l } }

// WithRetryPolicy overrides the default linear policy.
func WithRetryPolicy(p pipeline.RetryPolicy) Option { return func(e *Extractor) { e.policy = p } }

// WithStrategies overrides the selector strategy registry.
func WithStrategies(r *StrategyRegistry) Option { return func(e *Extractor) { e.strategies = r } }

// WithSelectors overrides element sub-selectors.
func WithSelectors(s Selectors) Option { return func(e *Extractor) { e.selectors = s } }

// WithBank overrides the synthetic headline bank.
func WithBank(b *Bank) Option { return func(e *Extractor) { e.bank = b } }

// WithRelevance sets the predicate an element title must pass.
func WithRelevance(fn func(string) bool) Option { return func(e *Extractor) { e.relevant = fn } }

// WithClock sets the clock used for ExtractedAt.
func WithClock(c pipeline.Clock) Option { return func(e *Extractor) { e.clock = c } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(e *Extractor) { e.logger = l } }

// New builds an Extractor over fetcher.
func New(fetcher pipeline.Fetcher, cfg Config, opts ...Option) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	byDomain, fallback := DefaultStrategies()
	e := &Extractor{
		cfg:        cfg,
		fetcher:    fetcher,
		policy:     pipeline.NewLinearRetryPolicy(pipeline.DefaultMaxAttempts, time.Second),
		strategies: NewStrategyRegistry(byDomain, fallback),
		selectors:  DefaultSelectors(),
		bank:       DefaultBank(),
		clock:      system.New(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Extract returns up to maxItems raw items for portal. It never fails: fetch
// errors and empty pages degrade to the feed, then to synthetic items.
func (e *Extractor) Extract(ctx context.Context, portal pipeline.SourcePortal, maxItems int) ([]pipeline.RawItem, Report) {
	start := time.Now()
	report := Report{Portal: portal.Name, Fallback: FallbackNone}
	if maxItems <= 0 {
		maxItems = 1
	}
	log := e.logger.With(zap.String("portal", portal.Name))

	items, err := e.fromPage(ctx, portal, maxItems, &report)
	if err != nil {
		report.Err = err
		log.Warn("portal fetch failed", zap.Int("attempts", report.Attempts), zap.Error(err))
	}
	if len(items) == 0 && portal.FeedURL != "" && ctx.Err() == nil {
		feedItems, feedErr := e.fromFeed(ctx, portal, maxItems)
		if feedErr != nil {
			log.Warn("portal feed failed", zap.String("feed", portal.FeedURL), zap.Error(feedErr))
		}
		if len(feedItems) > 0 {
			items = feedItems
			report.Fallback = FallbackFeed
		}
	}
	if len(items) == 0 {
		items = e.bank.Items(portal, maxItems, e.clock.Now())
		report.Fallback = FallbackSynthetic
		log.Info("using synthetic items", zap.Int("count", len(items)))
	}

	report.Items = len(items)
	report.Duration = time.Since(start)
	metrics.ObserveExtracted(portal.Name, string(report.Fallback), len(items))
	log.Info("portal extracted",
		zap.Int("items", report.Items),
		zap.String("strategy", report.Strategy),
		zap.String("fallback", string(report.Fallback)),
		zap.Int("inspected", report.Inspected),
		zap.Duration("duration", report.Duration),
	)
	return items, report
}

func (e *Extractor) fromPage(ctx context.Context, portal pipeline.SourcePortal, maxItems int, report *Report) ([]pipeline.RawItem, error) {
	fetcher, viaRenderer := e.fetcher, false
	if portal.Render && e.renderer != nil {
		fetcher, viaRenderer = e.renderer, true
	}
	resp, attempts, err := e.fetch(ctx, fetcher, portal.BaseURL)
	report.Attempts = attempts
	if err != nil {
		return nil, err
	}
	page, err := e.parsePage(resp.Body, portal, resp.URL, maxItems)
	if err != nil {
		return nil, err
	}
	if len(page.items) == 0 && !viaRenderer && e.renderer != nil && e.promoter != nil && e.promoter.ShouldPromote(resp) {
		rendered, n, rerr := e.fetch(ctx, e.renderer, portal.BaseURL)
		report.Attempts += n
		if rerr == nil {
			if rpage, perr := e.parsePage(rendered.Body, portal, rendered.URL, maxItems); perr == nil {
				page = rpage
				report.Promoted = true
			}
		}
	}
	report.Strategy = page.strategy
	report.Inspected = page.inspected
	report.Rejected = page.rejected
	return page.items, nil
}

func (e *Extractor) fromFeed(ctx context.Context, portal pipeline.SourcePortal, maxItems int) ([]pipeline.RawItem, error) {
	resp, _, err := e.fetch(ctx, e.fetcher, portal.FeedURL)
	if err != nil {
		return nil, err
	}
	return e.parseFeed(resp.Body, portal, maxItems)
}

// fetch retries under the policy. Each attempt runs detached from ctx with its
// own timeout; ctx only gates the waits between attempts.
func (e *Extractor) fetch(ctx context.Context, fetcher pipeline.Fetcher, target string) (pipeline.FetchResponse, int, error) {
	var resp pipeline.FetchResponse
	attempts, err := pipeline.Retry(ctx, e.policy, func(attempt int) error {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx, target); err != nil {
				return err
			}
		}
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.Timeout)
		defer cancel()
		r, err := fetcher.Fetch(callCtx, pipeline.FetchRequest{URL: target, Headers: e.cfg.Headers})
		if err == nil && r.StatusCode >= http.StatusBadRequest {
			err = fmt.Errorf("unexpected status %d", r.StatusCode)
		}
		if err != nil {
			metrics.ObserveFetch(target, "error", 0)
			e.logger.Debug("fetch attempt failed", zap.String("url", target), zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		metrics.ObserveFetch(target, "ok", len(r.Body))
		resp = r
		return nil
	})
	if err != nil {
		return pipeline.FetchResponse{}, attempts, &pipeline.FetchError{URL: target, Attempts: attempts, Err: err}
	}
	if resp.URL == "" {
		resp.URL = target
	}
	return resp, attempts, nil
}
