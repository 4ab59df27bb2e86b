// Package app builds and holds the long-lived newsroom services. It is the
// dependency injection container the CLI commands share.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	announcememory "github.com/JakeFAU/renewables-newsroom/internal/announce/memory"
	announcepubsub "github.com/JakeFAU/renewables-newsroom/internal/announce/pubsub"
	"github.com/JakeFAU/renewables-newsroom/internal/classify"
	"github.com/JakeFAU/renewables-newsroom/internal/clock/system"
	"github.com/JakeFAU/renewables-newsroom/internal/config"
	"github.com/JakeFAU/renewables-newsroom/internal/enrich"
	"github.com/JakeFAU/renewables-newsroom/internal/extract"
	collyfetcher "github.com/JakeFAU/renewables-newsroom/internal/fetcher/colly"
	"github.com/JakeFAU/renewables-newsroom/internal/fetcher/headless"
	"github.com/JakeFAU/renewables-newsroom/internal/hash/sha256"
	"github.com/JakeFAU/renewables-newsroom/internal/headless/detector"
	"github.com/JakeFAU/renewables-newsroom/internal/id/uuid"
	"github.com/JakeFAU/renewables-newsroom/internal/media"
	"github.com/JakeFAU/renewables-newsroom/internal/metrics"
	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
	"github.com/JakeFAU/renewables-newsroom/internal/policy/ratelimit"
	"github.com/JakeFAU/renewables-newsroom/internal/portal"
	"github.com/JakeFAU/renewables-newsroom/internal/publish"
	"github.com/JakeFAU/renewables-newsroom/internal/relevance"
	"github.com/JakeFAU/renewables-newsroom/internal/seo"
	"github.com/JakeFAU/renewables-newsroom/internal/storage/gcs"
	"github.com/JakeFAU/renewables-newsroom/internal/storage/local"
	blobmemory "github.com/JakeFAU/renewables-newsroom/internal/storage/memory"
	"github.com/JakeFAU/renewables-newsroom/internal/storage/s3"
	storememory "github.com/JakeFAU/renewables-newsroom/internal/store/memory"
	"github.com/JakeFAU/renewables-newsroom/internal/store/postgres"
	"github.com/JakeFAU/renewables-newsroom/internal/synth"
	"github.com/JakeFAU/renewables-newsroom/internal/workflow"
)

// App holds the shared services for one CLI invocation.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	store     pipeline.ContentStore
	blobs     pipeline.BlobStore
	announcer pipeline.Announcer
	attacher  *media.Attacher
	publisher *publish.Publisher
	workflow  *workflow.Orchestrator

	closers []func() error
}

// Logger returns the shared logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Config returns the loaded configuration.
func (a *App) Config() config.Config { return a.cfg }

// Store returns the configured content store.
func (a *App) Store() pipeline.ContentStore { return a.store }

// Blobs returns the media blob store.
func (a *App) Blobs() pipeline.BlobStore { return a.blobs }

// Announcer returns the publication announcer, or nil when disabled.
func (a *App) Announcer() pipeline.Announcer { return a.announcer }

// Workflow returns the stage orchestrator.
func (a *App) Workflow() *workflow.Orchestrator { return a.workflow }

// Attacher returns the media attacher shared by discover and publish.
func (a *App) Attacher() *media.Attacher { return a.attacher }

// New initializes every service from cfg. It fails fast and releases
// whatever it already opened.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	a := &App{cfg: cfg, logger: logger}

	if err := a.init(ctx); err != nil {
		if cerr := a.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return nil, err
	}
	logger.Info("application services initialized",
		zap.String("store", cfg.Store.Backend),
		zap.String("blob", cfg.Media.Blob.Backend),
		zap.String("announce", cfg.Announce.Backend),
	)
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	registry, err := a.buildRegistry()
	if err != nil {
		return fmt.Errorf("portal catalogue: %w", err)
	}
	if a.store, err = a.buildStore(ctx); err != nil {
		return fmt.Errorf("content store: %w", err)
	}
	if a.blobs, err = a.buildBlobs(ctx); err != nil {
		return fmt.Errorf("blob store: %w", err)
	}
	if a.announcer, err = a.buildAnnouncer(ctx); err != nil {
		return fmt.Errorf("announcer: %w", err)
	}
	extractor, err := a.buildExtractor()
	if err != nil {
		return fmt.Errorf("extractor: %w", err)
	}

	clock := system.New()
	a.attacher = a.buildAttacher()
	opts := []publish.Option{
		publish.WithImages(a.attacher),
		publish.WithClock(clock),
		publish.WithLogger(a.logger.Named("publish")),
	}
	if a.announcer != nil {
		opts = append(opts, publish.WithAnnouncer(a.announcer, a.cfg.Announce.Topic))
	}
	a.publisher = publish.New(a.store, opts...)

	seed := a.cfg.Pipeline.TemplateSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	a.workflow = workflow.New(workflow.Deps{
		Registry:   registry,
		Extractor:  extractor,
		Store:      a.store,
		Synth:      synth.New(synth.NewRandomSelector(seed)),
		Classifier: classify.New(a.cfg.Categories.Rules, a.cfg.Categories.Fallback),
		SEO:        seo.New(a.cfg.SEO),
		Enricher:   enrich.New(clock),
		Media:      a.attacher,
		Publisher:  a.publisher,
		IDs:        uuid.New(),
		Clock:      clock,
	}, workflow.Config{
		MaxWorkers: a.cfg.Pipeline.MaxWorkers,
		PrefixLen:  a.cfg.Pipeline.PrefixLen,
		Author:     a.cfg.Pipeline.Author,
	}, a.logger.Named("workflow"))
	return nil
}

func (a *App) buildRegistry() (*portal.Registry, error) {
	if a.cfg.Portals.File != "" {
		return portal.LoadFile(a.cfg.Portals.File)
	}
	return portal.NewRegistry(a.cfg.Portals.List)
}

func (a *App) buildStore(ctx context.Context) (pipeline.ContentStore, error) {
	switch a.cfg.Store.Backend {
	case config.BackendPostgres:
		s, err := postgres.New(ctx, a.cfg.Store.Postgres)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { s.Close(); return nil })
		if a.cfg.Store.Migrate {
			if err := s.Migrate(ctx); err != nil {
				return nil, err
			}
		}
		return s, nil
	case config.BackendMemory, "":
		return storememory.New(a.cfg.Store.Memory.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", a.cfg.Store.Backend)
	}
}

func (a *App) buildBlobs(ctx context.Context) (pipeline.BlobStore, error) {
	b := a.cfg.Media.Blob
	switch b.Backend {
	case config.BackendLocal:
		return local.New(b.Local)
	case config.BackendGCS:
		s, err := gcs.NewFromEnv(ctx, b.GCS)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case config.BackendS3:
		return s3.New(ctx, b.S3)
	case config.BackendMemory, "":
		return blobmemory.NewBlobStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", b.Backend)
	}
}

func (a *App) buildAnnouncer(ctx context.Context) (pipeline.Announcer, error) {
	c := a.cfg.Announce
	switch c.Backend {
	case config.BackendPubSub:
		p, err := announcepubsub.Dial(ctx, announcepubsub.Config{ProjectID: c.ProjectID, DefaultTopic: c.Topic})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, p.Close)
		return p, nil
	case config.BackendMemory:
		return announcememory.New(), nil
	case config.BackendNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown announce backend %q", c.Backend)
	}
}

func (a *App) retryPolicy() pipeline.RetryPolicy {
	return pipeline.NewLinearRetryPolicy(a.cfg.Fetch.MaxRetries, time.Duration(a.cfg.Fetch.BackoffMs)*time.Millisecond)
}

func (a *App) buildExtractor() (*extract.Extractor, error) {
	f := a.cfg.Fetch
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:      f.UserAgent,
		RespectRobots:  f.RespectRobots,
		Timeout:        a.cfg.FetchTimeout(),
		ConnectTimeout: time.Duration(f.ConnectTimeoutSeconds) * time.Second,
		MaxBodyBytes:   f.MaxBodyBytes,
	})
	headers := http.Header{}
	headers.Set("Accept-Language", "es-AR,es;q=0.9,en;q=0.5")

	opts := []extract.Option{
		extract.WithLimiter(a.limiter()),
		extract.WithRetryPolicy(a.retryPolicy()),
		extract.WithRelevance(relevance.New(a.cfg.Relevance).IsRelevant),
		extract.WithLogger(a.logger.Named("extract")),
	}
	if a.cfg.Headless.Enabled {
		renderer, err := headless.NewChromedp(headless.Config{
			MaxParallel:       a.cfg.Headless.MaxParallel,
			UserAgent:         f.UserAgent,
			NavigationTimeout: time.Duration(a.cfg.Headless.NavTimeoutSec) * time.Second,
			ScrollPasses:      a.cfg.Headless.ScrollPasses,
			WaitSelector:      a.cfg.Headless.WaitSelector,
			BlockImages:       a.cfg.Headless.BlockImages,
		})
		if err != nil {
			return nil, fmt.Errorf("start headless fetcher: %w", err)
		}
		a.closers = append(a.closers, func() error { renderer.Close(); return nil })
		opts = append(opts,
			extract.WithRenderer(renderer),
			extract.WithPromoter(detector.NewHeuristic(a.cfg.Headless.PromotionBytes)),
		)
	}
	return extract.New(fetcher, extract.Config{Timeout: a.cfg.FetchTimeout(), Headers: headers}, opts...), nil
}

func (a *App) limiter() *ratelimit.Limiter {
	f := a.cfg.Fetch
	return ratelimit.New(ratelimit.Config{DefaultRPS: f.RateLimitRPS, DefaultBurst: f.RateLimitBurst, DomainRPS: f.DomainRPS})
}

func (a *App) buildAttacher() *media.Attacher {
	m := a.cfg.Media
	var chain media.Chain
	if m.Pexels.APIKey != "" {
		chain = append(chain, media.NewPexels(m.Pexels))
	}
	if m.Pixabay.APIKey != "" {
		chain = append(chain, media.NewPixabay(m.Pixabay))
	}

	log := a.logger.Named("media")
	opts := []media.Option{
		media.WithLogger(log),
		media.WithStorage(
			media.NewDownloader(m.Download,
				media.WithDownloadRetry(a.retryPolicy()),
				media.WithDownloadLimiter(a.limiter()),
				media.WithDownloadLogger(log),
			),
			a.blobs,
			sha256.New(sha256.WithLength(8)),
		),
	}
	if len(chain) > 0 {
		opts = append(opts, media.WithResolver(chain))
	}
	if m.Optimize.Enabled {
		o := m.Optimize.Optimizer
		opts = append(opts, media.WithOptimizer(&o))
	}
	return media.NewAttacher(m.Attach, opts...)
}

// Close releases services in reverse order of creation and flushes the logger.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("error closing services", zap.Error(err))
		return err
	}
	return nil
}
