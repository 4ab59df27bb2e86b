// Package workflow runs the discover, enrich and publish stages over the
// session artifact.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/renewables-newsroom/internal/clock/system"
	"github.com/JakeFAU/renewables-newsroom/internal/dedup"
	"github.com/JakeFAU/renewables-newsroom/internal/dispatcher"
	"github.com/JakeFAU/renewables-newsroom/internal/enrich"
	"github.com/JakeFAU/renewables-newsroom/internal/extract"
	"github.com/JakeFAU/renewables-newsroom/internal/metrics"
	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
	"github.com/JakeFAU/renewables-newsroom/internal/portal"
	"github.com/JakeFAU/renewables-newsroom/internal/publish"
	"github.com/JakeFAU/renewables-newsroom/internal/seo"
	"github.com/JakeFAU/renewables-newsroom/internal/session"
)

// Stage names used in outcomes and metrics.
const (
	StageDiscover = "discover"
	StageEnrich   = "enrich"
	StagePublish  = "publish"
	StagePrune    = "prune"
)

// Extractor turns a portal into raw items.
type Extractor interface {
	Extract(ctx context.Context, portal pipeline.SourcePortal, maxItems int) ([]pipeline.RawItem, extract.Report)
}

// Synthesizer writes an original body for a raw item.
type Synthesizer interface {
	Synthesize(item pipeline.RawItem) string
}

// Classifier picks a category name for an article.
type Classifier interface {
	Classify(title, body string) string
	Categories() []pipeline.Category
}

// MediaAttacher attaches images to a batch in place.
type MediaAttacher interface {
	AttachAll(ctx context.Context, articles []pipeline.ProcessedArticle) int
}

// IDSource issues article IDs and short session tokens.
type IDSource interface {
	NewID() (string, error)
	Short() (string, error)
}

// Deps are the collaborators an Orchestrator drives.
type Deps struct {
	Registry   *portal.Registry
	Extractor  Extractor
	Store      pipeline.ContentStore
	Synth      Synthesizer
	Classifier Classifier
	SEO        *seo.Enricher
	Enricher   *enrich.Enricher
	Media      MediaAttacher
	Publisher  *publish.Publisher
	IDs        IDSource
	Clock      pipeline.Clock
}

// Config tunes the stages.
type Config struct {
	MaxWorkers int
	PrefixLen  int
	Author     string
}

// Orchestrator sequences the pipeline stages.
type Orchestrator struct {
	deps   Deps
	cfg    Config
	logger *zap.Logger
}

// New builds an Orchestrator.
func New(deps Deps, cfg Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 4
	}
	if cfg.PrefixLen <= 0 {
		cfg.PrefixLen = dedup.DefaultPrefixRunes
	}
	if cfg.Author == "" {
		cfg.Author = publish.DefaultAuthor
	}
	if deps.Clock == nil {
		deps.Clock = system.New()
	}
	return &Orchestrator{deps: deps, cfg: cfg, logger: logger}
}

// Report is the per-stage result the CLI summarizes.
type Report struct {
	Stage    string
	Outcomes []pipeline.Outcome
	Results  []pipeline.PublishResult
	Portals  []extract.Report
	Duration time.Duration
}

// Counts folds the outcomes by kind.
func (r Report) Counts() map[pipeline.OutcomeKind]int {
	return pipeline.Tally(r.Outcomes)
}

func (o *Orchestrator) record(r *Report, out pipeline.Outcome) {
	r.Outcomes = append(r.Outcomes, out)
	metrics.ObserveOutcome(out.Stage, string(out.Kind))
	if out.Kind == pipeline.OutcomeFailed {
		o.logger.Warn("item failed", zap.String("stage", out.Stage), zap.String("title", out.Title), zap.Error(out.Err))
	}
}

func (o *Orchestrator) finish(r *Report, start time.Time) {
	r.Duration = time.Since(start)
	metrics.ObserveStageDuration(r.Stage, r.Duration)
	counts := r.Counts()
	o.logger.Info("stage finished",
		zap.String("stage", r.Stage),
		zap.Int("ok", counts[pipeline.OutcomeOK]),
		zap.Int("skipped", counts[pipeline.OutcomeSkipped]),
		zap.Int("failed", counts[pipeline.OutcomeFailed]),
		zap.Duration("duration", r.Duration),
	)
}

// DiscoverMode picks a default batch size.
type DiscoverMode string

// Discover modes.
const (
	ModeQuick      DiscoverMode = "rapido"
	ModeComplete   DiscoverMode = "completo"
	ModeExhaustive DiscoverMode = "exhaustivo"
)

var modeItems = map[DiscoverMode]int{
	ModeQuick:      3,
	ModeComplete:   5,
	ModeExhaustive: 8,
}

// ParseDiscoverMode validates a mode. Empty means ModeComplete.
func ParseDiscoverMode(s string) (DiscoverMode, error) {
	m := DiscoverMode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return ModeComplete, nil
	}
	if _, ok := modeItems[m]; !ok {
		return "", &pipeline.InputError{What: "discover mode", Err: fmt.Errorf("unknown mode %q (want rapido, completo or exhaustivo)", s)}
	}
	return m, nil
}

// DiscoverOptions parameterize a discover run.
type DiscoverOptions struct {
	MaxItems     int
	Mode         DiscoverMode
	PortalFilter string
	WithImages   bool
}

type extraction struct {
	items  []pipeline.RawItem
	report extract.Report
}

// Discover extracts every selected portal, then turns raw items into
// processed articles until MaxItems are accepted.
func (o *Orchestrator) Discover(ctx context.Context, opts DiscoverOptions) (*session.Session, Report, error) {
	start := time.Now()
	report := Report{Stage: StageDiscover}
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}
	mode, err := ParseDiscoverMode(string(opts.Mode))
	if err != nil {
		return nil, report, err
	}
	portals, err := o.deps.Registry.Filter(opts.PortalFilter)
	if err != nil {
		return nil, report, &pipeline.InputError{What: "portal filter", Err: err}
	}
	maxItems := opts.MaxItems
	if maxItems <= 0 {
		maxItems = modeItems[mode]
	}
	startedAt := o.deps.Clock.Now().UTC()
	id, err := session.NewID(startedAt, o.deps.IDs)
	if err != nil {
		return nil, report, err
	}
	log := o.logger.With(zap.String("session", id))
	log.Info("discover started",
		zap.Int("portals", len(portals)),
		zap.Int("max_items", maxItems),
		zap.String("mode", string(mode)),
	)

	pool := dispatcher.New(o.cfg.MaxWorkers)
	extracted, done := dispatcher.Run(ctx, pool, portals, func(ctx context.Context, p pipeline.SourcePortal) extraction {
		items, rep := o.deps.Extractor.Extract(ctx, p, maxItems)
		return extraction{items: items, report: rep}
	})

	dd := dedup.New(o.deps.Store, o.cfg.PrefixLen, log)
	articles := make([]pipeline.ProcessedArticle, 0, maxItems)
	analyzed := 0
merge:
	for i, ex := range extracted {
		if !done[i] {
			continue
		}
		analyzed++
		report.Portals = append(report.Portals, ex.report)
		for _, item := range ex.items {
			if len(articles) >= maxItems || ctx.Err() != nil {
				break merge
			}
			a, out := o.process(ctx, dd, item)
			o.record(&report, out)
			if out.Kind == pipeline.OutcomeOK {
				articles = append(articles, a)
			}
		}
	}

	if opts.WithImages && o.deps.Media != nil && len(articles) > 0 {
		n := o.deps.Media.AttachAll(ctx, articles)
		log.Info("images attached", zap.Int("count", n), zap.Int("articles", len(articles)))
	}

	o.finish(&report, start)
	s := &session.Session{
		Info: session.Info{
			SessionID: id,
			Timestamp: startedAt,
			Agent:     session.Agent,
			Mode:      "investigacion_" + string(mode),
			Parameters: session.Parameters{
				MaxItems:        maxItems,
				PortalFilter:    opts.PortalFilter,
				PortalsAnalyzed: analyzed,
				WithImages:      opts.WithImages,
			},
		},
		Articles: articles,
		Summary: session.Summary{
			Total:           len(articles),
			PortalsAnalyzed: analyzed,
			ProcessingTime:  report.Duration.Round(time.Millisecond).String(),
			AverageQuality:  seo.SessionQuality(articles),
			ReadyToPublish:  len(articles) > 0,
		},
	}
	return s, report, ctx.Err()
}

func (o *Orchestrator) process(ctx context.Context, dd *dedup.Deduplicator, item pipeline.RawItem) (pipeline.ProcessedArticle, pipeline.Outcome) {
	// Store errors are already logged by the deduplicator; the item is kept
	// and the publisher checks again.
	if dup, _ := dd.Exists(ctx, item.Title); dup {
		return pipeline.ProcessedArticle{}, pipeline.Skipped(StageDiscover, item.Title, "duplicate")
	}
	id, err := o.deps.IDs.NewID()
	if err != nil {
		return pipeline.ProcessedArticle{}, pipeline.Failed(StageDiscover, item.Title, err)
	}
	body := o.deps.Synth.Synthesize(item)
	a, err := pipeline.NewProcessedArticle(pipeline.ArticleInput{
		ID:               id,
		Title:            item.Title,
		ShortDescription: o.deps.SEO.ShortDescription(item.Title),
		BodyHTML:         body,
		Author:           o.cfg.Author,
		CategoryName:     o.deps.Classifier.Classify(item.Title, body),
		Media:            pipeline.Media{URL: item.ImageURL},
		SEO:              o.deps.SEO.Enrich(item.Title, body),
		Source: pipeline.Source{
			PortalName:   item.PortalName,
			OriginalURL:  item.SourceURL,
			OriginalTime: item.ExtractedAt,
			Synthetic:    item.IsSynthetic,
		},
	})
	if err != nil {
		return pipeline.ProcessedArticle{}, pipeline.Failed(StageDiscover, item.Title, err)
	}
	o.deps.SEO.Score(a, item.ShortDescription).Apply(&a)
	dd.Accept(item.Title)
	return a, pipeline.Ok(StageDiscover, a.Title)
}

// Enrich applies strategy to every article of s and returns the new session.
// Articles that fail keep their original content.
func (o *Orchestrator) Enrich(ctx context.Context, s *session.Session, strategy string) (*session.Session, Report, error) {
	start := time.Now()
	report := Report{Stage: StageEnrich}
	if err := o.deps.Enricher.Validate(strategy); err != nil {
		return nil, report, err
	}
	out := *s
	out.Articles = make([]pipeline.ProcessedArticle, len(s.Articles))
	copy(out.Articles, s.Articles)

	analysis := &session.Analysis{Strategy: strategy, At: o.deps.Clock.Now().UTC(), Total: len(s.Articles)}
	for i, a := range s.Articles {
		if ctx.Err() != nil {
			break
		}
		enriched, err := o.deps.Enricher.Apply(a, strategy)
		switch {
		case errors.Is(err, enrich.ErrAlreadyApplied):
			o.record(&report, pipeline.Skipped(StageEnrich, a.Title, "already enriched"))
			continue
		case err != nil:
			analysis.Failed++
			o.record(&report, pipeline.Failed(StageEnrich, a.Title, err))
			continue
		}
		o.restage(&enriched, a)
		out.Articles[i] = enriched
		analysis.Enriched++
		o.record(&report, pipeline.Ok(StageEnrich, a.Title))
	}

	out.Analysis = analysis
	out.Summary.AverageQuality = seo.SessionQuality(out.Articles)
	o.finish(&report, start)
	return &out, report, ctx.Err()
}

// restage re-runs classification, SEO and scoring on an enriched body.
func (o *Orchestrator) restage(a *pipeline.ProcessedArticle, before pipeline.ProcessedArticle) {
	a.CategoryName = o.deps.Classifier.Classify(a.Title, a.BodyHTML)
	a.SetSEO(o.deps.SEO.Enrich(a.Title, a.BodyHTML))
	q := o.deps.SEO.Score(*a, "")
	// Originality is measured against the portal excerpt, which the artifact
	// does not keep.
	q.OriginalityScore = before.Metrics.OriginalityScore
	q.Apply(a)
}

// PublishOptions parameterize a publish run.
type PublishOptions struct {
	publish.Options
	Selection publish.Selection
}

// Publish writes the selected articles of s, one at a time, and returns the
// session with its publication block filled in.
func (o *Orchestrator) Publish(ctx context.Context, s *session.Session, opts PublishOptions) (*session.Session, Report, error) {
	start := time.Now()
	report := Report{Stage: StagePublish}
	if opts.Mode == "" {
		opts.Mode = publish.ModePublish
	}
	if opts.Mode != publish.ModeDryRun && o.deps.Classifier != nil {
		if _, err := o.deps.Publisher.EnsureCategories(ctx, o.deps.Classifier.Categories()); err != nil {
			o.logger.Warn("category seeding incomplete", zap.Error(err))
		}
	}

	for _, sel := range publish.Select(s.Articles, opts.Selection) {
		if ctx.Err() != nil {
			break
		}
		res := o.deps.Publisher.Publish(ctx, sel.Article, opts.Options)
		report.Results = append(report.Results, res)
		switch res.Status {
		case pipeline.StatusSkippedDuplicate:
			o.record(&report, pipeline.Skipped(StagePublish, res.Title, "duplicate"))
		case pipeline.StatusFailed:
			o.record(&report, pipeline.Failed(StagePublish, res.Title, errors.New(res.Error)))
		default:
			o.record(&report, pipeline.Ok(StagePublish, res.Title))
		}
	}

	out := *s
	out.Publication = session.NewPublication(o.deps.Clock.Now().UTC(), string(opts.Mode), report.Results)
	o.finish(&report, start)
	return &out, report, ctx.Err()
}
