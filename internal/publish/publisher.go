// Package publish writes processed articles into the content store.
package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/JakeFAU/renewables-newsroom/internal/announce"
	"github.com/JakeFAU/renewables-newsroom/internal/clock/system"
	"github.com/JakeFAU/renewables-newsroom/internal/dedup"
	"github.com/JakeFAU/renewables-newsroom/internal/metrics"
	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

// DefaultAuthor is the byline given to articles without one.
const DefaultAuthor = "Estefani"

// Mode selects what Publish does with an article.
type Mode string

// Publish modes.
const (
	ModePublish Mode = "publish"
	ModeDraft   Mode = "draft"
	ModeDryRun  Mode = "dry_run"
)

// ParseMode validates a mode name. Empty means ModePublish.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModePublish, nil
	case ModePublish, ModeDraft, ModeDryRun:
		return m, nil
	default:
		return "", &pipeline.InputError{What: "publish mode", Err: fmt.Errorf("unknown mode %q", s)}
	}
}

// Options control a single Publish call.
type Options struct {
	Mode       Mode
	SkipImages bool
}

// ImageStorer moves a remote image into the media blob store.
type ImageStorer interface {
	Persist(ctx context.Context, title string, m pipeline.Media) (pipeline.Media, error)
}

// Publisher creates store articles, one writer per title prefix.
type Publisher struct {
	store     pipeline.ContentStore
	images    ImageStorer
	announcer pipeline.Announcer
	topic     string
	clock     pipeline.Clock
	logger    *zap.Logger
	prefixLen int

	mu    sync.Mutex
	locks map[string]*titleLock
}

type titleLock struct {
	mu   sync.Mutex
	refs int
}

// Option customizes a Publisher.
type Option func(*Publisher)

// WithImages enables image persistence for remote images.
func WithImages(s ImageStorer) Option { return func(p *Publisher) { p.images = s } }

// WithAnnouncer sends an ArticlePublished event after each store write.
// An empty topic selects announce.TopicArticlePublished.
func WithAnnouncer(a pipeline.Announcer, topic string) Option {
	return func(p *Publisher) {
		p.announcer = a
		if topic != "" {
			p.topic = topic
		}
	}
}

// WithClock overrides the publication timestamp source.
func WithClock(c pipeline.Clock) Option { return func(p *Publisher) { p.clock = c } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// New builds a Publisher over store.
func New(store pipeline.ContentStore, opts ...Option) *Publisher {
	p := &Publisher{
		store:     store,
		topic:     announce.TopicArticlePublished,
		clock:     system.New(),
		logger:    zap.NewNop(),
		prefixLen: dedup.DefaultPrefixRunes,
		locks:     make(map[string]*titleLock),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish runs one article through the idempotency check, category
// resolution and store write. ModeDryRun returns before touching the store
// and keeps the article's own category. Failures are reported in the result.
func (p *Publisher) Publish(ctx context.Context, a pipeline.ProcessedArticle, opts Options) pipeline.PublishResult {
	res := p.publish(ctx, a, opts)
	metrics.ObservePublish(string(res.Status))
	return res
}

func (p *Publisher) publish(ctx context.Context, a pipeline.ProcessedArticle, opts Options) pipeline.PublishResult {
	fields := p.fields(a)
	res := pipeline.PublishResult{Title: fields.Title, CategoryName: a.CategoryName}
	log := p.logger.With(zap.String("title", pipeline.Prefix(fields.Title, 50)), zap.String("mode", string(opts.Mode)))

	if opts.Mode == ModeDryRun {
		res.Status = pipeline.StatusSimulated
		log.Info("publish simulated", zap.String("category", res.CategoryName))
		return res
	}

	key := dedup.Normalize(a.Title, p.prefixLen)
	unlock := p.lock(key)
	defer unlock()

	exists, err := p.store.ExistsByTitlePrefix(ctx, key)
	if err != nil {
		return failed(res, &pipeline.StoreError{Op: "exists", Title: fields.Title, Err: err})
	}
	if exists {
		res.Status = pipeline.StatusSkippedDuplicate
		log.Info("article already published")
		return res
	}

	cats, err := p.store.ListActiveCategories(ctx)
	if err != nil {
		return failed(res, &pipeline.StoreError{Op: "list categories", Title: fields.Title, Err: err})
	}
	if cat, ok := ResolveCategory(cats, a.CategoryName); ok {
		fields.CategoryID = cat.ID
		res.CategoryName = cat.Name
	} else {
		res.CategoryName = ""
		log.Warn("no active category for article", zap.String("category", a.CategoryName))
	}

	fields.Active = opts.Mode != ModeDraft
	media := p.media(ctx, a, opts, log)

	ref, err := p.store.CreateArticle(ctx, fields, media)
	if err != nil {
		return failed(res, &pipeline.StoreError{Op: "create", Title: fields.Title, Err: err})
	}
	res.ArticleID = ref.ID
	res.StoreRef = ref.Slug
	res.Status = pipeline.StatusPublished
	if !fields.Active {
		res.Status = pipeline.StatusDraft
	}
	log.Info("article stored", zap.String("id", ref.ID), zap.String("slug", ref.Slug), zap.String("status", string(res.Status)))

	p.announce(ctx, res, fields, media, log)
	return res
}

// fields copies the article into the store contract, capped at store limits.
func (p *Publisher) fields(a pipeline.ProcessedArticle) pipeline.ArticleFields {
	author := strings.TrimSpace(a.Author)
	if author == "" {
		author = DefaultAuthor
	}
	return pipeline.ArticleFields{
		Title:            pipeline.Truncate(a.Title, pipeline.MaxTitleLen),
		ShortDescription: pipeline.Truncate(a.ShortDescription, pipeline.MaxShortDescriptionLen),
		BodyHTML:         a.BodyHTML,
		Author:           pipeline.Truncate(author, pipeline.MaxAuthorLen),
		MetaDescription:  pipeline.Truncate(a.SEO.MetaDescription, pipeline.MaxMetaDescriptionLen),
		MetaKeywords:     pipeline.TruncateList(a.SEO.MetaKeywords, pipeline.MaxMetaKeywordsLen),
		SourceURL:        a.Source.OriginalURL,
		PublishedAt:      p.clock.Now().UTC(),
	}
}

// media returns the image to store with the article, or nil.
func (p *Publisher) media(ctx context.Context, a pipeline.ProcessedArticle, opts Options, log *zap.Logger) *pipeline.Media {
	m := a.Media
	if opts.SkipImages || !m.HasImage() {
		return nil
	}
	if m.Stored {
		return &m
	}
	if p.images == nil {
		return &m
	}
	stored, err := p.images.Persist(ctx, a.Title, m)
	if err != nil {
		log.Warn("image not stored, publishing without it", zap.String("url", m.URL), zap.Error(err))
		return nil
	}
	return &stored
}

func (p *Publisher) announce(ctx context.Context, res pipeline.PublishResult, fields pipeline.ArticleFields, media *pipeline.Media, log *zap.Logger) {
	if p.announcer == nil {
		return
	}
	evt := announce.ArticlePublished{
		ArticleID:   res.ArticleID,
		Slug:        res.StoreRef,
		Title:       res.Title,
		Category:    res.CategoryName,
		Status:      string(res.Status),
		SourceURL:   fields.SourceURL,
		PublishedAt: fields.PublishedAt,
	}
	if media != nil {
		evt.ImageURL = media.URL
	}
	if _, err := p.announcer.Publish(ctx, p.topic, evt); err != nil {
		log.Warn("announce failed", zap.String("topic", p.topic), zap.Error(err))
	}
}

// lock serializes writers sharing a normalized title prefix.
func (p *Publisher) lock(key string) func() {
	p.mu.Lock()
	l, ok := p.locks[key]
	if !ok {
		l = &titleLock{}
		p.locks[key] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		p.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(p.locks, key)
		}
		p.mu.Unlock()
	}
}

// EnsureCategories creates any missing category and returns the stored rows.
func (p *Publisher) EnsureCategories(ctx context.Context, categories []pipeline.Category) ([]pipeline.Category, error) {
	out := make([]pipeline.Category, 0, len(categories))
	var errs []error
	for _, c := range categories {
		got, err := p.store.EnsureCategory(ctx, c)
		if err != nil {
			errs = append(errs, fmt.Errorf("ensure category %q: %w", c.Name, err))
			continue
		}
		out = append(out, got)
	}
	if err := errors.Join(errs...); err != nil {
		return out, err
	}
	p.logger.Debug("categories ready", zap.Int("count", len(out)))
	return out, nil
}

// ResolveCategory picks an exact name match, then a case-insensitive match,
// then the first active category.
func ResolveCategory(categories []pipeline.Category, name string) (pipeline.Category, bool) {
	var active []pipeline.Category
	for _, c := range categories {
		if c.Active {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return pipeline.Category{}, false
	}
	name = strings.TrimSpace(name)
	for _, c := range active {
		if c.Name == name {
			return c, true
		}
	}
	folded := cases.Fold().String(name)
	for _, c := range active {
		if cases.Fold().String(c.Name) == folded {
			return c, true
		}
	}
	return active[0], true
}

func failed(res pipeline.PublishResult, err error) pipeline.PublishResult {
	res.Status = pipeline.StatusFailed
	res.Error = err.Error()
	return res
}
