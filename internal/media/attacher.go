package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/JakeFAU/renewables-newsroom/internal/extract"
	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
	"github.com/JakeFAU/renewables-newsroom/internal/slug"
)

// ObjectPrefix is where stored images live inside the blob store.
const ObjectPrefix = "noticias/imagenes/"

const (
	sourcePortal = "portal"
	objectSlug   = 60
	hashPrefix   = 8
)

// Config toggles the attacher's stages.
type Config struct {
	// Search queries the resolvers when the article has no usable image.
	Search bool `mapstructure:"search"`
	// Store downloads the image and writes it to the blob store.
	Store       bool `mapstructure:"store"`
	MaxParallel int  `mapstructure:"max_parallel"`
}

// Attacher resolves and stores the image for an article.
type Attacher struct {
	cfg        Config
	resolver   pipeline.MediaResolver
	downloader pipeline.MediaDownloader
	blobs      pipeline.BlobStore
	hasher     pipeline.Hasher
	optimizer  *Optimizer
	logger     *zap.Logger
}

// Option customizes an Attacher.
type Option func(*Attacher)

// WithResolver sets the image search backend. Use Chain for several.
func WithResolver(r pipeline.MediaResolver) Option {
	return func(a *Attacher) { a.resolver = r }
}

// WithStorage enables download-and-store.
func WithStorage(d pipeline.MediaDownloader, b pipeline.BlobStore, h pipeline.Hasher) Option {
	return func(a *Attacher) {
		a.downloader, a.blobs, a.hasher = d, b, h
	}
}

// WithOptimizer re-encodes stored images. Nil stores the original bytes.
func WithOptimizer(o *Optimizer) Option {
	return func(a *Attacher) { a.optimizer = o }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Attacher) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAttacher builds an Attacher.
func NewAttacher(cfg Config, opts ...Option) *Attacher {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 4
	}
	a := &Attacher{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Attach returns the media for article, or nil when no image could be attached.
// An image already present on the article is validated and reused.
func (a *Attacher) Attach(ctx context.Context, article pipeline.ProcessedArticle) *pipeline.Media {
	m, _ := a.attach(ctx, article)
	return m
}

// attach also reports whether storing the image was attempted and failed.
func (a *Attacher) attach(ctx context.Context, article pipeline.ProcessedArticle) (*pipeline.Media, bool) {
	m, ok := a.candidate(ctx, article)
	if !ok {
		return nil, false
	}
	if !a.cfg.Store || m.Stored {
		return &m, false
	}
	stored, err := a.Persist(ctx, article.Title, m)
	if err != nil {
		a.logger.Warn("image store failed",
			zap.String("title", pipeline.Prefix(article.Title, 50)),
			zap.String("url", m.URL),
			zap.Error(err),
		)
		return nil, true
	}
	return &stored, false
}

// AttachAll runs Attach over articles with at most MaxParallel downloads in
// flight and writes the results back in place. It returns how many got an image.
// Articles whose image could not be stored lose it, so publish does not retry
// the same download.
func (a *Attacher) AttachAll(ctx context.Context, articles []pipeline.ProcessedArticle) int {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		attached int
	)
	sem := make(chan struct{}, a.cfg.MaxParallel)
	for i := range articles {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			m, failed := a.attach(ctx, articles[i])
			mu.Lock()
			defer mu.Unlock()
			switch {
			case m != nil:
				articles[i].Media = *m
				attached++
			case failed:
				articles[i].Media = pipeline.Media{}
			}
		}(i)
	}
	wg.Wait()
	return attached
}

// Persist downloads m.URL, optimizes it and writes it to the blob store.
func (a *Attacher) Persist(ctx context.Context, title string, m pipeline.Media) (pipeline.Media, error) {
	if a.downloader == nil || a.blobs == nil || a.hasher == nil {
		return pipeline.Media{}, errors.New("media storage not configured")
	}
	img, err := a.downloader.Download(ctx, m.URL)
	if err != nil {
		return pipeline.Media{}, fmt.Errorf("download image: %w", err)
	}

	data, contentType := img.Data, img.ContentType
	width, height := img.Width, img.Height
	if a.optimizer != nil {
		out, size, err := a.optimizer.Optimize(img.Data)
		if err != nil {
			a.logger.Debug("image optimize failed, keeping original", zap.Error(err))
		} else {
			data, contentType, width, height = out, "image/jpeg", size.X, size.Y
		}
	}

	path, err := a.objectPath(title, data)
	if err != nil {
		return pipeline.Media{}, err
	}
	uri, err := a.blobs.PutObject(ctx, path, contentType, bytes.NewReader(data))
	if err != nil {
		return pipeline.Media{}, fmt.Errorf("put object: %w", err)
	}

	out := m
	out.OriginalURL = m.URL
	out.URL = uri
	out.Stored = true
	if width > 0 {
		out.Width, out.Height = width, height
	}
	return out, nil
}

func (a *Attacher) candidate(ctx context.Context, article pipeline.ProcessedArticle) (pipeline.Media, bool) {
	if m := article.Media; m.HasImage() {
		if m.Stored || extract.ValidImageURL(m.URL) {
			if m.Source == "" {
				m.Source = sourcePortal
			}
			if m.Alt == "" {
				m.Alt = DefaultAlt(article.Title)
			}
			return m, true
		}
	}
	if !a.cfg.Search || a.resolver == nil {
		return pipeline.Media{}, false
	}
	cand, err := a.resolver.Resolve(ctx, Keywords(article.Title))
	if err != nil {
		a.logger.Debug("image search found nothing",
			zap.String("title", pipeline.Prefix(article.Title, 50)),
			zap.Error(err),
		)
		return pipeline.Media{}, false
	}
	return pipeline.Media{
		Type:   "imagen",
		URL:    cand.URL,
		Source: cand.Source,
		Author: cand.Photographer,
		Alt:    cand.Alt,
		Width:  cand.Width,
		Height: cand.Height,
	}, true
}

// objectPath is noticias/imagenes/<slug>_<sha8>.jpg.
func (a *Attacher) objectPath(title string, data []byte) (string, error) {
	sum, err := a.hasher.Hash(data)
	if err != nil {
		return "", fmt.Errorf("hash image: %w", err)
	}
	if len(sum) > hashPrefix {
		sum = sum[:hashPrefix]
	}
	name := slug.Limit(slug.WithFallback(title, "imagen"), objectSlug)
	return ObjectPrefix + name + "_" + sum + ".jpg", nil
}

// DefaultAlt is the alt text used when no search result supplies one.
func DefaultAlt(title string) string {
	return "Imagen sobre " + pipeline.Prefix(title, 50) + "..."
}
