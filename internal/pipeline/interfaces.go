package pipeline

import (
	"context"
	"io"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// ContentStore persists articles and categories.
type ContentStore interface {
	ExistsByTitlePrefix(ctx context.Context, prefix string) (bool, error)
	CreateArticle(ctx context.Context, fields ArticleFields, media *Media) (ArticleRef, error)
	ListActiveCategories(ctx context.Context) ([]Category, error)
	EnsureCategory(ctx context.Context, category Category) (Category, error)
	ListArticles(ctx context.Context, filter ArticleFilter) ([]StoredArticle, error)
	DeleteArticles(ctx context.Context, ids []string) (int, error)
}

// MediaResolver searches for a candidate image for a query.
type MediaResolver interface {
	Name() string
	Resolve(ctx context.Context, keywords []string) (ImageCandidate, error)
}

// MediaDownloader fetches and validates image bytes.
type MediaDownloader interface {
	Download(ctx context.Context, url string) (DownloadedImage, error)
}

// BlobStore writes media objects and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// Announcer pushes publication events to a topic.
type Announcer interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// RateLimiter delays requests per domain.
type RateLimiter interface {
	Wait(ctx context.Context, url string) error
}

// RetryPolicy decides whether and when to retry a failed attempt.
type RetryPolicy interface {
	ShouldRetry(err error, attempt int) bool
	Backoff(attempt int) time.Duration
	MaxAttempts() int
}

// Hasher computes digests used for media object names.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces unique identifiers.
type IDGenerator interface {
	NewID() (string, error)
}
