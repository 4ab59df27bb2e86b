package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // register decoder

	"github.com/JakeFAU/renewables-newsroom/internal/metrics"
	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

// Size bounds for downloaded images.
const (
	DefaultMinBytes = 1 << 10
	DefaultMaxBytes = 10 << 20
)

// DownloaderConfig bounds a single image download.
type DownloaderConfig struct {
	MinBytes       int64         `mapstructure:"min_bytes"`
	MaxBytes       int64         `mapstructure:"max_bytes"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// Downloader implements pipeline.MediaDownloader over net/http.
type Downloader struct {
	cfg     DownloaderConfig
	client  *http.Client
	retry   pipeline.RetryPolicy
	limiter pipeline.RateLimiter
	logger  *zap.Logger
}

// DownloaderOption customizes a Downloader.
type DownloaderOption func(*Downloader)

// WithDownloadRetry replaces the default 3-attempt linear policy.
func WithDownloadRetry(p pipeline.RetryPolicy) DownloaderOption {
	return func(d *Downloader) { d.retry = p }
}

// WithDownloadLimiter throttles downloads per host.
func WithDownloadLimiter(l pipeline.RateLimiter) DownloaderOption {
	return func(d *Downloader) { d.limiter = l }
}

// WithDownloadLogger sets the logger.
func WithDownloadLogger(l *zap.Logger) DownloaderOption {
	return func(d *Downloader) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDownloader builds a Downloader.
func NewDownloader(cfg DownloaderConfig, opts ...DownloaderOption) *Downloader {
	if cfg.MinBytes <= 0 {
		cfg.MinBytes = DefaultMinBytes
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 45 * time.Second
	}
	d := &Downloader{
		cfg:    cfg,
		client: newHTTPClient(cfg.ConnectTimeout, cfg.ReadTimeout),
		retry:  pipeline.NewLinearRetryPolicy(pipeline.DefaultMaxAttempts, time.Second),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.retry = validationIsFinal{d.retry}
	return d
}

// Download fetches rawURL and validates type and size.
func (d *Downloader) Download(ctx context.Context, rawURL string) (pipeline.DownloadedImage, error) {
	if err := checkURL(rawURL); err != nil {
		metrics.ObserveMediaDownload("invalid", 0)
		return pipeline.DownloadedImage{}, err
	}

	var img pipeline.DownloadedImage
	attempts, err := pipeline.Retry(ctx, d.retry, func(attempt int) error {
		var attemptErr error
		img, attemptErr = d.once(ctx, rawURL)
		if attemptErr != nil {
			d.logger.Debug("image download attempt failed",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Error(attemptErr),
			)
		}
		return attemptErr
	})
	if err != nil {
		var valErr *pipeline.ValidationError
		if errors.As(err, &valErr) {
			metrics.ObserveMediaDownload("invalid", 0)
			return pipeline.DownloadedImage{}, err
		}
		metrics.ObserveMediaDownload("error", 0)
		return pipeline.DownloadedImage{}, &pipeline.FetchError{URL: rawURL, Attempts: attempts, Err: err}
	}
	metrics.ObserveMediaDownload("ok", len(img.Data))
	return img, nil
}

func (d *Downloader) once(ctx context.Context, rawURL string) (pipeline.DownloadedImage, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx, rawURL); err != nil {
			return pipeline.DownloadedImage{}, fmt.Errorf("rate limit wait: %w", err)
		}
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.ConnectTimeout+d.cfg.ReadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return pipeline.DownloadedImage{}, &pipeline.ValidationError{Field: "image_url", Value: rawURL, Err: pipeline.ErrBadURL}
	}
	req.Header.Set("Accept", "image/webp,image/apng,image/*,*/*;q=0.8")
	if d.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", d.cfg.UserAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return pipeline.DownloadedImage{}, fmt.Errorf("get image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 500:
		return pipeline.DownloadedImage{}, fmt.Errorf("get image: status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return pipeline.DownloadedImage{}, &pipeline.ValidationError{
			Field: "image_url",
			Value: rawURL,
			Err:   fmt.Errorf("status %d: %w", resp.StatusCode, pipeline.ErrBadURL),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if !strings.HasPrefix(mediaType, "image/") {
		return pipeline.DownloadedImage{}, &pipeline.ValidationError{Field: "content_type", Value: contentType, Err: pipeline.ErrNotImage}
	}
	if resp.ContentLength > d.cfg.MaxBytes {
		return pipeline.DownloadedImage{}, &pipeline.ValidationError{Field: "image_size", Err: pipeline.ErrTooLarge}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.cfg.MaxBytes+1))
	if err != nil {
		return pipeline.DownloadedImage{}, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > d.cfg.MaxBytes {
		return pipeline.DownloadedImage{}, &pipeline.ValidationError{Field: "image_size", Err: pipeline.ErrTooLarge}
	}
	if int64(len(data)) < d.cfg.MinBytes {
		return pipeline.DownloadedImage{}, &pipeline.ValidationError{Field: "image_size", Err: pipeline.ErrTooSmall}
	}

	img := pipeline.DownloadedImage{Data: data, ContentType: mediaType}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Width, img.Height = cfg.Width, cfg.Height
	}
	return img, nil
}

// checkURL rejects anything that is not an absolute http(s) URL.
func checkURL(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &pipeline.ValidationError{Field: "image_url", Value: rawURL, Err: pipeline.ErrBadURL}
	}
	return nil
}

// validationIsFinal stops retries once the response itself was rejected.
type validationIsFinal struct {
	pipeline.RetryPolicy
}

func (p validationIsFinal) ShouldRetry(err error, attempt int) bool {
	var valErr *pipeline.ValidationError
	if errors.As(err, &valErr) {
		return false
	}
	return p.RetryPolicy.ShouldRetry(err, attempt)
}
