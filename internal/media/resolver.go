package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

// ErrNotConfigured is returned by a resolver without an API key.
var ErrNotConfigured = errors.New("api key not configured")

const redactedKey = "[API_KEY_HIDDEN]"

// ResolverConfig is shared by the image search clients.
type ResolverConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	Endpoint       string        `mapstructure:"endpoint"`
	PerPage        int           `mapstructure:"per_page"`
	MinWidth       int           `mapstructure:"min_width"`
	MinHeight      int           `mapstructure:"min_height"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

func (c ResolverConfig) withDefaults(endpoint string) ResolverConfig {
	if c.Endpoint == "" {
		c.Endpoint = endpoint
	}
	if c.PerPage <= 0 {
		c.PerPage = 5
	}
	if c.MinWidth <= 0 {
		c.MinWidth = 800
	}
	if c.MinHeight <= 0 {
		c.MinHeight = 600
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Hour
	}
	return c
}

// searchClient holds the HTTP plumbing common to Pexels and Pixabay.
type searchClient struct {
	name   string
	cfg    ResolverConfig
	client *http.Client
	cache  *cache.Cache
}

func newSearchClient(name string, cfg ResolverConfig) searchClient {
	return searchClient{
		name:   name,
		cfg:    cfg,
		client: newHTTPClient(cfg.ConnectTimeout, cfg.ReadTimeout),
		cache:  cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
	}
}

func (s searchClient) cached(query string) (pipeline.ImageCandidate, bool) {
	v, ok := s.cache.Get(s.name + ":" + query)
	if !ok {
		return pipeline.ImageCandidate{}, false
	}
	c, ok := v.(pipeline.ImageCandidate)
	return c, ok
}

func (s searchClient) remember(query string, c pipeline.ImageCandidate) {
	s.cache.SetDefault(s.name+":"+query, c)
}

// getJSON issues the request and decodes the body into out.
func (s searchClient) getJSON(ctx context.Context, req *http.Request, out any) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ReadTimeout)
	defer cancel()

	resp, err := s.client.Do(req.WithContext(ctx))
	if err != nil {
		return s.redact(fmt.Errorf("%s search: %w", s.name, err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s search: status %d", s.name, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return s.redact(fmt.Errorf("%s decode: %w", s.name, err))
	}
	return nil
}

func (s searchClient) redact(err error) error {
	return redact(err, s.cfg.APIKey)
}

// redact removes key from the error text. The chain is flattened into a
// plain error because wrapped url.Errors still carry the key.
func redact(err error, key string) error {
	if err == nil || key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), key, redactedKey))
}

func newHTTPClient(connectTimeout, readTimeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: readTimeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   connectTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   connectTimeout,
			ResponseHeaderTimeout: readTimeout,
			MaxIdleConns:          20,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// Chain tries resolvers in order and returns the first hit.
type Chain []pipeline.MediaResolver

// Name implements pipeline.MediaResolver.
func (c Chain) Name() string {
	names := make([]string, 0, len(c))
	for _, r := range c {
		names = append(names, r.Name())
	}
	return strings.Join(names, ",")
}

// Resolve implements pipeline.MediaResolver. Errors from every resolver are joined.
func (c Chain) Resolve(ctx context.Context, keywords []string) (pipeline.ImageCandidate, error) {
	var errs []error
	for _, r := range c {
		cand, err := r.Resolve(ctx, keywords)
		if err == nil {
			return cand, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return pipeline.ImageCandidate{}, ErrNotConfigured
	}
	return pipeline.ImageCandidate{}, errors.Join(errs...)
}

func altText(query string) string {
	return "Imagen sobre " + query
}
