// Package config loads and validates newsroom configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/renewables-newsroom/internal/classify"
	"github.com/JakeFAU/renewables-newsroom/internal/media"
	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
	"github.com/JakeFAU/renewables-newsroom/internal/portal"
	"github.com/JakeFAU/renewables-newsroom/internal/relevance"
	"github.com/JakeFAU/renewables-newsroom/internal/seo"
	"github.com/JakeFAU/renewables-newsroom/internal/storage/gcs"
	"github.com/JakeFAU/renewables-newsroom/internal/storage/local"
	"github.com/JakeFAU/renewables-newsroom/internal/storage/s3"
	"github.com/JakeFAU/renewables-newsroom/internal/store/postgres"
)

// Backend names.
const (
	BackendNone     = "none"
	BackendMemory   = "memory"
	BackendLocal    = "local"
	BackendGCS      = "gcs"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
	BackendPubSub   = "pubsub"
)

// Config captures all newsroom configuration knobs loaded via Viper.
type Config struct {
	Pipeline   PipelineConfig     `mapstructure:"pipeline"`
	Portals    PortalsConfig      `mapstructure:"portals"`
	Relevance  relevance.Keywords `mapstructure:"relevance"`
	Categories CategoriesConfig   `mapstructure:"categories"`
	SEO        seo.Config         `mapstructure:"seo"`
	Fetch      FetchConfig        `mapstructure:"fetch"`
	Headless   HeadlessConfig     `mapstructure:"headless"`
	Media      MediaConfig        `mapstructure:"media"`
	Store      StoreConfig        `mapstructure:"store"`
	Announce   AnnounceConfig     `mapstructure:"announce"`
	Status     StatusConfig       `mapstructure:"status"`
	Logging    LoggingConfig      `mapstructure:"logging"`
}

// PipelineConfig governs the stage orchestrator.
type PipelineConfig struct {
	MaxWorkers int    `mapstructure:"max_workers"`
	PrefixLen  int    `mapstructure:"dedup_prefix_runes"`
	Author     string `mapstructure:"author"`
	// TemplateSeed fixes the synthesizer's template choice; 0 seeds from the clock.
	TemplateSeed uint64 `mapstructure:"template_seed"`
}

// PortalsConfig selects the catalogue. File wins over List; both empty means
// the built-in catalogue.
type PortalsConfig struct {
	File string                  `mapstructure:"file"`
	List []pipeline.SourcePortal `mapstructure:"list"`
}

// CategoriesConfig is the classification rule table.
type CategoriesConfig struct {
	Fallback string                  `mapstructure:"fallback"`
	Rules    []classify.CategoryRule `mapstructure:"rules"`
}

// FetchConfig controls portal HTTP fetches.
type FetchConfig struct {
	UserAgent             string  `mapstructure:"user_agent"`
	RespectRobots         bool    `mapstructure:"respect_robots"`
	TimeoutSeconds        int     `mapstructure:"timeout_seconds"`
	ConnectTimeoutSeconds int     `mapstructure:"connect_timeout_seconds"`
	MaxBodyBytes          int     `mapstructure:"max_body_bytes"`
	MaxRetries            int     `mapstructure:"max_retries"`
	BackoffMs             int     `mapstructure:"backoff_ms"`
	RateLimitRPS          float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst        int     `mapstructure:"rate_limit_burst"`
	// DomainRPS overrides rate_limit_rps for individual hosts.
	DomainRPS map[string]float64 `mapstructure:"domain_rps"`
}

// HeadlessConfig configures the chromedp fetcher used for render portals.
type HeadlessConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	MaxParallel   int    `mapstructure:"max_parallel"`
	NavTimeoutSec int    `mapstructure:"nav_timeout_seconds"`
	ScrollPasses  int    `mapstructure:"scroll_passes"`
	WaitSelector  string `mapstructure:"wait_selector"`
	BlockImages   bool   `mapstructure:"block_images"`
	// PromotionBytes is the body size under which a script-heavy page is
	// re-fetched through the browser.
	PromotionBytes int `mapstructure:"promotion_bytes"`
}

// MediaConfig covers image search, download, optimisation and blob storage.
type MediaConfig struct {
	Attach   media.Config           `mapstructure:"attach"`
	Pexels   media.ResolverConfig   `mapstructure:"pexels"`
	Pixabay  media.ResolverConfig   `mapstructure:"pixabay"`
	Download media.DownloaderConfig `mapstructure:"download"`
	Optimize OptimizeConfig         `mapstructure:"optimize"`
	Blob     BlobConfig             `mapstructure:"blob"`
}

// OptimizeConfig toggles the JPEG re-encoder.
type OptimizeConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	media.Optimizer `mapstructure:",squash"`
}

// BlobConfig picks where stored images go.
type BlobConfig struct {
	Backend string       `mapstructure:"backend"`
	Local   local.Config `mapstructure:"local"`
	GCS     gcs.Config   `mapstructure:"gcs"`
	S3      s3.Config    `mapstructure:"s3"`
}

// StoreConfig picks the content store.
type StoreConfig struct {
	Backend  string            `mapstructure:"backend"`
	Memory   MemoryStoreConfig `mapstructure:"memory"`
	Postgres postgres.Config   `mapstructure:"postgres"`
	Migrate  bool              `mapstructure:"migrate"`
}

// MemoryStoreConfig points the in-memory store at an optional JSON snapshot.
type MemoryStoreConfig struct {
	Path string `mapstructure:"path"`
}

// AnnounceConfig picks where publication events go.
type AnnounceConfig struct {
	Backend   string `mapstructure:"backend"`
	Topic     string `mapstructure:"topic"`
	ProjectID string `mapstructure:"project_id"`
}

// StatusConfig holds the status server address. Empty disables it.
type StatusConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NEWSROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyTableDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.max_workers", 4)
	v.SetDefault("pipeline.dedup_prefix_runes", 50)
	v.SetDefault("pipeline.author", "Estefani")
	v.SetDefault("pipeline.template_seed", 0)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; renewables-newsroom/1.0)")
	v.SetDefault("fetch.respect_robots", false)
	v.SetDefault("fetch.timeout_seconds", 15)
	v.SetDefault("fetch.connect_timeout_seconds", 10)
	v.SetDefault("fetch.max_body_bytes", 5*1024*1024)
	v.SetDefault("fetch.max_retries", pipeline.DefaultMaxAttempts)
	v.SetDefault("fetch.backoff_ms", 1000)
	v.SetDefault("fetch.rate_limit_rps", 1.0)
	v.SetDefault("fetch.rate_limit_burst", 1)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 25)
	v.SetDefault("headless.promotion_bytes", 2048)
	v.SetDefault("headless.scroll_passes", 2)
	v.SetDefault("headless.block_images", true)
	v.SetDefault("media.attach.search", true)
	v.SetDefault("media.attach.store", false)
	v.SetDefault("media.attach.max_parallel", 4)
	v.SetDefault("media.download.min_bytes", media.DefaultMinBytes)
	v.SetDefault("media.download.max_bytes", media.DefaultMaxBytes)
	v.SetDefault("media.download.connect_timeout", "10s")
	v.SetDefault("media.download.read_timeout", "30s")
	v.SetDefault("media.optimize.enabled", true)
	v.SetDefault("media.optimize.max_width", 1200)
	v.SetDefault("media.optimize.max_height", 800)
	v.SetDefault("media.optimize.quality", 85)
	v.SetDefault("media.blob.backend", BackendMemory)
	v.SetDefault("media.blob.local.base_dir", "media")
	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.memory.path", "")
	v.SetDefault("store.postgres.articles_table", "articles")
	v.SetDefault("store.postgres.categories_table", "categories")
	v.SetDefault("store.postgres.max_conns", 4)
	v.SetDefault("store.migrate", false)
	v.SetDefault("announce.backend", BackendNone)
	v.SetDefault("announce.topic", "")
	v.SetDefault("status.addr", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// applyTableDefaults fills the keyword and rule tables left empty.
func (c *Config) applyTableDefaults() {
	if c.Portals.File == "" && len(c.Portals.List) == 0 {
		c.Portals.List = portal.Defaults()
	}
	kw := relevance.DefaultKeywords()
	if len(c.Relevance.Primary) == 0 {
		c.Relevance.Primary = kw.Primary
	}
	if len(c.Relevance.Regional) == 0 {
		c.Relevance.Regional = kw.Regional
	}
	if len(c.Relevance.Market) == 0 {
		c.Relevance.Market = kw.Market
	}
	if len(c.Relevance.Exclusion) == 0 {
		c.Relevance.Exclusion = kw.Exclusion
	}
	if len(c.Categories.Rules) == 0 {
		c.Categories.Rules = classify.DefaultRules()
	}
	if c.Categories.Fallback == "" {
		c.Categories.Fallback = classify.DefaultFallback
	}
	def := seo.DefaultConfig()
	if c.SEO.Brand == "" {
		c.SEO.Brand = def.Brand
	}
	if len(c.SEO.BaseKeywords) == 0 {
		c.SEO.BaseKeywords = def.BaseKeywords
	}
	if len(c.SEO.SectorKeywords) == 0 {
		c.SEO.SectorKeywords = def.SectorKeywords
	}
	if len(c.SEO.RelevanceTerms) == 0 {
		c.SEO.RelevanceTerms = def.RelevanceTerms
	}
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	var errs []error
	if c.Pipeline.MaxWorkers <= 0 {
		errs = append(errs, errors.New("pipeline.max_workers must be > 0"))
	}
	if c.Pipeline.PrefixLen <= 0 {
		errs = append(errs, errors.New("pipeline.dedup_prefix_runes must be > 0"))
	}
	if strings.TrimSpace(c.Pipeline.Author) == "" {
		errs = append(errs, errors.New("pipeline.author must be set"))
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("fetch.timeout_seconds must be > 0"))
	}
	if c.Fetch.MaxRetries <= 0 || c.Fetch.MaxRetries > pipeline.DefaultMaxAttempts {
		errs = append(errs, fmt.Errorf("fetch.max_retries must be between 1 and %d", pipeline.DefaultMaxAttempts))
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		errs = append(errs, errors.New("headless.max_parallel must be > 0 when headless is enabled"))
	}
	errs = append(errs, c.validateBackends()...)
	return errors.Join(errs...)
}

func (c Config) validateBackends() []error {
	var errs []error
	switch c.Store.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Store.Postgres.DSN == "" {
			errs = append(errs, errors.New("store.postgres.dsn is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend %q is not one of memory, postgres", c.Store.Backend))
	}
	switch c.Media.Blob.Backend {
	case BackendMemory, BackendLocal:
	case BackendGCS:
		if c.Media.Blob.GCS.Bucket == "" {
			errs = append(errs, errors.New("media.blob.gcs.bucket is required for the gcs backend"))
		}
	case BackendS3:
		if c.Media.Blob.S3.Bucket == "" || c.Media.Blob.S3.Region == "" {
			errs = append(errs, errors.New("media.blob.s3.bucket and region are required for the s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("media.blob.backend %q is not one of memory, local, gcs, s3", c.Media.Blob.Backend))
	}
	switch c.Announce.Backend {
	case BackendNone, BackendMemory:
	case BackendPubSub:
		if c.Announce.ProjectID == "" {
			errs = append(errs, errors.New("announce.project_id is required for the pubsub backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("announce.backend %q is not one of none, memory, pubsub", c.Announce.Backend))
	}
	return errs
}

// FetchTimeout is the per-request budget.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}
