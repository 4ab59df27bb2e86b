package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JakeFAU/renewables-newsroom/internal/classify"
	"github.com/JakeFAU/renewables-newsroom/internal/portal"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Pipeline.MaxWorkers != 4 || cfg.Pipeline.PrefixLen != 50 || cfg.Pipeline.Author != "Estefani" {
		t.Fatalf("unexpected pipeline defaults: %+v", cfg.Pipeline)
	}
	if h := cfg.Headless; h.Enabled || h.PromotionBytes != 2048 || h.ScrollPasses != 2 || !h.BlockImages {
		t.Fatalf("unexpected headless defaults: %+v", h)
	}
	if len(cfg.Portals.List) != len(portal.Defaults()) {
		t.Fatalf("expected built-in portals, got %d", len(cfg.Portals.List))
	}
	if len(cfg.Categories.Rules) != len(classify.DefaultRules()) || cfg.Categories.Fallback != classify.DefaultFallback {
		t.Fatalf("expected built-in categories: %+v", cfg.Categories)
	}
	if cfg.SEO.Brand != "INGLAT" || len(cfg.Relevance.Primary) == 0 {
		t.Fatalf("expected built-in keyword tables")
	}
	if cfg.Store.Backend != BackendMemory || cfg.Media.Blob.Backend != BackendMemory || cfg.Announce.Backend != BackendNone {
		t.Fatalf("unexpected backend defaults: %s %s %s", cfg.Store.Backend, cfg.Media.Blob.Backend, cfg.Announce.Backend)
	}
	if cfg.Media.Download.ReadTimeout != 30*time.Second {
		t.Fatalf("expected duration decoding, got %v", cfg.Media.Download.ReadTimeout)
	}
	if cfg.Media.Optimize.MaxWidth != 1200 || !cfg.Media.Optimize.Enabled {
		t.Fatalf("expected squashed optimizer defaults: %+v", cfg.Media.Optimize)
	}
}

func TestLoadDefaultDownloadBounds(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	d := cfg.Media.Download
	if d.MinBytes != 1024 || d.MaxBytes != 10<<20 {
		t.Fatalf("download bounds = [%d, %d], want [1024, %d]", d.MinBytes, d.MaxBytes, 10<<20)
	}
	if cfg.Fetch.MaxRetries != 3 {
		t.Fatalf("fetch.max_retries = %d, want 3", cfg.Fetch.MaxRetries)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
pipeline:
  max_workers: 2
  author: Redacción
  template_seed: 7
portals:
  list:
    - name: Portal Propio
      url: https://portal.example.com/
      priority: 1
      region: argentina
      feed_url: https://portal.example.com/feed
categories:
  fallback: General
  rules:
    - name: Solar
      color: "#FFA500"
      keywords: [solar]
relevance:
  primary: [hidrógeno]
fetch:
  timeout_seconds: 30
  rate_limit_rps: 0.5
media:
  pexels:
    api_key: px
    cache_ttl: 5m
  blob:
    backend: s3
    s3:
      bucket: imagenes
      region: us-east-1
store:
  backend: postgres
  postgres:
    dsn: postgres://localhost/newsroom
announce:
  backend: pubsub
  project_id: demo
  topic: noticias
logging:
  development: false
  level: debug
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Pipeline.MaxWorkers != 2 || cfg.Pipeline.Author != "Redacción" || cfg.Pipeline.TemplateSeed != 7 {
		t.Fatalf("expected pipeline overrides: %+v", cfg.Pipeline)
	}
	if len(cfg.Portals.List) != 1 || cfg.Portals.List[0].FeedURL != "https://portal.example.com/feed" {
		t.Fatalf("expected portal list override: %+v", cfg.Portals.List)
	}
	if cfg.Categories.Fallback != "General" || len(cfg.Categories.Rules) != 1 || cfg.Categories.Rules[0].Keywords[0] != "solar" {
		t.Fatalf("expected category override: %+v", cfg.Categories)
	}
	if len(cfg.Relevance.Primary) != 1 || len(cfg.Relevance.Regional) == 0 {
		t.Fatalf("expected per-table relevance defaults: %+v", cfg.Relevance)
	}
	if cfg.FetchTimeout() != 30*time.Second || cfg.Fetch.RateLimitRPS != 0.5 {
		t.Fatalf("expected fetch overrides: %+v", cfg.Fetch)
	}
	if cfg.Media.Pexels.CacheTTL != 5*time.Minute || cfg.Media.Blob.S3.Bucket != "imagenes" {
		t.Fatalf("expected media overrides: %+v", cfg.Media)
	}
	if cfg.Store.Postgres.ArticlesTable != "articles" {
		t.Fatalf("expected postgres table default, got %q", cfg.Store.Postgres.ArticlesTable)
	}
	if cfg.Announce.Topic != "noticias" || cfg.Logging.Level != "debug" || cfg.Logging.Development {
		t.Fatalf("expected announce and logging overrides")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NEWSROOM_PIPELINE_MAX_WORKERS", "9")
	t.Setenv("NEWSROOM_STATUS_ADDR", "127.0.0.1:9100")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Pipeline.MaxWorkers != 9 || cfg.Status.Addr != "127.0.0.1:9100" {
		t.Fatalf("expected env overrides, got %d %q", cfg.Pipeline.MaxWorkers, cfg.Status.Addr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "workers", mutate: func(c *Config) { c.Pipeline.MaxWorkers = 0 }, want: "pipeline.max_workers"},
		{name: "prefix", mutate: func(c *Config) { c.Pipeline.PrefixLen = -1 }, want: "pipeline.dedup_prefix_runes"},
		{name: "author", mutate: func(c *Config) { c.Pipeline.Author = " " }, want: "pipeline.author"},
		{name: "timeout", mutate: func(c *Config) { c.Fetch.TimeoutSeconds = 0 }, want: "fetch.timeout_seconds"},
		{name: "retries", mutate: func(c *Config) { c.Fetch.MaxRetries = 0 }, want: "fetch.max_retries"},
		{name: "retries above bound", mutate: func(c *Config) { c.Fetch.MaxRetries = 4 }, want: "fetch.max_retries"},
		{name: "headless", mutate: func(c *Config) { c.Headless.Enabled = true; c.Headless.MaxParallel = 0 }, want: "headless.max_parallel"},
		{name: "store backend", mutate: func(c *Config) { c.Store.Backend = "mysql" }, want: "store.backend"},
		{name: "postgres dsn", mutate: func(c *Config) { c.Store.Backend = BackendPostgres }, want: "store.postgres.dsn"},
		{name: "blob backend", mutate: func(c *Config) { c.Media.Blob.Backend = "ftp" }, want: "media.blob.backend"},
		{name: "gcs bucket", mutate: func(c *Config) { c.Media.Blob.Backend = BackendGCS }, want: "media.blob.gcs.bucket"},
		{name: "s3 bucket", mutate: func(c *Config) { c.Media.Blob.Backend = BackendS3 }, want: "media.blob.s3"},
		{name: "announce backend", mutate: func(c *Config) { c.Announce.Backend = "kafka" }, want: "announce.backend"},
		{name: "pubsub project", mutate: func(c *Config) { c.Announce.Backend = BackendPubSub }, want: "announce.project_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
