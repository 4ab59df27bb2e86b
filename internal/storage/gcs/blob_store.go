// Package gcs stores media objects in Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// Config captures the bucket settings.
type Config struct {
	Bucket string `mapstructure:"bucket"`
	// PublicBase, when set, is returned instead of the gs:// URI (for example
	// https://storage.googleapis.com/<bucket>).
	PublicBase   string `mapstructure:"public_base"`
	CacheControl string `mapstructure:"cache_control"`
}

// BlobStore implements pipeline.BlobStore on a GCS bucket.
type BlobStore struct {
	client *storage.Client
	cfg    Config
}

// New creates a GCS-backed media store.
func New(client *storage.Client, cfg Config) (*BlobStore, error) {
	if client == nil {
		return nil, errors.New("storage client is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	cfg.PublicBase = strings.TrimRight(cfg.PublicBase, "/")
	return &BlobStore{client: client, cfg: cfg}, nil
}

// NewFromEnv dials GCS with application default credentials.
func NewFromEnv(ctx context.Context, cfg Config) (*BlobStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return New(client, cfg)
}

// PutObject uploads data and returns its URI.
func (s *BlobStore) PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("path is required")
	}
	writer := s.client.Bucket(s.cfg.Bucket).Object(path).NewWriter(ctx)
	if contentType != "" {
		writer.ContentType = contentType
	}
	if s.cfg.CacheControl != "" {
		writer.CacheControl = s.cfg.CacheControl
	}
	if _, err := io.Copy(writer, r); err != nil {
		return "", errors.Join(fmt.Errorf("copy object: %w", err), writer.Close())
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close writer: %w", err)
	}
	if s.cfg.PublicBase != "" {
		return s.cfg.PublicBase + "/" + path, nil
	}
	return fmt.Sprintf("gs://%s/%s", s.cfg.Bucket, path), nil
}

// Close releases the client.
func (s *BlobStore) Close() error {
	return s.client.Close()
}
