// Package s3 stores media objects in S3-compatible buckets (AWS, MinIO, Spaces).
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config contains the bucket and credential settings.
type Config struct {
	// Endpoint is optional and set for MinIO or DigitalOcean Spaces.
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
	PublicBase      string `mapstructure:"public_base"`
}

// putter is the slice of the S3 client used here.
type putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// BlobStore implements pipeline.BlobStore on an S3 bucket.
type BlobStore struct {
	client putter
	cfg    Config
}

// New loads the AWS config and builds the client. Static credentials are used
// when both keys are set; otherwise the default chain applies.
func New(ctx context.Context, cfg Config) (*BlobStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket name is required")
	}
	if cfg.Region == "" {
		return nil, errors.New("s3 region is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newWithClient(client, cfg), nil
}

func newWithClient(client putter, cfg Config) *BlobStore {
	cfg.PublicBase = strings.TrimRight(cfg.PublicBase, "/")
	return &BlobStore{client: client, cfg: cfg}
}

// PutObject uploads data under path and returns its URI.
func (s *BlobStore) PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error) {
	key := strings.TrimLeft(strings.ReplaceAll(path, "\\", "/"), "/")
	if strings.TrimSpace(key) == "" {
		return "", errors.New("path is required")
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   data,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s to s3: %w", key, err)
	}
	if s.cfg.PublicBase != "" {
		return s.cfg.PublicBase + "/" + key, nil
	}
	return fmt.Sprintf("s3://%s/%s", s.cfg.Bucket, key), nil
}
