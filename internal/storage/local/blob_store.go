// Package local writes media objects under a directory on disk.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Config captures the parameters for the filesystem media store.
type Config struct {
	// BaseDir is the media root; objects land under BaseDir/<path>.
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
	// PublicBase, when set, replaces the file:// URI with PublicBase/<path>.
	PublicBase string `mapstructure:"public_base" yaml:"public_base"`
}

// BlobStore implements pipeline.BlobStore on the local filesystem.
type BlobStore struct {
	baseDir    string
	publicBase string
}

// New creates the store, making BaseDir if needed and checking it is writable.
func New(cfg Config) (*BlobStore, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, errors.New("base directory is required")
	}

	info, err := os.Stat(cfg.BaseDir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(cfg.BaseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create base directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("stat base directory: %w", err)
	case !info.IsDir():
		return nil, errors.New("base directory path is not a directory")
	}

	probe, err := os.CreateTemp(cfg.BaseDir, ".writable-*")
	if err != nil {
		return nil, fmt.Errorf("base directory is not writable: %w", err)
	}
	if err := errors.Join(probe.Close(), os.Remove(probe.Name())); err != nil {
		return nil, fmt.Errorf("clean up probe file: %w", err)
	}

	return &BlobStore{
		baseDir:    filepath.Clean(cfg.BaseDir),
		publicBase: strings.TrimRight(cfg.PublicBase, "/"),
	}, nil
}

// PutObject streams data to a temp file and renames it into place.
func (s *BlobStore) PutObject(_ context.Context, path string, _ string, data io.Reader) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("path is required")
	}

	fullPath := filepath.Clean(filepath.Join(s.baseDir, path))
	if !strings.HasPrefix(fullPath, s.baseDir+string(filepath.Separator)) {
		return "", errors.New("path traversal detected")
	}
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create parent directories: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, data); err != nil {
		return "", errors.Join(fmt.Errorf("write object: %w", err), tmp.Close(), os.Remove(tmp.Name()))
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Join(fmt.Errorf("close object: %w", err), os.Remove(tmp.Name()))
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return "", errors.Join(fmt.Errorf("rename object: %w", err), os.Remove(tmp.Name()))
	}

	if s.publicBase != "" {
		return s.publicBase + "/" + filepath.ToSlash(path), nil
	}
	return "file://" + fullPath, nil
}
