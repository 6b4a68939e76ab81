package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	menuapp "github.com/restaurant/backend/internal/application/menu"
	"go.uber.org/zap"
)

var _ menuapp.ObjectStorage = (*LocalObjectStorage)(nil)

// LocalObjectStorage keeps objects on the local file system. It is used in
// development when no S3 endpoint is configured; the HTTP server serves
// BasePath under BaseURL.
type LocalObjectStorage struct {
	basePath string
	baseURL  string
	logger   *zap.Logger
}

// NewLocalObjectStorage creates the base directory and returns the storage
func NewLocalObjectStorage(basePath, baseURL string, logger *zap.Logger) (*LocalObjectStorage, error) {
	if basePath == "" {
		basePath = "data/uploads"
	}
	if baseURL == "" {
		baseURL = "/files"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &LocalObjectStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}, nil
}

// BasePath returns the root directory
func (s *LocalObjectStorage) BasePath() string {
	return s.basePath
}

// PutObject writes body to BasePath/key and returns its URL
func (s *LocalObjectStorage) PutObject(ctx context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	n, err := io.Copy(f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("Object stored", zap.String("path", fullPath), zap.Int64("size", n))
	return s.ObjectURL(key), nil
}

// DeleteObject removes the file. Missing files are not an error.
func (s *LocalObjectStorage) DeleteObject(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// ObjectURL returns the URL the file is served from
func (s *LocalObjectStorage) ObjectURL(key string) string {
	return s.baseURL + "/" + filepath.ToSlash(filepath.Clean(strings.TrimLeft(key, "/")))
}

// resolve maps key to a path under basePath, rejecting traversal
func (s *LocalObjectStorage) resolve(key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	clean := filepath.Clean(key)
	if filepath.IsAbs(clean) || containsDotDot(key) {
		s.logger.Warn("Blocked storage key", zap.String("key", key))
		return "", errors.New("invalid storage key")
	}

	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(s.basePath, clean))
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", errors.New("invalid storage key")
	}
	return absPath, nil
}

func containsDotDot(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}
