// Package storage archives generated files (exported revenue reports) in an
// S3-compatible bucket or a local directory.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/autocare/platform/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Store persists objects by key
type Store interface {
	// Put writes data under key and returns where it was stored
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// ErrInvalidKey is returned for empty keys or keys escaping the store root
var ErrInvalidKey = errors.New("storage key is invalid")

// New builds the store selected by cfg.Driver
func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "s3":
		s, err := NewS3ObjectStorage(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case "", "local":
		return NewLocalStorage(cfg.BaseDir)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// cleanKey normalises key to a relative slash path
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
