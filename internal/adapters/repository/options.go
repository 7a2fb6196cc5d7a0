package repository

import (
	"context"

	"github.com/okian/lookbook/internal/domain/imagematch"
	"github.com/okian/lookbook/pkg/logger"
)

// Option applies a configuration option to the ImageIndexStore.
type Option func(*ImageIndexStore)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *ImageIndexStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLoader replaces the file loader, mainly for tests.
func WithLoader(fn func(ctx context.Context, path string) ([]imagematch.Entry, error)) Option {
	return func(s *ImageIndexStore) {
		if fn != nil {
			s.load = fn
		}
	}
}
