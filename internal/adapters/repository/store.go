package repository

import (
	"context"
	"sync"

	"github.com/okian/lookbook/internal/domain/imagematch"
	"github.com/okian/lookbook/pkg/logger"
	"github.com/okian/lookbook/pkg/metrics"
)

// ImageIndexStore loads the image index once per process and hands out the
// same immutable *imagematch.Index afterwards. A failed load is not cached,
// so the next call retries.
type ImageIndexStore struct {
	path   string
	load   func(ctx context.Context, path string) ([]imagematch.Entry, error)
	logger logger.Logger

	mu    sync.Mutex
	index *imagematch.Index
	loads int
}

// NewImageIndexStore returns a store for the index file at path.
func NewImageIndexStore(path string, opts ...Option) *ImageIndexStore {
	s := &ImageIndexStore{path: path, load: LoadImageIndex}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the cached index, loading it on first use.
func (s *ImageIndexStore) Get(ctx context.Context) (*imagematch.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		return s.index, nil
	}

	entries, err := s.load(ctx, s.path)
	s.loads++
	if err != nil {
		if s.logger != nil {
			s.logger.Error(ctx, "image index load failed", logger.String("path", s.path), logger.Error(err))
		}
		return nil, err
	}

	s.index = imagematch.NewIndex(entries)
	metrics.UpdateImageIndexRows(s.index.Len())
	if s.logger != nil {
		s.logger.Info(ctx, "image index loaded",
			logger.String("path", s.path),
			logger.Int("rows", len(entries)),
			logger.Int("usable", s.index.Len()),
			logger.Int("genders", s.index.Genders()),
		)
	}
	return s.index, nil
}

// Loads reports how many times the underlying file was read.
func (s *ImageIndexStore) Loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}
