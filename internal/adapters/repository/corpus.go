// Package repository loads the flat files the recommender is built from:
// the outfit pair corpus and the image label index.
package repository

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/lookbook/internal/domain/model"
	"github.com/okian/lookbook/internal/validation"
	"github.com/okian/lookbook/pkg/metrics"
)

// LoadCorpus reads a JSON array of outfit pairs from path. Any unreadable
// file or invalid record fails the whole load; a partial corpus is never
// returned.
func LoadCorpus(ctx context.Context, path string) ([]model.OutfitPair, error) {
	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCorpus, err)
	}
	defer f.Close()

	pairs, err := DecodeCorpus(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadCorpus, path, err)
	}
	metrics.RecordLoadDuration("corpus", float64(time.Since(start).Milliseconds()))
	return pairs, nil
}

// DecodeCorpus decodes and validates a JSON array of outfit pairs.
// Unknown fields such as top_url are ignored.
func DecodeCorpus(ctx context.Context, r io.Reader) ([]model.OutfitPair, error) {
	var pairs []model.OutfitPair
	if err := json.NewDecoder(r).DecodeContext(ctx, &pairs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	for i := range pairs {
		if err := validation.Struct(&pairs[i]); err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrMalformedRecord, i, err)
		}
	}
	return pairs, nil
}
