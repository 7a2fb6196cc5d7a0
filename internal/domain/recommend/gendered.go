package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/lookbook/internal/domain/imagematch"
	"github.com/okian/lookbook/internal/domain/model"
	"github.com/okian/lookbook/pkg/logger"
)

// ImageResolver attaches a photo to a recommended item.
type ImageResolver interface {
	ResolveItem(gender string, item model.Item) (imagematch.Match, bool)
}

// Option applies a configuration option to a Gendered recommender.
type Option func(*Gendered)

// WithResolver sets the resolver used to enrich results with photos.
func WithResolver(r ImageResolver) Option {
	return func(g *Gendered) {
		g.resolver = r
	}
}

// WithHybridOptions passes options to every per-gender Hybrid.
func WithHybridOptions(opts ...HybridOption) Option {
	return func(g *Gendered) {
		g.hybridOpts = append(g.hybridOpts, opts...)
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Gendered) {
		if l != nil {
			g.logger = l
		}
	}
}

// Gendered routes requests to one Hybrid per gender and enriches results
// with photo URLs.
type Gendered struct {
	models     map[string]*Hybrid
	resolver   ImageResolver
	hybridOpts []HybridOption
	logger     logger.Logger
}

// NewGendered partitions pairs by normalized gender and builds a model for
// every non-empty partition. Pairs without a gender are skipped; genders
// with no pairs simply have no model.
func NewGendered(ctx context.Context, pairs []model.OutfitPair, opts ...Option) *Gendered {
	g := &Gendered{models: make(map[string]*Hybrid)}
	for _, opt := range opts {
		opt(g)
	}

	partitions := make(map[string][]model.OutfitPair)
	skipped := 0
	for _, p := range pairs {
		gender := model.NormalizeGender(p.Gender)
		if gender == "" {
			skipped++
			continue
		}
		partitions[gender] = append(partitions[gender], p)
	}
	for gender, sub := range partitions {
		g.models[gender] = NewHybrid(sub, g.hybridOpts...)
	}

	if g.logger != nil {
		g.logger.Info(ctx, "gendered recommender built",
			logger.Any("genders", g.Genders()),
			logger.Int("pairs", len(pairs)),
			logger.Int("skipped", skipped),
		)
	}
	return g
}

// Genders returns the genders with a model, sorted.
func (g *Gendered) Genders() []string {
	out := make([]string, 0, len(g.models))
	for gender := range g.models {
		out = append(out, gender)
	}
	sort.Strings(out)
	return out
}

// Pairs returns the number of pairs behind the model for gender.
func (g *Gendered) Pairs(gender string) int {
	if h, ok := g.models[model.NormalizeGender(gender)]; ok {
		return h.Pairs()
	}
	return 0
}

// Has reports whether a model exists for gender.
func (g *Gendered) Has(gender string) bool {
	_, ok := g.models[model.NormalizeGender(gender)]
	return ok
}

// Recommend returns up to k recommendations for item from the gender's model.
// It fails with ErrUnknownGender when no model exists for gender; it never
// falls back to another gender.
func (g *Gendered) Recommend(ctx context.Context, item model.Item, gender string, k int) ([]model.Recommendation, error) {
	normalized := model.NormalizeGender(gender)
	h, ok := g.models[normalized]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGender, gender)
	}

	recs := h.Recommend(item, k)
	if g.resolver != nil {
		for i := range recs {
			m, found := g.resolver.ResolveItem(normalized, recs[i].Item())
			if !found {
				continue
			}
			recs[i].ImageURL = &m.URL
			recs[i].Filename = &m.Filename
		}
	}

	if g.logger != nil {
		g.logger.Debug(ctx, "recommendations computed",
			logger.String("gender", normalized),
			logger.String("part", string(item.Part)),
			logger.Int("k", k),
			logger.Int("results", len(recs)),
		)
	}
	return recs, nil
}
