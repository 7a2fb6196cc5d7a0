package probe

import (
	"context"

	"github.com/okian/lookbook/internal/adapters/repository"
	"github.com/okian/lookbook/internal/domain/cooccur"
	"github.com/okian/lookbook/internal/domain/model"
	"github.com/okian/lookbook/pkg/logger"
)

// Expectations is the co-occurrence truth the service should reproduce,
// partitioned by normalized gender.
type Expectations struct {
	byGender map[string]*cooccur.Index
}

// NewExpectations builds one co-occurrence index per gender.
func NewExpectations(pairs []model.OutfitPair) *Expectations {
	parts := make(map[string][]model.OutfitPair)
	for _, p := range pairs {
		g := model.NormalizeGender(p.Gender)
		if g == "" {
			continue
		}
		parts[g] = append(parts[g], p)
	}
	e := &Expectations{byGender: make(map[string]*cooccur.Index, len(parts))}
	for g, sub := range parts {
		e.byGender[g] = cooccur.New(sub)
	}
	return e
}

// Partners returns the observed partners of q's item by descending count.
func (e *Expectations) Partners(q Query) []cooccur.Partner {
	ix, ok := e.byGender[model.NormalizeGender(q.Gender)]
	if !ok {
		return nil
	}
	d, ok := cooccur.DirectionFor(q.Item.Part)
	if !ok {
		return nil
	}
	return ix.Query(q.Item.Key(), d)
}

// Queries returns every distinct (gender, garment, part) in pairs, in
// first-seen order. Pairs without a gender are skipped.
func Queries(pairs []model.OutfitPair) []Query {
	type key struct {
		gender string
		item   model.Item
	}
	seen := make(map[key]struct{})
	var out []Query
	add := func(gender string, it model.Item, part model.Part) {
		it = it.Key().Item(part)
		k := key{gender: gender, item: it}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, Query{Gender: gender, Item: it})
	}
	for _, p := range pairs {
		g := model.NormalizeGender(p.Gender)
		if g == "" {
			continue
		}
		add(g, p.Top, model.PartTop)
		add(g, p.Bottom, model.PartBottom)
	}
	return out
}

// loadCorpus reads the corpus and derives the queries and expectations.
func loadCorpus(ctx context.Context, config *Config, stats *Stats) ([]Query, *Expectations, error) {
	pairs, err := repository.LoadCorpus(ctx, config.CorpusPath)
	if err != nil {
		return nil, nil, err
	}
	queries := Queries(pairs)
	if config.Limit > 0 && len(queries) > config.Limit {
		queries = queries[:config.Limit]
	}
	stats.Queries = len(queries)

	logger.Get().Info(ctx, "probe queries generated",
		logger.String("corpus", config.CorpusPath),
		logger.Int("pairs", len(pairs)),
		logger.Int("queries", len(queries)))
	return queries, NewExpectations(pairs), nil
}
