// Package recommend composes the co-occurrence index and the fallback
// scorer into outfit recommendations, one model per gender.
package recommend

import (
	"math"

	"github.com/okian/lookbook/internal/domain/cooccur"
	"github.com/okian/lookbook/internal/domain/model"
	"github.com/okian/lookbook/internal/domain/scoring"
)

const defaultFallbackFactor = 2

// HybridOption applies a configuration option to a Hybrid.
type HybridOption func(*Hybrid)

// WithFallbackFactor sets how many fallback candidates are requested per
// missing slot, as a multiple of k.
func WithFallbackFactor(f int) HybridOption {
	return func(h *Hybrid) {
		if f > 0 {
			h.fallbackFactor = f
		}
	}
}

// Hybrid prefers observed pairings and tops up with the fallback scorer.
type Hybrid struct {
	index          *cooccur.Index
	fallback       *scoring.NaiveBayes
	fallbackFactor int
}

// NewHybrid builds both sub-models from pairs.
func NewHybrid(pairs []model.OutfitPair, opts ...HybridOption) *Hybrid {
	h := &Hybrid{
		index:          cooccur.New(pairs),
		fallback:       scoring.NewNaiveBayes(pairs),
		fallbackFactor: defaultFallbackFactor,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Pairs returns the number of pairs the model was built from.
func (h *Hybrid) Pairs() int { return h.index.Pairs() }

// Recommend returns at most k partner items for item, without duplicate
// attribute triples. Co-occurrence results come first, by descending count;
// fallback results fill any remaining slots. An item without a known part
// or k <= 0 yields no results.
func (h *Hybrid) Recommend(item model.Item, k int) []model.Recommendation {
	dir, ok := cooccur.DirectionFor(item.Part)
	if !ok || k <= 0 {
		return nil
	}
	target := item.Part.Opposite()

	partners := h.index.Query(item.Key(), dir)
	size := min(k, len(partners)+len(h.fallback.Candidates(target)))
	out := make([]model.Recommendation, 0, size)
	seen := make(map[model.Key]struct{}, size)
	for _, p := range partners {
		if len(out) == k {
			break
		}
		out = append(out, model.Recommendation{
			Color:       p.Key.Color,
			Style:       p.Key.Style,
			Category:    p.Key.Category,
			Part:        target,
			Score:       float64(p.Count),
			ScoreSource: model.SourceCooccurrence,
		})
		seen[p.Key] = struct{}{}
	}
	if len(out) == k {
		return out
	}

	for _, rec := range h.fallback.Recommend(item, h.overFetch(k)) {
		if len(out) == k {
			break
		}
		if _, dup := seen[rec.Key()]; dup {
			continue
		}
		seen[rec.Key()] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// overFetch returns k*fallbackFactor, saturating at math.MaxInt.
func (h *Hybrid) overFetch(k int) int {
	if k > math.MaxInt/h.fallbackFactor {
		return math.MaxInt
	}
	return k * h.fallbackFactor
}
