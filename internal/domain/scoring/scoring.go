// Package scoring ranks candidate partner items with a Naive-Bayes-style
// model over independent color, style and category transitions.
package scoring

import (
	"math"
	"sort"

	"github.com/okian/lookbook/internal/domain/model"
)

// Attribute names one of the three independently modelled item attributes.
type Attribute int

// Modelled attributes.
const (
	Color Attribute = iota
	Style
	Category
)

func (a Attribute) String() string {
	switch a {
	case Color:
		return "color"
	case Style:
		return "style"
	case Category:
		return "category"
	default:
		return "unknown"
	}
}

func (a Attribute) of(i model.Item) string {
	switch a {
	case Style:
		return i.Style
	case Category:
		return i.Category
	default:
		return i.Color
	}
}

// Scorer assigns a log-likelihood to wearing b with a.
type Scorer interface {
	Score(a, b model.Item) float64
}

// transitions counts attribute value co-occurrences in both directions and
// tracks the observed vocabulary.
type transitions struct {
	counts map[string]map[string]int
	totals map[string]int
	vocab  map[string]struct{}
}

func newTransitions() *transitions {
	return &transitions{
		counts: make(map[string]map[string]int),
		totals: make(map[string]int),
		vocab:  make(map[string]struct{}),
	}
}

func (t *transitions) inc(from, to string) {
	row, ok := t.counts[from]
	if !ok {
		row = make(map[string]int)
		t.counts[from] = row
	}
	row[to]++
	t.totals[from]++
}

func (t *transitions) observe(a, b string) {
	t.vocab[a] = struct{}{}
	t.vocab[b] = struct{}{}
	t.inc(a, b)
	t.inc(b, a)
}

// prob is the add-one smoothed P(to | from).
func (t *transitions) prob(from, to string) float64 {
	total := t.totals[from] + len(t.vocab)
	if total == 0 {
		// nothing observed: every value is equally (un)informative
		return 1
	}
	count := t.counts[from][to] + 1
	return float64(count) / float64(total)
}

// NaiveBayes scores candidates by the sum of per-attribute log transition
// probabilities. It is built once from a corpus and is read-only afterwards.
type NaiveBayes struct {
	attrs   [3]*transitions
	tops    []model.Item
	bottoms []model.Item
}

// NewNaiveBayes builds the transition tables and the candidate pools.
// Candidates are deduplicated by attribute triple in first-seen order.
func NewNaiveBayes(pairs []model.OutfitPair) *NaiveBayes {
	nb := &NaiveBayes{}
	for i := range nb.attrs {
		nb.attrs[i] = newTransitions()
	}

	seenTop := make(map[model.Key]struct{})
	seenBottom := make(map[model.Key]struct{})
	for _, p := range pairs {
		for _, a := range []Attribute{Color, Style, Category} {
			nb.attrs[a].observe(a.of(p.Top), a.of(p.Bottom))
		}
		if _, ok := seenTop[p.Top.Key()]; !ok {
			seenTop[p.Top.Key()] = struct{}{}
			nb.tops = append(nb.tops, p.Top.Key().Item(model.PartTop))
		}
		if _, ok := seenBottom[p.Bottom.Key()]; !ok {
			seenBottom[p.Bottom.Key()] = struct{}{}
			nb.bottoms = append(nb.bottoms, p.Bottom.Key().Item(model.PartBottom))
		}
	}
	return nb
}

// Prob returns the smoothed probability of seeing value to given value from
// for attribute a. The result is always in (0, 1].
func (nb *NaiveBayes) Prob(a Attribute, from, to string) float64 {
	return nb.attrs[a].prob(from, to)
}

// Vocabulary returns the number of distinct values observed for a.
func (nb *NaiveBayes) Vocabulary(a Attribute) int {
	return len(nb.attrs[a].vocab)
}

// Score returns log P(b.color|a.color) + log P(b.style|a.style) + log P(b.category|a.category).
func (nb *NaiveBayes) Score(a, b model.Item) float64 {
	var s float64
	for _, attr := range []Attribute{Color, Style, Category} {
		s += math.Log(nb.Prob(attr, attr.of(a), attr.of(b)))
	}
	return s
}

// Candidates returns the distinct items seen on part p, in first-seen order.
func (nb *NaiveBayes) Candidates(p model.Part) []model.Item {
	switch p {
	case model.PartTop:
		return nb.tops
	case model.PartBottom:
		return nb.bottoms
	default:
		return nil
	}
}

// Recommend scores every opposite-part candidate against item and returns
// at most k, best first. Candidates with equal scores keep first-seen order.
// An item without a known part, or k <= 0, yields no results.
func (nb *NaiveBayes) Recommend(item model.Item, k int) []model.Recommendation {
	target := item.Part.Opposite()
	pool := nb.Candidates(target)
	if k <= 0 || len(pool) == 0 {
		return nil
	}

	type scored struct {
		item  model.Item
		score float64
	}
	ranked := make([]scored, len(pool))
	for i, c := range pool {
		ranked[i] = scored{item: c, score: nb.Score(item, c)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]model.Recommendation, k)
	for i := range out {
		c := ranked[i].item
		out[i] = model.Recommendation{
			Color:       c.Color,
			Style:       c.Style,
			Category:    c.Category,
			Part:        target,
			Score:       ranked[i].score,
			ScoreSource: model.SourceNaiveBayes,
		}
	}
	return out
}
