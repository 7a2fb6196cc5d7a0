// Package cooccur counts how often two garments were worn together.
//
// The index keeps two directional tables built from the same pairs:
//
//	topToBottom[top][bottom]  = number of outfits containing both
//	bottomToTop[bottom][top]  = the same count, seen from the bottom
//
// Every inserted pair updates both tables by one, so the two directions are
// always symmetric. The index is built once and is read-only afterwards.
package cooccur

import (
	"sort"

	"github.com/okian/lookbook/internal/domain/model"
)

// Direction selects which table a query reads.
type Direction int

// Query directions.
const (
	TopToBottom Direction = iota
	BottomToTop
)

// DirectionFor returns the direction used to find partners of an item on part p.
// ok is false when p is neither top nor bottom.
func DirectionFor(p model.Part) (d Direction, ok bool) {
	switch p {
	case model.PartTop:
		return TopToBottom, true
	case model.PartBottom:
		return BottomToTop, true
	default:
		return 0, false
	}
}

// Partner is an observed partner key with its co-occurrence count.
type Partner struct {
	Key   model.Key
	Count int
}

// row holds the partner counts of one key. order preserves first insertion
// so that equal counts sort deterministically.
type row struct {
	order  []model.Key
	counts map[model.Key]int
}

func (r *row) inc(k model.Key) {
	if _, ok := r.counts[k]; !ok {
		r.order = append(r.order, k)
	}
	r.counts[k]++
}

type table map[model.Key]*row

func (t table) inc(from, to model.Key) {
	r, ok := t[from]
	if !ok {
		r = &row{counts: make(map[model.Key]int)}
		t[from] = r
	}
	r.inc(to)
}

// Index is a bidirectional co-occurrence table.
type Index struct {
	topToBottom table
	bottomToTop table
	pairs       int
}

// New builds an index from outfit pairs.
func New(pairs []model.OutfitPair) *Index {
	ix := &Index{
		topToBottom: make(table),
		bottomToTop: make(table),
	}
	for _, p := range pairs {
		ix.add(p)
	}
	return ix
}

func (ix *Index) add(p model.OutfitPair) {
	top, bottom := p.Top.Key(), p.Bottom.Key()
	ix.topToBottom.inc(top, bottom)
	ix.bottomToTop.inc(bottom, top)
	ix.pairs++
}

func (ix *Index) table(d Direction) table {
	if d == BottomToTop {
		return ix.bottomToTop
	}
	return ix.topToBottom
}

// Query returns every partner observed with key, by descending count.
// Partners with equal counts keep the order in which they were first seen.
// An unseen key yields an empty result.
func (ix *Index) Query(key model.Key, d Direction) []Partner {
	r, ok := ix.table(d)[key]
	if !ok {
		return nil
	}
	out := make([]Partner, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, Partner{Key: k, Count: r.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// Count returns how often partner was seen with key in direction d.
func (ix *Index) Count(key, partner model.Key, d Direction) int {
	r, ok := ix.table(d)[key]
	if !ok {
		return 0
	}
	return r.counts[partner]
}

// Pairs returns the number of pairs the index was built from.
func (ix *Index) Pairs() int { return ix.pairs }

// Keys returns the number of distinct keys on the source side of direction d.
func (ix *Index) Keys(d Direction) int { return len(ix.table(d)) }
