package imagematch

import (
	"strings"

	"github.com/okian/lookbook/internal/domain/model"
)

// Tier names the cascade level a match came from.
type Tier string

// Cascade tiers, most specific first.
const (
	TierExact         Tier = "exact"
	TierColorCategory Tier = "color_category"
	TierColor         Tier = "color"
	TierGender        Tier = "gender"
)

// Match is a resolved photo.
type Match struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Tier     Tier   `json:"tier"`
}

type query struct {
	gender, color, style, category string
}

type tier struct {
	name  Tier
	match func(q query, e Entry) bool
}

var cascade = []tier{
	{TierExact, func(q query, e Entry) bool {
		return e.Color == q.color && e.Style == q.style && e.Category == q.category
	}},
	{TierColorCategory, func(q query, e Entry) bool {
		return e.Color == q.color && e.Category == q.category
	}},
	{TierColor, func(q query, e Entry) bool {
		return e.Color == q.color
	}},
	{TierGender, func(query, Entry) bool { return true }},
}

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithSelector replaces the default random selector.
func WithSelector(s Selector) Option {
	return func(r *Resolver) {
		if s != nil {
			r.selector = s
		}
	}
}

// WithObserver registers a callback invoked with the tier of every lookup;
// misses are reported with an empty tier.
func WithObserver(fn func(Tier)) Option {
	return func(r *Resolver) {
		r.observe = fn
	}
}

// Resolver maps a gender and item attributes to a photo URL.
type Resolver struct {
	index    *Index
	baseURL  string
	selector Selector
	observe  func(Tier)
}

// NewResolver returns a resolver over index that joins filenames onto baseURL.
func NewResolver(index *Index, baseURL string, opts ...Option) *Resolver {
	r := &Resolver{
		index:    index,
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		selector: NewRandomSelector(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Index returns the catalog the resolver reads.
func (r *Resolver) Index() *Index { return r.index }

// Resolve finds a photo for the given attributes. It returns false when
// gender is empty or not even the gender-only tier matches.
func (r *Resolver) Resolve(gender, color, style, category string) (Match, bool) {
	q := query{
		gender:   model.NormalizeGender(gender),
		color:    norm(color),
		style:    norm(style),
		category: norm(category),
	}
	m, ok := r.resolve(q)
	if r.observe != nil {
		r.observe(m.Tier)
	}
	return m, ok
}

// ResolveItem is Resolve for a model.Item.
func (r *Resolver) ResolveItem(gender string, item model.Item) (Match, bool) {
	return r.Resolve(gender, item.Color, item.Style, item.Category)
}

func (r *Resolver) resolve(q query) (Match, bool) {
	if q.gender == "" {
		return Match{}, false
	}
	rows := r.index.entries(q.gender)
	if len(rows) == 0 {
		return Match{}, false
	}
	for _, t := range cascade {
		var candidates []Entry
		for _, e := range rows {
			if t.match(q, e) {
				candidates = append(candidates, e)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		picked := r.selector.Select(candidates)
		return Match{URL: r.url(picked.Filename), Filename: picked.Filename, Tier: t.name}, true
	}
	return Match{}, false
}

func (r *Resolver) url(filename string) string {
	if r.baseURL == "" {
		return filename
	}
	return r.baseURL + "/" + strings.TrimLeft(filename, "/")
}
