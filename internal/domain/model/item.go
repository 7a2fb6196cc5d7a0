// Package model contains domain models passed between layers.
package model

import "strings"

// Part identifies which half of an outfit an item belongs to.
type Part string

// Known parts. PartUnknown is the zero value.
const (
	PartUnknown Part = ""
	PartTop     Part = "Top"
	PartBottom  Part = "Bottom"
)

// ParsePart maps "top"/"bottom" (any case, surrounding spaces ignored) to a Part.
func ParsePart(s string) Part {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return PartTop
	case "bottom":
		return PartBottom
	default:
		return PartUnknown
	}
}

// Opposite returns the part a recommendation for p should come from.
func (p Part) Opposite() Part {
	switch p {
	case PartTop:
		return PartBottom
	case PartBottom:
		return PartTop
	default:
		return PartUnknown
	}
}

// Valid reports whether p is Top or Bottom.
func (p Part) Valid() bool { return p == PartTop || p == PartBottom }

// Key is the attribute triple that identifies an item for counting and matching.
// Comparison is exact and case-sensitive.
type Key struct {
	Color    string
	Style    string
	Category string
}

// Item is a garment described by its attributes and body part.
type Item struct {
	Color    string `json:"color" validate:"required"`
	Style    string `json:"style" validate:"required"`
	Category string `json:"category" validate:"required"`
	Part     Part   `json:"part,omitempty"`
}

// Key returns the attribute triple of the item.
func (i Item) Key() Key {
	return Key{Color: i.Color, Style: i.Style, Category: i.Category}
}

// Item converts a key back into an item on the given part.
func (k Key) Item(part Part) Item {
	return Item{Color: k.Color, Style: k.Style, Category: k.Category, Part: part}
}

// OutfitPair is one training record: a top and a bottom worn together.
type OutfitPair struct {
	Gender string `json:"gender" validate:"required"`
	Top    Item   `json:"top"`
	Bottom Item   `json:"bottom"`
}

// ScoreSource records which regime produced a recommendation.
type ScoreSource string

// Score sources.
const (
	SourceCooccurrence ScoreSource = "cooccurrence"
	SourceNaiveBayes   ScoreSource = "naive_bayes"
)

// Recommendation is a suggested partner item with score provenance and
// resolved media. ImageURL and Filename are nil when no photo matched.
type Recommendation struct {
	Color       string      `json:"color"`
	Style       string      `json:"style"`
	Category    string      `json:"category"`
	Part        Part        `json:"part"`
	Score       float64     `json:"score"`
	ScoreSource ScoreSource `json:"score_source"`
	ImageURL    *string     `json:"image_url"`
	Filename    *string     `json:"filename"`
}

// Key returns the attribute triple of the recommendation.
func (r Recommendation) Key() Key {
	return Key{Color: r.Color, Style: r.Style, Category: r.Category}
}

// Item returns the recommendation as an item.
func (r Recommendation) Item() Item {
	return Item{Color: r.Color, Style: r.Style, Category: r.Category, Part: r.Part}
}

var genderAliases = map[string]string{
	"man":    "men",
	"mans":   "men",
	"mens":   "men",
	"male":   "men",
	"woman":  "women",
	"womans": "women",
	"womens": "women",
	"female": "women",
}

// NormalizeGender trims and lowercases a gender value and folds known
// aliases ("mans", "female", ...) onto "men" / "women".
func NormalizeGender(g string) string {
	g = strings.ToLower(strings.TrimSpace(g))
	if alias, ok := genderAliases[g]; ok {
		return alias
	}
	return g
}
