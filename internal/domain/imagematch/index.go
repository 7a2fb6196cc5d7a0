// Package imagematch resolves a recommended item to a representative photo
// from a flat image catalog.
//
// Lookups walk a priority cascade from the most to the least specific filter
// and stop at the first tier with at least one matching photo:
//
//  1. gender + color + style + category
//  2. gender + color + category
//  3. gender + color
//  4. gender
//
// One photo is then picked from the matching tier by a Selector.
package imagematch

import (
	"strings"

	"github.com/okian/lookbook/internal/domain/model"
)

// Entry is one catalogued photo.
type Entry struct {
	Filename string `json:"filename" validate:"required"`
	Gender   string `json:"gender" validate:"required"`
	Color    string `json:"color"`
	Style    string `json:"style"`
	Category string `json:"category"`
}

// normalize returns the entry with every label trimmed and lowercased and the
// gender folded through model.NormalizeGender. Filename is kept verbatim.
func (e Entry) normalize() Entry {
	return Entry{
		Filename: strings.TrimSpace(e.Filename),
		Gender:   model.NormalizeGender(e.Gender),
		Color:    norm(e.Color),
		Style:    norm(e.Style),
		Category: norm(e.Category),
	}
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Index is an immutable, gender-partitioned photo catalog.
type Index struct {
	byGender map[string][]Entry
	size     int
}

// NewIndex normalizes and partitions entries by gender. Entries without a
// filename or gender can never be served and are dropped.
func NewIndex(entries []Entry) *Index {
	ix := &Index{byGender: make(map[string][]Entry)}
	for _, e := range entries {
		e = e.normalize()
		if e.Filename == "" || e.Gender == "" {
			continue
		}
		ix.byGender[e.Gender] = append(ix.byGender[e.Gender], e)
		ix.size++
	}
	return ix
}

// Len returns the number of catalogued photos.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return ix.size
}

// Genders returns the number of distinct genders in the catalog.
func (ix *Index) Genders() int {
	if ix == nil {
		return 0
	}
	return len(ix.byGender)
}

func (ix *Index) entries(gender string) []Entry {
	if ix == nil {
		return nil
	}
	return ix.byGender[gender]
}
