package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/okian/lookbook/internal/domain/imagematch"
	"github.com/okian/lookbook/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const corpusJSON = `[
  {"gender": "women",
   "top": {"color": "Red", "style": "Solid", "category": "Shirt"},
   "bottom": {"color": "Blue", "style": "Solid", "category": "Jeans"},
   "top_url": "https://example.com/a.jpg", "bottom_url": "https://example.com/a.jpg"},
  {"gender": "men",
   "top": {"color": "Gray", "style": "Solid", "category": "Sweatshirt"},
   "bottom": {"color": "Black", "style": "Plaid", "category": "Pants"}}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadCorpus(t *testing.T) {
	ctx := context.Background()

	Convey("Given a well-formed corpus file", t, func() {
		path := writeFile(t, "pairs.json", corpusJSON)

		Convey("When loading it", func() {
			pairs, err := LoadCorpus(ctx, path)

			Convey("Then every pair should be decoded", func() {
				So(err, ShouldBeNil)
				So(len(pairs), ShouldEqual, 2)
				So(pairs[0].Gender, ShouldEqual, "women")
				So(pairs[0].Top, ShouldResemble, model.Item{Color: "Red", Style: "Solid", Category: "Shirt"})
				So(pairs[1].Bottom.Category, ShouldEqual, "Pants")
			})
		})
	})

	Convey("Given a missing corpus file", t, func() {
		_, err := LoadCorpus(ctx, filepath.Join(t.TempDir(), "missing.json"))

		Convey("Then loading should fail with ErrLoadCorpus", func() {
			So(errors.Is(err, ErrLoadCorpus), ShouldBeTrue)
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		})
	})

	Convey("Given a corpus that is not JSON", t, func() {
		path := writeFile(t, "pairs.json", "gender,top\nwomen,red")
		_, err := LoadCorpus(ctx, path)

		Convey("Then loading should fail as malformed", func() {
			So(errors.Is(err, ErrLoadCorpus), ShouldBeTrue)
			So(errors.Is(err, ErrMalformedRecord), ShouldBeTrue)
		})
	})

	Convey("Given a corpus with a record missing a bottom attribute", t, func() {
		bad := `[{"gender": "women",
		  "top": {"color": "Red", "style": "Solid", "category": "Shirt"},
		  "bottom": {"color": "Blue", "style": "Solid"}}]`
		_, err := DecodeCorpus(ctx, strings.NewReader(bad))

		Convey("Then the whole load should fail and name the record", func() {
			So(errors.Is(err, ErrMalformedRecord), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "record 0")
			So(err.Error(), ShouldContainSubstring, "category is required")
		})
	})

	Convey("Given a record without a gender", t, func() {
		bad := `[{"top": {"color": "Red", "style": "Solid", "category": "Shirt"},
		  "bottom": {"color": "Blue", "style": "Solid", "category": "Jeans"}}]`
		_, err := DecodeCorpus(ctx, strings.NewReader(bad))

		Convey("Then it should be rejected", func() {
			So(errors.Is(err, ErrMalformedRecord), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "gender is required")
		})
	})
}

func TestLoadImageIndex(t *testing.T) {
	ctx := context.Background()

	Convey("Given a CSV index exported with a BOM", t, func() {
		content := "\xEF\xBB\xBFfilename,gender,color,style,category\n" +
			"women_blue_solid_jeans.jpg,women,blue,solid,jeans\n" +
			"men_gray_solid_pants.jpg,mans,gray,solid,pants\n"
		path := writeFile(t, "index.csv", content)

		Convey("When loading it", func() {
			entries, err := LoadImageIndex(ctx, path)

			Convey("Then the BOM should not leak into the first column", func() {
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
				So(entries[0], ShouldResemble, imagematch.Entry{
					Filename: "women_blue_solid_jeans.jpg", Gender: "women", Color: "blue", Style: "solid", Category: "jeans",
				})
				So(entries[1].Gender, ShouldEqual, "mans")
			})
		})
	})

	Convey("Given a CSV index with reordered columns and short rows", t, func() {
		content := "gender,category,filename,style,color\nwomen,skirt,a.jpg\n"
		entries, err := DecodeImageIndexCSV(strings.NewReader(content))

		Convey("Then columns should be matched by name and gaps left empty", func() {
			So(err, ShouldBeNil)
			So(entries[0], ShouldResemble, imagematch.Entry{Filename: "a.jpg", Gender: "women", Category: "skirt"})
		})
	})

	Convey("Given a CSV index without a gender column", t, func() {
		_, err := DecodeImageIndexCSV(strings.NewReader("filename,color,style,category\na.jpg,red,solid,shirt\n"))

		Convey("Then it should be malformed", func() {
			So(errors.Is(err, ErrMalformedRecord), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, `"gender"`)
		})
	})

	Convey("Given an empty CSV file", t, func() {
		entries, err := DecodeImageIndexCSV(strings.NewReader(""))

		Convey("Then it should yield no entries", func() {
			So(err, ShouldBeNil)
			So(entries, ShouldBeEmpty)
		})
	})

	Convey("Given a JSON index", t, func() {
		path := writeFile(t, "index.json", `[{"filename":"a.jpg","gender":"women","color":"red","style":null,"category":"shirt"}]`)
		entries, err := LoadImageIndex(ctx, path)

		Convey("Then nulls should decode as empty labels", func() {
			So(err, ShouldBeNil)
			So(entries, ShouldResemble, []imagematch.Entry{{Filename: "a.jpg", Gender: "women", Color: "red", Category: "shirt"}})
		})
	})

	Convey("Given an index with an unsupported extension", t, func() {
		path := writeFile(t, "index.parquet", "")
		_, err := LoadImageIndex(ctx, path)

		Convey("Then loading should fail", func() {
			So(errors.Is(err, ErrLoadIndex), ShouldBeTrue)
			So(errors.Is(err, ErrUnsupportedFormat), ShouldBeTrue)
		})
	})

	Convey("Given a missing index file", t, func() {
		_, err := LoadImageIndex(ctx, filepath.Join(t.TempDir(), "nope.csv"))
		So(errors.Is(err, ErrLoadIndex), ShouldBeTrue)
	})
}

func TestImageIndexStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store over a CSV file", t, func() {
		path := writeFile(t, "index.csv", "filename,gender,color,style,category\na.jpg,women,red,solid,shirt\n")
		store := NewImageIndexStore(path)

		Convey("When it is read concurrently", func() {
			var wg sync.WaitGroup
			results := make([]*imagematch.Index, 8)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], _ = store.Get(ctx)
				}(i)
			}
			wg.Wait()

			Convey("Then the file should be loaded once and shared", func() {
				So(store.Loads(), ShouldEqual, 1)
				for _, ix := range results {
					So(ix, ShouldEqual, results[0])
				}
				So(results[0].Len(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a loader that fails once", t, func() {
		calls := 0
		store := NewImageIndexStore("ignored", WithLoader(func(context.Context, string) ([]imagematch.Entry, error) {
			calls++
			if calls == 1 {
				return nil, ErrLoadIndex
			}
			return []imagematch.Entry{{Filename: "a.jpg", Gender: "men"}}, nil
		}))

		Convey("When calling Get twice", func() {
			_, err := store.Get(ctx)
			ix, err2 := store.Get(ctx)

			Convey("Then the failure should not be cached", func() {
				So(errors.Is(err, ErrLoadIndex), ShouldBeTrue)
				So(err2, ShouldBeNil)
				So(ix.Len(), ShouldEqual, 1)
				So(store.Loads(), ShouldEqual, 2)
			})
		})
	})
}
