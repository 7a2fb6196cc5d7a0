package cooccur_test

import (
	"testing"

	"github.com/okian/lookbook/internal/domain/cooccur"
	"github.com/okian/lookbook/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func item(color, style, category string, part model.Part) model.Item {
	return model.Item{Color: color, Style: style, Category: category, Part: part}
}

func pair(top, bottom model.Item) model.OutfitPair {
	return model.OutfitPair{Gender: "women", Top: top, Bottom: bottom}
}

func TestIndex_Symmetry(t *testing.T) {
	Convey("Given an index built from a handful of pairs", t, func() {
		shirt := item("Red", "Solid", "Shirt", model.PartTop)
		tee := item("White", "Solid", "T-Shirt", model.PartTop)
		jeans := item("Blue", "Solid", "Jeans", model.PartBottom)
		skirt := item("Black", "Plaid", "Skirt", model.PartBottom)

		pairs := []model.OutfitPair{
			pair(shirt, jeans),
			pair(shirt, jeans),
			pair(shirt, skirt),
			pair(tee, jeans),
		}
		ix := cooccur.New(pairs)

		Convey("Then every pair should be counted in both directions", func() {
			for _, p := range pairs {
				down := ix.Count(p.Top.Key(), p.Bottom.Key(), cooccur.TopToBottom)
				up := ix.Count(p.Bottom.Key(), p.Top.Key(), cooccur.BottomToTop)
				So(down, ShouldBeGreaterThanOrEqualTo, 1)
				So(down, ShouldEqual, up)
			}
		})

		Convey("And repeated pairs should accumulate", func() {
			So(ix.Count(shirt.Key(), jeans.Key(), cooccur.TopToBottom), ShouldEqual, 2)
			So(ix.Count(jeans.Key(), shirt.Key(), cooccur.BottomToTop), ShouldEqual, 2)
		})

		Convey("And the pair and key totals should match the corpus", func() {
			So(ix.Pairs(), ShouldEqual, 4)
			So(ix.Keys(cooccur.TopToBottom), ShouldEqual, 2)
			So(ix.Keys(cooccur.BottomToTop), ShouldEqual, 2)
		})
	})
}

func TestIndex_Query(t *testing.T) {
	Convey("Given an index with uneven partner counts", t, func() {
		shirt := item("Red", "Solid", "Shirt", model.PartTop)
		skirt := item("Black", "Plaid", "Skirt", model.PartBottom)
		jeans := item("Blue", "Solid", "Jeans", model.PartBottom)
		pants := item("Beige", "Solid", "Pants", model.PartBottom)

		ix := cooccur.New([]model.OutfitPair{
			pair(shirt, skirt),
			pair(shirt, jeans),
			pair(shirt, pants),
			pair(shirt, jeans),
		})

		Convey("When querying the top's partners", func() {
			got := ix.Query(shirt.Key(), cooccur.TopToBottom)

			Convey("Then the most frequent partner should come first", func() {
				So(len(got), ShouldEqual, 3)
				So(got[0].Key, ShouldResemble, jeans.Key())
				So(got[0].Count, ShouldEqual, 2)
			})

			Convey("And ties should keep first-seen order", func() {
				So(got[1].Key, ShouldResemble, skirt.Key())
				So(got[2].Key, ShouldResemble, pants.Key())
			})
		})

		Convey("When querying the reverse direction", func() {
			got := ix.Query(jeans.Key(), cooccur.BottomToTop)

			Convey("Then it should return the top", func() {
				So(got, ShouldResemble, []cooccur.Partner{{Key: shirt.Key(), Count: 2}})
			})
		})

		Convey("When querying an unseen key", func() {
			got := ix.Query(model.Key{Color: "Green"}, cooccur.TopToBottom)

			Convey("Then the result should be empty rather than an error", func() {
				So(got, ShouldBeEmpty)
				So(ix.Count(model.Key{Color: "Green"}, jeans.Key(), cooccur.TopToBottom), ShouldEqual, 0)
			})
		})

		Convey("When querying with the wrong direction", func() {
			got := ix.Query(shirt.Key(), cooccur.BottomToTop)

			Convey("Then a top key should have no bottom-side row", func() {
				So(got, ShouldBeEmpty)
			})
		})
	})
}

func TestDirectionFor(t *testing.T) {
	Convey("Given item parts", t, func() {
		d, ok := cooccur.DirectionFor(model.PartTop)
		So(ok, ShouldBeTrue)
		So(d, ShouldEqual, cooccur.TopToBottom)

		d, ok = cooccur.DirectionFor(model.PartBottom)
		So(ok, ShouldBeTrue)
		So(d, ShouldEqual, cooccur.BottomToTop)

		_, ok = cooccur.DirectionFor(model.PartUnknown)
		So(ok, ShouldBeFalse)
	})
}

func TestIndex_Empty(t *testing.T) {
	Convey("Given an index built from no pairs", t, func() {
		ix := cooccur.New(nil)

		Convey("Then queries should be empty", func() {
			So(ix.Pairs(), ShouldEqual, 0)
			So(ix.Query(model.Key{}, cooccur.TopToBottom), ShouldBeEmpty)
		})
	})
}
