package validation

import (
	"errors"
	"testing"

	"github.com/okian/lookbook/internal/domain/model"
	"github.com/okian/lookbook/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGet(t *testing.T) {
	Convey("Given the shared validator", t, func() {
		So(Get(), ShouldNotBeNil)
		So(Get(), ShouldEqual, Get())
	})
}

func TestStruct(t *testing.T) {
	Convey("Given a label request", t, func() {
		req := types.LabelRequest{Gender: "women", Color: "Red", Style: "Solid", Category: "Shirt", Part: "top", K: 3}

		Convey("When every field is valid", func() {
			Convey("Then validation should pass", func() {
				So(Struct(&req), ShouldBeNil)
			})
		})

		Convey("When k is omitted", func() {
			req.K = 0
			So(Struct(&req), ShouldBeNil)
		})

		Convey("When gender and color are missing", func() {
			req.Gender = ""
			req.Color = ""
			err := Struct(&req)

			Convey("Then both fields should be reported by json name", func() {
				var verr *Error
				So(errors.As(err, &verr), ShouldBeTrue)
				So(len(verr.Fields), ShouldEqual, 2)
				So(verr.Fields[0].Field, ShouldEqual, "gender")
				So(verr.Fields[0].Message, ShouldEqual, "gender is required")
				So(err.Error(), ShouldEqual, "gender is required; color is required")
			})
		})

		Convey("When part is not a garment half", func() {
			req.Part = "shoes"
			err := Struct(&req)

			Convey("Then the custom part rule should reject it", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldEqual, "part must be Top or Bottom")
			})
		})

		Convey("When k is negative", func() {
			req.K = -2
			err := Struct(&req)

			Convey("Then the min rule should report the bound", func() {
				So(err.Error(), ShouldEqual, "k must be at least 1")
			})
		})
	})

	Convey("Given a corpus record", t, func() {
		pair := model.OutfitPair{
			Gender: "men",
			Top:    model.Item{Color: "Gray", Style: "Solid", Category: "Sweatshirt"},
			Bottom: model.Item{Color: "Blue", Style: "Solid"},
		}

		Convey("When a nested attribute is missing", func() {
			err := Struct(&pair)

			Convey("Then the nested field should be reported", func() {
				var verr *Error
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Fields[0].Field, ShouldEqual, "category")
				So(verr.Fields[0].Tag, ShouldEqual, "required")
			})
		})
	})

	Convey("Given a value that is not a struct", t, func() {
		err := Struct("nope")

		Convey("Then an unknown field error should be returned", func() {
			var verr *Error
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Fields[0].Field, ShouldEqual, "unknown")
		})
	})
}
