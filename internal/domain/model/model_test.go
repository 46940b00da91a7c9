package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/tassibets/internal/domain/model"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCategories(t *testing.T) {
	Convey("Given the fixed category enumeration", t, func() {
		cats := model.Categories()

		Convey("Then it lists the three categories in order", func() {
			So(cats, ShouldResemble, []model.Category{
				model.CategoryEnlouquecer, model.CategoryFormar, model.CategoryJubilar,
			})
		})

		Convey("Then every category carries label, icon and odds", func() {
			So(model.CategoryEnlouquecer.Label(), ShouldEqual, "Vai Enlouquecer")
			So(model.CategoryFormar.Icon(), ShouldEqual, "🎓")
			So(model.CategoryJubilar.Odds().String(), ShouldEqual, "4.2")
			So(model.CategoryFormar.Odds().String(), ShouldEqual, "3.8")
			So(model.CategoryEnlouquecer.Odds().String(), ShouldEqual, "2.5")
		})

		Convey("Then an unknown category falls back to its raw key", func() {
			c := model.Category("surtar")
			So(c.Valid(), ShouldBeFalse)
			So(c.Label(), ShouldEqual, "surtar")
			So(c.Odds().IsZero(), ShouldBeTrue)
		})
	})
}

func TestParseLabel(t *testing.T) {
	Convey("Given the bet card titles", t, func() {
		Convey("When every title is parsed", func() {
			seen := map[model.Category]bool{}
			for _, c := range model.Categories() {
				got, err := model.ParseLabel(c.Title())
				So(err, ShouldBeNil)
				So(got, ShouldEqual, c)
				seen[got] = true
			}

			Convey("Then the mapping is injective over the titles", func() {
				So(len(seen), ShouldEqual, 3)
			})
		})

		Convey("When an unmapped label is parsed", func() {
			_, err := model.ParseLabel("Vai Trancar")

			Convey("Then it is rejected", func() {
				So(errors.Is(err, model.ErrUnknownLabel), ShouldBeTrue)
			})
		})

		Convey("When surrounding whitespace is present", func() {
			got, err := model.ParseLabel("  Vai Jubilar ")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, model.CategoryJubilar)
		})
	})
}

func TestParseKeys(t *testing.T) {
	Convey("Given stored keys", t, func() {
		c, err := model.ParseCategory("formar")
		So(err, ShouldBeNil)
		So(c, ShouldEqual, model.CategoryFormar)

		_, err = model.ParseCategory("Formar")
		So(errors.Is(err, model.ErrUnknownCategory), ShouldBeTrue)

		k, err := model.ParseJackpotKind("seven")
		So(err, ShouldBeNil)
		So(k, ShouldEqual, model.JackpotSeven)

		_, err = model.ParseJackpotKind("unknown_kind")
		So(errors.Is(err, model.ErrUnknownJackpotKind), ShouldBeTrue)
	})
}

func TestWager(t *testing.T) {
	Convey("Given a wager on formar", t, func() {
		w := model.Wager{ID: "1", PlayerName: "ana", Category: model.CategoryFormar, Amount: decimal.NewFromInt(100)}

		Convey("Then the potential return applies the odds", func() {
			So(w.PotentialReturn().String(), ShouldEqual, "380")
		})

		Convey("Then it encodes with the store column names", func() {
			raw, err := json.Marshal(w)
			So(err, ShouldBeNil)
			So(string(raw), ShouldContainSubstring, `"bet_type":"formar"`)
			So(string(raw), ShouldContainSubstring, `"player_name":"ana"`)
			So(string(raw), ShouldContainSubstring, `"amount":"100"`)
		})
	})
}
