package games_test

import (
	"testing"

	"github.com/okian/tassibets/internal/domain/games"
	"github.com/okian/tassibets/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// scripted replays fixed draws.
type scripted struct {
	draws []int
	i     int
}

func (s *scripted) IntN(n int) int {
	v := s.draws[s.i%len(s.draws)] % n
	s.i++
	return v
}

func TestRollDice(t *testing.T) {
	Convey("Given scripted dice", t, func() {
		cases := []struct {
			draws   []int
			total   int
			outcome games.DiceOutcome
		}{
			{[]int{5, 5}, 12, games.DiceDoubleSix},
			{[]int{0, 0}, 2, games.DiceSnakeEyes},
			{[]int{2, 2}, 6, games.DiceDouble},
			{[]int{0, 3}, 5, games.DicePlain},
		}
		for _, c := range cases {
			r := games.RollDice(&scripted{draws: c.draws})
			So(r.Total, ShouldEqual, c.total)
			So(r.Outcome, ShouldEqual, c.outcome)
		}
		r := games.RollDice(&scripted{draws: []int{0, 5}})
		So(r.Faces, ShouldEqual, "⚀ ⚅")
	})

	Convey("Given the default source", t, func() {
		for i := 0; i < 500; i++ {
			r := games.RollDice(games.DefaultSource())
			So(r.Die1, ShouldBeBetweenOrEqual, 1, 6)
			So(r.Die2, ShouldBeBetweenOrEqual, 1, 6)
			So(r.Total, ShouldEqual, r.Die1+r.Die2)
		}
	})

	Convey("Given die faces", t, func() {
		So(games.DieFace(1), ShouldEqual, "⚀")
		So(games.DieFace(6), ShouldEqual, "⚅")
		So(games.DieFace(7), ShouldEqual, "?")
	})
}

func TestSpin(t *testing.T) {
	Convey("Given scripted reels", t, func() {
		// Draws are weights out of 100: <35 lemon, <65 cherry, <82 bell, <92 tiger, else seven.
		Convey("Then three tigers is a tigrinho jackpot", func() {
			r := games.Spin(&scripted{draws: []int{85}})
			So(r.Reels, ShouldResemble, [3]games.Symbol{games.SymbolTiger, games.SymbolTiger, games.SymbolTiger})
			So(r.Jackpot, ShouldEqual, model.JackpotTigrinho)
			So(r.Outcome, ShouldEqual, games.SlotsJackpot)
		})

		Convey("Then three sevens is a seven jackpot", func() {
			r := games.Spin(&scripted{draws: []int{95}})
			So(r.Jackpot, ShouldEqual, model.JackpotSeven)
		})

		Convey("Then three lemons is a plain triple", func() {
			r := games.Spin(&scripted{draws: []int{1}})
			So(r.Outcome, ShouldEqual, games.SlotsTriple)
			So(r.Jackpot, ShouldEqual, model.JackpotKind(""))
		})

		Convey("Then two matching reels is a pair", func() {
			r := games.Spin(&scripted{draws: []int{1, 40, 1}})
			So(r.Outcome, ShouldEqual, games.SlotsPair)
		})

		Convey("Then all different is nothing", func() {
			r := games.Spin(&scripted{draws: []int{1, 40, 70}})
			So(r.Outcome, ShouldEqual, games.SlotsNothing)
		})
	})
}
