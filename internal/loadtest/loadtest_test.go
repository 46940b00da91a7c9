package loadtest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/tassibets/internal/adapters/http/api"
	"github.com/okian/tassibets/internal/adapters/repository"
	service "github.com/okian/tassibets/internal/app"
	"github.com/okian/tassibets/internal/domain/model"
	"github.com/okian/tassibets/internal/domain/ranking"
	"github.com/okian/tassibets/internal/loadtest"
	"github.com/okian/tassibets/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestGenerator(t *testing.T) {
	convey.Convey("Given two generators with the same seed", t, func() {
		a := loadtest.NewGenerator(42, 5, 10, 10)
		b := loadtest.NewGenerator(42, 5, 10, 10)

		convey.Convey("Then they produce the same bets", func() {
			convey.So(a.Bets(50), convey.ShouldResemble, b.Bets(50))
		})

		convey.Convey("And every bet is valid for the service", func() {
			for _, bet := range a.Bets(200) {
				_, err := model.ParseLabel(bet.Label)
				convey.So(err, convey.ShouldBeNil)
				convey.So(bet.Amount.GreaterThanOrEqual(decimal.NewFromInt(10)), convey.ShouldBeTrue)
				convey.So(bet.Amount.Mod(decimal.NewFromInt(10)).IsZero(), convey.ShouldBeTrue)
				convey.So(bet.PlayerName, convey.ShouldStartWith, "apostador_")
			}
		})

		convey.Convey("And every jackpot has a known kind", func() {
			for _, j := range a.Jackpots(100) {
				convey.So(model.JackpotKind(j.Kind).Valid(), convey.ShouldBeTrue)
			}
		})
	})
}

func TestVerify(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	wagers := []model.Wager{
		{ID: "1", PlayerName: "Ana", Category: model.CategoryFormar, Amount: decimal.NewFromInt(50), CreatedAt: now},
		{ID: "2", PlayerName: "Bia", Category: model.CategoryJubilar, Amount: decimal.NewFromInt(20), CreatedAt: now.Add(time.Second)},
	}

	convey.Convey("Given an aggregated board", t, func() {
		board := ranking.AggregateWagers(wagers)

		convey.Convey("Then it passes verification", func() {
			convey.So(loadtest.VerifyBoard(board), convey.ShouldBeNil)
		})

		convey.Convey("When the grand total is tampered with", func() {
			board.TotalAmount = decimal.NewFromInt(1)
			convey.So(errors.Is(loadtest.VerifyBoard(board), loadtest.ErrVerification), convey.ShouldBeTrue)
		})

		convey.Convey("When the categories are out of order", func() {
			board.Categories[0], board.Categories[1] = board.Categories[1], board.Categories[0]
			convey.So(errors.Is(loadtest.VerifyBoard(board), loadtest.ErrVerification), convey.ShouldBeTrue)
		})

		convey.Convey("When the accepted delta does not match", func() {
			stats := &loadtest.Stats{BetsCreated: 3, AmountCreated: decimal.NewFromInt(70)}
			err := loadtest.VerifyDelta(ranking.AggregateWagers(nil), board, stats)
			convey.So(errors.Is(err, loadtest.ErrVerification), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a hall of fame out of order", t, func() {
		hall := ranking.HallOfFame{Players: []ranking.PlayerEntry{
			{PlayerName: "Ana", TigrinhoCount: 1, TotalJackpots: 1},
			{PlayerName: "Bia", SevenCount: 2, TotalJackpots: 2},
		}}
		convey.So(errors.Is(loadtest.VerifyHall(hall), loadtest.ErrVerification), convey.ShouldBeTrue)
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a running service", t, func() {
		svc := service.New(service.WithStore(service.DriverMemory, repository.NewMemoryStore()))
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		out := filepath.Join(t.TempDir(), "seed.json")

		convey.Convey("When seeding it", func() {
			stats, err := loadtest.Run(context.Background(), &loadtest.Config{
				BaseURL:     srv.URL,
				NumBets:     120,
				NumJackpots: 15,
				Players:     8,
				Workers:     4,
				Timeout:     5 * time.Second,
				LiveWait:    5 * time.Second,
				MinAmount:   10,
				Step:        10,
				Seed:        7,
				OutputFile:  out,
			})

			convey.Convey("Then every submission is accepted and verified", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(stats.BetsCreated, convey.ShouldEqual, 120)
				convey.So(stats.BetsConflict, convey.ShouldEqual, 0)
				convey.So(stats.JackpotsCreated, convey.ShouldEqual, 15)
				convey.So(stats.LiveVerified, convey.ShouldBeTrue)

				board, err := svc.Board(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(board.TotalCount, convey.ShouldEqual, 120)
			})

			convey.Convey("And the generated records are saved", func() {
				info, err := os.Stat(out)
				convey.So(err, convey.ShouldBeNil)
				convey.So(info.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})
	})
}
