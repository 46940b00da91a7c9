package betting_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/tassibets/internal/domain/betting"
	"github.com/okian/tassibets/internal/domain/model"
	"github.com/okian/tassibets/internal/domain/ranking"
	"github.com/okian/tassibets/pkg/logger"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeStore struct {
	mu       sync.Mutex
	wagers   []model.Wager
	jackpots []model.Jackpot
	err      error
	gate     chan struct{} // when set, InsertWager blocks until closed
	entered  chan struct{}
}

func (f *fakeStore) InsertWager(ctx context.Context, w model.Wager) (model.Wager, error) {
	if f.gate != nil {
		f.entered <- struct{}{}
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.Wager{}, f.err
	}
	w.ID = "w-" + string(rune('0'+len(f.wagers)))
	w.CreatedAt = time.Now()
	f.wagers = append(f.wagers, w)
	return w, nil
}

func (f *fakeStore) InsertJackpot(ctx context.Context, j model.Jackpot) (model.Jackpot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.Jackpot{}, f.err
	}
	j.ID = "j-" + string(rune('0'+len(f.jackpots)))
	f.jackpots = append(f.jackpots, j)
	return j, nil
}

func (f *fakeStore) wagerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.wagers)
}

func validationFields(err error) map[string]string {
	var verr *betting.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

func TestPlaceWager(t *testing.T) {
	_ = logger.Init()
	ctx := context.Background()

	Convey("Given a betting service over an empty store", t, func() {
		store := &fakeStore{}
		svc := betting.NewService(store)

		Convey("When a valid wager is placed by card title", func() {
			receipt, err := svc.PlaceWager(ctx, "c1/formar", betting.WagerRequest{
				Label:      "Vai se Formar!",
				PlayerName: "  Ana  ",
				Amount:     decimal.NewFromInt(100),
			})

			Convey("Then exactly one trimmed record is appended", func() {
				So(err, ShouldBeNil)
				So(store.wagerCount(), ShouldEqual, 1)
				So(receipt.Wager.PlayerName, ShouldEqual, "Ana")
				So(receipt.Wager.Category, ShouldEqual, model.CategoryFormar)
				So(receipt.PotentialReturn.String(), ShouldEqual, "380")
			})
		})

		Convey("When a wager is placed by stored key", func() {
			receipt, err := svc.PlaceWager(ctx, "", betting.WagerRequest{
				BetType:    "jubilar",
				PlayerName: "Bia",
				Amount:     decimal.NewFromInt(10),
			})

			Convey("Then it is accepted at the minimum amount", func() {
				So(err, ShouldBeNil)
				So(receipt.Wager.Category, ShouldEqual, model.CategoryJubilar)
			})
		})

		Convey("When the player name is whitespace only", func() {
			_, err := svc.PlaceWager(ctx, "c1/x", betting.WagerRequest{
				Label:      "Vai Jubilar",
				PlayerName: "   \t ",
				Amount:     decimal.NewFromInt(100),
			})

			Convey("Then it is a validation error and nothing is appended", func() {
				So(errors.Is(err, betting.ErrValidation), ShouldBeTrue)
				So(validationFields(err), ShouldContainKey, "player_name")
				So(store.wagerCount(), ShouldEqual, 0)
			})
		})

		Convey("When the label is not a bet card title", func() {
			_, err := svc.PlaceWager(ctx, "", betting.WagerRequest{
				Label:      "Vai Trancar",
				PlayerName: "Caio",
				Amount:     decimal.NewFromInt(100),
			})

			Convey("Then the bet type is rejected", func() {
				So(errors.Is(err, betting.ErrValidation), ShouldBeTrue)
				So(validationFields(err)["bet_type"], ShouldEqual, "Unknown bet")
				So(store.wagerCount(), ShouldEqual, 0)
			})
		})

		Convey("When the amount is below the minimum or not positive", func() {
			_, low := svc.PlaceWager(ctx, "", betting.WagerRequest{BetType: "formar", PlayerName: "D", Amount: decimal.NewFromInt(5)})
			_, neg := svc.PlaceWager(ctx, "", betting.WagerRequest{BetType: "formar", PlayerName: "D", Amount: decimal.NewFromInt(-20)})

			Convey("Then both are rejected on the amount field", func() {
				So(validationFields(low)["amount"], ShouldEqual, "Must be at least 10")
				So(validationFields(neg), ShouldContainKey, "amount")
				So(store.wagerCount(), ShouldEqual, 0)
			})
		})

		Convey("When the amount does not fit two decimal places or the column range", func() {
			_, fractional := svc.PlaceWager(ctx, "", betting.WagerRequest{BetType: "formar", PlayerName: "D", Amount: decimal.RequireFromString("10.005")})
			_, huge := svc.PlaceWager(ctx, "", betting.WagerRequest{BetType: "formar", PlayerName: "D", Amount: decimal.RequireFromString("99999999999999")})

			Convey("Then both are validation errors and nothing is appended", func() {
				So(errors.Is(fractional, betting.ErrValidation), ShouldBeTrue)
				So(validationFields(fractional)["amount"], ShouldEqual, "Must have at most 2 decimal places")
				So(errors.Is(huge, betting.ErrValidation), ShouldBeTrue)
				So(validationFields(huge)["amount"], ShouldEqual, "Must be at most 9999999999.99")
				So(store.wagerCount(), ShouldEqual, 0)
			})
		})

		Convey("When the amount has two decimal places", func() {
			receipt, err := svc.PlaceWager(ctx, "", betting.WagerRequest{BetType: "formar", PlayerName: "D", Amount: decimal.RequireFromString("10.50")})

			Convey("Then it is stored unchanged", func() {
				So(err, ShouldBeNil)
				So(receipt.Wager.Amount.Equal(decimal.RequireFromString("10.5")), ShouldBeTrue)
			})
		})

		Convey("When the name is longer than fifty characters", func() {
			_, err := svc.PlaceWager(ctx, "", betting.WagerRequest{
				BetType:    "formar",
				PlayerName: strings.Repeat("é", 51),
				Amount:     decimal.NewFromInt(10),
			})

			Convey("Then it is rejected", func() {
				So(validationFields(err)["player_name"], ShouldEqual, "Must be at most 50 characters")
			})
		})

		Convey("When fifty multibyte characters are used", func() {
			_, err := svc.PlaceWager(ctx, "", betting.WagerRequest{
				BetType:    "formar",
				PlayerName: strings.Repeat("é", 50),
				Amount:     decimal.NewFromInt(10),
			})

			Convey("Then the limit counts characters, not bytes", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When the same name is spelled with composed and decomposed accents", func() {
			_, err1 := svc.RecordJackpot(ctx, betting.JackpotRequest{PlayerName: "Jos\u00e9", Kind: "seven"})
			_, err2 := svc.RecordJackpot(ctx, betting.JackpotRequest{PlayerName: "Jose\u0301", Kind: "seven"})

			Convey("Then both spellings are kept byte for byte and rank as two players", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(store.jackpots[0].PlayerName, ShouldEqual, "Jos\u00e9")
				So(store.jackpots[1].PlayerName, ShouldEqual, "Jose\u0301")
				hall := ranking.AggregateJackpots(store.jackpots)
				So(len(hall.Players), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a store that rejects writes", t, func() {
		store := &fakeStore{err: errors.New("connection refused")}
		svc := betting.NewService(store)

		_, err := svc.PlaceWager(ctx, "c1/formar", betting.WagerRequest{BetType: "formar", PlayerName: "Ana", Amount: decimal.NewFromInt(10)})

		Convey("Then the store message is surfaced as a write error", func() {
			So(errors.Is(err, betting.ErrStoreWrite), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "connection refused")
		})

		Convey("Then the origin is free to resubmit", func() {
			store.mu.Lock()
			store.err = nil
			store.mu.Unlock()
			_, err := svc.PlaceWager(ctx, "c1/formar", betting.WagerRequest{BetType: "formar", PlayerName: "Ana", Amount: decimal.NewFromInt(10)})
			So(err, ShouldBeNil)
		})
	})

	Convey("Given a submission that is still outstanding", t, func() {
		store := &fakeStore{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
		svc := betting.NewService(store, betting.WithMinAmount(decimal.NewFromInt(20)))
		req := betting.WagerRequest{BetType: "formar", PlayerName: "Ana", Amount: decimal.NewFromInt(20)}

		done := make(chan error, 1)
		go func() {
			_, err := svc.PlaceWager(ctx, "c1/formar", req)
			done <- err
		}()
		<-store.entered

		Convey("Then a second submission from the same origin is refused", func() {
			_, err := svc.PlaceWager(ctx, "c1/formar", req)
			So(errors.Is(err, betting.ErrInFlight), ShouldBeTrue)

			close(store.gate)
			So(<-done, ShouldBeNil)
			So(store.wagerCount(), ShouldEqual, 1)
		})
	})
}

func TestRecordJackpot(t *testing.T) {
	_ = logger.Init()
	ctx := context.Background()

	Convey("Given a betting service", t, func() {
		store := &fakeStore{}
		svc := betting.NewService(store)

		Convey("When a recognized jackpot is recorded", func() {
			j, err := svc.RecordJackpot(ctx, betting.JackpotRequest{PlayerName: "alice", Kind: "tigrinho"})

			Convey("Then it is stored", func() {
				So(err, ShouldBeNil)
				So(j.Kind, ShouldEqual, model.JackpotTigrinho)
				So(len(store.jackpots), ShouldEqual, 1)
			})
		})

		Convey("When the kind is unknown", func() {
			_, err := svc.RecordJackpot(ctx, betting.JackpotRequest{PlayerName: "carol", Kind: "unknown_kind"})

			Convey("Then it is rejected on write", func() {
				So(validationFields(err)["jackpot_type"], ShouldEqual, "Unknown jackpot kind, expected one of: tigrinho, seven")
				So(len(store.jackpots), ShouldEqual, 0)
			})
		})

		Convey("When the name is empty", func() {
			_, err := svc.RecordJackpot(ctx, betting.JackpotRequest{PlayerName: " ", Kind: "seven"})
			So(errors.Is(err, betting.ErrValidation), ShouldBeTrue)
		})
	})
}
