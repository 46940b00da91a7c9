package loadtest

import (
	"errors"
	"fmt"

	"github.com/okian/tassibets/internal/domain/model"
	"github.com/okian/tassibets/internal/domain/ranking"
	"github.com/shopspring/decimal"
)

// ErrVerification marks a board or hall of fame that breaks an invariant.
var ErrVerification = errors.New("verification failed")

// VerifyBoard checks the invariants every board must hold.
func VerifyBoard(b ranking.WagerBoard) error {
	cats := model.Categories()
	if len(b.Categories) != len(cats) {
		return fmt.Errorf("%w: %d category rows, want %d", ErrVerification, len(b.Categories), len(cats))
	}

	sum, count := decimal.Zero, 0
	seen := make(map[model.Category]bool, len(cats))
	for i, c := range b.Categories {
		if seen[c.Category] {
			return fmt.Errorf("%w: category %s listed twice", ErrVerification, c.Category)
		}
		seen[c.Category] = true
		sum = sum.Add(c.TotalAmount)
		count += c.Count
		if i > 0 && c.TotalAmount.GreaterThan(b.Categories[i-1].TotalAmount) {
			return fmt.Errorf("%w: categories not sorted by total at %d", ErrVerification, i)
		}
	}
	if !sum.Equal(b.TotalAmount) {
		return fmt.Errorf("%w: category totals %s != grand total %s", ErrVerification, sum, b.TotalAmount)
	}
	if count != b.TotalCount {
		return fmt.Errorf("%w: category counts %d != grand count %d", ErrVerification, count, b.TotalCount)
	}
	if len(b.Recent) != b.TotalCount+b.Skipped {
		return fmt.Errorf("%w: %d recent bets, want %d", ErrVerification, len(b.Recent), b.TotalCount+b.Skipped)
	}
	for i := 1; i < len(b.Recent); i++ {
		if b.Recent[i].CreatedAt.After(b.Recent[i-1].CreatedAt) {
			return fmt.Errorf("%w: recent bets not newest first at %d", ErrVerification, i)
		}
	}
	return nil
}

// VerifyHall checks the invariants every hall of fame must hold.
func VerifyHall(h ranking.HallOfFame) error {
	seen := make(map[string]bool, len(h.Players))
	for i, p := range h.Players {
		if seen[p.PlayerName] {
			return fmt.Errorf("%w: player %q listed twice", ErrVerification, p.PlayerName)
		}
		seen[p.PlayerName] = true
		if p.TigrinhoCount+p.SevenCount > p.TotalJackpots {
			return fmt.Errorf("%w: player %q kind counts exceed total", ErrVerification, p.PlayerName)
		}
		if i > 0 && p.TotalJackpots > h.Players[i-1].TotalJackpots {
			return fmt.Errorf("%w: hall of fame not sorted at %d", ErrVerification, i)
		}
	}
	return nil
}

// VerifyDelta checks that the board grew by exactly what was accepted.
func VerifyDelta(before, after ranking.WagerBoard, stats *Stats) error {
	if got := after.TotalCount - before.TotalCount; got != stats.BetsCreated {
		return fmt.Errorf("%w: board grew by %d bets, %d were accepted", ErrVerification, got, stats.BetsCreated)
	}
	if got := after.TotalAmount.Sub(before.TotalAmount); !got.Equal(stats.AmountCreated) {
		return fmt.Errorf("%w: board grew by %s, %s was accepted", ErrVerification, got, stats.AmountCreated)
	}
	return nil
}

// VerifyHallDelta checks that the hall of fame grew by exactly what was accepted.
func VerifyHallDelta(before, after ranking.HallOfFame, stats *Stats) error {
	if got := after.Len() - before.Len(); got != stats.JackpotsCreated {
		return fmt.Errorf("%w: hall grew by %d jackpots, %d were accepted", ErrVerification, got, stats.JackpotsCreated)
	}
	return nil
}
