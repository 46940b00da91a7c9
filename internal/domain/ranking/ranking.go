// Package ranking folds the raw wager and jackpot records into the derived
// views shown on the board: per-category totals and the jackpot hall of fame.
//
// Both folds are pure and run over the full record set on every refresh, so a
// refresh costs O(n) in the number of records ever written. A deployment that
// outgrows that should merge single new records into the previous aggregate
// here instead of recomputing from scratch.
package ranking

import (
	"slices"

	"github.com/okian/tassibets/internal/domain/model"
	"github.com/shopspring/decimal"
)

// CategoryEntry is the running total of one category.
type CategoryEntry struct {
	Category    model.Category  `json:"bet_type"`
	Label       string          `json:"label"`
	Icon        string          `json:"icon"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Count       int             `json:"bet_count"`
}

// WagerBoard is the derived wager view.
type WagerBoard struct {
	TotalCount  int             `json:"total_bets"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	// Skipped counts records whose category is not recognized. They are
	// excluded from every total but still listed in Recent.
	Skipped    int             `json:"skipped"`
	Categories []CategoryEntry `json:"categories"`
	Recent     []model.Wager   `json:"recent"`
}

// AggregateWagers folds wagers into per-category totals sorted by total amount
// descending. Every category of the enumeration is present, ties keep
// enumeration order, and Recent lists all records newest first.
//
// wagers is expected in store insertion order, oldest first. Records that share
// a CreatedAt are listed latest-inserted first.
func AggregateWagers(wagers []model.Wager) WagerBoard {
	cats := model.Categories()
	entries := make([]CategoryEntry, len(cats))
	index := make(map[model.Category]int, len(cats))
	for i, c := range cats {
		entries[i] = CategoryEntry{
			Category:    c,
			Label:       c.Label(),
			Icon:        c.Icon(),
			TotalAmount: decimal.Zero,
		}
		index[c] = i
	}

	board := WagerBoard{TotalAmount: decimal.Zero}
	for i := range wagers {
		w := &wagers[i]
		idx, ok := index[w.Category]
		if !ok {
			board.Skipped++
			continue
		}
		entries[idx].TotalAmount = entries[idx].TotalAmount.Add(w.Amount)
		entries[idx].Count++
		board.TotalAmount = board.TotalAmount.Add(w.Amount)
		board.TotalCount++
	}

	slices.SortStableFunc(entries, func(a, b CategoryEntry) int {
		return b.TotalAmount.Cmp(a.TotalAmount)
	})
	board.Categories = entries

	board.Recent = slices.Clone(wagers)
	if board.Recent == nil {
		board.Recent = []model.Wager{}
	}
	slices.Reverse(board.Recent)
	slices.SortStableFunc(board.Recent, func(a, b model.Wager) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return board
}

// Len is the number of records folded into the board.
func (b WagerBoard) Len() int { return b.TotalCount + b.Skipped }
