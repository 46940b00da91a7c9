package games

import "github.com/okian/tassibets/internal/domain/model"

// Symbol is one slot reel face.
type Symbol string

// Reel symbols.
const (
	SymbolLemon  Symbol = "🍋"
	SymbolCherry Symbol = "🍒"
	SymbolBell   Symbol = "🔔"
	SymbolTiger  Symbol = "🐯"
	SymbolSeven  Symbol = "7️⃣"
)

// Slot outcomes.
const (
	SlotsJackpot = "jackpot"
	SlotsTriple  = "triple"
	SlotsPair    = "pair"
	SlotsNothing = "nothing"
)

const reelCount = 3

// Weights for weighted symbol selection (out of 100), in reel order.
var reelWeights = []struct { //nolint:gochecknoglobals // read-only reel table
	symbol Symbol
	weight int
}{
	{SymbolLemon, 35},
	{SymbolCherry, 30},
	{SymbolBell, 17},
	{SymbolTiger, 10},
	{SymbolSeven, 8},
}

const totalReelWeight = 100

// SpinResult is the outcome of one slot spin. Jackpot is set only for the
// top-tier outcomes: three tigers or three sevens.
type SpinResult struct {
	Reels   [reelCount]Symbol `json:"reels"`
	Outcome string            `json:"outcome"`
	Jackpot model.JackpotKind `json:"jackpot_type,omitempty"`
}

// Spin spins the three reels from src.
func Spin(src Source) SpinResult {
	var r SpinResult
	for i := range r.Reels {
		r.Reels[i] = selectWeightedSymbol(src)
	}

	a, b, c := r.Reels[0], r.Reels[1], r.Reels[2]
	switch {
	case a == b && b == c && a == SymbolTiger:
		r.Outcome, r.Jackpot = SlotsJackpot, model.JackpotTigrinho
	case a == b && b == c && a == SymbolSeven:
		r.Outcome, r.Jackpot = SlotsJackpot, model.JackpotSeven
	case a == b && b == c:
		r.Outcome = SlotsTriple
	case a == b || b == c || a == c:
		r.Outcome = SlotsPair
	default:
		r.Outcome = SlotsNothing
	}
	return r
}

func selectWeightedSymbol(src Source) Symbol {
	roll := src.IntN(totalReelWeight)
	cumulative := 0
	for _, w := range reelWeights {
		cumulative += w.weight
		if roll < cumulative {
			return w.symbol
		}
	}
	return SymbolLemon
}
