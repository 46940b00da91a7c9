package loadtest

import (
	"fmt"
	"math/rand/v2"

	"github.com/okian/tassibets/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Amount distribution: most bets sit near the minimum, a few are large.
const (
	smallBetSteps   = 20
	largeBetSteps   = 200
	largeBetPercent = 10
)

// Generator produces reproducible wagers and jackpots from a seed.
type Generator struct {
	rnd     *rand.Rand
	players []string
	min     int64
	step    int64
}

// NewGenerator creates a generator over a pool of players names.
func NewGenerator(seed uint64, players int, minAmount, step int64) *Generator {
	if players < 1 {
		players = 1
	}
	if step < 1 {
		step = 1
	}
	pool := make([]string, players)
	for i := range pool {
		pool[i] = fmt.Sprintf("apostador_%03d", i+1)
	}
	return &Generator{
		rnd:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		players: pool,
		min:     minAmount,
		step:    step,
	}
}

func (g *Generator) player() string {
	return g.players[g.rnd.IntN(len(g.players))]
}

// Bets generates n wagers across every card.
func (g *Generator) Bets(n int) []Bet {
	cats := model.Categories()
	bets := make([]Bet, n)
	for i := range bets {
		steps := g.rnd.IntN(smallBetSteps)
		if g.rnd.IntN(100) < largeBetPercent {
			steps = g.rnd.IntN(largeBetSteps)
		}
		bets[i] = Bet{
			Label:      cats[g.rnd.IntN(len(cats))].Title(),
			PlayerName: g.player(),
			Amount:     decimal.NewFromInt(g.min + int64(steps)*g.step),
		}
	}
	return bets
}

// Jackpots generates n jackpot wins; tigrinho is the more common kind.
func (g *Generator) Jackpots(n int) []Jackpot {
	out := make([]Jackpot, n)
	for i := range out {
		kind := model.JackpotTigrinho
		if g.rnd.IntN(3) == 0 {
			kind = model.JackpotSeven
		}
		out[i] = Jackpot{PlayerName: g.player(), Kind: string(kind)}
	}
	return out
}
