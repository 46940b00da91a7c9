package ranking

import (
	"slices"

	"github.com/okian/tassibets/internal/domain/model"
)

// PlayerEntry tallies the jackpots of one player name.
type PlayerEntry struct {
	PlayerName    string `json:"player_name"`
	TigrinhoCount int    `json:"tigrinho_count"`
	SevenCount    int    `json:"seven_count"`
	TotalJackpots int    `json:"total_jackpots"`
}

// HallOfFame is the derived jackpot view.
type HallOfFame struct {
	Players []PlayerEntry `json:"players"`
}

// AggregateJackpots groups jackpots by exact player name and sorts players by
// total descending, keeping first-encountered order on ties. A record with an
// unrecognized kind still counts toward its player's total.
func AggregateJackpots(jackpots []model.Jackpot) HallOfFame {
	players := make([]PlayerEntry, 0)
	index := make(map[string]int)
	for i := range jackpots {
		j := &jackpots[i]
		idx, ok := index[j.PlayerName]
		if !ok {
			idx = len(players)
			index[j.PlayerName] = idx
			players = append(players, PlayerEntry{PlayerName: j.PlayerName})
		}
		p := &players[idx]
		switch j.Kind {
		case model.JackpotTigrinho:
			p.TigrinhoCount++
		case model.JackpotSeven:
			p.SevenCount++
		}
		p.TotalJackpots++
	}

	slices.SortStableFunc(players, func(a, b PlayerEntry) int {
		return b.TotalJackpots - a.TotalJackpots
	})
	return HallOfFame{Players: players}
}

// Medal returns the podium emoji for a zero-based rank, or "" past third place.
func Medal(rank int) string {
	switch rank {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	default:
		return ""
	}
}

// Len is the number of records folded into the hall of fame.
func (h HallOfFame) Len() int {
	n := 0
	for _, p := range h.Players {
		n += p.TotalJackpots
	}
	return n
}
