// Package games implements the dice and slot mini-games. Outcomes use plain
// uniform selection and are not meant to be fair or unpredictable.
package games

import "math/rand/v2"

// Source yields integers in [0, n).
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource draws from the process-wide math/rand generator.
func DefaultSource() Source { return globalSource{} }

// Game names used in metrics and responses.
const (
	GameDice  = "dice"
	GameSlots = "slots"
)
