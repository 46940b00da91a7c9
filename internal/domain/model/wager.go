package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxPlayerNameLength bounds the player display name, in characters.
const MaxPlayerNameLength = 50

// AmountScale is the number of decimal places an amount may carry.
const AmountScale = 2

// MaxAmount is the largest storable amount (NUMERIC(12,2)).
var MaxAmount = decimal.New(999_999_999_999, -AmountScale)

// AmountFitsScale reports whether d has at most AmountScale decimal places.
func AmountFitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(AmountScale))
}

// AmountInRange reports whether d does not exceed MaxAmount.
func AmountInRange(d decimal.Decimal) bool {
	return d.LessThanOrEqual(MaxAmount)
}

// Wager is one placed bet. Records are append-only.
type Wager struct {
	ID         string          `json:"id"`
	PlayerName string          `json:"player_name"`
	Category   Category        `json:"bet_type"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PotentialReturn is amount times the category odds.
func (w Wager) PotentialReturn() decimal.Decimal {
	return w.Amount.Mul(w.Category.Odds())
}
