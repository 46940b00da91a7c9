package model

import (
	"strings"
	"time"
)

// JackpotKind names a top-tier slot outcome. Values outside the recognized
// set are representable so that records written by newer clients survive a read.
type JackpotKind string

// Recognized jackpot kinds.
const (
	JackpotTigrinho JackpotKind = "tigrinho"
	JackpotSeven    JackpotKind = "seven"
)

// JackpotKinds returns the recognized kinds in display order.
func JackpotKinds() []JackpotKind {
	return []JackpotKind{JackpotTigrinho, JackpotSeven}
}

// Valid reports whether k is a recognized kind.
func (k JackpotKind) Valid() bool {
	return k == JackpotTigrinho || k == JackpotSeven
}

// ParseJackpotKind maps a stored kind key to a recognized kind.
func ParseJackpotKind(key string) (JackpotKind, error) {
	k := JackpotKind(strings.TrimSpace(key))
	if !k.Valid() {
		return "", ErrUnknownJackpotKind
	}
	return k, nil
}

// Jackpot is one recorded jackpot win.
type Jackpot struct {
	ID         string      `json:"id"`
	PlayerName string      `json:"player_name"`
	Kind       JackpotKind `json:"jackpot_type"`
	CreatedAt  time.Time   `json:"created_at"`
}
