package model

import "errors"

// Sentinel errors for enum parsing.
var (
	ErrUnknownLabel       = errors.New("unknown bet label")
	ErrUnknownCategory    = errors.New("unknown bet category")
	ErrUnknownJackpotKind = errors.New("unknown jackpot kind")
)
