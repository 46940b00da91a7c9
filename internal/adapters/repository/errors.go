package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrConstraint        = errors.New("record violates store constraint")
	ErrFeedUnavailable   = errors.New("change feed unavailable")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrClosed            = errors.New("store closed")
)
