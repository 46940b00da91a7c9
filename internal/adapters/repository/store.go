// Package repository implements the append-only event store holding wager
// and jackpot records, with a pull and a push (change feed) interface.
package repository

import (
	"context"

	"github.com/okian/tassibets/internal/domain/model"
)

// Collection names a record set in the store.
type Collection string

// Store collections.
const (
	CollectionBets     Collection = "bets"
	CollectionJackpots Collection = "jackpots"
)

// Collections lists every collection.
func Collections() []Collection {
	return []Collection{CollectionBets, CollectionJackpots}
}

// Order selects how a full pull is sorted by creation time.
type Order int

// Pull orders. Records created at the same instant keep insertion order.
const (
	OrderOldestFirst Order = iota
	OrderNewestFirst
)

// Subscription is a registered change feed handle.
type Subscription interface {
	// Unsubscribe releases the registration. It is safe to call more than once.
	Unsubscribe()
}

// Store is the event store consumed by the submission and view layers.
type Store interface {
	// InsertWager appends w and returns it with the store-assigned ID and CreatedAt.
	InsertWager(ctx context.Context, w model.Wager) (model.Wager, error)
	// InsertJackpot appends j and returns it with the store-assigned ID and CreatedAt.
	InsertJackpot(ctx context.Context, j model.Jackpot) (model.Jackpot, error)

	// Wagers returns every wager record.
	Wagers(ctx context.Context, order Order) ([]model.Wager, error)
	// Jackpots returns every jackpot record, oldest first.
	Jackpots(ctx context.Context) ([]model.Jackpot, error)

	// Subscribe registers onChange for any change in collection. onChange
	// carries no payload and must not block. Returns ErrFeedUnavailable when
	// the change feed cannot be registered.
	Subscribe(ctx context.Context, c Collection, onChange func()) (Subscription, error)

	Close() error
}

// FeedReporter is implemented by stores whose change feed can drop out.
type FeedReporter interface {
	FeedAvailable() bool
}
