package repository

import (
	"context"
	"time"

	"github.com/okian/tassibets/internal/domain/model"
	"github.com/okian/tassibets/pkg/metrics"
)

// Store operation names used as metric labels.
const (
	opInsertWager   = "insert_wager"
	opInsertJackpot = "insert_jackpot"
	opSelectWagers  = "select_wagers"
	opSelectJackpot = "select_jackpots"
	opSubscribe     = "subscribe"
)

type instrumented struct {
	next Store
}

// Instrument wraps s so every call reports latency and failures to metrics.
func Instrument(s Store) Store {
	return &instrumented{next: s}
}

func observe(op string, start time.Time, err error) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		metrics.RecordStoreError(op)
	}
}

func (i *instrumented) InsertWager(ctx context.Context, w model.Wager) (model.Wager, error) {
	start := time.Now()
	out, err := i.next.InsertWager(ctx, w)
	observe(opInsertWager, start, err)
	return out, err
}

func (i *instrumented) InsertJackpot(ctx context.Context, j model.Jackpot) (model.Jackpot, error) {
	start := time.Now()
	out, err := i.next.InsertJackpot(ctx, j)
	observe(opInsertJackpot, start, err)
	return out, err
}

func (i *instrumented) Wagers(ctx context.Context, order Order) ([]model.Wager, error) {
	start := time.Now()
	out, err := i.next.Wagers(ctx, order)
	observe(opSelectWagers, start, err)
	return out, err
}

func (i *instrumented) Jackpots(ctx context.Context) ([]model.Jackpot, error) {
	start := time.Now()
	out, err := i.next.Jackpots(ctx)
	observe(opSelectJackpot, start, err)
	return out, err
}

func (i *instrumented) Subscribe(ctx context.Context, c Collection, onChange func()) (Subscription, error) {
	start := time.Now()
	sub, err := i.next.Subscribe(ctx, c, onChange)
	observe(opSubscribe, start, err)
	if err != nil {
		metrics.RecordFeedSubscribeError(string(c))
	}
	return sub, err
}

func (i *instrumented) Close() error { return i.next.Close() }

// FeedAvailable reports whether the wrapped store's change feed is connected.
// Stores without an external feed are always available.
func (i *instrumented) FeedAvailable() bool {
	if f, ok := i.next.(FeedReporter); ok {
		return f.FeedAvailable()
	}
	return true
}
