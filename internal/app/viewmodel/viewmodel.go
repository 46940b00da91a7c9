// Package viewmodel keeps a derived view of one store collection up to date.
//
// A View subscribes to the collection's change feed, pulls the full record
// set once on activation and again on every change notification, and folds it
// with a pure function. Each View owns its state and runs a single refresh
// goroutine, the only writer of that state. Notifications that arrive while a
// refresh is running collapse into one follow-up refresh.
package viewmodel

import (
	"context"
	"sync"
	"time"

	"github.com/okian/tassibets/internal/adapters/repository"
	"github.com/okian/tassibets/pkg/logger"
	"github.com/okian/tassibets/pkg/metrics"
)

const (
	defaultPullTimeout = 5 * time.Second
	defaultStopTimeout = 5 * time.Second
)

// Feed is the push side of the event store.
type Feed interface {
	Subscribe(ctx context.Context, c repository.Collection, onChange func()) (repository.Subscription, error)
}

// View is one live derived view. It must be activated before use and
// deactivated when its viewer goes away.
type View[T any] struct {
	name       string
	collection repository.Collection
	pull       func(ctx context.Context) (T, error)
	feed       Feed
	opts       options[T]

	mu        sync.RWMutex
	snapshot  T
	ready     bool
	lastErr   error
	degraded  bool
	activated bool
	closed    bool
	sub       repository.Subscription

	trigger chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates an inactive view named name over collection. pull reads the
// full record set and folds it into the view value.
func New[T any](name string, collection repository.Collection, pull func(ctx context.Context) (T, error), feed Feed, opts ...Option[T]) *View[T] {
	o := options[T]{
		pullTimeout: defaultPullTimeout,
		stopTimeout: defaultStopTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named("view")
	}
	o.logger = o.logger.With(logger.String("view", name))

	return &View[T]{
		name:       name,
		collection: collection,
		pull:       pull,
		feed:       feed,
		opts:       o,
		trigger:    make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

// Activate registers for changes, performs the initial pull and starts the
// refresh loop. A failed registration degrades the view to pull-only; a failed
// initial pull leaves it without a snapshot until the next successful refresh.
// Neither is returned as an error.
func (v *View[T]) Activate(ctx context.Context) error {
	lctx, cancel := context.WithCancel(ctx)
	v.mu.Lock()
	if v.activated {
		v.mu.Unlock()
		cancel()
		return ErrAlreadyActive
	}
	v.activated = true
	v.cancel = cancel
	v.mu.Unlock()
	metrics.IncActiveViews(v.name)

	sub, err := v.feed.Subscribe(lctx, v.collection, v.Refresh)
	v.mu.Lock()
	if v.closed {
		// Deactivated while registering: release what we just got.
		v.mu.Unlock()
		if err == nil && sub != nil {
			sub.Unsubscribe()
		}
		close(v.done)
		return nil
	}
	if err != nil {
		v.degraded = true
	} else {
		v.sub = sub
	}
	v.mu.Unlock()
	if err != nil {
		v.opts.logger.Warn(ctx, "change feed registration failed, serving pull-only", logger.Error(err))
	}

	v.refresh(lctx)
	go v.run(lctx)
	return nil
}

// Refresh requests a re-pull. It never blocks; requests made while one is
// pending are merged.
func (v *View[T]) Refresh() {
	select {
	case v.trigger <- struct{}{}:
	default:
	}
}

func (v *View[T]) run(ctx context.Context) {
	defer close(v.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-v.trigger:
			v.refresh(ctx)
		}
	}
}

func (v *View[T]) refresh(ctx context.Context) {
	start := time.Now()
	pctx, cancel := context.WithTimeout(ctx, v.opts.pullTimeout)
	val, err := v.pull(pctx)
	cancel()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		metrics.RecordViewDiscarded(v.name)
		return
	}
	if err != nil {
		v.lastErr = err
		v.mu.Unlock()
		metrics.RecordViewRefreshError(v.name)
		v.opts.logger.Warn(ctx, "refresh failed, keeping previous view", logger.Error(err))
		return
	}
	v.snapshot = val
	v.ready = true
	v.lastErr = nil
	v.mu.Unlock()

	records := 0
	if s, ok := any(val).(interface{ Len() int }); ok {
		records = s.Len()
	}
	metrics.RecordViewRefresh(v.name, float64(time.Since(start).Microseconds())/1000, records)

	if v.opts.onUpdate != nil {
		v.opts.onUpdate(val)
	}
}

// Snapshot returns the last successfully computed value and whether one exists.
func (v *View[T]) Snapshot() (T, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snapshot, v.ready
}

// Err returns the error of the last refresh, or nil if it succeeded.
func (v *View[T]) Err() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.lastErr
}

// Degraded reports whether the view runs without a change feed.
func (v *View[T]) Degraded() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.degraded
}

// Name returns the view name.
func (v *View[T]) Name() string { return v.name }

// Deactivate releases the change feed registration and stops the refresh
// loop. A pull still running is left to finish and its result is dropped.
// Calling Deactivate more than once, or on a view never activated, is a no-op.
func (v *View[T]) Deactivate() {
	v.mu.Lock()
	if !v.activated || v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	sub := v.sub
	v.sub = nil
	cancel := v.cancel
	v.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	cancel()
	metrics.DecActiveViews(v.name)

	select {
	case <-v.done:
	case <-time.After(v.opts.stopTimeout):
		v.opts.logger.Warn(context.Background(), "refresh loop did not stop in time")
	}
}
