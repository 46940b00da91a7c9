// Package inflight guards against a second submission from the same origin
// while the first one is still outstanding.
package inflight

import (
	"context"
	"sync"
	"sync/atomic"
)

// Guard tracks origins with an outstanding submission.
type Guard interface {
	// Acquire marks origin as busy. It returns false when origin already holds
	// a slot or the guard is full; the caller must then reject the submission.
	Acquire(ctx context.Context, origin string) bool

	// Release frees the slot held by origin. Releasing an idle origin is a no-op.
	Release(ctx context.Context, origin string)

	Size() int64
}

// inMemoryGuard implements Guard with a mutex-protected set.
// Capacity <= 0 means unbounded.
type inMemoryGuard struct {
	mu       sync.Mutex
	busy     map[string]struct{}
	capacity int
	size     atomic.Int64
}

// NewInMemoryGuard creates a guard with configuration options.
func NewInMemoryGuard(opts ...Option) Guard {
	g := &inMemoryGuard{
		capacity: 10000, // default capacity
	}

	for _, opt := range opts {
		opt(g)
	}

	g.busy = make(map[string]struct{})
	return g
}

func (g *inMemoryGuard) Acquire(ctx context.Context, origin string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.busy[origin]; exists {
		return false
	}
	// A full guard refuses rather than evicting: evicting would let the
	// evicted origin submit twice.
	if g.capacity > 0 && len(g.busy) >= g.capacity {
		return false
	}
	g.busy[origin] = struct{}{}
	g.size.Add(1)
	return true
}

func (g *inMemoryGuard) Release(ctx context.Context, origin string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.busy[origin]; exists {
		delete(g.busy, origin)
		g.size.Add(-1)
	}
}

// Size returns the number of origins currently holding a slot.
func (g *inMemoryGuard) Size() int64 {
	return g.size.Load()
}
