package repository

import (
	"sync"
)

// Hub fans change notifications out to the callbacks registered per collection.
type Hub struct {
	mu   sync.RWMutex
	next uint64
	subs map[Collection]map[uint64]func()
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[Collection]map[uint64]func())}
}

// Subscribe registers fn for collection c.
func (h *Hub) Subscribe(c Collection, fn func()) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.next++
	id := h.next
	if h.subs[c] == nil {
		h.subs[c] = make(map[uint64]func())
	}
	h.subs[c][id] = fn

	return &hubSubscription{hub: h, collection: c, id: id}
}

// Notify calls every callback registered for c. Callbacks run outside the
// lock on the notifying goroutine.
func (h *Hub) Notify(c Collection) {
	h.mu.RLock()
	fns := make([]func(), 0, len(h.subs[c]))
	for _, fn := range h.subs[c] {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// Len returns the number of registrations for c.
func (h *Hub) Len(c Collection) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[c])
}

func (h *Hub) remove(c Collection, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[c], id)
}

type hubSubscription struct {
	hub        *Hub
	collection Collection
	id         uint64
	once       sync.Once
}

func (s *hubSubscription) Unsubscribe() {
	s.once.Do(func() { s.hub.remove(s.collection, s.id) })
}

func validCollection(c Collection) bool {
	return c == CollectionBets || c == CollectionJackpots
}
