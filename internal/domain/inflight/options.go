package inflight

// Option applies a configuration option to the in-memory guard.
type Option func(*inMemoryGuard)

// WithCapacity sets the maximum number of concurrently busy origins.
// If capacity <= 0 the guard is unbounded.
func WithCapacity(capacity int) Option {
	return func(g *inMemoryGuard) {
		g.capacity = capacity
	}
}
