package inflight

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/tassibets/pkg/logger"
	"github.com/okian/tassibets/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "tassibets:inflight:"
	defaultSlotTTL   = 30 * time.Second
)

// releaseScript deletes the slot only when this guard still owns it, so a slot
// that expired and was taken by another replica is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// redisGuard shares busy origins between replicas through SET NX slots.
// Slots expire after ttl so a crashed replica cannot pin an origin forever.
type redisGuard struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	token  string
	size   atomic.Int64
	logger logger.Logger
}

// RedisOption applies a configuration option to the Redis guard.
type RedisOption func(*redisGuard)

// WithKeyPrefix namespaces the slot keys.
func WithKeyPrefix(prefix string) RedisOption {
	return func(g *redisGuard) {
		if prefix != "" {
			g.prefix = prefix
		}
	}
}

// WithSlotTTL bounds how long a slot survives without a Release.
func WithSlotTTL(ttl time.Duration) RedisOption {
	return func(g *redisGuard) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithLogger sets the logger used to report Redis failures.
func WithLogger(l logger.Logger) RedisOption {
	return func(g *redisGuard) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewRedisGuard creates a guard backed by client.
//
// When Redis cannot be reached Acquire logs a warning and lets the submission
// through.
func NewRedisGuard(client redis.UniversalClient, opts ...RedisOption) Guard {
	g := &redisGuard{
		client: client,
		prefix: defaultKeyPrefix,
		ttl:    defaultSlotTTL,
		token:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logger.Named("inflight")
	}
	return g
}

func (g *redisGuard) Acquire(ctx context.Context, origin string) bool {
	ok, err := g.client.SetNX(ctx, g.prefix+origin, g.token, g.ttl).Result()
	if err != nil {
		metrics.RecordErrorByComponent("inflight", "redis")
		g.logger.Warn(ctx, "in-flight check skipped",
			logger.String("origin", origin),
			logger.Error(err),
		)
		return true
	}
	if ok {
		g.size.Add(1)
	}
	return ok
}

func (g *redisGuard) Release(ctx context.Context, origin string) {
	n, err := releaseScript.Run(ctx, g.client, []string{g.prefix + origin}, g.token).Int()
	if err != nil {
		metrics.RecordErrorByComponent("inflight", "redis")
		g.logger.Warn(ctx, "in-flight release failed",
			logger.String("origin", origin),
			logger.Error(err),
		)
		return
	}
	if n > 0 {
		g.size.Add(-1)
	}
}

// Size returns the number of slots this replica currently holds.
func (g *redisGuard) Size() int64 {
	return g.size.Load()
}
