package inflight_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/tassibets/internal/domain/inflight"
	"github.com/okian/tassibets/pkg/logger"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startRedis runs a throwaway Redis container and returns its address.
func startRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	var (
		container testcontainers.Container
		err       error
	)
	func() {
		// testcontainers panics when no Docker daemon is reachable
		defer func() {
			if r := recover(); r != nil {
				err = errors.New("docker unavailable")
			}
		}()
		container, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
			},
			Started: true,
		})
	}()
	if err != nil {
		t.Skipf("Skipping integration test: redis container unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	addr, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}
	return addr
}

func TestRedisGuard(t *testing.T) {
	addr := startRedis(t)
	_ = logger.Init()
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	Convey("Given two replicas sharing one Redis", t, func() {
		So(client.FlushDB(ctx).Err(), ShouldBeNil)
		a := inflight.NewRedisGuard(client)
		b := inflight.NewRedisGuard(client)

		Convey("When replica A acquires an origin", func() {
			So(a.Acquire(ctx, "client-1/jubilar"), ShouldBeTrue)

			Convey("Then neither replica can acquire it again", func() {
				So(a.Acquire(ctx, "client-1/jubilar"), ShouldBeFalse)
				So(b.Acquire(ctx, "client-1/jubilar"), ShouldBeFalse)
				So(a.Size(), ShouldEqual, 1)
				So(b.Size(), ShouldEqual, 0)
			})

			Convey("Then replica B cannot release A's slot", func() {
				b.Release(ctx, "client-1/jubilar")
				So(b.Acquire(ctx, "client-1/jubilar"), ShouldBeFalse)
			})

			Convey("Then after A releases, B may acquire", func() {
				a.Release(ctx, "client-1/jubilar")
				So(a.Size(), ShouldEqual, 0)
				So(b.Acquire(ctx, "client-1/jubilar"), ShouldBeTrue)
			})
		})

		Convey("When a slot outlives its TTL", func() {
			short := inflight.NewRedisGuard(client, inflight.WithSlotTTL(200*time.Millisecond))
			So(short.Acquire(ctx, "client-2/formar"), ShouldBeTrue)
			time.Sleep(400 * time.Millisecond)

			Convey("Then the origin is free again", func() {
				So(b.Acquire(ctx, "client-2/formar"), ShouldBeTrue)
			})
		})
	})
}

func TestRedisGuardUnavailable(t *testing.T) {
	_ = logger.Init()
	ctx := context.Background()

	Convey("Given a guard whose Redis is unreachable", t, func() {
		client := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 100 * time.Millisecond,
			MaxRetries:  -1,
		})
		defer client.Close()
		g := inflight.NewRedisGuard(client, inflight.WithKeyPrefix("test:"))

		Convey("Then submissions are let through", func() {
			So(g.Acquire(ctx, "client-1/jubilar"), ShouldBeTrue)
			So(g.Acquire(ctx, "client-1/jubilar"), ShouldBeTrue)
			g.Release(ctx, "client-1/jubilar")
			So(g.Size(), ShouldEqual, 0)
		})
	})
}
