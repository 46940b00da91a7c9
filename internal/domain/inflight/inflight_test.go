package inflight_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/okian/tassibets/internal/domain/inflight"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryGuard(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new guard", t, func() {
		g := inflight.NewInMemoryGuard()
		So(g.Size(), ShouldEqual, 0)

		Convey("When an origin acquires a slot", func() {
			ok := g.Acquire(ctx, "client-1/Vai Jubilar")

			Convey("Then it succeeds once", func() {
				So(ok, ShouldBeTrue)
				So(g.Size(), ShouldEqual, 1)
				So(g.Acquire(ctx, "client-1/Vai Jubilar"), ShouldBeFalse)
			})

			Convey("Then a different origin is unaffected", func() {
				So(g.Acquire(ctx, "client-2/Vai Jubilar"), ShouldBeTrue)
				So(g.Size(), ShouldEqual, 2)
			})

			Convey("And the slot is released", func() {
				g.Release(ctx, "client-1/Vai Jubilar")

				Convey("Then the origin may submit again", func() {
					So(g.Size(), ShouldEqual, 0)
					So(g.Acquire(ctx, "client-1/Vai Jubilar"), ShouldBeTrue)
				})
			})
		})

		Convey("When an idle origin is released", func() {
			g.Release(ctx, "nobody")

			Convey("Then nothing changes", func() {
				So(g.Size(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a guard with capacity 2", t, func() {
		g := inflight.NewInMemoryGuard(inflight.WithCapacity(2))
		So(g.Acquire(ctx, "a"), ShouldBeTrue)
		So(g.Acquire(ctx, "b"), ShouldBeTrue)

		Convey("Then a third origin is refused until a slot frees", func() {
			So(g.Acquire(ctx, "c"), ShouldBeFalse)
			g.Release(ctx, "a")
			So(g.Acquire(ctx, "c"), ShouldBeTrue)
		})
	})

	Convey("Given many goroutines racing for one origin", t, func() {
		g := inflight.NewInMemoryGuard(inflight.WithCapacity(0))
		var wins atomic.Int64
		var wg sync.WaitGroup
		for i := 0; i < 64; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if g.Acquire(ctx, "same") {
					wins.Add(1)
				}
				_ = g.Acquire(ctx, fmt.Sprintf("other-%d", i))
			}()
		}
		wg.Wait()

		Convey("Then exactly one wins", func() {
			So(wins.Load(), ShouldEqual, 1)
			So(g.Size(), ShouldEqual, 65)
		})
	})
}
