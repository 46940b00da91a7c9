package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/okian/tassibets/internal/config"
	"github.com/okian/tassibets/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		ctx := context.Background()

		convey.Convey("When loading configuration from the environment", func() {
			_ = os.Setenv("TASSIBETS_ADDR", ":8080")
			_ = os.Setenv("TASSIBETS_MIN_WAGER_AMOUNT", "20")
			_ = os.Setenv("TASSIBETS_DEFAULT_WAGER_AMOUNT", "40")
			defer func() {
				_ = os.Unsetenv("TASSIBETS_ADDR")
				_ = os.Unsetenv("TASSIBETS_MIN_WAGER_AMOUNT")
				_ = os.Unsetenv("TASSIBETS_DEFAULT_WAGER_AMOUNT")
			}()

			convey.Convey("Then the service honours it", func() {
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")

				store, err := openStore(ctx, cfg, logger.Get())
				convey.So(err, convey.ShouldBeNil)
				guard, closeGuard, err := openGuard(ctx, cfg, logger.Get())
				convey.So(err, convey.ShouldBeNil)
				defer closeGuard()
				svc := newService(cfg, store, logger.Get(), guard)
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				defer svc.Stop()

				convey.So(svc.MinWagerAmount().String(), convey.ShouldEqual, "20")
				convey.So(svc.GetStats()["store"], convey.ShouldEqual, config.DriverMemory)
				convey.So(svc.GetStats()["inflightDriver"], convey.ShouldEqual, config.DriverMemory)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a fully wired mux", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		store, err := openStore(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		guard, _, err := openGuard(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		svc := newService(cfg, store, logger.Get(), guard)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()
		mux := newMux(ctx, cfg, svc, logger.Get())

		convey.Convey("Then every surface answers", func() {
			for path, want := range map[string]int{
				"/":              http.StatusOK,
				"/static/app.js": http.StatusOK,
				"/bets":          http.StatusOK,
				"/jackpots":      http.StatusOK,
				"/stats":         http.StatusOK,
				"/healthz":       http.StatusOK,
				"/openapi.yaml":  http.StatusOK,
				"/api-docs":      http.StatusOK,
				"/nope":          http.StatusNotFound,
			} {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, want)
			}
		})

		convey.Convey("And a bet placed through the API shows on the page", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/bets",
				strings.NewReader(`{"label":"Vai Enlouquecer","player_name":"Caio","amount":100}`))
			mux.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)

			w = httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "Caio")
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a configuration", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("When the context is cancelled", func() {
			cfg.Addr = "127.0.0.1:0"
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- run(ctx, cfg, logger.Get()) }()
			time.Sleep(50 * time.Millisecond)
			cancel()

			convey.Convey("Then run shuts down cleanly", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(5 * time.Second):
					convey.So("run did not return", convey.ShouldBeEmpty)
				}
			})
		})

		convey.Convey("When the address cannot be bound", func() {
			cfg.Addr = "256.0.0.1:99999"
			err := run(context.Background(), cfg, logger.Get())

			convey.Convey("Then run reports the listener failure", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "HTTP server failed")
			})
		})

		convey.Convey("When the redis in-flight driver cannot connect", func() {
			cfg.Addr = "127.0.0.1:0"
			cfg.InFlightDriver = config.DriverRedis
			cfg.RedisAddr = "127.0.0.1:1"
			err := run(context.Background(), cfg, logger.Get())

			convey.Convey("Then run fails before serving", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "failed to connect to redis")
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then a single update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("And the updater stops with its context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()
			cancel()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Error("metrics updater did not stop")
			}
		})
	})
}
