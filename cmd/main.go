package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/tassibets/internal/adapters/http/api"
	"github.com/okian/tassibets/internal/adapters/http/site"
	"github.com/okian/tassibets/internal/adapters/http/swagger"
	"github.com/okian/tassibets/internal/adapters/repository"
	app "github.com/okian/tassibets/internal/app"
	"github.com/okian/tassibets/internal/config"
	"github.com/okian/tassibets/internal/domain/inflight"
	"github.com/okian/tassibets/pkg/logger"
	"github.com/okian/tassibets/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	redisDialTimeout          = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (.env -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, loggerInstance); err != nil {
		loggerInstance.Error(ctx, "tassibets stopped with error", logger.Error(err))
		stop()
		os.Exit(1) //nolint:gocritic // stop called above
	}
}

// run starts the service and serves HTTP until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	guardOpt, closeGuard, err := openGuard(ctx, cfg, log)
	if err != nil {
		_ = store.Close()
		return err
	}
	defer closeGuard()

	svc := newService(cfg, store, log, guardOpt)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// openStore builds the configured event store. Migrations run before the
// Postgres store starts listening for changes.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMaxConnIdle(), cfg.DBMaxConnLife())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if cfg.RunMigrations {
			if err := repository.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("failed to migrate: %w", err)
			}
		}
		return repository.NewPostgresStore(ctx, pool,
			repository.WithFeedRetry(cfg.FeedRetry()),
			repository.WithLogger(log.Named("store")),
		), nil
	default:
		return repository.NewMemoryStore(), nil
	}
}

// openGuard returns the service option selecting the in-flight guard and a
// func that releases its resources.
func openGuard(ctx context.Context, cfg *config.Config, log logger.Logger) (app.Option, func(), error) {
	if cfg.InFlightDriver != config.DriverRedis {
		return app.WithInFlightCapacity(cfg.InFlightCapacity), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		DialTimeout: redisDialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	guard := inflight.NewRedisGuard(client,
		inflight.WithSlotTTL(cfg.InFlightTTL()),
		inflight.WithLogger(log.Named("inflight")),
	)
	return app.WithGuard(app.DriverRedis, guard), func() { _ = client.Close() }, nil
}

func newService(cfg *config.Config, store repository.Store, log logger.Logger, guard app.Option) *app.Service {
	return app.New(
		guard,
		app.WithLogger(log),
		app.WithStore(cfg.StoreDriver, store),
		app.WithMinWagerAmount(decimal.NewFromInt(int64(cfg.MinWagerAmount))),
		app.WithPullTimeout(cfg.PullTimeout()),
	)
}

// newMux registers every route on a fresh mux.
func newMux(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc,
		api.WithLiveKeepalive(cfg.LiveKeepalive()),
		api.WithLiveWriteTimeout(cfg.LiveWriteTimeout()),
		api.WithLogger(log.Named("api")),
		api.WithAllowedOrigins(cfg.AllowedOrigins()...),
	)
	apiServer.Register(ctx, mux)

	site.Register(ctx, mux, site.NewHandler(svc,
		site.WithDefaultAmount(decimal.NewFromInt(int64(cfg.DefaultWagerAmount))),
		site.WithAmountStep(decimal.NewFromInt(int64(cfg.WagerStep))),
		site.WithLogger(log.Named("site")),
	))
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
