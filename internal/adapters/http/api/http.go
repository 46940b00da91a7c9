// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/tassibets/pkg/logger"
	"github.com/rs/cors"
)

const (
	defaultLiveKeepalive    = 25 * time.Second
	defaultLiveWriteTimeout = 10 * time.Second
)

// Dependencies required by HTTP handlers. Each handler only sees the slice
// of it that it needs.
type Dependencies interface {
	BetsDependencies
	JackpotsDependencies
	GamesDependencies
	LiveDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	betsHandler     *BetsHandler
	jackpotsHandler *JackpotsHandler
	gamesHandler    *GamesHandler
	liveHandler     *LiveHandler
	cors            *cors.Cors
}

type serverOptions struct {
	liveKeepalive    time.Duration
	liveWriteTimeout time.Duration
	logger           logger.Logger
	allowedOrigins   []string
}

// Option configures the Server.
type Option func(*serverOptions)

// WithLiveKeepalive sets the websocket ping interval.
func WithLiveKeepalive(d time.Duration) Option {
	return func(o *serverOptions) {
		if d > 0 {
			o.liveKeepalive = d
		}
	}
}

// WithLiveWriteTimeout bounds each websocket write.
func WithLiveWriteTimeout(d time.Duration) Option {
	return func(o *serverOptions) {
		if d > 0 {
			o.liveWriteTimeout = d
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithAllowedOrigins enables CORS on the JSON routes for origins. The
// client cookie travels with cross-origin calls so each browser keeps its
// own in-flight slot.
func WithAllowedOrigins(origins ...string) Option {
	return func(o *serverOptions) {
		o.allowedOrigins = append(o.allowedOrigins, origins...)
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{
		liveKeepalive:    defaultLiveKeepalive,
		liveWriteTimeout: defaultLiveWriteTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named("api")
	}

	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		betsHandler:     NewBetsHandler(deps),
		jackpotsHandler: NewJackpotsHandler(deps),
		gamesHandler:    NewGamesHandler(deps),
		liveHandler:     NewLiveHandler(deps, o.liveKeepalive, o.liveWriteTimeout, o.logger.Named("live")),
	}
	if len(o.allowedOrigins) > 0 {
		s.cors = cors.New(cors.Options{
			AllowedOrigins:   o.allowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		})
	}
	return s
}

// allowCORS wraps h with the CORS policy when one is configured.
func (s *Server) allowCORS(h http.HandlerFunc) http.HandlerFunc {
	if s.cors == nil {
		return h
	}
	return s.cors.Handler(h).ServeHTTP
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.allowCORS(s.statsHandler.HandleStats), "stats"))
	mux.HandleFunc("/bets", MetricsMiddleware(s.allowCORS(s.betsHandler.HandleBets), "bets"))
	mux.HandleFunc("/jackpots", MetricsMiddleware(s.allowCORS(s.jackpotsHandler.HandleJackpots), "jackpots"))
	mux.HandleFunc("/games/dice", MetricsMiddleware(s.allowCORS(s.gamesHandler.HandleDice), "games_dice"))
	mux.HandleFunc("/games/slots", MetricsMiddleware(s.allowCORS(s.gamesHandler.HandleSlots), "games_slots"))
	mux.HandleFunc("/live", MetricsMiddleware(s.liveHandler.HandleLive, "live"))
}
