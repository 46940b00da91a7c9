// Package service wires the event store, the submission service and the live
// views into the operations required by the HTTP API.
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/okian/tassibets/internal/adapters/repository"
	"github.com/okian/tassibets/internal/app/viewmodel"
	"github.com/okian/tassibets/internal/domain/betting"
	"github.com/okian/tassibets/internal/domain/games"
	"github.com/okian/tassibets/internal/domain/inflight"
	"github.com/okian/tassibets/internal/domain/model"
	"github.com/okian/tassibets/internal/domain/ranking"
	"github.com/okian/tassibets/pkg/logger"
	"github.com/okian/tassibets/pkg/metrics"
	"github.com/shopspring/decimal"
)

// View names, also used as metric labels and live stream keys.
const (
	ViewBoard = "board"
	ViewHall  = "hall"
)

// Store and in-flight guard drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Service implements the API dependencies for the betting site.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	guard   inflight.Guard
	betting *betting.Service
	rand    games.Source

	// Configuration
	driver           string
	guardDriver      string
	inflightCapacity int
	minWagerAmount   decimal.Decimal
	pullTimeout      time.Duration

	// State
	started   bool
	startedAt time.Time

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		inflightCapacity: 10000,
		minWagerAmount:   decimal.NewFromInt(betting.DefaultMinAmount),
		pullTimeout:      5 * time.Second,
		rand:             games.DefaultSource(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components. Without a configured store it
// falls back to an in-memory one.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting tassibets service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.driver = DriverMemory
	}
	s.store = repository.Instrument(s.store)

	if s.guard == nil {
		s.guard = inflight.NewInMemoryGuard(inflight.WithCapacity(s.inflightCapacity))
		s.guardDriver = DriverMemory
	}
	s.betting = betting.NewService(s.store,
		betting.WithGuard(s.guard),
		betting.WithMinAmount(s.minWagerAmount),
		betting.WithLogger(s.logger.Named("betting")),
	)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "tassibets service started",
		logger.String("store", s.driver),
		logger.String("inflight", s.guardDriver),
		logger.Int("inflightCapacity", s.inflightCapacity),
		logger.String("minWagerAmount", s.minWagerAmount.String()),
	)
	return nil
}

// Stop closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping tassibets service...")
	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "error closing store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "tassibets service stopped")
}

func (s *Service) components() (repository.Store, *betting.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.store, s.betting, nil
}

// PlaceWager submits a wager on behalf of origin.
func (s *Service) PlaceWager(ctx context.Context, origin string, req betting.WagerRequest) (betting.Receipt, error) {
	_, b, err := s.components()
	if err != nil {
		return betting.Receipt{}, err
	}
	return b.PlaceWager(ctx, origin, req)
}

// RecordJackpot records a jackpot win.
func (s *Service) RecordJackpot(ctx context.Context, req betting.JackpotRequest) (model.Jackpot, error) {
	_, b, err := s.components()
	if err != nil {
		return model.Jackpot{}, err
	}
	return b.RecordJackpot(ctx, req)
}

func (s *Service) pullBoard(ctx context.Context) (ranking.WagerBoard, error) {
	store, _, err := s.components()
	if err != nil {
		return ranking.WagerBoard{}, err
	}
	wagers, err := store.Wagers(ctx, repository.OrderOldestFirst)
	if err != nil {
		return ranking.WagerBoard{}, err
	}
	return ranking.AggregateWagers(wagers), nil
}

func (s *Service) pullHall(ctx context.Context) (ranking.HallOfFame, error) {
	store, _, err := s.components()
	if err != nil {
		return ranking.HallOfFame{}, err
	}
	jackpots, err := store.Jackpots(ctx)
	if err != nil {
		return ranking.HallOfFame{}, err
	}
	return ranking.AggregateJackpots(jackpots), nil
}

// Board pulls every wager once and folds it.
func (s *Service) Board(ctx context.Context) (ranking.WagerBoard, error) {
	return s.pullBoard(ctx)
}

// HallOfFame pulls every jackpot once and folds it.
func (s *Service) HallOfFame(ctx context.Context) (ranking.HallOfFame, error) {
	return s.pullHall(ctx)
}

// feed is resolved at subscribe time so views see the started store.
type feed struct{ s *Service }

func (f feed) Subscribe(ctx context.Context, c repository.Collection, onChange func()) (repository.Subscription, error) {
	store, _, err := f.s.components()
	if err != nil {
		return nil, err
	}
	return store.Subscribe(ctx, c, onChange)
}

// NewBoardView returns an inactive live board view. The caller owns it and
// must Deactivate it.
func (s *Service) NewBoardView(opts ...viewmodel.Option[ranking.WagerBoard]) *viewmodel.View[ranking.WagerBoard] {
	opts = append([]viewmodel.Option[ranking.WagerBoard]{
		viewmodel.WithPullTimeout[ranking.WagerBoard](s.pullTimeout),
		viewmodel.WithLogger[ranking.WagerBoard](s.namedLogger("view")),
	}, opts...)
	return viewmodel.New(ViewBoard, repository.CollectionBets, s.pullBoard, feed{s}, opts...)
}

// NewHallOfFameView returns an inactive live hall of fame view. The caller
// owns it and must Deactivate it.
func (s *Service) NewHallOfFameView(opts ...viewmodel.Option[ranking.HallOfFame]) *viewmodel.View[ranking.HallOfFame] {
	opts = append([]viewmodel.Option[ranking.HallOfFame]{
		viewmodel.WithPullTimeout[ranking.HallOfFame](s.pullTimeout),
		viewmodel.WithLogger[ranking.HallOfFame](s.namedLogger("view")),
	}, opts...)
	return viewmodel.New(ViewHall, repository.CollectionJackpots, s.pullHall, feed{s}, opts...)
}

func (s *Service) namedLogger(name string) logger.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.logger == nil {
		return logger.Get().Named(name)
	}
	return s.logger.Named(name)
}

// RollDice rolls the dice mini-game.
func (s *Service) RollDice(ctx context.Context) games.DiceRoll {
	r := games.RollDice(s.rand)
	metrics.RecordGameRound(games.GameDice, string(r.Outcome))
	return r
}

// SpinResult is a slot spin plus the jackpot it recorded, if any.
type SpinResult struct {
	games.SpinResult
	Recorded *model.Jackpot `json:"recorded,omitempty"`
}

// SpinSlots spins the slot machine for player. A top-tier result is recorded
// as a jackpot; if that write fails the spin is still returned with the error.
func (s *Service) SpinSlots(ctx context.Context, player string) (SpinResult, error) {
	if _, _, err := s.components(); err != nil {
		return SpinResult{}, err
	}
	if strings.TrimSpace(player) == "" {
		return SpinResult{}, &betting.ValidationError{Fields: map[string]string{
			"player_name": "This field is required",
		}}
	}

	res := SpinResult{SpinResult: games.Spin(s.rand)}
	metrics.RecordGameRound(games.GameSlots, res.Outcome)
	if res.Jackpot == "" {
		return res, nil
	}

	j, err := s.RecordJackpot(ctx, betting.JackpotRequest{PlayerName: player, Kind: string(res.Jackpot)})
	if err != nil {
		return res, err
	}
	res.Recorded = &j
	return res, nil
}

// MinWagerAmount returns the smallest accepted wager.
func (s *Service) MinWagerAmount() decimal.Decimal {
	return s.minWagerAmount
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"store":            s.driver,
		"inflightDriver":   s.guardDriver,
		"inflightCapacity": s.inflightCapacity,
		"minWagerAmount":   s.minWagerAmount.String(),
	}

	if s.started {
		stats["inflight"] = s.guard.Size()
		if f, ok := s.store.(repository.FeedReporter); ok {
			stats["feedAvailable"] = f.FeedAvailable()
		}
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	}

	return stats
}
