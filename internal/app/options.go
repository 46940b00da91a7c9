package service

import (
	"time"

	"github.com/okian/tassibets/internal/adapters/repository"
	"github.com/okian/tassibets/internal/domain/games"
	"github.com/okian/tassibets/internal/domain/inflight"
	"github.com/okian/tassibets/pkg/logger"
	"github.com/shopspring/decimal"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore sets the event store and the driver name reported in stats.
// The service takes ownership and closes it on Stop.
func WithStore(driver string, store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.driver = driver
		}
	}
}

// WithGuard replaces the in-memory in-flight guard, e.g. with one shared
// between replicas. The capacity option is ignored when a guard is set.
func WithGuard(driver string, g inflight.Guard) Option {
	return func(s *Service) {
		if g != nil {
			s.guard = g
			s.guardDriver = driver
		}
	}
}

// WithInFlightCapacity bounds the number of origins with an outstanding submission.
func WithInFlightCapacity(capacity int) Option {
	return func(s *Service) {
		s.inflightCapacity = capacity
	}
}

// WithMinWagerAmount sets the smallest accepted wager.
func WithMinWagerAmount(amount decimal.Decimal) Option {
	return func(s *Service) {
		if amount.IsPositive() {
			s.minWagerAmount = amount
		}
	}
}

// WithPullTimeout bounds each full pull made by a live view.
func WithPullTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pullTimeout = d
		}
	}
}

// WithRandSource sets the mini-game random source.
func WithRandSource(src games.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.rand = src
		}
	}
}
