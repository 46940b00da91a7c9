package betting

import (
	"github.com/okian/tassibets/internal/domain/inflight"
	"github.com/okian/tassibets/pkg/logger"
	"github.com/shopspring/decimal"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithGuard sets the per-origin in-flight guard.
func WithGuard(g inflight.Guard) Option {
	return func(s *Service) {
		if g != nil {
			s.guard = g
		}
	}
}

// WithMinAmount sets the smallest accepted wager. Non-positive values are ignored.
func WithMinAmount(min decimal.Decimal) Option {
	return func(s *Service) {
		if min.IsPositive() {
			s.minAmount = min
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
