// Package betting validates wager and jackpot submissions and appends them to
// the event store.
package betting

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/okian/tassibets/internal/domain/inflight"
	"github.com/okian/tassibets/internal/domain/model"
	"github.com/okian/tassibets/pkg/logger"
	"github.com/okian/tassibets/pkg/metrics"
	"github.com/shopspring/decimal"
)

// Defaults mirrored by the bet card amount input.
const (
	DefaultMinAmount = 10
	DefaultAmount    = 100
	AmountStep       = 10
)

// Rejection reasons reported to metrics.
const (
	reasonValidation = "validation"
	reasonInFlight   = "in_flight"
	reasonStore      = "store"
)

// Store is the append side of the event store.
type Store interface {
	InsertWager(ctx context.Context, w model.Wager) (model.Wager, error)
	InsertJackpot(ctx context.Context, j model.Jackpot) (model.Jackpot, error)
}

// WagerRequest is a bet as submitted from a bet card. Either Label (the card
// title) or BetType (the stored key) selects the category; BetType wins when
// both are set.
type WagerRequest struct {
	Label      string          `json:"label,omitempty"`
	BetType    string          `json:"bet_type,omitempty"`
	PlayerName string          `json:"player_name"`
	Amount     decimal.Decimal `json:"amount"`
}

// Receipt is returned for an accepted wager.
type Receipt struct {
	Wager           model.Wager     `json:"bet"`
	PotentialReturn decimal.Decimal `json:"potential_return"`
}

// JackpotRequest is a jackpot win to record.
type JackpotRequest struct {
	PlayerName string `json:"player_name"`
	Kind       string `json:"jackpot_type"`
}

// Service places wagers and records jackpots.
type Service struct {
	store     Store
	guard     inflight.Guard
	validate  *validator.Validate
	minAmount decimal.Decimal
	logger    logger.Logger
}

// NewService creates a submission service writing to store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		minAmount: decimal.NewFromInt(DefaultMinAmount),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.guard == nil {
		s.guard = inflight.NewInMemoryGuard()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("betting")
	}
	s.validate = newValidator(s.minAmount)
	return s
}

// PlaceWager validates req and appends exactly one wager record.
//
// origin identifies the submitting control (client plus card). While a call
// for an origin is outstanding, further calls for it fail with ErrInFlight.
// An empty origin disables the guard. Nothing is retried on store failure.
func (s *Service) PlaceWager(ctx context.Context, origin string, req WagerRequest) (Receipt, error) {
	key := strings.TrimSpace(req.BetType)
	if key == "" && strings.TrimSpace(req.Label) != "" {
		if c, err := model.ParseLabel(req.Label); err == nil {
			key = string(c)
		} else {
			key = strings.TrimSpace(req.Label)
		}
	}

	form := wagerForm{
		PlayerName: strings.TrimSpace(req.PlayerName),
		Category:   key,
		Amount:     req.Amount.String(),
	}
	if err := s.validate.Struct(form); err != nil {
		metrics.RecordWagerRejected(reasonValidation)
		return Receipt{}, formatValidationError(err, s.minAmount)
	}

	if origin != "" {
		if !s.guard.Acquire(ctx, origin) {
			metrics.RecordWagerRejected(reasonInFlight)
			s.logger.Debug(ctx, "duplicate submission rejected", logger.String("origin", origin))
			return Receipt{}, ErrInFlight
		}
		defer s.guard.Release(ctx, origin)
	}

	stored, err := s.store.InsertWager(ctx, model.Wager{
		PlayerName: form.PlayerName,
		Category:   model.Category(form.Category),
		Amount:     req.Amount,
	})
	if err != nil {
		metrics.RecordWagerRejected(reasonStore)
		s.logger.Warn(ctx, "wager insert failed",
			logger.String("bet_type", form.Category),
			logger.Error(err),
		)
		return Receipt{}, fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}

	amount, _ := stored.Amount.Float64()
	metrics.RecordWagerPlaced(string(stored.Category), amount)
	s.logger.Info(ctx, "wager placed",
		logger.String("id", stored.ID),
		logger.String("bet_type", string(stored.Category)),
		logger.String("amount", stored.Amount.String()),
	)
	return Receipt{Wager: stored, PotentialReturn: stored.PotentialReturn()}, nil
}

// RecordJackpot validates req and appends exactly one jackpot record.
// Only recognized kinds are accepted on write.
func (s *Service) RecordJackpot(ctx context.Context, req JackpotRequest) (model.Jackpot, error) {
	form := jackpotForm{
		PlayerName: strings.TrimSpace(req.PlayerName),
		Kind:       strings.TrimSpace(req.Kind),
	}
	if err := s.validate.Struct(form); err != nil {
		metrics.RecordJackpotRejected(reasonValidation)
		return model.Jackpot{}, formatValidationError(err, s.minAmount)
	}

	stored, err := s.store.InsertJackpot(ctx, model.Jackpot{
		PlayerName: form.PlayerName,
		Kind:       model.JackpotKind(form.Kind),
	})
	if err != nil {
		metrics.RecordJackpotRejected(reasonStore)
		s.logger.Warn(ctx, "jackpot insert failed", logger.Error(err))
		return model.Jackpot{}, fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}

	metrics.RecordJackpotRecorded(string(stored.Kind))
	s.logger.Info(ctx, "jackpot recorded",
		logger.String("id", stored.ID),
		logger.String("player", stored.PlayerName),
		logger.String("jackpot_type", string(stored.Kind)),
	)
	return stored, nil
}
