package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/okian/tassibets/internal/domain/model"
)

// MemoryStore is an in-process append-only store. It enforces the same
// constraints as the Postgres schema and notifies subscribers synchronously
// after each insert.
type MemoryStore struct {
	mu       sync.RWMutex
	wagers   []model.Wager
	jackpots []model.Jackpot
	last     time.Time
	closed   bool

	hub *Hub
	now func() time.Time
}

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithClock sets the clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		hub: NewHub(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// stamp returns a creation time that never goes backwards. Caller holds mu.
func (s *MemoryStore) stamp() time.Time {
	t := s.now().UTC()
	if t.Before(s.last) {
		t = s.last
	}
	s.last = t
	return t
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: player_name is empty", ErrConstraint)
	}
	if utf8.RuneCountInString(name) > model.MaxPlayerNameLength {
		return fmt.Errorf("%w: player_name longer than %d", ErrConstraint, model.MaxPlayerNameLength)
	}
	return nil
}

func (s *MemoryStore) InsertWager(ctx context.Context, w model.Wager) (model.Wager, error) {
	if err := ctx.Err(); err != nil {
		return model.Wager{}, err
	}
	if err := checkName(w.PlayerName); err != nil {
		return model.Wager{}, err
	}
	if !w.Category.Valid() {
		return model.Wager{}, fmt.Errorf("%w: bet_type %q", ErrConstraint, w.Category)
	}
	if !w.Amount.IsPositive() {
		return model.Wager{}, fmt.Errorf("%w: amount must be positive", ErrConstraint)
	}
	if !model.AmountFitsScale(w.Amount) || !model.AmountInRange(w.Amount) {
		return model.Wager{}, fmt.Errorf("%w: amount %s does not fit numeric(12,2)", ErrConstraint, w.Amount)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return model.Wager{}, ErrClosed
	}
	w.ID = uuid.NewString()
	w.CreatedAt = s.stamp()
	s.wagers = append(s.wagers, w)
	s.mu.Unlock()

	s.hub.Notify(CollectionBets)
	return w, nil
}

func (s *MemoryStore) InsertJackpot(ctx context.Context, j model.Jackpot) (model.Jackpot, error) {
	if err := ctx.Err(); err != nil {
		return model.Jackpot{}, err
	}
	if err := checkName(j.PlayerName); err != nil {
		return model.Jackpot{}, err
	}
	if !j.Kind.Valid() {
		return model.Jackpot{}, fmt.Errorf("%w: jackpot_type %q", ErrConstraint, j.Kind)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return model.Jackpot{}, ErrClosed
	}
	j.ID = uuid.NewString()
	j.CreatedAt = s.stamp()
	s.jackpots = append(s.jackpots, j)
	s.mu.Unlock()

	s.hub.Notify(CollectionJackpots)
	return j, nil
}

func (s *MemoryStore) Wagers(ctx context.Context, order Order) ([]model.Wager, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	out := slices.Clone(s.wagers)
	if out == nil {
		out = []model.Wager{}
	}
	if order == OrderNewestFirst {
		slices.Reverse(out)
	}
	return out, nil
}

func (s *MemoryStore) Jackpots(ctx context.Context) ([]model.Jackpot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	out := slices.Clone(s.jackpots)
	if out == nil {
		out = []model.Jackpot{}
	}
	return out, nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, c Collection, onChange func()) (Subscription, error) {
	if !validCollection(c) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, c)
	}
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	return s.hub.Subscribe(c, onChange), nil
}

// Close makes every further call fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
