package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okian/tassibets/internal/domain/model"
	"github.com/okian/tassibets/pkg/logger"
	"github.com/okian/tassibets/pkg/metrics"
	"github.com/shopspring/decimal"
)

// FeedChannel is the NOTIFY channel the schema triggers publish on. The
// payload is the table name.
const FeedChannel = "tassibets_changes"

const (
	defaultMinConns   = 1
	defaultFeedRetry  = 2 * time.Second
	listenerStopWait  = 5 * time.Second
	pgCheckViolation  = "23514"
	pgNotNullViolated = "23502"
	pgNumericRange    = "22003"
)

const (
	insertWagerSQL = `INSERT INTO bets (player_name, bet_type, amount)
VALUES ($1, $2, $3::numeric)
RETURNING id::text, player_name, bet_type, amount::text, created_at`

	insertJackpotSQL = `INSERT INTO jackpots (player_name, jackpot_type)
VALUES ($1, $2)
RETURNING id::text, player_name, jackpot_type, created_at`

	selectWagersSQL = `SELECT id::text, player_name, bet_type, amount::text, created_at
FROM bets ORDER BY created_at, seq`

	selectWagersDescSQL = `SELECT id::text, player_name, bet_type, amount::text, created_at
FROM bets ORDER BY created_at DESC, seq DESC`

	selectJackpotsSQL = `SELECT id::text, player_name, jackpot_type, created_at
FROM jackpots ORDER BY created_at, seq`
)

// NewPool creates a pgx connection pool and verifies it with a ping.
func NewPool(ctx context.Context, connString string, maxConns int, maxIdle, maxLife time.Duration) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if maxConns > math.MaxInt32 {
		maxConns = math.MaxInt32
	}
	if maxConns > 0 {
		config.MaxConns = int32(maxConns) //nolint:gosec // bounded above
	}
	config.MinConns = defaultMinConns
	if maxLife > 0 {
		config.MaxConnLifetime = maxLife
	}
	if maxIdle > 0 {
		config.MaxConnIdleTime = maxIdle
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// PostgresStore keeps records in Postgres and turns NOTIFY messages on
// FeedChannel into hub notifications. It owns the pool and closes it on Close.
type PostgresStore struct {
	pool   *pgxpool.Pool
	hub    *Hub
	logger logger.Logger
	retry  time.Duration

	listening atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// PostgresOption applies a configuration option to the PostgresStore.
type PostgresOption func(*PostgresStore)

// WithFeedRetry sets the fixed delay between listener reconnect attempts.
func WithFeedRetry(d time.Duration) PostgresOption {
	return func(s *PostgresStore) {
		if d > 0 {
			s.retry = d
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) PostgresOption {
	return func(s *PostgresStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewPostgresStore wraps pool and starts the change feed listener. The first
// LISTEN is attempted before returning; if it fails the store still serves
// reads and writes and the listener keeps retrying in the background.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{
		pool:  pool,
		hub:   NewHub(),
		retry: defaultFeedRetry,
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("postgres-store")
	}

	lctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	conn, err := s.listenConn(lctx)
	if err != nil {
		s.logger.Warn(ctx, "change feed unavailable, retrying in background", logger.Error(err))
	}
	go s.listen(lctx, conn)
	return s
}

// listenConn acquires a dedicated connection and issues LISTEN on it.
func (s *PostgresStore) listenConn(ctx context.Context) (*pgxpool.Conn, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listener connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{FeedChannel}.Sanitize()); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen: %w", err)
	}
	s.listening.Store(true)
	return conn, nil
}

func (s *PostgresStore) listen(ctx context.Context, conn *pgxpool.Conn) {
	defer close(s.done)

	for {
		if conn == nil {
			var err error
			conn, err = s.listenConn(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				metrics.RecordFeedReconnect()
				s.logger.Debug(ctx, "listener reconnect failed", logger.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(s.retry):
				}
				continue
			}
			// Anything written while the feed was down was never announced.
			for _, c := range Collections() {
				s.hub.Notify(c)
			}
		}

		err := s.waitNotifications(ctx, conn)
		s.listening.Store(false)
		s.release(conn)
		conn = nil
		if ctx.Err() != nil {
			return
		}
		metrics.RecordErrorByComponent("postgres-store", "feed_lost")
		s.logger.Warn(ctx, "change feed lost", logger.Error(err))
	}
}

func (s *PostgresStore) waitNotifications(ctx context.Context, conn *pgxpool.Conn) error {
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		c := Collection(n.Payload)
		if !validCollection(c) {
			s.logger.Debug(ctx, "ignoring notification", logger.String("payload", n.Payload))
			continue
		}
		metrics.RecordFeedNotification(string(c))
		s.hub.Notify(c)
	}
}

func (s *PostgresStore) release(conn *pgxpool.Conn) {
	if !conn.Conn().IsClosed() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_, _ = conn.Exec(ctx, "UNLISTEN *")
		cancel()
	}
	conn.Release()
}

// FeedAvailable reports whether the listener currently holds a LISTEN.
func (s *PostgresStore) FeedAvailable() bool { return s.listening.Load() }

func storeError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == pgCheckViolation || pgErr.Code == pgNotNullViolated || pgErr.Code == pgNumericRange) {
		return fmt.Errorf("%w: %s", ErrConstraint, pgErr.Message)
	}
	return err
}

func (s *PostgresStore) InsertWager(ctx context.Context, w model.Wager) (model.Wager, error) {
	var (
		out    model.Wager
		cat    string
		amount string
	)
	err := s.pool.QueryRow(ctx, insertWagerSQL, w.PlayerName, string(w.Category), w.Amount.String()).
		Scan(&out.ID, &out.PlayerName, &cat, &amount, &out.CreatedAt)
	if err != nil {
		return model.Wager{}, storeError(err)
	}
	out.Category = model.Category(cat)
	if out.Amount, err = decimal.NewFromString(amount); err != nil {
		return model.Wager{}, fmt.Errorf("decode amount %q: %w", amount, err)
	}
	return out, nil
}

func (s *PostgresStore) InsertJackpot(ctx context.Context, j model.Jackpot) (model.Jackpot, error) {
	var (
		out  model.Jackpot
		kind string
	)
	err := s.pool.QueryRow(ctx, insertJackpotSQL, j.PlayerName, string(j.Kind)).
		Scan(&out.ID, &out.PlayerName, &kind, &out.CreatedAt)
	if err != nil {
		return model.Jackpot{}, storeError(err)
	}
	out.Kind = model.JackpotKind(kind)
	return out, nil
}

func (s *PostgresStore) Wagers(ctx context.Context, order Order) ([]model.Wager, error) {
	query := selectWagersSQL
	if order == OrderNewestFirst {
		query = selectWagersDescSQL
	}
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Wager, 0)
	for rows.Next() {
		var (
			w      model.Wager
			cat    string
			amount string
		)
		if err := rows.Scan(&w.ID, &w.PlayerName, &cat, &amount, &w.CreatedAt); err != nil {
			return nil, err
		}
		w.Category = model.Category(cat)
		if w.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("decode amount %q: %w", amount, err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Jackpots(ctx context.Context) ([]model.Jackpot, error) {
	rows, err := s.pool.Query(ctx, selectJackpotsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Jackpot, 0)
	for rows.Next() {
		var (
			j    model.Jackpot
			kind string
		)
		if err := rows.Scan(&j.ID, &j.PlayerName, &kind, &j.CreatedAt); err != nil {
			return nil, err
		}
		j.Kind = model.JackpotKind(kind)
		out = append(out, j)
	}
	return out, rows.Err()
}

// Subscribe fails with ErrFeedUnavailable while the listener is down.
func (s *PostgresStore) Subscribe(ctx context.Context, c Collection, onChange func()) (Subscription, error) {
	if !validCollection(c) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, c)
	}
	if !s.listening.Load() {
		return nil, ErrFeedUnavailable
	}
	return s.hub.Subscribe(c, onChange), nil
}

// Close stops the listener and closes the pool.
func (s *PostgresStore) Close() error {
	s.cancel()
	select {
	case <-s.done:
	case <-time.After(listenerStopWait):
		s.logger.Warn(context.Background(), "listener did not stop in time")
	}
	s.pool.Close()
	return nil
}
