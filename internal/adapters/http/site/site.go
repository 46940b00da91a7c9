// Package site serves the betting landing page and its assets.
package site

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/okian/tassibets/internal/domain/model"
	"github.com/okian/tassibets/internal/domain/ranking"
	"github.com/okian/tassibets/pkg/logger"
	"github.com/shopspring/decimal"
)

// Error constants
var (
	ErrRender = errors.New("landing page render failed")
)

const (
	// ClientCookie identifies a browser for in-flight de-duplication.
	ClientCookie = "tassibets_client"

	clientCookieMaxAge = 365 * 24 * time.Hour
	pageReadTimeout    = 2 * time.Second
)

// Dependencies are the reads the landing page renders from.
type Dependencies interface {
	Board(ctx context.Context) (ranking.WagerBoard, error)
	HallOfFame(ctx context.Context) (ranking.HallOfFame, error)
	MinWagerAmount() decimal.Decimal
}

// Handler renders the landing page.
type Handler struct {
	deps          Dependencies
	page          *template.Template
	defaultAmount decimal.Decimal
	step          decimal.Decimal
	logger        logger.Logger
}

// Option configures the Handler.
type Option func(*Handler)

// WithDefaultAmount sets the amount prefilled on every bet card.
func WithDefaultAmount(d decimal.Decimal) Option {
	return func(h *Handler) {
		if d.IsPositive() {
			h.defaultAmount = d
		}
	}
}

// WithAmountStep sets the amount input step.
func WithAmountStep(d decimal.Decimal) Option {
	return func(h *Handler) {
		if d.IsPositive() {
			h.step = d
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler parses the embedded page template.
func NewHandler(deps Dependencies, opts ...Option) *Handler {
	h := &Handler{
		deps:          deps,
		page:          pageTemplate,
		defaultAmount: decimal.NewFromInt(100),
		step:          decimal.NewFromInt(10),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("site")
	}
	return h
}

// Register attaches the landing page and its static assets to mux.
func Register(_ context.Context, mux *http.ServeMux, h *Handler) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(FS())))
	mux.HandleFunc("/", h.HandleRoot)
}

type cardView struct {
	Category        string
	Title           string
	Icon            string
	Odds            string
	PotentialReturn string
}

type playerView struct {
	ranking.PlayerEntry
	Medal string
}

type pageData struct {
	Cards         []cardView
	MinAmount     string
	DefaultAmount string
	Step          string
	Board         ranking.WagerBoard
	BoardReady    bool
	Players       []playerView
	HallReady     bool
}

// HandleRoot handles GET / requests. It makes sure the browser carries a
// client id and renders whatever the store can return right now; the page
// then keeps itself current over /live.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		http.NotFound(w, r)
		return
	}
	ensureClientCookie(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), pageReadTimeout)
	defer cancel()

	data := pageData{
		MinAmount:     h.deps.MinWagerAmount().String(),
		DefaultAmount: h.defaultAmount.String(),
		Step:          h.step.String(),
	}
	for _, c := range model.Categories() {
		data.Cards = append(data.Cards, cardView{
			Category:        string(c),
			Title:           c.Title(),
			Icon:            c.Icon(),
			Odds:            c.Odds().StringFixed(1),
			PotentialReturn: h.defaultAmount.Mul(c.Odds()).StringFixed(2),
		})
	}

	if board, err := h.deps.Board(ctx); err != nil {
		h.logger.Warn(ctx, "board unavailable for landing page", logger.Error(err))
	} else {
		data.Board, data.BoardReady = board, true
	}
	if hall, err := h.deps.HallOfFame(ctx); err != nil {
		h.logger.Warn(ctx, "hall of fame unavailable for landing page", logger.Error(err))
	} else {
		data.HallReady = true
		for i, p := range hall.Players {
			data.Players = append(data.Players, playerView{PlayerEntry: p, Medal: ranking.Medal(i)})
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.page.Execute(w, data); err != nil {
		h.logger.Error(ctx, "render landing page", logger.Error(errors.Join(ErrRender, err)))
	}
}

func ensureClientCookie(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(ClientCookie); err == nil && c.Value != "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     ClientCookie,
		Value:    uuid.NewString(),
		Path:     "/",
		MaxAge:   int(clientCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
