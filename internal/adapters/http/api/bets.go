package api

import (
	"context"
	"net/http"

	"github.com/okian/tassibets/internal/domain/betting"
	"github.com/okian/tassibets/internal/domain/ranking"
)

// BetsDependencies defines the wager operations used by BetsHandler.
type BetsDependencies interface {
	PlaceWager(ctx context.Context, origin string, req betting.WagerRequest) (betting.Receipt, error)
	Board(ctx context.Context) (ranking.WagerBoard, error)
}

// BetsHandler handles /bets requests.
type BetsHandler struct {
	deps BetsDependencies
}

// NewBetsHandler creates a new bets handler.
func NewBetsHandler(deps BetsDependencies) *BetsHandler {
	return &BetsHandler{deps: deps}
}

// HandleBets dispatches GET and POST /bets.
func (h *BetsHandler) HandleBets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.HandleGetBoard(w, r)
	case http.MethodPost:
		h.HandlePostBet(w, r)
	default:
		http.NotFound(w, r)
	}
}

// HandlePostBet handles POST /bets requests.
func (h *BetsHandler) HandlePostBet(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_bet"
	var req betting.WagerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	card := req.Label
	if card == "" {
		card = req.BetType
	}
	receipt, err := h.deps.PlaceWager(r.Context(), origin(r, card), req)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

// HandleGetBoard handles GET /bets requests with a one-shot pull.
func (h *BetsHandler) HandleGetBoard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_board"
	board, err := h.deps.Board(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "store_read_failed", WrapKind(op, ErrUnavailable, err))
		return
	}
	writeJSON(w, http.StatusOK, board)
}
