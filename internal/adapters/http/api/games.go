package api

import (
	"context"
	"net/http"

	service "github.com/okian/tassibets/internal/app"
	"github.com/okian/tassibets/internal/domain/games"
)

// GamesDependencies defines the mini-game operations used by GamesHandler.
type GamesDependencies interface {
	RollDice(ctx context.Context) games.DiceRoll
	SpinSlots(ctx context.Context, player string) (service.SpinResult, error)
}

// GamesHandler handles /games/* requests.
type GamesHandler struct {
	deps GamesDependencies
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps GamesDependencies) *GamesHandler {
	return &GamesHandler{deps: deps}
}

type spinRequest struct {
	PlayerName string `json:"player_name"`
}

// HandleDice handles POST /games/dice requests.
func (h *GamesHandler) HandleDice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.RollDice(r.Context()))
}

// HandleSlots handles POST /games/slots requests. A spin that hits a jackpot
// but fails to record it is reported as a store write failure.
func (h *GamesHandler) HandleSlots(w http.ResponseWriter, r *http.Request) {
	const op = "api.spin_slots"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req spinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.SpinSlots(r.Context(), req.PlayerName)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
