package api

import (
	"context"
	"net/http"

	"github.com/okian/tassibets/internal/domain/betting"
	"github.com/okian/tassibets/internal/domain/model"
	"github.com/okian/tassibets/internal/domain/ranking"
)

// JackpotsDependencies defines the jackpot operations used by JackpotsHandler.
type JackpotsDependencies interface {
	RecordJackpot(ctx context.Context, req betting.JackpotRequest) (model.Jackpot, error)
	HallOfFame(ctx context.Context) (ranking.HallOfFame, error)
}

// JackpotsHandler handles /jackpots requests.
type JackpotsHandler struct {
	deps JackpotsDependencies
}

// NewJackpotsHandler creates a new jackpots handler.
func NewJackpotsHandler(deps JackpotsDependencies) *JackpotsHandler {
	return &JackpotsHandler{deps: deps}
}

// HandleJackpots dispatches GET and POST /jackpots.
func (h *JackpotsHandler) HandleJackpots(w http.ResponseWriter, r *http.Request) {
	const op = "api.jackpots"
	switch r.Method {
	case http.MethodGet:
		hall, err := h.deps.HallOfFame(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "store_read_failed", WrapKind(op, ErrUnavailable, err))
			return
		}
		writeJSON(w, http.StatusOK, hall)
	case http.MethodPost:
		var req betting.JackpotRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		j, err := h.deps.RecordJackpot(r.Context(), req)
		if err != nil {
			writeDomainError(w, op, err)
			return
		}
		writeJSON(w, http.StatusCreated, j)
	default:
		http.NotFound(w, r)
	}
}
