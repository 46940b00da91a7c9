package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	service "github.com/okian/tassibets/internal/app"
	"github.com/okian/tassibets/internal/domain/betting"
)

const (
	// ClientCookie identifies a browser across requests; the site sets it.
	ClientCookie = "tassibets_client"

	maxBodyBytes = 1 << 16
)

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	resp := errorResponse{Code: code, Message: msg}
	var verr *betting.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps a domain error onto the HTTP error taxonomy.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, betting.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", WrapKind(op, ErrValidation, err))
	case errors.Is(err, betting.ErrInFlight):
		writeError(w, http.StatusConflict, "in_flight", WrapKind(op, ErrInFlight, err))
	case errors.Is(err, betting.ErrStoreWrite):
		writeError(w, http.StatusBadGateway, "store_write_failed", WrapKind(op, ErrUpstream, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// clientID returns the browser cookie, falling back to the remote host.
func clientID(r *http.Request) string {
	if c, err := r.Cookie(ClientCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		host, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(host)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// origin scopes the in-flight guard to one client and one bet card.
func origin(r *http.Request, card string) string {
	return clientID(r) + "/" + strings.TrimSpace(card)
}
