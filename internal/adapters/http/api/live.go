package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	service "github.com/okian/tassibets/internal/app"
	"github.com/okian/tassibets/internal/app/viewmodel"
	"github.com/okian/tassibets/internal/domain/ranking"
	"github.com/okian/tassibets/pkg/logger"
	"github.com/okian/tassibets/pkg/metrics"
)

const liveReadLimit = 512

// LiveDependencies builds the per-connection views streamed by LiveHandler.
type LiveDependencies interface {
	NewBoardView(opts ...viewmodel.Option[ranking.WagerBoard]) *viewmodel.View[ranking.WagerBoard]
	NewHallOfFameView(opts ...viewmodel.Option[ranking.HallOfFame]) *viewmodel.View[ranking.HallOfFame]
}

// liveMessage is one frame on the /live socket.
type liveMessage struct {
	View     string `json:"view"`
	Degraded bool   `json:"degraded"`
	Data     any    `json:"data"`
}

// liveStream adapts one typed view to the untyped writer loop.
type liveStream struct {
	name       string
	dirty      atomic.Bool
	activate   func(ctx context.Context) error
	deactivate func()
	message    func() (liveMessage, bool)
}

func newLiveStream[T any](wake chan struct{}, build func(opts ...viewmodel.Option[T]) *viewmodel.View[T]) *liveStream {
	s := &liveStream{}
	v := build(viewmodel.WithOnUpdate[T](func(T) {
		s.dirty.Store(true)
		select {
		case wake <- struct{}{}:
		default:
		}
	}))
	s.name = v.Name()
	s.activate = v.Activate
	s.deactivate = v.Deactivate
	s.message = func() (liveMessage, bool) {
		snap, ok := v.Snapshot()
		return liveMessage{View: s.name, Degraded: v.Degraded(), Data: snap}, ok
	}
	return s
}

// LiveHandler streams board and hall of fame snapshots over a websocket. Each
// connection owns its own views; they are torn down when the socket closes.
type LiveHandler struct {
	deps         LiveDependencies
	upgrader     websocket.Upgrader
	keepalive    time.Duration
	writeTimeout time.Duration
	logger       logger.Logger
}

// NewLiveHandler creates a new live handler.
func NewLiveHandler(deps LiveDependencies, keepalive, writeTimeout time.Duration, l logger.Logger) *LiveHandler {
	return &LiveHandler{
		deps:         deps,
		keepalive:    keepalive,
		writeTimeout: writeTimeout,
		logger:       l,
	}
}

// parseViews reads ?views=board,hall. An empty value selects every view.
func parseViews(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{service.ViewBoard, service.ViewHall}, nil
	}
	seen := make(map[string]bool, 2)
	var views []string
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name != service.ViewBoard && name != service.ViewHall {
			return nil, WrapKind("api.live", ErrUnknownView, fmt.Errorf("unknown view %q", name))
		}
		if !seen[name] {
			seen[name] = true
			views = append(views, name)
		}
	}
	return views, nil
}

// HandleLive handles GET /live websocket upgrades.
func (h *LiveHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	views, err := parseViews(r.URL.Query().Get("views"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	metrics.IncLiveConnections()
	defer metrics.DecLiveConnections()
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	wake := make(chan struct{}, 1)
	streams := make([]*liveStream, 0, len(views))
	for _, name := range views {
		switch name {
		case service.ViewBoard:
			streams = append(streams, newLiveStream(wake, h.deps.NewBoardView))
		case service.ViewHall:
			streams = append(streams, newLiveStream(wake, h.deps.NewHallOfFameView))
		}
	}
	for _, s := range streams {
		if err := s.activate(ctx); err != nil {
			h.logger.Warn(ctx, "live view activation failed", logger.String("view", s.name), logger.Error(err))
		}
		defer s.deactivate()
	}

	go h.readLoop(conn, cancel)
	h.writeLoop(ctx, conn, wake, streams)
}

// readLoop drains client frames so pongs and close frames are processed.
func (h *LiveHandler) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	pongWait := h.keepalive + h.writeTimeout
	conn.SetReadLimit(liveReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop is the only writer on conn.
func (h *LiveHandler) writeLoop(ctx context.Context, conn *websocket.Conn, wake <-chan struct{}, streams []*liveStream) {
	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(h.writeTimeout))
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-wake:
			for _, s := range streams {
				if !s.dirty.Swap(false) {
					continue
				}
				msg, ok := s.message()
				if !ok {
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
				if err := conn.WriteJSON(msg); err != nil {
					h.logger.Debug(ctx, "live write failed", logger.String("view", s.name), logger.Error(err))
					return
				}
			}
		}
	}
}
