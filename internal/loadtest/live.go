package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/okian/tassibets/internal/domain/ranking"
)

type liveFrame struct {
	View string          `json:"view"`
	Data json.RawMessage `json:"data"`
}

// liveWatcher follows the board over /live.
type liveWatcher struct {
	conn *websocket.Conn
}

func dialLive(ctx context.Context, baseURL string) (*liveWatcher, error) {
	u := "ws" + strings.TrimPrefix(baseURL, "http") + "/live?views=board"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}
	return &liveWatcher{conn: conn}, nil
}

// waitFor reads board frames until one satisfies done or wait elapses.
func (l *liveWatcher) waitFor(wait time.Duration, done func(ranking.WagerBoard) bool) (ranking.WagerBoard, error) {
	deadline := time.Now().Add(wait)
	_ = l.conn.SetReadDeadline(deadline)
	var last ranking.WagerBoard
	for {
		var f liveFrame
		if err := l.conn.ReadJSON(&f); err != nil {
			return last, fmt.Errorf("live board did not converge: %w", err)
		}
		if f.View != "board" {
			continue
		}
		if err := json.Unmarshal(f.Data, &last); err != nil {
			return last, fmt.Errorf("decode live board: %w", err)
		}
		if done(last) {
			return last, nil
		}
	}
}

func (l *liveWatcher) Close() error {
	return l.conn.Close()
}
