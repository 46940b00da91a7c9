package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/tassibets/internal/domain/ranking"
	"github.com/okian/tassibets/pkg/logger"
	"github.com/shopspring/decimal"
)

const clientCookie = "tassibets_client"

// submit outcomes
const (
	resultCreated  = "created"
	resultConflict = "conflict"
	resultRejected = "rejected"
	resultFailed   = "failed"
)

// HTTPClient wraps http.Client for the service API.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path, clientID string, body any) (*http.Response, error) {
	var rd io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if clientID != "" {
		req.AddCookie(&http.Cookie{Name: clientCookie, Value: clientID})
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}

// Board fetches the current wager board.
func (c *HTTPClient) Board(ctx context.Context) (ranking.WagerBoard, error) {
	var b ranking.WagerBoard
	return b, c.getJSON(ctx, "/bets", &b)
}

// HallOfFame fetches the current hall of fame.
func (c *HTTPClient) HallOfFame(ctx context.Context) (ranking.HallOfFame, error) {
	var h ranking.HallOfFame
	return h, c.getJSON(ctx, "/jackpots", &h)
}

func classify(status int) string {
	switch {
	case status == http.StatusCreated:
		return resultCreated
	case status == http.StatusConflict:
		return resultConflict
	case status == http.StatusBadRequest:
		return resultRejected
	default:
		return resultFailed
	}
}

func (c *HTTPClient) post(ctx context.Context, path, clientID string, body any) string {
	resp, err := c.do(ctx, http.MethodPost, path, clientID, body)
	if err != nil {
		return resultFailed
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return classify(resp.StatusCode)
}

// pool runs fn for every index in [0, n) on workers goroutines. Each worker
// submits under its own client id so its requests never overlap in flight.
func pool(ctx context.Context, n, workers int, fn func(ctx context.Context, clientID string, i int)) {
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(clientID string) {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				fn(ctx, clientID, i)
			}
		}("loadtest-" + strconv.Itoa(w))
	}

	func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()
}

// submitBets posts bets concurrently and fills the bet counters in stats.
func submitBets(ctx context.Context, cfg *Config, c *HTTPClient, bets []Bet, stats *Stats) {
	logger.Get().Info(ctx, "submitting bets", logger.Int("bets", len(bets)), logger.Int("workers", cfg.Workers))

	var created, conflict, rejected, failed, done int64
	var mu sync.Mutex
	amount := decimal.Zero

	pool(ctx, len(bets), cfg.Workers, func(ctx context.Context, clientID string, i int) {
		switch c.post(ctx, "/bets", clientID, bets[i]) {
		case resultCreated:
			atomic.AddInt64(&created, 1)
			mu.Lock()
			amount = amount.Add(bets[i].Amount)
			mu.Unlock()
		case resultConflict:
			atomic.AddInt64(&conflict, 1)
		case resultRejected:
			atomic.AddInt64(&rejected, 1)
		default:
			atomic.AddInt64(&failed, 1)
		}
		if n := atomic.AddInt64(&done, 1); cfg.Verbose && n%1000 == 0 {
			logger.Get().Debug(ctx, "bets progress", logger.Int64("submitted", n), logger.Int("total", len(bets)))
		}
	})

	stats.BetsCreated = int(created)
	stats.BetsConflict = int(conflict)
	stats.BetsRejected = int(rejected)
	stats.BetsFailed = int(failed)
	stats.AmountCreated = amount
}

// submitJackpots posts jackpots concurrently and fills the jackpot counters.
func submitJackpots(ctx context.Context, cfg *Config, c *HTTPClient, jackpots []Jackpot, stats *Stats) {
	logger.Get().Info(ctx, "submitting jackpots", logger.Int("jackpots", len(jackpots)))

	var created, failed int64
	pool(ctx, len(jackpots), cfg.Workers, func(ctx context.Context, clientID string, i int) {
		if c.post(ctx, "/jackpots", clientID, jackpots[i]) == resultCreated {
			atomic.AddInt64(&created, 1)
		} else {
			atomic.AddInt64(&failed, 1)
		}
	})
	stats.JackpotsCreated = int(created)
	stats.JackpotsFailed = int(failed)
}
