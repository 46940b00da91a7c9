package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/tassibets/internal/domain/ranking"
	"github.com/okian/tassibets/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	directoryPermission = 0750
	filePermission      = 0600
	percentMultiplier   = 100
)

// Run seeds the service with generated wagers and jackpots, then checks that
// the board and the hall of fame account for exactly what was accepted.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now(), AmountCreated: decimal.Zero}
	log := logger.Get().Named("loadtest")

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	log.Info(ctx, "starting tassibets seeding run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("bets", cfg.NumBets),
		logger.Int("jackpots", cfg.NumJackpots),
		logger.Int("workers", cfg.Workers),
		logger.Int64("seed", int64(seed)),
	)

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Baseline
	boardBefore, err := client.Board(ctx)
	if err != nil {
		return stats, fmt.Errorf("baseline board: %w", err)
	}
	hallBefore, err := client.HallOfFame(ctx)
	if err != nil {
		return stats, fmt.Errorf("baseline hall of fame: %w", err)
	}

	var live *liveWatcher
	if cfg.LiveWait > 0 {
		if live, err = dialLive(ctx, cfg.BaseURL); err != nil {
			return stats, err
		}
		defer live.Close()
	}

	// Step 3: Generate
	gen := NewGenerator(seed, cfg.Players, cfg.MinAmount, cfg.Step)
	bets := gen.Bets(cfg.NumBets)
	jackpots := gen.Jackpots(cfg.NumJackpots)
	stats.BetsGenerated = len(bets)
	stats.JackpotsGenerated = len(jackpots)

	// Step 4: Submit concurrently
	submitBets(ctx, cfg, client, bets, stats)
	submitJackpots(ctx, cfg, client, jackpots, stats)

	// Step 5: Verify
	boardAfter, err := client.Board(ctx)
	if err != nil {
		return stats, fmt.Errorf("final board: %w", err)
	}
	hallAfter, err := client.HallOfFame(ctx)
	if err != nil {
		return stats, fmt.Errorf("final hall of fame: %w", err)
	}
	for _, check := range []error{
		VerifyBoard(boardAfter),
		VerifyHall(hallAfter),
		VerifyDelta(boardBefore, boardAfter, stats),
		VerifyHallDelta(hallBefore, hallAfter, stats),
	} {
		if check != nil {
			return stats, check
		}
	}

	if live != nil {
		want := boardAfter.TotalCount
		if _, err := live.waitFor(cfg.LiveWait, func(b ranking.WagerBoard) bool { return b.TotalCount >= want }); err != nil {
			return stats, err
		}
		stats.LiveVerified = true
	}

	// Step 6: Save generated records
	if cfg.OutputFile != "" {
		if err := saveToFile(cfg.OutputFile, bets, jackpots); err != nil {
			log.Warn(ctx, "failed to save generated records", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats, boardAfter, hallAfter)
	return stats, nil
}

func checkServiceHealth(ctx context.Context, c *HTTPClient) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", "", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

func saveToFile(filename string, bets []Bet, jackpots []Jackpot) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(struct {
		Bets     []Bet     `json:"bets"`
		Jackpots []Jackpot `json:"jackpots"`
	}{bets, jackpots}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats, board ranking.WagerBoard, hall ranking.HallOfFame) {
	var successRate, betsPerSecond float64
	if stats.BetsGenerated > 0 {
		successRate = float64(stats.BetsCreated) / float64(stats.BetsGenerated) * percentMultiplier
	}
	if stats.Duration > 0 {
		betsPerSecond = float64(stats.BetsGenerated) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("betsGenerated", stats.BetsGenerated),
		logger.Int("betsCreated", stats.BetsCreated),
		logger.Int("betsConflict", stats.BetsConflict),
		logger.Int("betsRejected", stats.BetsRejected),
		logger.Int("betsFailed", stats.BetsFailed),
		logger.String("amountCreated", stats.AmountCreated.String()),
		logger.Int("jackpotsCreated", stats.JackpotsCreated),
		logger.Int("jackpotsFailed", stats.JackpotsFailed),
		logger.Bool("liveVerified", stats.LiveVerified),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("betsPerSecond", betsPerSecond),
	)
	for _, c := range board.Categories {
		log.Info(ctx, "category",
			logger.String("bet_type", string(c.Category)),
			logger.String("total", c.TotalAmount.String()),
			logger.Int("count", c.Count),
		)
	}
	for i, p := range hall.Players {
		if i == 3 {
			break
		}
		log.Info(ctx, "hall of fame", logger.Int("rank", i+1), logger.String("player", p.PlayerName), logger.Int("jackpots", p.TotalJackpots))
	}
}
