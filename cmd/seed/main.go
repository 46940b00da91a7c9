package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/okian/tassibets/internal/loadtest"
	"github.com/urfave/cli/v2"
)

// Default configuration constants.
const (
	defaultBets        = 1000
	defaultJackpots    = 50
	defaultPlayers     = 40
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultLiveWait    = 10 * time.Second
	defaultMinAmount   = 10
	defaultStep        = 10
	defaultTestTimeout = 10 * time.Minute
)

type runFunc func(ctx context.Context, cfg *loadtest.Config) error

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	app := newApp(func(ctx context.Context, cfg *loadtest.Config) error {
		_, err := loadtest.Run(ctx, cfg)
		return err
	})
	if err := app.RunContext(ctx, os.Args); err != nil {
		_, _ = os.Stderr.WriteString("Seeding failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // cancel called above
	}
}

func newApp(run runFunc) *cli.App {
	return &cli.App{
		Name:  "seed",
		Usage: "fill a running TASSIBETS service with random bets and jackpots, then verify the board",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:9080", Usage: "base URL of the service", EnvVars: []string{"TASSIBETS_SEED_URL"}},
			&cli.IntFlag{Name: "bets", Value: defaultBets, Usage: "number of bets to submit"},
			&cli.IntFlag{Name: "jackpots", Value: defaultJackpots, Usage: "number of jackpots to submit"},
			&cli.IntFlag{Name: "players", Value: defaultPlayers, Usage: "size of the player pool"},
			&cli.IntFlag{Name: "workers", Value: runtime.NumCPU() * defaultWorkers, Usage: "number of concurrent workers"},
			&cli.DurationFlag{Name: "timeout", Value: defaultTimeout, Usage: "HTTP request timeout"},
			&cli.DurationFlag{Name: "live", Value: defaultLiveWait, Usage: "wait for /live to show the final board; 0 skips"},
			&cli.Int64Flag{Name: "min", Value: defaultMinAmount, Usage: "smallest bet amount"},
			&cli.Int64Flag{Name: "step", Value: defaultStep, Usage: "bet amount step"},
			&cli.Uint64Flag{Name: "seed", Usage: "generator seed; 0 uses the clock"},
			&cli.StringFlag{Name: "output", Usage: "save generated records as JSON"},
			&cli.StringFlag{Name: "log", Usage: "also write logs to this file"},
			&cli.BoolFlag{Name: "verbose", Usage: "enable debug logging"},
		},
		Before: func(c *cli.Context) error {
			if err := loadtest.SetupLogging(c.String("log"), c.Bool("verbose")); err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			return run(c.Context, configFrom(c))
		},
	}
}

func configFrom(c *cli.Context) *loadtest.Config {
	return &loadtest.Config{
		BaseURL:     c.String("url"),
		NumBets:     c.Int("bets"),
		NumJackpots: c.Int("jackpots"),
		Players:     c.Int("players"),
		Workers:     c.Int("workers"),
		Timeout:     c.Duration("timeout"),
		LiveWait:    c.Duration("live"),
		MinAmount:   c.Int64("min"),
		Step:        c.Int64("step"),
		Seed:        c.Uint64("seed"),
		OutputFile:  c.String("output"),
		Verbose:     c.Bool("verbose"),
	}
}
