package loadtest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL     string        // Base URL of the service
	NumBets     int           // Number of wagers to generate
	NumJackpots int           // Number of jackpots to generate
	Players     int           // Size of the player name pool
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	LiveWait    time.Duration // How long to wait for /live to catch up; 0 skips the check
	MinAmount   int64         // Smallest generated amount
	Step        int64         // Amount granularity
	Seed        uint64        // Generator seed; 0 picks one from the clock
	OutputFile  string        // Output file for generated records; empty skips saving
	Verbose     bool          // Enable verbose logging
}

// Bet is one generated wager submission.
type Bet struct {
	Label      string          `json:"label"`
	PlayerName string          `json:"player_name"`
	Amount     decimal.Decimal `json:"amount"`
}

// Jackpot is one generated jackpot submission.
type Jackpot struct {
	PlayerName string `json:"player_name"`
	Kind       string `json:"jackpot_type"`
}

// Stats holds run statistics.
type Stats struct {
	BetsGenerated     int
	BetsCreated       int
	BetsConflict      int
	BetsRejected      int
	BetsFailed        int
	AmountCreated     decimal.Decimal
	JackpotsGenerated int
	JackpotsCreated   int
	JackpotsFailed    int
	LiveVerified      bool
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
