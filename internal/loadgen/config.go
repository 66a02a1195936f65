// Package loadgen drives a running leaderboard service with concurrent score
// submissions and checks that the published rankings match what was accepted.
package loadgen

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Players     int           // Number of distinct players to generate
	Submissions int           // Number of score submissions to send
	Workers     int           // Number of concurrent workers
	MaxScore    int           // Scores are drawn from [0, MaxScore]
	Timeout     time.Duration // HTTP request timeout
	OutputFile  string        // Optional JSON dump of the generated submissions
	Verbose     bool          // Log every rejected submission
}

// Submission is one POST /score call.
type Submission struct {
	Tier  string  `json:"tier,omitempty"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Entry represents a leaderboard entry.
type Entry struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type tiersResponse struct {
	Tiered bool     `json:"tiered"`
	Tiers  []string `json:"tiers"`
}

// Stats holds run statistics.
type Stats struct {
	PlayersGenerated int
	Submitted        int
	Accepted         int
	RateLimited      int
	Failed           int
	TiersChecked     int
	PlayersVerified  int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
