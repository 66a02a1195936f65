package loadgen

import (
	"fmt"
	"time"
)

// Defaults for the command-line flags.
const (
	DefaultBaseURL     = "http://localhost:3001"
	DefaultPlayers     = 50
	DefaultSubmissions = 1000
	DefaultWorkers     = 10
	DefaultMaxScore    = 150
	DefaultTimeout     = 30 * time.Second
)

// ShowHelp prints usage information.
func ShowHelp() {
	fmt.Println(`typerank load generator

Submits random scores for generated players to a running typerank service and
verifies that every published leaderboard is sorted and shows each player's
best accepted score.

Usage:
  loadgen [flags]

Flags:
  -url string          base URL of the service (default "http://localhost:3001")
  -players int         number of distinct players (default 50)
  -submissions int     number of score submissions (default 1000)
  -workers int         concurrent workers (default 10)
  -max-score int       highest generated score (default 150)
  -timeout duration    per-request timeout (default 30s)
  -output string       write generated submissions to this JSON file
  -log-format string   text or json (default "text")
  -verbose             log every rejected submission
  -help                show this help

Submissions answered with 429 are counted as rate limited and excluded from
verification. Disable the score rate limit (TYPERANK_SCORE_RATE_LIMIT=0) for
a full run.`)
}
