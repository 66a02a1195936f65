package loadgen

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
	"github.com/okian/typerank/pkg/logger"
)

// randomInt returns a uniform integer in [0, n).
func randomInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// generatePlayers creates unique player names.
func generatePlayers(n int) []string {
	players := make([]string, n)
	for i := range players {
		players[i] = "player-" + uuid.NewString()[:8]
	}
	return players
}

// generateSubmissions spreads cfg.Submissions random scores over players and
// tiers. An empty tiers slice yields untiered submissions.
func generateSubmissions(ctx context.Context, cfg *Config, players, tiers []string) []Submission {
	subs := make([]Submission, cfg.Submissions)
	for i := range subs {
		sub := Submission{
			Name:  players[randomInt(len(players))],
			Score: float64(randomInt(cfg.MaxScore + 1)),
		}
		if len(tiers) > 0 {
			sub.Tier = tiers[randomInt(len(tiers))]
		}
		subs[i] = sub
	}
	logger.Get().Info(ctx, "generated submissions",
		logger.Int("players", len(players)),
		logger.Int("submissions", len(subs)),
		logger.Strings("tiers", tiers),
	)
	return subs
}
