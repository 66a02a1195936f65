package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/typerank/pkg/logger"
)

const (
	directoryPermission = 0o750
	percentage          = 100.0
)

// Run executes a complete load run and returns its statistics. A non-nil
// error wrapping ErrVerification means the service published rankings that
// disagree with the submissions it accepted.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting typerank load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("players", cfg.Players),
		logger.Int("submissions", cfg.Submissions),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
	)

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, err
	}

	var tr tiersResponse
	if err := client.getJSON(ctx, "/tiers", &tr); err != nil {
		return stats, fmt.Errorf("read tiers: %w", err)
	}
	tiers := tr.Tiers
	if !tr.Tiered {
		tiers = nil
	}

	players := generatePlayers(cfg.Players)
	stats.PlayersGenerated = len(players)
	subs := generateSubmissions(ctx, cfg, players, tiers)

	expected := submitAll(ctx, cfg, client, subs, stats)

	boards, err := fetchBoards(ctx, client, tiers)
	if err != nil {
		return stats, err
	}
	stats.TiersChecked = len(boards)

	verified, verr := verifyBoards(boards, expected)
	stats.PlayersVerified = verified

	if cfg.OutputFile != "" {
		if err := saveSubmissions(ctx, cfg.OutputFile, subs); err != nil {
			log.Warn(ctx, "failed to save submissions", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if verr != nil {
		return stats, verr
	}
	log.Info(ctx, "load run completed successfully")
	return stats, nil
}

func (c *Config) validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case c.Players < 1:
		return fmt.Errorf("%w: players must be at least 1", ErrInvalidConfig)
	case c.Submissions < 0:
		return fmt.Errorf("%w: submissions must not be negative", ErrInvalidConfig)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	case c.MaxScore < 0:
		return fmt.Errorf("%w: max score must not be negative", ErrInvalidConfig)
	}
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := client.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// fetchBoards reads the ranking of every tier. Untiered services are read once
// under the empty tier.
func fetchBoards(ctx context.Context, client *HTTPClient, tiers []string) (map[string][]Entry, error) {
	if len(tiers) == 0 {
		tiers = []string{""}
	}
	boards := make(map[string][]Entry, len(tiers))
	for _, tier := range tiers {
		var entries []Entry
		if err := client.getJSON(ctx, "/leaderboard"+tierQuery(tier), &entries); err != nil {
			return nil, fmt.Errorf("read leaderboard %q: %w", tier, err)
		}
		boards[tier] = entries
	}
	return boards, nil
}

// saveSubmissions writes the generated submissions as a JSON array.
func saveSubmissions(ctx context.Context, filename string, subs []Submission) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal submissions: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	logger.Get().Info(ctx, "submissions saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var acceptRate, perSecond float64
	if stats.Submitted > 0 {
		acceptRate = float64(stats.Accepted) / float64(stats.Submitted) * percentage
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("playersGenerated", stats.PlayersGenerated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("rateLimited", stats.RateLimited),
		logger.Int("failed", stats.Failed),
		logger.Int("tiersChecked", stats.TiersChecked),
		logger.Int("playersVerified", stats.PlayersVerified),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("submissionsPerSecond", perSecond),
	)
}
