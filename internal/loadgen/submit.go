package loadgen

import (
	"context"
	"io"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/okian/typerank/pkg/logger"
)

// Worker configuration constants.
const workerChannelMultiplier = 2

type playerKey struct {
	tier, name string
}

// acceptedMax tracks, per tier and player, the best score the service accepted.
type acceptedMax struct {
	mu   sync.Mutex
	best map[playerKey]float64
}

func (a *acceptedMax) record(s Submission) {
	a.mu.Lock()
	defer a.mu.Unlock()
	k := playerKey{s.Tier, s.Name}
	if cur, ok := a.best[k]; !ok || s.Score > cur {
		a.best[k] = s.Score
	}
}

// submitAll posts subs with cfg.Workers goroutines and returns the best
// accepted score per player.
func submitAll(ctx context.Context, cfg *Config, client *HTTPClient, subs []Submission, stats *Stats) map[playerKey]float64 {
	log := logger.Get()
	log.Info(ctx, "submitting scores", logger.Int("submissions", len(subs)), logger.Int("workers", cfg.Workers))

	accepted := &acceptedMax{best: make(map[playerKey]float64)}
	var submitted, ok, limited, failed int64

	ch := make(chan Submission, cfg.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range ch {
				atomic.AddInt64(&submitted, 1)
				switch status := submitOne(ctx, client, sub); status {
				case http.StatusOK:
					atomic.AddInt64(&ok, 1)
					accepted.record(sub)
				case http.StatusTooManyRequests:
					atomic.AddInt64(&limited, 1)
				default:
					atomic.AddInt64(&failed, 1)
					if cfg.Verbose {
						log.Warn(ctx, "submission rejected",
							logger.String("name", sub.Name),
							logger.String("tier", sub.Tier),
							logger.Int("status", status),
						)
					}
				}
			}
		}()
	}

	go func() {
		defer close(ch)
		for _, sub := range subs {
			select {
			case <-ctx.Done():
				return
			case ch <- sub:
			}
		}
	}()

	wg.Wait()

	stats.Submitted = int(atomic.LoadInt64(&submitted))
	stats.Accepted = int(atomic.LoadInt64(&ok))
	stats.RateLimited = int(atomic.LoadInt64(&limited))
	stats.Failed = int(atomic.LoadInt64(&failed))

	log.Info(ctx, "submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("rateLimited", stats.RateLimited),
		logger.Int("failed", stats.Failed),
	)
	return accepted.best
}

// submitOne posts a single score and returns the HTTP status, 0 on transport failure.
func submitOne(ctx context.Context, client *HTTPClient, sub Submission) int {
	resp, err := client.PostJSON(ctx, "/score"+tierQuery(sub.Tier), map[string]interface{}{
		"name":  sub.Name,
		"score": sub.Score,
	})
	if err != nil {
		return 0
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode
}
