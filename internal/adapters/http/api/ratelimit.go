package api

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/okian/typerank/pkg/logger"
	"github.com/okian/typerank/pkg/metrics"
	"golang.org/x/time/rate"
)

const defaultLimiterIdle = 10 * time.Minute

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client

	rate  rate.Limit
	burst int
	idle  time.Duration

	trustForwarded bool
	now            func() time.Time
	logger         logger.Logger
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterOption customizes NewRateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithIdleTimeout sets how long an unused bucket survives a Sweep.
func WithIdleTimeout(d time.Duration) RateLimiterOption {
	return func(rl *RateLimiter) {
		if d > 0 {
			rl.idle = d
		}
	}
}

// WithTrustForwardedFor keys clients by the first X-Forwarded-For entry.
// Only enable behind a proxy that sets the header.
func WithTrustForwardedFor(trust bool) RateLimiterOption {
	return func(rl *RateLimiter) { rl.trustForwarded = trust }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) RateLimiterOption {
	return func(rl *RateLimiter) {
		if now != nil {
			rl.now = now
		}
	}
}

// WithLimiterLogger sets the logger used for rejections.
func WithLimiterLogger(l logger.Logger) RateLimiterOption {
	return func(rl *RateLimiter) {
		if l != nil {
			rl.logger = l
		}
	}
}

// NewRateLimiter allows perSecond sustained requests per client with bursts
// of up to burst.
func NewRateLimiter(perSecond float64, burst int, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		rate:    rate.Limit(perSecond),
		burst:   burst,
		idle:    defaultLimiterIdle,
		now:     time.Now,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Allow consumes one token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	rl.mu.Unlock()

	return c.limiter.AllowN(now, 1)
}

// Wrap rejects requests over the limit with 429.
func (rl *RateLimiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := rl.clientKey(r)
		if !rl.Allow(key) {
			metrics.RecordRateLimited()
			rl.logger.Debug(r.Context(), "rate limit exceeded",
				logger.String("client", key),
				logger.String("path", r.URL.Path),
			)
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate_limited", ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// Sweep drops buckets idle for longer than the idle timeout and returns how
// many were removed.
func (rl *RateLimiter) Sweep() int {
	cutoff := rl.now().Add(-rl.idle)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Run sweeps every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Sweep(); n > 0 {
				rl.logger.Debug(ctx, "swept idle rate limiters", logger.Int("removed", n))
			}
		}
	}
}

func (rl *RateLimiter) clientKey(r *http.Request) string {
	if rl.trustForwarded {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	return ClientIP(r)
}

// ClientIP returns the host part of the request's remote address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
