// Package repository persists the leaderboard document.
//
// Every backend stores the whole document as one opaque JSON blob; callers
// load it, mutate a decoded copy and save it back in full.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/okian/typerank/pkg/metrics"
)

// Backend names accepted by configuration.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Store loads and saves the full leaderboard document.
type Store interface {
	// Load returns the stored document bytes.
	// Returns ErrNoDocument if nothing has been saved yet; it never creates one.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the stored document with data.
	Save(ctx context.Context, data []byte) error
}

// observe records latency and failures for one storage operation.
func observe(backend, operation string, start time.Time, err error) {
	metrics.RecordStorageLatency(backend, operation, float64(time.Since(start).Microseconds())/1000)
	if err != nil && !errors.Is(err, ErrNoDocument) {
		metrics.RecordStorageError(backend, operation)
	}
}
