package repository

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrNoDocument     = errors.New("leaderboard document not found")
	ErrUnknownBackend = errors.New("unknown storage backend")
)
