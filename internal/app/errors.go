package service

import "errors"

var (
	// ErrInvalidInput reports a request rejected before any load or save:
	// unknown tier, blank name or an unusable score.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound reports an admin delete of a player with no score.
	ErrNotFound = errors.New("player not found")
	// ErrParse reports a stored document that could not be decoded.
	ErrParse = errors.New("leaderboard document unreadable")
	// ErrStorage reports a backend read or write failure.
	ErrStorage = errors.New("leaderboard storage failure")
)
