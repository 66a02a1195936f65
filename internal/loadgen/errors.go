package loadgen

import "errors"

var (
	// ErrUnhealthy reports a failed /healthz probe.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrVerification reports a ranking that disagrees with the accepted submissions.
	ErrVerification = errors.New("leaderboard verification failed")
	// ErrInvalidConfig reports unusable run parameters.
	ErrInvalidConfig = errors.New("invalid load generator config")
)
