package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	// ErrLeaderboardFetch is the user-facing failure when the store cannot
	// be queried; internals are logged, not leaked.
	ErrLeaderboardFetch = errors.New("could not fetch leaderboard")
)
