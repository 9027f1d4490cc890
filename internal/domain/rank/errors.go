package rank

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrScopeUnavailable = errors.New("scope unavailable")
	ErrNotFound         = errors.New("user not ranked")
	ErrInvalidTopN      = errors.New("top-n must be at least 1")
)
