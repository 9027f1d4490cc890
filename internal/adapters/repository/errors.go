package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrInvalidEvent = errors.New("invalid score event")
	ErrUnavailable  = errors.New("score store unavailable")
)
