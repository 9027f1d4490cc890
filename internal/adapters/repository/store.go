// Package repository defines the score store contract and its implementations.
//
// The store is an append-only log of score events queryable by scope. The
// best-score aggregation may run in the backing engine (MongoStore) or in a
// reducer (MemoryStore); callers must not assume which.
package repository

import (
	"context"

	"github.com/skgamebot/flappyrank/internal/domain/model"
)

// Store provides durable writes and aggregated reads over the event log.
type Store interface {
	// Append persists one event and returns its store id. The write is
	// visible to subsequent queries; no cache masks it.
	// Returns ErrInvalidEvent for a negative score or empty user id and
	// ErrUnavailable when the backing store cannot be reached.
	Append(ctx context.Context, event model.ScoreEvent) (string, error)

	// BestScores returns, for every user with at least one event in scope,
	// their maximum score, the display name attached to the earliest event
	// carrying that maximum, and that event's timestamp. Order is unspecified.
	BestScores(ctx context.Context, scope model.Scope) ([]model.BestScore, error)

	// Count returns the number of distinct users in scope.
	Count(ctx context.Context, scope model.Scope) (int, error)
}

// validate applies the invariants an event must satisfy before storage.
func validate(event model.ScoreEvent) error {
	if event.UserID == "" {
		return ErrInvalidEvent
	}
	if event.Score < 0 {
		return ErrInvalidEvent
	}
	return nil
}

// better reports whether candidate should replace current as a user's best:
// a strictly higher score wins, and on an equal score the earlier submission
// keeps the slot, so the recorded name and timestamp stay those of the first
// event achieving the maximum.
func better(candidate model.ScoreEvent, current model.BestScore) bool {
	if candidate.Score != current.Score {
		return candidate.Score > current.Score
	}
	return candidate.SubmittedAt.Before(current.FirstAt)
}
