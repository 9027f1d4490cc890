package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/skgamebot/flappyrank/internal/domain/model"
	"github.com/skgamebot/flappyrank/pkg/metrics"
)

// MemoryStore is an in-memory Store: an append-only slice reduced at query
// time. It backs tests and Mongo-less runs. Concurrent Append and BestScores
// are safe; readers see a consistent snapshot taken under the read lock.
type MemoryStore struct {
	mu     sync.RWMutex
	events []model.ScoreEvent
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append implements Store.Append.
func (s *MemoryStore) Append(ctx context.Context, event model.ScoreEvent) (string, error) {
	if err := validate(event); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()

	metrics.RecordStoreAppend()
	return uuid.NewString(), nil
}

// BestScores implements Store.BestScores with a group-by-max reducer.
func (s *MemoryStore) BestScores(ctx context.Context, scope model.Scope) ([]model.BestScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := make(map[string]model.BestScore)
	for _, event := range s.events {
		if !inScope(event, scope) {
			continue
		}
		current, ok := best[event.UserID]
		if !ok || better(event, current) {
			best[event.UserID] = model.BestScore{
				UserID:      event.UserID,
				DisplayName: event.DisplayName,
				Score:       event.Score,
				FirstAt:     event.SubmittedAt,
			}
		}
	}

	out := make([]model.BestScore, 0, len(best))
	for _, b := range best {
		out = append(out, b)
	}
	return out, nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(ctx context.Context, scope model.Scope) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make(map[string]struct{})
	for _, event := range s.events {
		if inScope(event, scope) {
			users[event.UserID] = struct{}{}
		}
	}
	return len(users), nil
}

// Len returns the number of stored events, for stats reporting.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// inScope applies the scope filter. The global scope covers every event in
// the store, chat-attributed or not.
func inScope(event model.ScoreEvent, scope model.Scope) bool {
	if scope.IsGlobal() {
		return true
	}
	return event.ChatID == scope.ChatID()
}
