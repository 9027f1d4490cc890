// Package rank implements the leaderboard ranking engine: a pure computation
// from best-score aggregates to a dense-ranked, deterministically ordered view.
package rank

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/skgamebot/flappyrank/internal/domain/model"
	"github.com/skgamebot/flappyrank/pkg/metrics"
)

// Source supplies the best score per user for a scope. The aggregation may
// run server-side in the backing store or in a reducer; the engine does not
// care which.
type Source interface {
	BestScores(ctx context.Context, scope model.Scope) ([]model.BestScore, error)
}

// Entry is one line of a computed leaderboard.
type Entry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"first_name"`
	BestScore   int    `json:"score"`
}

// Ranking is the result of one computation. It is derived and ephemeral,
// never persisted.
type Ranking struct {
	// Entries holds the top-N, ordered best first, ranks dense from 1.
	Entries []Entry
	// TopN echoes the requested list size; Entries may be shorter when the
	// scope holds fewer users.
	TopN int
	// TotalUsers counts distinct users in scope, including those cut off.
	TotalUsers int
	// RequestedUserID echoes the requesting user, empty if none was given.
	RequestedUserID string
	// Requester carries the requesting user's full-scope entry when they fell
	// outside Entries. Nil when unrequested, already listed, or unknown.
	Requester *Entry
}

// Engine derives ordered, ranked views from a Source. It owns no mutable
// state and is safe for concurrent use.
type Engine struct {
	source Source
}

// New constructs an Engine over the given source.
func New(source Source) *Engine {
	return &Engine{source: source}
}

// Compute fetches the per-user bests for scope, orders them under the total
// order (best score desc, earliest best submission asc, user id asc), assigns
// dense 1-based ranks, and truncates to topN. When requestingUserID is set
// and ranked outside the truncated set, their entry is attached separately.
// An empty scope yields an empty Ranking, not an error.
func (e *Engine) Compute(ctx context.Context, scope model.Scope, topN int, requestingUserID string) (Ranking, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRankingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if topN < 1 {
		return Ranking{}, ErrInvalidTopN
	}

	entries, err := e.ordered(ctx, scope)
	if err != nil {
		return Ranking{}, err
	}

	r := Ranking{
		TopN:            topN,
		TotalUsers:      len(entries),
		RequestedUserID: requestingUserID,
	}
	if len(entries) == 0 {
		return r, nil
	}

	cut := topN
	if cut > len(entries) {
		cut = len(entries)
	}
	r.Entries = entries[:cut]

	if requestingUserID != "" {
		for i := cut; i < len(entries); i++ {
			if entries[i].UserID == requestingUserID {
				req := entries[i]
				r.Requester = &req
				break
			}
		}
	}
	return r, nil
}

// Rank locates a single user's full-scope entry. Returns ErrNotFound when the
// user has no event in scope.
func (e *Engine) Rank(ctx context.Context, scope model.Scope, userID string) (Entry, error) {
	entries, err := e.ordered(ctx, scope)
	if err != nil {
		return Entry{}, err
	}
	for _, entry := range entries {
		if entry.UserID == userID {
			return entry, nil
		}
	}
	return Entry{}, ErrNotFound
}

// ordered fetches, sorts, and ranks the full scope. The snapshot is taken in
// one store query, so it is internally consistent: each user appears once and
// ranks run 1..n without gaps.
func (e *Engine) ordered(ctx context.Context, scope model.Scope) ([]Entry, error) {
	bests, err := e.source.BestScores(ctx, scope)
	if err != nil {
		metrics.RecordRankingError()
		return nil, fmt.Errorf("%w: %w", ErrScopeUnavailable, err)
	}

	// Total order: no two distinct users compare equal, so ranks are
	// reproducible across identical snapshots.
	sort.Slice(bests, func(i, j int) bool {
		if bests[i].Score != bests[j].Score {
			return bests[i].Score > bests[j].Score
		}
		if !bests[i].FirstAt.Equal(bests[j].FirstAt) {
			return bests[i].FirstAt.Before(bests[j].FirstAt)
		}
		return bests[i].UserID < bests[j].UserID
	})

	entries := make([]Entry, len(bests))
	for i, b := range bests {
		entries[i] = Entry{
			Rank:        i + 1,
			UserID:      b.UserID,
			DisplayName: b.DisplayName,
			BestScore:   b.Score,
		}
	}
	return entries, nil
}
