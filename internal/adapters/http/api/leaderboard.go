// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"

	"github.com/skgamebot/flappyrank/internal/domain/format"
	"github.com/skgamebot/flappyrank/internal/domain/model"
	"github.com/skgamebot/flappyrank/internal/domain/rank"
)

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps   Dependencies
	limits Limits
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps Dependencies, limits Limits) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps, limits: limits}
}

// entryPayload mirrors one ranked line for programmatic callers.
type entryPayload struct {
	Rank      int    `json:"rank"`
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	Score     int    `json:"score"`
	Medal     string `json:"medal,omitempty"`
}

type leaderboardResponse struct {
	Entries    []entryPayload `json:"entries"`
	TotalUsers int            `json:"total_users"`
	Requester  *entryPayload  `json:"requester,omitempty"`
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N&chat_id=C&user_id=U.
// limit defaults to the configured top-N for the scope; chat_id selects a
// chat scope; user_id attaches the requesting user's own rank when they fall
// outside the returned list.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	scope := model.Global()
	topN := h.limits.GlobalTopN
	if chatID := r.URL.Query().Get("chat_id"); chatID != "" {
		scope = model.Chat(chatID)
		topN = h.limits.GroupTopN
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if n > h.limits.MaxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
			return
		}
		topN = n
	}

	ranking, err := h.deps.Leaderboard(r.Context(), scope, topN, r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "scope_unavailable", ErrLeaderboardFetch)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(ranking))
}

func toResponse(ranking rank.Ranking) leaderboardResponse {
	resp := leaderboardResponse{
		Entries:    make([]entryPayload, len(ranking.Entries)),
		TotalUsers: ranking.TotalUsers,
	}
	for i, e := range ranking.Entries {
		resp.Entries[i] = toPayload(e)
	}
	if ranking.Requester != nil {
		req := toPayload(*ranking.Requester)
		resp.Requester = &req
	}
	return resp
}

func toPayload(e rank.Entry) entryPayload {
	return entryPayload{
		Rank:      e.Rank,
		UserID:    e.UserID,
		FirstName: e.DisplayName,
		Score:     e.BestScore,
		Medal:     format.Medal(e.Rank),
	}
}
