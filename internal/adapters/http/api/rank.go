// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"

	"github.com/skgamebot/flappyrank/internal/domain/model"
)

// RankHandler handles single-user rank requests.
type RankHandler struct {
	deps Dependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps Dependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetRank handles GET /rank/{user_id}?chat_id=C requests.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	userID := strings.TrimPrefix(r.URL.Path, "/rank/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	scope := model.Global()
	if chatID := r.URL.Query().Get("chat_id"); chatID != "" {
		scope = model.Chat(chatID)
	}

	entry, err := h.deps.Rank(r.Context(), scope, userID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "scope_unavailable", ErrLeaderboardFetch)
		return
	}
	writeJSON(w, http.StatusOK, toPayload(entry))
}
