// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	app "github.com/skgamebot/flappyrank/internal/app"
	"github.com/skgamebot/flappyrank/internal/domain/model"
	"github.com/skgamebot/flappyrank/internal/domain/rank"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Enqueue accepts a submission for async persistence. The returned Ack
	// means accepted-for-processing, not durably-stored.
	Enqueue(ctx context.Context, sub model.Submission) (app.Ack, error)

	// Read operations expose leaderboard data.
	Leaderboard(ctx context.Context, scope model.Scope, topN int, requestingUserID string) (rank.Ranking, error)
	Rank(ctx context.Context, scope model.Scope, userID string) (rank.Entry, error)
}

// Limits carries the configured leaderboard sizes. Top-N values are
// configuration, never constants in handlers.
type Limits struct {
	GlobalTopN int
	GroupTopN  int
	MaxLimit   int
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	scoresHandler      *ScoresHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, limits Limits) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		scoresHandler:      NewScoresHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, limits),
		rankHandler:        NewRankHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/scores", corsMiddleware(MetricsMiddleware(s.scoresHandler.HandlePostScore, "scores")))
	// Legacy webhook path kept for existing game clients.
	mux.HandleFunc("/flappybird-update-score", corsMiddleware(MetricsMiddleware(s.scoresHandler.HandlePostScore, "scores")))
	mux.HandleFunc("/leaderboard", corsMiddleware(MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard")))
	mux.HandleFunc("/rank/", corsMiddleware(MetricsMiddleware(s.rankHandler.HandleGetRank, "rank")))
}

type ackResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound allows the API to translate upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, rank.ErrNotFound)
}
