// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	app "github.com/skgamebot/flappyrank/internal/app"
)

// StatsProvider supplies the service snapshot served on /stats.
type StatsProvider interface {
	GetStats() app.Stats
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests with the queue, dedupe, and user
// totals of the running service.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}
