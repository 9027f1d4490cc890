// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	app "github.com/skgamebot/flappyrank/internal/app"
	"github.com/skgamebot/flappyrank/internal/domain/model"
)

// ScoresHandler handles score submission requests.
type ScoresHandler struct {
	deps Dependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps Dependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// HandlePostScore handles POST /scores requests. The 202 acknowledgment means
// the submission was accepted for processing; the durable write happens on a
// worker with its own failure policy.
func (h *ScoresHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var sub model.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := sub.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_event", err)
		return
	}

	ack, err := h.deps.Enqueue(r.Context(), sub)
	switch {
	case errors.Is(err, app.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, "invalid_event", err)
		return
	case ack.Duplicate:
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Message: "Score already recorded", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Message: "Score update accepted"})
}
