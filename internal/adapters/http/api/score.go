package api

import (
	"context"
	"net/http"

	"github.com/okian/typerank/pkg/logger"
)

// ScoreDependencies defines the interface for score submission.
type ScoreDependencies interface {
	SubmitScore(ctx context.Context, tier, name string, score float64) (bool, error)
}

// ScoreHandler handles score submissions.
type ScoreHandler struct {
	deps    ScoreDependencies
	maxBody int64
	logger  logger.Logger
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps, maxBody: defaultMaxBody, logger: logger.Discard()}
}

// HandlePostScore handles POST /score?difficulty=<tier> requests. A score
// that does not beat the player's best is still answered with success.
func (h *ScoreHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score"
	var req scoreRequest
	if err := decodeBody(w, r, h.maxBody, &req); err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	name, err := parseName(req.Name)
	if err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	score, err := parseScore(req.Score)
	if err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	if _, err := h.deps.SubmitScore(r.Context(), tierOf(r), name, score); err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
