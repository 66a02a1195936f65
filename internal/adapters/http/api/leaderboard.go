package api

import (
	"context"
	"net/http"

	"github.com/okian/typerank/pkg/logger"
)

// LeaderboardDependencies defines the interface for leaderboard reads.
type LeaderboardDependencies interface {
	Ranking(ctx context.Context, tier string) ([]Entry, error)
	Tiers() []string
	Tiered() bool
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps   LeaderboardDependencies
	logger logger.Logger
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps, logger: logger.Discard()}
}

// HandleGetLeaderboard handles GET /leaderboard?difficulty=<tier> requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	serveRanking(w, r, h.deps, h.logger, op)
}

type tiersResponse struct {
	Tiered bool     `json:"tiered"`
	Tiers  []string `json:"tiers"`
}

// HandleGetTiers handles GET /tiers requests.
func (h *LeaderboardHandler) HandleGetTiers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, tiersResponse{Tiered: h.deps.Tiered(), Tiers: h.deps.Tiers()})
}

// serveRanking writes tier's ranking as a JSON array; shared by the public
// leaderboard and the admin listing.
func serveRanking(w http.ResponseWriter, r *http.Request, deps LeaderboardDependencies, log logger.Logger, op string) {
	entries, err := deps.Ranking(r.Context(), tierOf(r))
	if err != nil {
		respondError(r.Context(), w, log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
