package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/typerank/pkg/logger"
)

// AdminDependencies defines the moderation operations behind /admin.
type AdminDependencies interface {
	LeaderboardDependencies
	SetScore(ctx context.Context, tier, name string, score float64) error
	DeletePlayer(ctx context.Context, tier, name string) error
	ResetTier(ctx context.Context, tier string) error
	WipeAll(ctx context.Context) error
}

// AdminHandler handles admin requests.
type AdminHandler struct {
	deps    AdminDependencies
	maxBody int64
	logger  logger.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(deps AdminDependencies) *AdminHandler {
	return &AdminHandler{deps: deps, maxBody: defaultMaxBody, logger: logger.Discard()}
}

// HandleList handles GET /admin/api?difficulty=<tier>.
func (h *AdminHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.admin_list"
	serveRanking(w, r, h.deps, h.logger, op)
}

// HandleSetScore handles PUT /admin/player/{name}?difficulty=<tier>.
func (h *AdminHandler) HandleSetScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.admin_set_score"
	name, tier := r.PathValue("name"), tierOf(r)

	var req scoreRequest
	if err := decodeBody(w, r, h.maxBody, &req); err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	score, err := parseScore(req.Score)
	if err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	if err := h.deps.SetScore(r.Context(), tier, name, score); err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	msg := fmt.Sprintf("Player %s score updated to %s", name, strconv.FormatFloat(score, 'f', -1, 64))
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: h.inTier(msg, tier)})
}

// HandleDeletePlayer handles DELETE /admin/player/{name}?difficulty=<tier>.
func (h *AdminHandler) HandleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.admin_delete_player"
	name, tier := r.PathValue("name"), tierOf(r)

	if err := h.deps.DeletePlayer(r.Context(), tier, name); err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	msg := "Player " + name + " removed"
	if h.deps.Tiered() {
		msg += " from " + tier
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: msg})
}

// HandleReset handles DELETE /admin/reset?difficulty=<tier>.
func (h *AdminHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	const op = "api.admin_reset"
	tier := tierOf(r)

	if err := h.deps.ResetTier(r.Context(), tier); err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	msg := "Leaderboard reset"
	if h.deps.Tiered() {
		msg = "Leaderboard for " + tier + " reset"
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: msg})
}

// HandleWipe handles DELETE /admin/wipe.
func (h *AdminHandler) HandleWipe(w http.ResponseWriter, r *http.Request) {
	const op = "api.admin_wipe"
	if err := h.deps.WipeAll(r.Context()); err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "All leaderboards wiped"})
}

func (h *AdminHandler) inTier(msg, tier string) string {
	if !h.deps.Tiered() {
		return msg
	}
	return msg + " in " + tier
}
