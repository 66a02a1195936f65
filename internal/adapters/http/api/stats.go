package api

import (
	"context"
	"net/http"

	"github.com/okian/typerank/pkg/logger"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats(ctx context.Context) (map[string]interface{}, error)
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
	logger        logger.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, logger: logger.Discard()}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_stats"
	stats, err := h.statsProvider.GetStats(r.Context())
	if err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
