// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/typerank/internal/app"
	"github.com/okian/typerank/internal/domain/types"
	"github.com/okian/typerank/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ScoreDependencies
	LeaderboardDependencies
	AdminDependencies
	StatsProvider
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// difficultyParam is the query parameter selecting a tier.
const difficultyParam = "difficulty"

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	scoreHandler       *ScoreHandler
	leaderboardHandler *LeaderboardHandler
	adminHandler       *AdminHandler

	auth    *BasicAuth
	limiter *RateLimiter
	logger  logger.Logger
}

// ServerOption customizes NewServer.
type ServerOption func(*Server)

// WithAdminAuth protects the admin routes. Without it they are served openly.
func WithAdminAuth(auth *BasicAuth) ServerOption {
	return func(s *Server) { s.auth = auth }
}

// WithScoreLimiter rate limits POST /score.
func WithScoreLimiter(l *RateLimiter) ServerOption {
	return func(s *Server) { s.limiter = l }
}

// WithMaxBodyBytes caps JSON request bodies.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.scoreHandler.maxBody = n
			s.adminHandler.maxBody = n
		}
	}
}

// WithServerLogger sets the logger used for request and error logging.
func WithServerLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		scoreHandler:       NewScoreHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		adminHandler:       NewAdminHandler(deps),
		logger:             logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.scoreHandler.logger = s.logger
	s.leaderboardHandler.logger = s.logger
	s.adminHandler.logger = s.logger
	s.statsHandler.logger = s.logger
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /tiers", MetricsMiddleware(s.leaderboardHandler.HandleGetTiers, "tiers"))
	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))

	score := s.scoreHandler.HandlePostScore
	if s.limiter != nil {
		score = s.limiter.Wrap(score)
	}
	mux.HandleFunc("POST /score", MetricsMiddleware(s.withLogging(score), "score"))

	mux.HandleFunc("GET /admin/api", MetricsMiddleware(s.guard(s.adminHandler.HandleList), "admin_api"))
	mux.HandleFunc("PUT /admin/player/{name}", MetricsMiddleware(s.guard(s.adminHandler.HandleSetScore), "admin_player"))
	mux.HandleFunc("DELETE /admin/player/{name}", MetricsMiddleware(s.guard(s.adminHandler.HandleDeletePlayer), "admin_player"))
	mux.HandleFunc("DELETE /admin/reset", MetricsMiddleware(s.guard(s.adminHandler.HandleReset), "admin_reset"))
	mux.HandleFunc("DELETE /admin/wipe", MetricsMiddleware(s.guard(s.adminHandler.HandleWipe), "admin_wipe"))
}

// Guard returns the middleware protecting admin routes, for pages served by
// other packages under /admin.
func (s *Server) Guard() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return s.guard(next.ServeHTTP)
	}
}

func (s *Server) guard(next http.HandlerFunc) http.HandlerFunc {
	next = s.withLogging(next)
	if s.auth == nil {
		return next
	}
	return s.auth.Wrap(next)
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"error"`
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

// respondError maps service errors to status codes in one place. Client
// errors carry the service message; server errors are logged and answered
// with a generic body.
func respondError(ctx context.Context, w http.ResponseWriter, log logger.Logger, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, ErrBadRequest):
		log.Debug(ctx, "rejected request", logger.Error(Wrap(op, err)))
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	default:
		log.Error(ctx, "request failed", logger.Error(WrapKind(op, ErrInternal, err)))
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// tierOf reads the difficulty query parameter.
func tierOf(r *http.Request) string {
	return r.URL.Query().Get(difficultyParam)
}
